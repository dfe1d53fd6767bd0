package repository

import (
	"context"

	"github.com/spec-kit/admin-console/internal/domain"
)

// ReviewRepository defines persistence access for product reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review domain.Review) (domain.Review, error)
	List(ctx context.Context) ([]domain.Review, error)
	Delete(ctx context.Context, id int) error
	DeleteByProduct(ctx context.Context, productID int) error
}

type reviewRepository struct {
	rows *table[domain.Review]
}

// NewReviewRepository returns an in-memory implementation.
func NewReviewRepository() ReviewRepository {
	return &reviewRepository{rows: newTable[domain.Review]()}
}

func (r *reviewRepository) Create(_ context.Context, review domain.Review) (domain.Review, error) {
	return r.rows.insert(func(id int) domain.Review {
		review.ID = id
		return review
	}), nil
}

func (r *reviewRepository) List(_ context.Context) ([]domain.Review, error) {
	return r.rows.list(nil), nil
}

func (r *reviewRepository) Delete(_ context.Context, id int) error {
	return r.rows.remove(id)
}

func (r *reviewRepository) DeleteByProduct(_ context.Context, productID int) error {
	for _, review := range r.rows.list(func(rv domain.Review) bool { return rv.ProductID == productID }) {
		_ = r.rows.remove(review.ID)
	}
	return nil
}
