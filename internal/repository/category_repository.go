package repository

import (
	"context"

	"github.com/spec-kit/admin-console/internal/domain"
)

// CategoryRepository defines persistence access for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category domain.Category) (domain.Category, error)
	Update(ctx context.Context, category domain.Category) (domain.Category, error)
	GetByID(ctx context.Context, id int) (domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Delete(ctx context.Context, id int) error
}

type categoryRepository struct {
	rows *table[domain.Category]
}

// NewCategoryRepository returns an in-memory implementation.
func NewCategoryRepository() CategoryRepository {
	return &categoryRepository{rows: newTable[domain.Category]()}
}

func (r *categoryRepository) Create(_ context.Context, category domain.Category) (domain.Category, error) {
	return r.rows.insert(func(id int) domain.Category {
		category.ID = id
		return category
	}), nil
}

func (r *categoryRepository) Update(_ context.Context, category domain.Category) (domain.Category, error) {
	return r.rows.update(category.ID, func(domain.Category) domain.Category { return category })
}

func (r *categoryRepository) GetByID(_ context.Context, id int) (domain.Category, error) {
	return r.rows.get(id)
}

func (r *categoryRepository) List(_ context.Context) ([]domain.Category, error) {
	return r.rows.list(nil), nil
}

func (r *categoryRepository) Delete(_ context.Context, id int) error {
	return r.rows.remove(id)
}
