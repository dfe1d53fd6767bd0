package repository

import (
	"context"
	"slices"

	"github.com/spec-kit/admin-console/internal/domain"
)

// ProductRepository defines persistence access for products.
type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	GetByID(ctx context.Context, id int) (domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, categoryID int) ([]domain.Product, error)
	Delete(ctx context.Context, id int) error
}

type productRepository struct {
	rows *table[domain.Product]
}

// NewProductRepository returns an in-memory implementation.
func NewProductRepository() ProductRepository {
	return &productRepository{rows: newTable[domain.Product]()}
}

func (r *productRepository) Create(_ context.Context, product domain.Product) (domain.Product, error) {
	return r.rows.insert(func(id int) domain.Product {
		product.ID = id
		return product
	}), nil
}

func (r *productRepository) Update(_ context.Context, product domain.Product) (domain.Product, error) {
	return r.rows.update(product.ID, func(domain.Product) domain.Product { return product })
}

func (r *productRepository) GetByID(_ context.Context, id int) (domain.Product, error) {
	return r.rows.get(id)
}

func (r *productRepository) List(_ context.Context) ([]domain.Product, error) {
	return r.rows.list(nil), nil
}

func (r *productRepository) ListByCategory(_ context.Context, categoryID int) ([]domain.Product, error) {
	return r.rows.list(func(p domain.Product) bool {
		return slices.Contains(p.CategoryIDs, categoryID)
	}), nil
}

func (r *productRepository) Delete(_ context.Context, id int) error {
	return r.rows.remove(id)
}
