package repository

import (
	"context"

	"github.com/spec-kit/admin-console/internal/domain"
)

// OrderRepository defines persistence access for placed orders.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	Update(ctx context.Context, order domain.Order) (domain.Order, error)
	GetByID(ctx context.Context, id int) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	CountByUser(ctx context.Context, userID int) (int, error)
}

type orderRepository struct {
	rows *table[domain.Order]
}

// NewOrderRepository returns an in-memory implementation.
func NewOrderRepository() OrderRepository {
	return &orderRepository{rows: newTable[domain.Order]()}
}

func (r *orderRepository) Create(_ context.Context, order domain.Order) (domain.Order, error) {
	return r.rows.insert(func(id int) domain.Order {
		order.ID = id
		return order
	}), nil
}

func (r *orderRepository) Update(_ context.Context, order domain.Order) (domain.Order, error) {
	return r.rows.update(order.ID, func(domain.Order) domain.Order { return order })
}

func (r *orderRepository) GetByID(_ context.Context, id int) (domain.Order, error) {
	return r.rows.get(id)
}

func (r *orderRepository) List(_ context.Context) ([]domain.Order, error) {
	return r.rows.list(nil), nil
}

func (r *orderRepository) CountByUser(_ context.Context, userID int) (int, error) {
	return len(r.rows.list(func(o domain.Order) bool { return o.UserID == userID })), nil
}
