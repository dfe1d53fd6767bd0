package dto

import (
	"encoding/json"
	"fmt"

	"github.com/spec-kit/admin-console/internal/domain"
)

// CategoryRequest payload for category create/update.
type CategoryRequest struct {
	Name string `json:"name"`
}

// ProductPayload is the JSON "product" part of a product form.
type ProductPayload struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Quantity    int            `json:"quantity"`
	CategoryIDs []int          `json:"categoryIds"`
	SizeStocks  map[string]int `json:"sizeStocks"`
}

// ParseProductPayload decodes the "product" form part.
func ParseProductPayload(raw string) (domain.Product, error) {
	var p ProductPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.Product{}, fmt.Errorf("invalid product part: %w", err)
	}
	return domain.Product{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		CategoryIDs: p.CategoryIDs,
		SizeStocks:  p.SizeStocks,
	}, nil
}

// OrderRequest payload for PUT /ordered/{id}.
type OrderRequest struct {
	OrderID int               `json:"orderId"`
	UserID  int               `json:"userId"`
	Date    domain.Timestamp  `json:"date"`
	State   domain.OrderState `json:"state"`
}

// Order converts the payload.
func (r OrderRequest) Order() domain.Order {
	return domain.Order{OrderID: r.OrderID, UserID: r.UserID, Date: r.Date, State: r.State}
}
