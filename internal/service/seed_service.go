package service

import (
	"context"
	"time"

	"github.com/spec-kit/admin-console/internal/config"
	"github.com/spec-kit/admin-console/internal/domain"
	"github.com/spec-kit/admin-console/internal/repository"
)

// Seed fills empty repositories with an admin account, a plain customer and a
// small catalogue so every console view has something to show.
func Seed(ctx context.Context, cfg config.AuthConfig, deps CatalogDependencies, authService *AuthService) error {
	if _, err := seedUser(ctx, deps.Users, authService, cfg.SeedAdminEmail, cfg.SeedAdminPassword, domain.GenderFemale, domain.UserRoleAdmin); err != nil {
		return err
	}
	customer, err := seedUser(ctx, deps.Users, authService, cfg.SeedUserEmail, cfg.SeedUserPassword, domain.GenderMale, domain.UserRoleUser)
	if err != nil {
		return err
	}

	existing, err := deps.Categories.List(ctx)
	if err != nil || len(existing) > 0 {
		return err
	}

	tees, err := deps.Categories.Create(ctx, domain.Category{Name: "T-Shirts"})
	if err != nil {
		return err
	}
	hoodies, err := deps.Categories.Create(ctx, domain.Category{Name: "Hoodies"})
	if err != nil {
		return err
	}

	seedProducts := []domain.Product{
		{Name: "Basic Tee", Description: "Cotton crew neck", Price: 19.9, Quantity: 30, CategoryIDs: []int{tees.ID},
			SizeStocks: map[string]int{"S": 10, "M": 12, "L": 8}},
		{Name: "Graphic Tee", Description: "Printed front", Price: 24.5, Quantity: 12, CategoryIDs: []int{tees.ID},
			SizeStocks: map[string]int{"M": 6, "XL": 6}},
		{Name: "Zip Hoodie", Description: "Fleece lined", Price: 49, Quantity: 5, CategoryIDs: []int{hoodies.ID},
			SizeStocks: map[string]int{"L": 3, "XXL": 2}},
	}
	var first domain.Product
	for i, p := range seedProducts {
		p.SizeStocks = p.NormalizedStocks()
		created, err := deps.Products.Create(ctx, p)
		if err != nil {
			return err
		}
		if i == 0 {
			first = created
		}
	}

	now := time.Now().UTC().Truncate(time.Second)
	orders := []domain.Order{
		{OrderID: 1, UserID: customer.ID, Date: domain.Timestamp{Time: now.AddDate(0, 0, -10)}, State: domain.OrderStateDelivered},
		{OrderID: 2, UserID: customer.ID, Date: domain.Timestamp{Time: now.AddDate(0, 0, -2)}, State: domain.OrderStateShipped},
		{OrderID: 3, UserID: customer.ID, Date: domain.Timestamp{Time: now}, State: domain.OrderStatePending},
	}
	for _, o := range orders {
		if _, err := deps.Orders.Create(ctx, o); err != nil {
			return err
		}
	}

	_, err = deps.Reviews.Create(ctx, domain.Review{Comment: "Fits well", Rating: 4.5, UserID: customer.ID, ProductID: first.ID})
	return err
}

func seedUser(ctx context.Context, users repository.UserRepository, authService *AuthService, email, password string, gender domain.Gender, role domain.UserRole) (domain.User, error) {
	if existing, err := users.GetByEmail(ctx, email); err == nil {
		return existing.User, nil
	}
	hash, err := authService.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	record, err := users.Create(ctx, repository.UserRecord{
		User:         domain.User{Email: email, Gender: gender, Role: role},
		PasswordHash: hash,
	})
	return record.User, err
}
