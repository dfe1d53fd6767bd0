package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/admin-console/internal/domain"
	"github.com/spec-kit/admin-console/internal/repository"
	apperrors "github.com/spec-kit/admin-console/pkg/util"
)

// MessageUserHasOrders is returned when deleting an account that placed orders.
const MessageUserHasOrders = "User has orders and cannot be deleted."

// CatalogDependencies encapsulates repo requirements for the catalog service.
type CatalogDependencies struct {
	Users      repository.UserRepository
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Orders     repository.OrderRepository
	Reviews    repository.ReviewRepository
}

// CatalogService implements the dev backend's resource operations.
type CatalogService struct {
	deps   CatalogDependencies
	auth   *AuthService
	logger *zap.Logger
}

// NewCatalogService builds the service.
func NewCatalogService(deps CatalogDependencies, authService *AuthService, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{deps: deps, auth: authService, logger: logger}
}

func notFound(resource string, id int, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

// Users

func (s *CatalogService) ListUsers(ctx context.Context) ([]domain.User, error) {
	records, err := s.deps.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(records))
	for _, r := range records {
		out = append(out, r.User)
	}
	return out, nil
}

func (s *CatalogService) GetUser(ctx context.Context, id int) (domain.User, error) {
	record, err := s.deps.Users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, notFound("user", id, err)
	}
	return record.User, nil
}

func (s *CatalogService) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	if err := validateUser(user); err != nil {
		return domain.User{}, err
	}
	if user.Password == "" {
		return domain.User{}, apperrors.NewValidationError("Password cannot be null or empty", nil)
	}
	if _, err := s.deps.Users.GetByEmail(ctx, user.Email); err == nil {
		return domain.User{}, apperrors.NewConflict("email already registered", nil)
	}
	hash, err := s.auth.HashPassword(user.Password)
	if err != nil {
		return domain.User{}, apperrors.NewInternalError(err)
	}
	user.Password = ""
	if user.Role == "" {
		user.Role = domain.UserRoleUser
	}
	record, err := s.deps.Users.Create(ctx, repository.UserRecord{User: user, PasswordHash: hash})
	return record.User, err
}

// UpdateUser replaces email, gender and role; the password only when given.
func (s *CatalogService) UpdateUser(ctx context.Context, id int, user domain.User) (domain.User, error) {
	if err := validateUser(user); err != nil {
		return domain.User{}, err
	}
	record, err := s.deps.Users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, notFound("user", id, err)
	}
	record.Email = user.Email
	record.Gender = user.Gender
	if user.Role != "" {
		record.Role = user.Role
	}
	if user.Password != "" {
		hash, err := s.auth.HashPassword(user.Password)
		if err != nil {
			return domain.User{}, apperrors.NewInternalError(err)
		}
		record.PasswordHash = hash
	}
	updated, err := s.deps.Users.Update(ctx, record)
	if err != nil {
		return domain.User{}, notFound("user", id, err)
	}
	return updated.User, nil
}

// DeleteUser refuses accounts that still own orders.
func (s *CatalogService) DeleteUser(ctx context.Context, id int) error {
	if _, err := s.deps.Users.GetByID(ctx, id); err != nil {
		return notFound("user", id, err)
	}
	count, err := s.deps.Orders.CountByUser(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflict(MessageUserHasOrders, map[string]any{"orders": count})
	}
	return notFound("user", id, s.deps.Users.Delete(ctx, id))
}

func validateUser(user domain.User) error {
	if !strings.Contains(user.Email, "@") {
		return apperrors.NewValidationError("A valid email address is required.", map[string]any{"email": user.Email})
	}
	switch user.Gender {
	case "", domain.GenderMale, domain.GenderFemale:
	default:
		return apperrors.NewValidationError("unknown gender", map[string]any{"gender": user.Gender})
	}
	switch user.Role {
	case "", domain.UserRoleUser, domain.UserRoleAdmin:
	default:
		return apperrors.NewValidationError("unknown role", map[string]any{"role": user.Role})
	}
	return nil
}

// Products

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.deps.Products.List(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int) (domain.Product, error) {
	product, err := s.deps.Products.GetByID(ctx, id)
	return product, notFound("product", id, err)
}

// CreateProduct stores a product; image may be nil.
func (s *CatalogService) CreateProduct(ctx context.Context, product domain.Product, image []byte) (domain.Product, error) {
	if err := s.validateProduct(ctx, product); err != nil {
		return domain.Product{}, err
	}
	product.Image = image
	product.SizeStocks = product.NormalizedStocks()
	return s.deps.Products.Create(ctx, product)
}

// UpdateProduct replaces a product; a nil image keeps the stored one.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int, product domain.Product, image []byte) (domain.Product, error) {
	if err := s.validateProduct(ctx, product); err != nil {
		return domain.Product{}, err
	}
	current, err := s.deps.Products.GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, notFound("product", id, err)
	}
	product.ID = id
	product.Image = current.Image
	if image != nil {
		product.Image = image
	}
	product.SizeStocks = product.NormalizedStocks()
	updated, err := s.deps.Products.Update(ctx, product)
	return updated, notFound("product", id, err)
}

// DeleteProduct removes a product and its reviews.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int) error {
	if err := s.deps.Products.Delete(ctx, id); err != nil {
		return notFound("product", id, err)
	}
	return s.deps.Reviews.DeleteByProduct(ctx, id)
}

func (s *CatalogService) validateProduct(ctx context.Context, product domain.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return apperrors.NewValidationError("product name is required", nil)
	}
	if product.Price < 0 {
		return apperrors.NewValidationError("price must not be negative", map[string]any{"price": product.Price})
	}
	for size, qty := range product.SizeStocks {
		if qty < 0 {
			return apperrors.NewValidationError("stock must not be negative", map[string]any{"size": size})
		}
	}
	for _, categoryID := range product.CategoryIDs {
		if _, err := s.deps.Categories.GetByID(ctx, categoryID); err != nil {
			return apperrors.NewValidationError(fmt.Sprintf("unknown category %d", categoryID), nil)
		}
	}
	return nil
}

// Categories

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.deps.Categories.List(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id int) (domain.Category, error) {
	category, err := s.deps.Categories.GetByID(ctx, id)
	return category, notFound("category", id, err)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Category{}, apperrors.NewValidationError("category name is required", nil)
	}
	return s.deps.Categories.Create(ctx, domain.Category{Name: strings.TrimSpace(name)})
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int, name string) (domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Category{}, apperrors.NewValidationError("category name is required", nil)
	}
	updated, err := s.deps.Categories.Update(ctx, domain.Category{ID: id, Name: strings.TrimSpace(name)})
	return updated, notFound("category", id, err)
}

// CategoryProductCount counts products filed under the category.
func (s *CatalogService) CategoryProductCount(ctx context.Context, id int) (int, error) {
	if _, err := s.deps.Categories.GetByID(ctx, id); err != nil {
		return 0, notFound("category", id, err)
	}
	products, err := s.deps.Products.ListByCategory(ctx, id)
	return len(products), err
}

// DeleteCategory removes the category together with every product filed
// under it.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int) error {
	if _, err := s.deps.Categories.GetByID(ctx, id); err != nil {
		return notFound("category", id, err)
	}
	products, err := s.deps.Products.ListByCategory(ctx, id)
	if err != nil {
		return err
	}
	for _, product := range products {
		if err := s.DeleteProduct(ctx, product.ID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
	}
	s.logger.Info("category deleted", zap.Int("category_id", id), zap.Int("products_removed", len(products)))
	return notFound("category", id, s.deps.Categories.Delete(ctx, id))
}

// Orders

func (s *CatalogService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.deps.Orders.List(ctx)
}

func (s *CatalogService) GetOrder(ctx context.Context, id int) (domain.Order, error) {
	order, err := s.deps.Orders.GetByID(ctx, id)
	return order, notFound("order", id, err)
}

// UpdateOrder replaces the order's owner, date and state.
func (s *CatalogService) UpdateOrder(ctx context.Context, id int, order domain.Order) (domain.Order, error) {
	current, err := s.deps.Orders.GetByID(ctx, id)
	if err != nil {
		return domain.Order{}, notFound("order", id, err)
	}
	if order.State != "" {
		state, err := domain.ParseOrderState(string(order.State))
		if err != nil {
			return domain.Order{}, apperrors.NewValidationError(err.Error(), nil)
		}
		current.State = state
	}
	if order.UserID > 0 {
		current.UserID = order.UserID
	}
	if order.OrderID > 0 {
		current.OrderID = order.OrderID
	}
	if !order.Date.IsZero() {
		if order.Date.After(time.Now()) {
			return domain.Order{}, apperrors.NewValidationError("date must be in the past or present", nil)
		}
		current.Date = order.Date
	}
	updated, err := s.deps.Orders.Update(ctx, current)
	return updated, notFound("order", id, err)
}

// SetOrderState moves an order to state.
func (s *CatalogService) SetOrderState(ctx context.Context, id int, state string) (domain.Order, error) {
	parsed, err := domain.ParseOrderState(state)
	if err != nil {
		return domain.Order{}, apperrors.NewValidationError(err.Error(), nil)
	}
	return s.UpdateOrder(ctx, id, domain.Order{State: parsed})
}

// Reviews

func (s *CatalogService) ListReviews(ctx context.Context) ([]domain.Review, error) {
	return s.deps.Reviews.List(ctx)
}

func (s *CatalogService) DeleteReview(ctx context.Context, id int) error {
	return notFound("review", id, s.deps.Reviews.Delete(ctx, id))
}
