package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spec-kit/admin-console/internal/backend"
	"github.com/spec-kit/admin-console/internal/domain"
	apperrors "github.com/spec-kit/admin-console/pkg/util"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func idArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, apperrors.NewValidationError("missing id argument", nil)
	}
	id, err := strconv.Atoi(args[i])
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid id %q", args[i]), nil)
	}
	return id, nil
}

func subcommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "list", nil
	}
	return args[0], args[1:]
}

func unknownAction(resource, action string) error {
	return apperrors.NewValidationError(fmt.Sprintf("unknown %s action %q", resource, action), nil)
}

func (rt *runtime) users(ctx context.Context, args []string) error {
	action, rest := subcommand(args)
	api := rt.app.API()
	switch action {
	case "list":
		path := "/users"
		if len(rest) > 0 {
			path += "?id=" + rest[0]
		}
		rt.app.Open(path)
		return nil
	case "get":
		id, err := idArg(rest, 0)
		if err != nil {
			return err
		}
		rt.app.Open("/users/" + strconv.Itoa(id))
		return nil
	case "create", "update":
		fs := flag.NewFlagSet("users "+action, flag.ContinueOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		gender := fs.String("gender", string(domain.GenderMale), "MALE or FEMALE")
		role := fs.String("role", string(domain.UserRoleUser), "USER or ADMIN")
		var id int
		if action == "update" {
			var err error
			if id, err = idArg(rest, 0); err != nil {
				return err
			}
			rest = rest[1:]
		}
		if err := fs.Parse(rest); err != nil {
			return err
		}
		user := domain.User{
			Email:    *email,
			Password: *password,
			Gender:   domain.Gender(strings.ToUpper(*gender)),
			Role:     domain.UserRole(strings.ToUpper(*role)),
		}
		var (
			out domain.User
			err error
		)
		if action == "create" {
			out, err = api.Users.Create(ctx, user)
		} else {
			out, err = api.Users.Update(ctx, id, user)
		}
		if err != nil {
			return err
		}
		return printJSON(out)
	case "delete":
		id, err := idArg(rest, 0)
		if err != nil {
			return err
		}
		return api.Users.Delete(ctx, id)
	default:
		return unknownAction("users", action)
	}
}

func (rt *runtime) products(ctx context.Context, args []string) error {
	action, rest := subcommand(args)
	api := rt.app.API()
	switch action {
	case "list":
		rt.app.Open("/products")
		return nil
	case "get":
		id, err := idArg(rest, 0)
		if err != nil {
			return err
		}
		rt.app.Open("/products/" + strconv.Itoa(id))
		return nil
	case "create", "update":
		var id int
		if action == "update" {
			var err error
			if id, err = idArg(rest, 0); err != nil {
				return err
			}
			rest = rest[1:]
		}
		product, image, err := parseProductFlags(action, rest)
		if err != nil {
			return err
		}
		var out domain.Product
		if action == "create" {
			out, err = api.Products.Create(ctx, product, image)
		} else {
			out, err = api.Products.Update(ctx, id, product, image)
		}
		if err != nil {
			return err
		}
		out.Image = nil
		return printJSON(out)
	case "delete":
		id, err := idArg(rest, 0)
		if err != nil {
			return err
		}
		return api.Products.Delete(ctx, id)
	default:
		return unknownAction("products", action)
	}
}

// parseProductFlags reads product fields. Stocks are given as
// -stock M=4 -stock XL=1 and categories as -category 1 -category 2.
func parseProductFlags(action string, args []string) (domain.Product, *backend.Image, error) {
	fs := flag.NewFlagSet("products "+action, flag.ContinueOnError)
	name := fs.String("name", "", "product name")
	description := fs.String("description", "", "product description")
	price := fs.Float64("price", 0, "unit price")
	quantity := fs.Int("quantity", 0, "total quantity")
	imagePath := fs.String("image", "", "path to an image file")
	var stocks, categories multiFlag
	fs.Var(&stocks, "stock", "SIZE=QTY, repeatable")
	fs.Var(&categories, "category", "category id, repeatable")
	if err := fs.Parse(args); err != nil {
		return domain.Product{}, nil, err
	}

	product := domain.Product{
		Name:        *name,
		Description: *description,
		Price:       *price,
		Quantity:    *quantity,
		SizeStocks:  map[string]int{},
	}
	for _, raw := range categories {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Product{}, nil, apperrors.NewValidationError(fmt.Sprintf("invalid category %q", raw), nil)
		}
		product.CategoryIDs = append(product.CategoryIDs, id)
	}
	for _, raw := range stocks {
		size, qty, ok := strings.Cut(raw, "=")
		n, err := strconv.Atoi(qty)
		if !ok || err != nil {
			return domain.Product{}, nil, apperrors.NewValidationError(fmt.Sprintf("invalid stock %q", raw), nil)
		}
		product.SizeStocks[strings.ToUpper(size)] = n
	}

	if *imagePath == "" {
		return product, nil, nil
	}
	data, err := os.ReadFile(*imagePath)
	if err != nil {
		return domain.Product{}, nil, fmt.Errorf("read image: %w", err)
	}
	return product, &backend.Image{Filename: filepath.Base(*imagePath), Data: data}, nil
}

type multiFlag []string

func (m *multiFlag) String() string     { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error { *m = append(*m, v); return nil }

func (rt *runtime) categories(ctx context.Context, args []string) error {
	action, rest := subcommand(args)
	api := rt.app.API()
	switch action {
	case "list":
		rt.app.Open("/categories")
		return nil
	case "get":
		id, err := idArg(rest, 0)
		if err != nil {
			return err
		}
		rt.app.Open("/categories/" + strconv.Itoa(id))
		return nil
	case "create":
		if len(rest) != 1 {
			return apperrors.NewValidationError("create takes a name", nil)
		}
		out, err := api.Categories.Create(ctx, rest[0])
		if err != nil {
			return err
		}
		return printJSON(out)
	case "rename":
		id, err := idArg(rest, 0)
		if err != nil {
			return err
		}
		if len(rest) != 2 {
			return apperrors.NewValidationError("rename takes an id and a name", nil)
		}
		out, err := api.Categories.Update(ctx, id, rest[1])
		if err != nil {
			return err
		}
		return printJSON(out)
	case "count":
		id, err := idArg(rest, 0)
		if err != nil {
			return err
		}
		n, err := api.Categories.ProductCount(ctx, id)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	case "delete":
		id, err := idArg(rest, 0)
		if err != nil {
			return err
		}
		return api.Categories.Delete(ctx, id)
	default:
		return unknownAction("categories", action)
	}
}

func (rt *runtime) orders(ctx context.Context, args []string) error {
	action, rest := subcommand(args)
	api := rt.app.API()
	switch action {
	case "list":
		fs := flag.NewFlagSet("orders list", flag.ContinueOnError)
		date := fs.String("date", "", "date substring, M/D/YYYY")
		state := fs.String("state", "", "order state")
		sortKey := fs.String("sort", "", "id or date")
		desc := fs.Bool("desc", false, "sort descending")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		q := make([]string, 0, 4)
		if *date != "" {
			q = append(q, "date="+*date)
		}
		if *state != "" {
			q = append(q, "state="+*state)
		}
		if *sortKey != "" {
			q = append(q, "sort="+*sortKey)
		}
		if *desc {
			q = append(q, "dir=desc")
		}
		path := "/orders"
		if len(q) > 0 {
			path += "?" + strings.Join(q, "&")
		}
		rt.app.Open(path)
		return nil
	case "get":
		id, err := idArg(rest, 0)
		if err != nil {
			return err
		}
		rt.app.Open("/orders/" + strconv.Itoa(id))
		return nil
	case "update":
		id, err := idArg(rest, 0)
		if err != nil {
			return err
		}
		current, err := api.Orders.Get(ctx, id)
		if err != nil {
			return err
		}
		fs := flag.NewFlagSet("orders update", flag.ContinueOnError)
		orderID := fs.Int("order", current.OrderID, "order number")
		userID := fs.Int("user", current.UserID, "user id")
		state := fs.String("state", string(current.State), "order state")
		if err := fs.Parse(rest[1:]); err != nil {
			return err
		}
		parsed, err := domain.ParseOrderState(*state)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		current.OrderID, current.UserID, current.State = *orderID, *userID, parsed
		out, err := api.Orders.Update(ctx, id, current)
		if err != nil {
			return err
		}
		return printJSON(out)
	case "state":
		id, err := idArg(rest, 0)
		if err != nil {
			return err
		}
		if len(rest) != 2 {
			return apperrors.NewValidationError("state takes an id and a state", nil)
		}
		parsed, err := domain.ParseOrderState(rest[1])
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		out, err := api.Orders.SetState(ctx, id, parsed)
		if err != nil {
			return err
		}
		return printJSON(out)
	default:
		return unknownAction("orders", action)
	}
}

func (rt *runtime) reviews(ctx context.Context, args []string) error {
	action, rest := subcommand(args)
	switch action {
	case "list":
		rt.app.Open("/reviews")
		return nil
	case "delete":
		id, err := idArg(rest, 0)
		if err != nil {
			return err
		}
		return rt.app.API().Reviews.Delete(ctx, id)
	default:
		return unknownAction("reviews", action)
	}
}
