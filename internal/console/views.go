package console

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/sourcegraph/conc/pool"

	"github.com/spec-kit/admin-console/internal/domain"
)

type view func(ctx context.Context, a *App, m *match) error

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "== %s ==\n", title)
}

func table(w io.Writer, header string, rows func(tw *tabwriter.Writer)) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	_ = tw.Flush()
}

func loginView(_ context.Context, a *App, _ *match) error {
	heading(a.out, "Admin sign in")
	fmt.Fprintln(a.out, "email:")
	fmt.Fprintln(a.out, "password:")
	if msg := a.LoginError(); msg != "" {
		fmt.Fprintf(a.out, "error: %s\n", msg)
	}
	return nil
}

func notFoundView(_ context.Context, a *App, _ *match) error {
	heading(a.out, "Not found")
	return nil
}

func productsView(ctx context.Context, a *App, _ *match) error {
	var (
		products   []domain.Product
		categories []domain.Category
	)
	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		products, err = a.api.Products.List(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		categories, err = a.api.Categories.List(ctx)
		return err
	})
	if err := p.Wait(); err != nil {
		return err
	}

	names := make(map[int]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	heading(a.out, "Products")
	table(a.out, "ID\tNAME\tPRICE\tSTOCK\tCATEGORIES", func(tw *tabwriter.Writer) {
		for _, prod := range products {
			cats := make([]string, 0, len(prod.CategoryIDs))
			for _, id := range prod.CategoryIDs {
				if name, ok := names[id]; ok {
					cats = append(cats, name)
				}
			}
			fmt.Fprintf(tw, "%d\t%s\t%.2f\t%d\t%s\n", prod.ID, prod.Name, prod.Price, prod.TotalStock(), strings.Join(cats, ", "))
		}
	})
	return nil
}

func productView(ctx context.Context, a *App, m *match) error {
	id, err := m.intParam("id")
	if err != nil {
		return err
	}
	product, err := a.api.Products.Get(ctx, id)
	if err != nil {
		return err
	}
	heading(a.out, "Product "+itoa(product.ID))
	fmt.Fprintf(a.out, "name: %s\ndescription: %s\nprice: %.2f\nquantity: %d\ncategories: %v\nimage: %d bytes\n",
		product.Name, product.Description, product.Price, product.Quantity, product.CategoryIDs, len(product.Image))
	stocks := product.NormalizedStocks()
	table(a.out, "SIZE\tSTOCK", func(tw *tabwriter.Writer) {
		for _, size := range domain.Sizes {
			fmt.Fprintf(tw, "%s\t%d\n", size, stocks[size])
		}
	})
	return nil
}

func productFormView(ctx context.Context, a *App, _ *match) error {
	categories, err := a.api.Categories.List(ctx)
	if err != nil {
		return err
	}
	heading(a.out, "New product")
	fmt.Fprintln(a.out, "fields: name description price quantity image")
	fmt.Fprintf(a.out, "sizes: %s\n", strings.Join(domain.Sizes, " "))
	table(a.out, "CATEGORY\tNAME", func(tw *tabwriter.Writer) {
		for _, c := range categories {
			fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
		}
	})
	return nil
}

func categoriesView(ctx context.Context, a *App, _ *match) error {
	categories, err := a.api.Categories.List(ctx)
	if err != nil {
		return err
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	heading(a.out, "Categories")
	table(a.out, "ID\tNAME", func(tw *tabwriter.Writer) {
		for _, c := range categories {
			fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
		}
	})
	return nil
}

func categoryFormView(_ context.Context, a *App, _ *match) error {
	heading(a.out, "New category")
	fmt.Fprintln(a.out, "fields: name")
	return nil
}

func categoryView(ctx context.Context, a *App, m *match) error {
	id, err := m.intParam("id")
	if err != nil {
		return err
	}
	category, err := a.api.Categories.Get(ctx, id)
	if err != nil {
		return err
	}
	count, err := a.api.Categories.ProductCount(ctx, id)
	if err != nil {
		return err
	}
	heading(a.out, "Category "+itoa(category.ID))
	fmt.Fprintf(a.out, "name: %s\nproducts: %d\n", category.Name, count)
	return nil
}

func usersView(ctx context.Context, a *App, m *match) error {
	users, err := a.api.Users.List(ctx)
	if err != nil {
		return err
	}
	users = FilterUsersByID(users, m.query.Get("id"))
	heading(a.out, "Users")
	table(a.out, "ID\tEMAIL\tGENDER\tROLE", func(tw *tabwriter.Writer) {
		for _, u := range users {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Email, u.Gender, u.Role)
		}
	})
	return nil
}

func userView(ctx context.Context, a *App, m *match) error {
	id, err := m.intParam("id")
	if err != nil {
		return err
	}
	user, err := a.api.Users.Get(ctx, id)
	if err != nil {
		return err
	}
	heading(a.out, "User "+itoa(user.ID))
	fmt.Fprintf(a.out, "email: %s\ngender: %s\nrole: %s\n", user.Email, user.Gender, user.Role)
	return nil
}

func ordersView(ctx context.Context, a *App, m *match) error {
	orders, err := a.api.Orders.List(ctx)
	if err != nil {
		return err
	}
	orders = ParseOrderQuery(m.query).Apply(orders)
	heading(a.out, "Orders")
	table(a.out, "ID\tORDER\tUSER\tDATE\tSTATE", func(tw *tabwriter.Writer) {
		for _, o := range orders {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\n", o.ID, o.OrderID, o.UserID, o.Date.DisplayDate(), o.State)
		}
	})
	return nil
}

func orderView(ctx context.Context, a *App, m *match) error {
	id, err := m.intParam("id")
	if err != nil {
		return err
	}
	order, err := a.api.Orders.Get(ctx, id)
	if err != nil {
		return err
	}
	heading(a.out, "Order "+itoa(order.ID))
	fmt.Fprintf(a.out, "order: %d\nuser: %d\ndate: %s\nstate: %s\n", order.OrderID, order.UserID, order.Date.DisplayDate(), order.State)
	states := make([]string, 0, len(domain.OrderStates))
	for _, s := range domain.OrderStates {
		states = append(states, string(s))
	}
	fmt.Fprintf(a.out, "states: %s\n", strings.Join(states, " "))
	return nil
}

func reviewsView(ctx context.Context, a *App, _ *match) error {
	reviews, err := a.api.Reviews.List(ctx)
	if err != nil {
		return err
	}
	heading(a.out, "Reviews")
	table(a.out, "ID\tPRODUCT\tUSER\tRATING\tCOMMENT", func(tw *tabwriter.Writer) {
		for _, r := range reviews {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%.1f\t%s\n", r.ID, r.ProductID, r.UserID, r.Rating, r.Comment)
		}
	})
	return nil
}
