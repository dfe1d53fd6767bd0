package console

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httptransport "github.com/spec-kit/admin-console/internal/api/http"
	"github.com/spec-kit/admin-console/internal/auth"
	"github.com/spec-kit/admin-console/internal/config"
	"github.com/spec-kit/admin-console/internal/domain"
	"github.com/spec-kit/admin-console/internal/gate"
	"github.com/spec-kit/admin-console/internal/session"
	apperrors "github.com/spec-kit/admin-console/pkg/util"
)

var adminCreds = domain.Credentials{Email: "admin@example.com", Password: "admin"}

func startBackend(t *testing.T) string {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Name: "admin-console", Version: "test"},
		Auth: config.AuthConfig{
			JWTSecret:             "console-secret",
			AccessTokenTTLMinutes: 10,
			BcryptCost:            4,
			SeedAdminEmail:        "admin@example.com",
			SeedAdminPassword:     "admin",
			SeedUserEmail:         "user@example.com",
			SeedUserPassword:      "user",
		},
	}
	app, err := httptransport.NewApp(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return srv.URL
}

type client struct {
	app   *App
	store session.Store
	out   *bytes.Buffer
}

func newClient(t *testing.T, baseURL string, store session.Store) *client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	out := &bytes.Buffer{}
	app, err := New(ctx, Options{
		Gate: gate.Options{Store: store, BaseURL: baseURL},
		Out:  out,
	})
	require.NoError(t, err)
	require.NoError(t, app.Start())
	t.Cleanup(app.Close)
	return &client{app: app, store: store, out: out}
}

func forgeToken(t *testing.T, exp time.Time, roles ...string) string {
	t.Helper()
	claims := &auth.Claims{
		Roles:            roles,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-backend-secret"))
	require.NoError(t, err)
	return token
}

func stored(t *testing.T, store session.Store) bool {
	t.Helper()
	_, err := store.Get(context.Background(), "token")
	return err == nil
}

func TestEmptyStorageRedirectsHomeToLogin(t *testing.T) {
	c := newClient(t, startBackend(t), session.NewMemoryStore())

	c.app.Open("/")

	assert.Equal(t, "/auth/login", c.app.Location())
	assert.Equal(t, []string{"/auth/login"}, c.app.History(), "the guard replaces, it does not push")
	assert.Contains(t, c.out.String(), "Admin sign in")
}

func TestLoginAsAdminReachesProducts(t *testing.T) {
	c := newClient(t, startBackend(t), session.NewMemoryStore())
	c.app.Open("/auth/login")

	require.NoError(t, c.app.Login(context.Background(), adminCreds))

	assert.Equal(t, "/products", c.app.Location())
	assert.True(t, stored(t, c.store))
	assert.Contains(t, c.out.String(), "Basic Tee")
	assert.Contains(t, c.out.String(), "T-Shirts")
}

func TestLoginFailuresStayOnForm(t *testing.T) {
	baseURL := startBackend(t)

	cases := []struct {
		name  string
		creds domain.Credentials
		msg   string
	}{
		{"non admin", domain.Credentials{Email: "user@example.com", Password: "user"}, apperrors.MessageInsufficientPrivilege},
		{"bad password", domain.Credentials{Email: "admin@example.com", Password: "wrong"}, "Bad credentials"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(t, baseURL, session.NewMemoryStore())
			c.app.Open("/auth/login")

			err := c.app.Login(context.Background(), tc.creds)
			require.Error(t, err)
			assert.Equal(t, tc.msg, c.app.LoginError())
			assert.Equal(t, "/auth/login", c.app.Location())
			assert.False(t, stored(t, c.store))
			assert.Contains(t, c.out.String(), "error: "+tc.msg)
		})
	}
}

func TestExpiredTokenDroppedOnOpen(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "token", forgeToken(t, time.Now().Add(-time.Minute), auth.RoleAdmin)))
	c := newClient(t, startBackend(t), store)

	c.app.Open("/orders")

	assert.False(t, stored(t, store))
	assert.Equal(t, "/auth/login", c.app.Location())
	assert.NotContains(t, c.out.String(), "== Orders ==")
}

func TestRevokedTokenRedirectsSilently(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "token", forgeToken(t, time.Now().Add(time.Hour), auth.RoleAdmin)))
	c := newClient(t, startBackend(t), store)

	c.app.Open("/users")

	assert.False(t, stored(t, store))
	assert.Equal(t, "/auth/login", c.app.Location())
	assert.NotContains(t, c.out.String(), "error:")
}

func TestLogoutInOneClientRedirectsTheOther(t *testing.T) {
	baseURL := startBackend(t)
	shared := session.NewMemoryBackend()
	tabA := newClient(t, baseURL, shared.Handle())
	tabB := newClient(t, baseURL, shared.Handle())

	tabA.app.Open("/auth/login")
	require.NoError(t, tabA.app.Login(context.Background(), adminCreds))

	tabB.app.Open("/orders")
	require.Equal(t, "/orders", tabB.app.Location())
	assert.Contains(t, tabB.out.String(), "== Orders ==")

	tabA.app.Logout(context.Background())

	assert.Equal(t, "/auth/login", tabA.app.Location())
	assert.Equal(t, "/auth/login", tabB.app.Location())
	assert.False(t, tabB.app.Gate().IsAuthenticated(context.Background()))
}

func TestViewsAfterLogin(t *testing.T) {
	c := newClient(t, startBackend(t), session.NewMemoryStore())
	c.app.Open("/auth/login")
	require.NoError(t, c.app.Login(context.Background(), adminCreds))

	cases := []struct {
		path string
		want string
	}{
		{"/orders?state=pending", "PENDING"},
		{"/categories", "Hoodies"},
		{"/categories/1", "products: 2"},
		{"/products/new", "sizes: XS S M L XL XXL 3XL 4XL 5XL 6XL"},
		{"/reviews", "Fits well"},
		{"/users?id=1", "admin@example.com"},
		{"/products/abc", "error: invalid id"},
		{"/nowhere", "== Not found =="},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			c.out.Reset()
			c.app.Navigate(tc.path, gate.NavigatePush)
			assert.Equal(t, tc.path, c.app.Location())
			assert.Contains(t, c.out.String(), tc.want)
		})
	}

	c.app.Navigate("/orders?state=pending", gate.NavigatePush)
	c.out.Reset()
	c.app.Navigate("/orders?state=shipped", gate.NavigatePush)
	assert.Contains(t, c.out.String(), "SHIPPED")
	assert.NotContains(t, c.out.String(), "PENDING\n")
}

func TestOrderQuery(t *testing.T) {
	day := func(d int) domain.Timestamp {
		return domain.Timestamp{Time: time.Date(2025, time.June, d, 12, 0, 0, 0, time.UTC)}
	}
	orders := []domain.Order{
		{ID: 2, Date: day(3), State: domain.OrderStateShipped},
		{ID: 1, Date: day(12), State: domain.OrderStatePending},
		{ID: 3, Date: day(1), State: domain.OrderStatePending},
	}

	q := OrderQuery{State: "pending"}
	got := q.Apply(orders)
	require.Len(t, got, 2)

	q = OrderQuery{DateContains: "6/12"}
	got = q.Apply(orders)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)

	q = OrderQuery{DateContains: "6/1/2025"}
	got = q.Apply(orders)
	require.Len(t, got, 1, "dates are shown without zero padding")
	assert.Equal(t, 3, got[0].ID)
	assert.Empty(t, OrderQuery{DateContains: "06/01"}.Apply(orders))

	q = OrderQuery{}
	q.Toggle(SortByID)
	assert.False(t, q.Desc)
	got = q.Apply(orders)
	assert.Equal(t, []int{1, 2, 3}, ids(got))

	q.Toggle(SortByID)
	assert.True(t, q.Desc)
	assert.Equal(t, []int{3, 2, 1}, ids(q.Apply(orders)))

	q.Toggle(SortDate)
	assert.False(t, q.Desc)
	assert.Equal(t, []int{3, 2, 1}, ids(q.Apply(orders)))

	assert.Equal(t, []int{2, 1, 3}, ids(OrderQuery{}.Apply(orders)), "no sort keeps backend order")
}

func TestFilterUsersByID(t *testing.T) {
	users := []domain.User{{ID: 1}, {ID: 12}, {ID: 3}}
	assert.Len(t, FilterUsersByID(users, ""), 3)
	assert.Len(t, FilterUsersByID(users, "1"), 2)
	assert.Len(t, FilterUsersByID(users, "3"), 1)
}

func ids(orders []domain.Order) []int {
	out := make([]int, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}
