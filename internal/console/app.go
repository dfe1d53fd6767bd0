// Package console is the admin client shell: it owns the current location,
// routes it to a view, and keeps protected views behind the session gate.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/admin-console/internal/backend"
	"github.com/spec-kit/admin-console/internal/domain"
	"github.com/spec-kit/admin-console/internal/gate"
	"github.com/spec-kit/admin-console/internal/observability"
	apperrors "github.com/spec-kit/admin-console/pkg/util"
)

// Options configures an App.
type Options struct {
	// Gate is passed to gate.New with the App installed as its Navigator.
	Gate   gate.Options
	Out    io.Writer
	Logger *zap.Logger
}

type navigation struct {
	path string
	mode gate.NavigationMode
}

// App renders one client context. Navigations are queued and applied one at
// a time, so a redirect requested while a view renders runs after it.
type App struct {
	ctx    context.Context
	gate   *gate.Gate
	api    *backend.Client
	out    io.Writer
	logger *zap.Logger
	router chi.Router

	mu          sync.Mutex
	location    string
	history     []string
	queue       []navigation
	draining    bool
	loginError  string
	unsubscribe func()
}

// New builds the app, its session gate and the backend client sharing the
// gate's HTTP pipeline. ctx bounds every request the app makes.
func New(ctx context.Context, opts Options) (*App, error) {
	a := &App{
		ctx:    ctx,
		out:    opts.Out,
		logger: observability.OrNop(opts.Logger).Named("console"),
	}
	if a.out == nil {
		a.out = io.Discard
	}

	gateOpts := opts.Gate
	gateOpts.Navigator = a
	if gateOpts.Logger == nil {
		gateOpts.Logger = opts.Logger
	}
	g, err := gate.New(gateOpts)
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	a.gate = g
	a.api = backend.New(g.HTTPClient(), gateOpts.BaseURL, opts.Logger)
	a.router = a.routes()
	a.unsubscribe = g.Subscribe(a.onSessionChange)
	return a, nil
}

// Gate returns the session gate.
func (a *App) Gate() *gate.Gate { return a.gate }

// API returns the backend client.
func (a *App) API() *backend.Client { return a.api }

// Start listens for session changes made by other client contexts.
func (a *App) Start() error {
	return a.gate.Start(a.ctx)
}

// Close stops reacting to session changes.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// Open loads path as a fresh page: the stored token is checked first.
func (a *App) Open(path string) {
	a.Navigate(path, gate.NavigateReload)
}

// Location returns the current path.
func (a *App) Location() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.location
}

// History returns the visited locations, oldest first.
func (a *App) History() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.history...)
}

// LoginError returns the message shown on the login form, if any.
func (a *App) LoginError() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loginError
}

// Navigate implements gate.Navigator.
func (a *App) Navigate(path string, mode gate.NavigationMode) {
	a.mu.Lock()
	a.queue = append(a.queue, navigation{path: path, mode: mode})
	if a.draining {
		a.mu.Unlock()
		return
	}
	a.draining = true
	a.mu.Unlock()

	for {
		a.mu.Lock()
		if len(a.queue) == 0 {
			a.draining = false
			a.mu.Unlock()
			return
		}
		next := a.queue[0]
		a.queue = a.queue[1:]
		a.mu.Unlock()

		a.apply(next)
	}
}

func (a *App) apply(nav navigation) {
	a.mu.Lock()
	if nav.mode != gate.NavigateReload && nav.path == a.location {
		a.mu.Unlock()
		return
	}
	switch nav.mode {
	case gate.NavigateReplace:
		if n := len(a.history); n > 0 {
			a.history[n-1] = nav.path
		} else {
			a.history = append(a.history, nav.path)
		}
	case gate.NavigateReload:
		a.history = []string{nav.path}
	default:
		a.history = append(a.history, nav.path)
	}
	a.location = nav.path
	a.mu.Unlock()

	a.logger.Debug("navigate", zap.String("path", nav.path), zap.Stringer("mode", nav.mode))
	if nav.mode == gate.NavigateReload {
		a.gate.CheckStoredTokenOnBoot(a.ctx)
	}
	a.render(nav.path)
}

// onSessionChange re-checks the current location whenever the token changes
// by any path, local or from another client context.
func (a *App) onSessionChange(state gate.State) {
	if state == gate.Authenticated {
		return
	}
	location := a.Location()
	if location == "" || a.isPublic(location) {
		return
	}
	a.Navigate(a.gate.LoginView(), gate.NavigateReplace)
}

func (a *App) isPublic(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return u.Path == a.gate.LoginView()
}

func (a *App) render(location string) {
	m, err := a.resolve(location)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	if m.redirect != "" {
		a.Navigate(m.redirect, gate.NavigateReplace)
		return
	}
	if err := m.view(a.ctx, a, m); err != nil {
		a.showError(err)
	}
}

// showError prints err unless it is a session failure; those were already
// handled by clearing the token and redirecting.
func (a *App) showError(err error) {
	if apperrors.IsSessionError(err) || errors.Is(err, context.Canceled) {
		a.logger.Debug("view error suppressed", zap.Error(err))
		return
	}
	fmt.Fprintf(a.out, "error: %s\n", apperrors.ToDomainError(err).Message)
}

// Login submits the login form. Credential and privilege failures are kept
// as the form's inline message and re-rendered.
func (a *App) Login(ctx context.Context, creds domain.Credentials) error {
	a.mu.Lock()
	a.loginError = ""
	a.mu.Unlock()

	err := a.gate.Login(ctx, creds)
	if err == nil {
		return nil
	}
	if msg, ok := apperrors.UserMessage(err); ok {
		a.mu.Lock()
		a.loginError = msg
		a.mu.Unlock()
		if a.isPublic(a.Location()) {
			a.Navigate(a.gate.LoginView(), gate.NavigateReload)
		}
	}
	return err
}

// Logout ends the session.
func (a *App) Logout(ctx context.Context) {
	a.gate.Logout(ctx)
}

// match is filled by the route table for one location.
type match struct {
	view     view
	params   map[string]string
	query    url.Values
	redirect string
}

type matchKey struct{}

func (m *match) intParam(name string) (int, error) {
	id, err := strconv.Atoi(m.params[name])
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid %s %q", name, m.params[name]), nil)
	}
	return id, nil
}

func (a *App) resolve(location string) (*match, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", location, err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	m := &match{query: u.Query(), params: map[string]string{}}
	ctx := context.WithValue(a.ctx, matchKey{}, m)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	a.router.ServeHTTP(discardResponse{}, req)
	if m.view == nil && m.redirect == "" {
		m.view = notFoundView
	}
	return m, nil
}

// discardResponse satisfies http.ResponseWriter for route resolution; views
// write to the app's output, not to the response.
type discardResponse struct{}

func (discardResponse) Header() http.Header         { return http.Header{} }
func (discardResponse) Write(b []byte) (int, error) { return len(b), nil }
func (discardResponse) WriteHeader(int)             {}

func itoa(n int) string { return strconv.Itoa(n) }
