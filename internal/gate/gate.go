// Package gate owns the console's session: the stored token's lifecycle, the
// request/response middlewares that attach and police it, and the change
// notifications that tell rendered views to re-check access.
package gate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/admin-console/internal/auth"
	"github.com/spec-kit/admin-console/internal/domain"
	"github.com/spec-kit/admin-console/internal/events"
	"github.com/spec-kit/admin-console/internal/observability"
	"github.com/spec-kit/admin-console/internal/session"
	"github.com/spec-kit/admin-console/internal/transport"
	apperrors "github.com/spec-kit/admin-console/pkg/util"
)

// State is the session state seen by views.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// NavigationMode tells the navigator how to move.
type NavigationMode int

const (
	// NavigatePush moves to a view, keeping history.
	NavigatePush NavigationMode = iota
	// NavigateReplace moves to a view in place of the current one.
	NavigateReplace
	// NavigateReload restarts the client at a view, re-running the boot check.
	NavigateReload
)

func (m NavigationMode) String() string {
	switch m {
	case NavigateReplace:
		return "replace"
	case NavigateReload:
		return "reload"
	default:
		return "push"
	}
}

// Navigator moves the client between views.
type Navigator interface {
	Navigate(path string, mode NavigationMode)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string, mode NavigationMode)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(path string, mode NavigationMode) {
	f(path, mode)
}

// Options configures a Gate.
type Options struct {
	Store       session.Store
	Key         string
	Navigator   Navigator
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	BaseURL     string
	LoginPath   string
	LoginView   string
	DefaultView string
	Timeout     time.Duration
	// Base is the innermost transport; nil means http.DefaultTransport.
	Base http.RoundTripper
	// Outer middlewares run before the gate's own, outermost first.
	Outer []transport.Middleware
	Now   func() time.Time
}

// Gate is the single source of truth for whether this client holds an admin
// session.
type Gate struct {
	store       session.Store
	key         string
	navigator   Navigator
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	baseURL     string
	loginURL    string
	loginPath   string
	loginView   string
	defaultView string
	client      *http.Client
	now         func() time.Time

	// dropMu makes reading and clearing the token one step, so concurrent
	// rejections announce the lost session once.
	dropMu sync.Mutex

	mu        sync.Mutex
	nextID    uint64
	observers map[uint64]func(State)
}

// New builds a gate and the HTTP client whose pipeline it polices.
func New(opts Options) (*Gate, error) {
	if opts.Store == nil {
		return nil, errors.New("gate: store is required")
	}
	if opts.Navigator == nil {
		return nil, errors.New("gate: navigator is required")
	}
	loginURL, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + withDefault(opts.LoginPath, "/auth/login"))
	if err != nil {
		return nil, fmt.Errorf("gate: login url: %w", err)
	}

	g := &Gate{
		store:       opts.Store,
		key:         withDefault(opts.Key, "token"),
		navigator:   opts.Navigator,
		dispatcher:  opts.Dispatcher,
		logger:      observability.OrNop(opts.Logger).Named("gate"),
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		loginURL:    loginURL.String(),
		loginPath:   loginURL.Path,
		loginView:   withDefault(opts.LoginView, "/auth/login"),
		defaultView: withDefault(opts.DefaultView, "/products"),
		now:         opts.Now,
		observers:   make(map[uint64]func(State)),
	}
	if g.dispatcher == nil {
		g.dispatcher = events.NewInMemoryDispatcher()
	}
	if g.now == nil {
		g.now = time.Now
	}

	// Both triggers funnel into the same re-evaluation.
	g.dispatcher.Subscribe(events.EventTokenUpdated, g.reevaluate)
	g.dispatcher.Subscribe(events.EventStorageChanged, g.reevaluate)

	middlewares := append(append([]transport.Middleware{}, opts.Outer...), g.ObserveResponse(), g.AttachCredential())
	g.client = transport.NewClient(opts.Timeout, opts.Base, middlewares...)
	return g, nil
}

func withDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// HTTPClient returns the client every backend call must go through.
func (g *Gate) HTTPClient() *http.Client {
	return g.client
}

// Dispatcher returns the dispatcher carrying session events.
func (g *Gate) Dispatcher() events.Dispatcher {
	return g.dispatcher
}

// LoginView returns the public login route.
func (g *Gate) LoginView() string {
	return g.loginView
}

// DefaultView returns the first protected route after login.
func (g *Gate) DefaultView() string {
	return g.defaultView
}

// Start begins listening for token changes made by other clients sharing the
// store. Listening stops when ctx is done.
func (g *Gate) Start(ctx context.Context) error {
	return g.store.Watch(ctx, func(change session.Change) {
		if change.Key != g.key {
			return
		}
		reason := events.ReasonExternalSet
		if !change.Present {
			reason = events.ReasonExternalDrop
		}
		g.logger.Debug("token changed by another client",
			zap.Bool("present", change.Present), zap.String("origin", change.Origin))
		g.publish(context.Background(), events.New(events.EventStorageChanged, reason, events.StorageChangedPayload{
			Key:     change.Key,
			Present: change.Present,
			Origin:  change.Origin,
		}))
	})
}

// Subscribe registers fn to be called with the re-evaluated state whenever the
// token changes by any path.
func (g *Gate) Subscribe(fn func(State)) (unsubscribe func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	id := g.nextID
	g.observers[id] = fn
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.observers, id)
	}
}

func (g *Gate) reevaluate(ctx context.Context, _ events.Event) error {
	state := Anonymous
	if g.IsAuthenticated(ctx) {
		state = Authenticated
	}

	g.mu.Lock()
	observers := make([]func(State), 0, len(g.observers))
	for _, fn := range g.observers {
		observers = append(observers, fn)
	}
	g.mu.Unlock()

	for _, fn := range observers {
		fn(state)
	}
	return nil
}

func (g *Gate) publish(ctx context.Context, event events.Event) {
	if err := g.dispatcher.Publish(ctx, event); err != nil {
		g.logger.Warn("session event handler failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func (g *Gate) tokenUpdated(ctx context.Context, reason events.Reason, present bool, status int) {
	g.publish(ctx, events.New(events.EventTokenUpdated, reason, events.TokenUpdatedPayload{
		Present: present,
		Status:  status,
	}))
}

// token returns the stored token, or "" when none is stored or storage cannot
// be read.
func (g *Gate) token(ctx context.Context) string {
	value, err := g.store.Get(ctx, g.key)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			g.logger.Warn("reading session token failed", zap.Error(err))
		}
		return ""
	}
	return value
}

// IsAuthenticated reports whether a token is stored. Expiry is not checked
// here; the boot check and the response middleware own that.
func (g *Gate) IsAuthenticated(ctx context.Context) bool {
	return g.token(ctx) != ""
}

// Claims decodes the stored token without validating it. It returns
// session.ErrNotFound when no token is stored.
func (g *Gate) Claims(ctx context.Context) (*auth.Claims, error) {
	token := g.token(ctx)
	if token == "" {
		return nil, session.ErrNotFound
	}
	return auth.DecodePayload(token)
}

// CheckStoredTokenOnBoot drops a stored token that cannot be decoded or has
// expired and sends the client to the login view. It never fails.
func (g *Gate) CheckStoredTokenOnBoot(ctx context.Context) {
	token := g.token(ctx)
	if token == "" {
		return
	}

	claims, err := auth.DecodePayload(token)
	switch {
	case err != nil:
		g.logger.Info("discarding undecodable session token", zap.Error(err))
		g.dropAndRedirect(ctx, events.ReasonMalformed, 0)
	case claims.ExpiredAt(g.now()):
		g.logger.Info("discarding expired session token", zap.Time("exp", claims.ExpiresAt.Time))
		g.dropAndRedirect(ctx, events.ReasonBootCheck, 0)
	}
}

func (g *Gate) dropAndRedirect(ctx context.Context, reason events.Reason, status int) {
	g.dropMu.Lock()
	present := g.token(ctx) != ""
	if err := g.store.Clear(ctx, g.key); err != nil {
		g.logger.Warn("clearing session token failed", zap.Error(err))
	}
	g.dropMu.Unlock()
	if present {
		g.tokenUpdated(ctx, reason, false, status)
	}
	g.navigator.Navigate(g.loginView, NavigateReload)
}

// AttachCredential sets the bearer token on every outbound request when one is
// stored. Requests are cloned, never mutated.
func (g *Gate) AttachCredential() transport.Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return transport.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			token := g.token(req.Context())
			if token == "" {
				return next.RoundTrip(req)
			}
			out := req.Clone(req.Context())
			out.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(out)
		})
	}
}

// ObserveResponse inspects every completed exchange once. A 401 or 403 from
// any endpoint except login drops the token and reloads the client at the
// login view. The original response and error are returned untouched.
func (g *Gate) ObserveResponse() transport.Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return transport.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if resp == nil || !isAuthFailure(resp.StatusCode) {
				return resp, err
			}
			if req.URL.Path == g.loginPath {
				return resp, err
			}
			g.logger.Info("backend rejected session",
				zap.Int("status", resp.StatusCode),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path))
			g.dropAndRedirect(context.WithoutCancel(req.Context()), events.ReasonInvalidated, resp.StatusCode)
			return resp, err
		})
	}
}

func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// Logout drops the token and sends the client to the login view. The backend
// is not contacted.
func (g *Gate) Logout(ctx context.Context) {
	if err := g.store.Clear(ctx, g.key); err != nil {
		g.logger.Warn("clearing session token failed", zap.Error(err))
	}
	g.tokenUpdated(ctx, events.ReasonLogout, false, 0)
	g.navigator.Navigate(g.loginView, NavigatePush)
}

// Login exchanges credentials for a token. Only tokens carrying the admin role
// are kept; a successful login navigates to the default view.
func (g *Gate) Login(ctx context.Context, creds domain.Credentials) error {
	body, err := json.Marshal(creds)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.loginURL, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("login request failed", zap.Error(err))
		return apperrors.NewBackendUnreachable(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.NewBackendUnreachable(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewCredentialsRejected(apperrors.MessageFromPayload(payload), resp.StatusCode)
	}

	var result domain.LoginResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return apperrors.NewCredentialsRejected("", resp.StatusCode)
	}

	claims, err := auth.DecodePayload(result.Token)
	if err != nil {
		g.logger.Info("login returned an undecodable token", zap.Error(err))
		g.dropAndRedirect(ctx, events.ReasonMalformed, 0)
		return apperrors.NewMalformedToken(err)
	}
	if !claims.IsAdmin() {
		g.logger.Info("login rejected for non-admin account", zap.Strings("roles", claims.Roles))
		return apperrors.NewInsufficientPrivilege()
	}

	if err := g.store.Set(ctx, g.key, result.Token); err != nil {
		return apperrors.NewInternalError(fmt.Errorf("store session token: %w", err))
	}
	g.tokenUpdated(ctx, events.ReasonLogin, true, 0)
	g.navigator.Navigate(g.defaultView, NavigatePush)
	return nil
}
