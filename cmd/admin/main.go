package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/admin-console/internal/config"
	"github.com/spec-kit/admin-console/internal/console"
	"github.com/spec-kit/admin-console/internal/domain"
	"github.com/spec-kit/admin-console/internal/events"
	"github.com/spec-kit/admin-console/internal/gate"
	"github.com/spec-kit/admin-console/internal/observability"
	"github.com/spec-kit/admin-console/internal/persistence"
	"github.com/spec-kit/admin-console/internal/service"
	"github.com/spec-kit/admin-console/internal/session"
	"github.com/spec-kit/admin-console/internal/transport"
	"github.com/spec-kit/admin-console/internal/worker"
	apperrors "github.com/spec-kit/admin-console/pkg/util"
)

const usage = `usage: admin <command> [args]

session:
  login -email E -password P   sign in as an administrator
  logout                       drop the stored session
  status                       show session state, request metrics and recent events
  open <path>                  render one view, e.g. /orders?state=pending&sort=date&dir=desc
  watch <path>                 render a view and follow session changes until interrupted

resources:
  users list|get|create|update|delete
  products list|get|create|update|delete
  categories list|get|create|rename|count|delete
  orders list|get|update|state
  reviews list|delete
`

type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	store  session.Store
	app    *console.App
}

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := persistence.OpenSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open session store", zap.Error(err))
	}
	defer closeStore()

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger, 0)
	metrics := observability.NewMetrics()
	activity := worker.StartActivityRecorder(store, cfg.Session.ActivityKey, notifications, metrics, logger)

	app, err := console.New(ctx, console.Options{
		Gate: gate.Options{
			Store:       store,
			Key:         cfg.Session.Key,
			Dispatcher:  dispatcher,
			Logger:      logger,
			BaseURL:     cfg.Backend.BaseURL,
			LoginPath:   cfg.Backend.LoginPath,
			LoginView:   cfg.App.LoginView,
			DefaultView: cfg.App.DefaultView,
			Timeout:     cfg.Backend.RequestTimeout(),
			Outer: []transport.Middleware{
				transport.RequestID(),
				transport.Logging(logger, metrics),
				transport.RateLimit(cfg.Backend.RateLimitRPS, cfg.Backend.RateLimitBurst),
			},
		},
		Out:    os.Stdout,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("failed to build console", zap.Error(err))
	}
	defer app.Close()

	rt := &runtime{cfg: cfg, logger: logger, store: store, app: app}
	err = rt.run(ctx, flag.Arg(0), flag.Args()[1:])
	// watch ends on an interrupt, so the flush must not inherit the cancelled context.
	if flushErr := activity.Flush(context.WithoutCancel(ctx)); flushErr != nil {
		logger.Warn("failed to record activity", zap.Error(flushErr))
	}
	if err != nil {
		if msg, ok := apperrors.UserMessage(err); ok {
			fmt.Fprintln(os.Stderr, "error:", msg)
		}
		logger.Debug("command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		app.Close()
		closeStore()
		os.Exit(1)
	}
}

func (rt *runtime) run(ctx context.Context, cmd string, args []string) error {
	// Every invocation is a fresh page load, except status which only reports.
	if cmd != "status" {
		rt.app.Gate().CheckStoredTokenOnBoot(ctx)
	}
	switch cmd {
	case "login":
		return rt.login(ctx, args)
	case "logout":
		rt.app.Logout(ctx)
		return nil
	case "status":
		return rt.status(ctx)
	case "open":
		return rt.open(args)
	case "watch":
		return rt.watch(ctx, args)
	case "users":
		return rt.users(ctx, args)
	case "products":
		return rt.products(ctx, args)
	case "categories":
		return rt.categories(ctx, args)
	case "orders":
		return rt.orders(ctx, args)
	case "reviews":
		return rt.reviews(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (rt *runtime) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", os.Getenv("ADMIN_EMAIL"), "account email")
	password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rt.app.Open(rt.app.Gate().LoginView())
	return rt.app.Login(ctx, domain.Credentials{Email: *email, Password: *password})
}

func (rt *runtime) status(ctx context.Context) error {
	token, err := rt.app.Gate().Claims(ctx)
	switch {
	case err != nil:
		fmt.Println("session: anonymous")
	case token.ExpiredAt(time.Now()):
		fmt.Printf("session: expired at %s\n", token.ExpiresAt.Time.Format(time.RFC3339))
	default:
		fmt.Printf("session: authenticated as %s (roles %v) until %s\n",
			token.Email, token.Roles, token.ExpiresAt.Time.Format(time.RFC3339))
	}

	activity, err := worker.LoadActivity(ctx, rt.store, rt.cfg.Session.ActivityKey)
	if err != nil {
		return err
	}
	snap := activity.Metrics
	if total := snap.Total(); total > 0 {
		fmt.Printf("requests: %d, average latency %s\n", total, snap.AverageLatency)
	}
	for _, c := range snap.Requests {
		fmt.Printf("request %s %d\n", c.Key, c.Value)
	}
	for _, c := range snap.Errors {
		fmt.Printf("error %s %d\n", c.Key, c.Value)
	}
	for _, ev := range activity.Events {
		fmt.Printf("event %s %s %s\n", ev.Timestamp.Format(time.RFC3339), ev.Type, ev.Reason)
	}
	return nil
}

func (rt *runtime) open(args []string) error {
	if len(args) != 1 {
		return apperrors.NewValidationError("open takes exactly one path", nil)
	}
	rt.app.Open(args[0])
	return nil
}

func (rt *runtime) watch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return apperrors.NewValidationError("watch takes exactly one path", nil)
	}
	if err := rt.app.Start(); err != nil {
		return fmt.Errorf("watch session store: %w", err)
	}
	rt.app.Open(args[0])
	<-ctx.Done()
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}
