package printshop

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	core "github.com/goliatone/go-printshop/components/printshop"
	"github.com/goliatone/go-printshop/components/printshop/commands"
	"github.com/goliatone/go-printshop/components/printshop/fiberhttp"
	"github.com/goliatone/go-printshop/components/printshop/gorouter"
	"github.com/goliatone/go-printshop/components/printshop/httpapi"
	"github.com/goliatone/go-printshop/components/printshop/queries"
	"go.uber.org/zap"
)

// Service exposes the underlying components/printshop.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Fixtures re-export for convenience.
type Fixtures = core.Fixtures

// Credentials re-export for convenience.
type Credentials = core.Credentials

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// Config collects everything needed to assemble the application.
type Config struct {
	Credentials    Credentials
	Fixtures       *Fixtures
	SubmitDelay    time.Duration
	ChartTheme     string
	AssetsHost     string
	ChartCacheTTL  time.Duration
	MaxUploadBytes int64
	SessionTTL     time.Duration
	MaxSessions    int
	Logger         *zap.Logger
	Renderer       core.Renderer
}

// App is the assembled print shop: handlers plus the shared state they own.
type App struct {
	Handlers   *httpapi.Handlers
	Service    *Service
	Sessions   *core.InMemorySessionStore
	Submitters *core.Submitters
	Toasts     *core.ToastBroadcaster
	Logger     *zap.Logger

	repo   *core.StaticRepository
	charts *core.EChartsProvider
}

// New wires repository, panels, auth, validation, submitters and toasts.
// A zero SubmitDelay submits instantly.
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	telemetry := core.NewZapTelemetry(logger.Named("telemetry"))

	fixtures := cfg.Fixtures
	if fixtures == nil {
		fixtures = core.DefaultFixtures()
	}
	if err := fixtures.Validate(); err != nil {
		return nil, err
	}

	chartOpts := []core.EChartsProviderOption{
		core.WithChartTheme(cfg.ChartTheme),
		core.WithChartAssetsHost(cfg.AssetsHost),
	}
	if cfg.ChartCacheTTL > 0 {
		chartOpts = append(chartOpts, core.WithChartCache(core.NewChartCache(cfg.ChartCacheTTL)))
	} else {
		chartOpts = append(chartOpts, core.WithChartCache(nil))
	}
	repo := core.NewStaticRepository(fixtures)
	charts := core.NewEChartsProvider("bar", chartOpts...)
	reg, err := core.NewDefaultRegistry(repo, charts)
	if err != nil {
		return nil, fmt.Errorf("printshop: build registry: %w", err)
	}
	service := core.NewService(core.Options{Providers: reg, Telemetry: telemetry})

	renderer := cfg.Renderer
	if renderer == nil {
		renderer, err = core.NewTemplateRenderer()
		if err != nil {
			return nil, fmt.Errorf("printshop: load templates: %w", err)
		}
	}

	sessions := core.NewInMemorySessionStore(
		core.WithSessionTTL(cfg.SessionTTL),
		core.WithMaxSessions(cfg.MaxSessions),
	)
	auth := core.NewAuthenticator(cfg.Credentials, sessions, telemetry)
	toasts := core.NewToastBroadcaster()
	submitters := core.NewSubmitters(core.SubmitterOptions{
		Delay:     core.TimerDelay(cfg.SubmitDelay),
		Notifier:  toasts,
		Logger:    logger.Named("orders"),
		Telemetry: telemetry,
	})

	handlers := &httpapi.Handlers{
		Sessions:       sessions,
		Controller:     core.NewController(core.ControllerOptions{Service: service, Renderer: renderer}),
		Login:          commands.NewLoginCommand(auth, telemetry),
		Logout:         commands.NewLogoutCommand(auth, telemetry),
		Submit:         commands.NewSubmitOrderCommand(core.NewOrderValidator(), submitters, telemetry),
		Dashboard:      queries.NewDashboardQuery(service),
		OrderForm:      queries.NewOrderFormQuery(submitters),
		Toasts:         toasts,
		Logger:         logger.Named("http"),
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	return &App{
		Handlers:   handlers,
		Service:    service,
		Sessions:   sessions,
		Submitters: submitters,
		Toasts:     toasts,
		Logger:     logger,
		repo:       repo,
		charts:     charts,
	}, nil
}

// ReloadFixtures swaps the dashboard data and drops every cached chart. An
// invalid document leaves the current one in place.
func (a *App) ReloadFixtures(doc *Fixtures) error {
	if err := a.repo.Replace(doc); err != nil {
		return err
	}
	a.charts.PurgeCache()
	a.Logger.Info("fixtures reloaded", zap.String("source", doc.Source))
	return nil
}

// HTTPHandler returns the chi router serving every route.
func (a *App) HTTPHandler() http.Handler {
	return httpapi.NewRouter(a.Handlers)
}

// Mount registers every route on a Fiber app. Pages, layout JSON and health
// go through a go-router adapter wrapping app; login, order uploads and the
// toast streams are native Fiber handlers.
func (a *App) Mount(app *fiber.App) error {
	server := router.NewFiberAdapter(func(*fiber.App) *fiber.App { return app })
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:   server.Router(),
		Handlers: a.Handlers,
	}); err != nil {
		return err
	}
	return fiberhttp.Register(fiberhttp.Config{App: app, Handlers: a.Handlers, Toasts: a.Toasts})
}
