package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	core "github.com/goliatone/go-printshop/components/printshop"
	"github.com/goliatone/go-printshop/internal/config"
	"github.com/goliatone/go-printshop/internal/logger"
	"github.com/goliatone/go-printshop/internal/server"
	"github.com/goliatone/go-printshop/pkg/printshop"
)

type cli struct {
	Config   string      `type:"path" env:"PRINTSHOP_CONFIG" help:"Optional YAML config file."`
	Serve    serveCmd    `cmd:"" default:"1" help:"Run the dashboard and order form server."`
	Fixtures fixturesCmd `cmd:"" help:"Inspect dashboard fixtures."`
}

type serveCmd struct {
	Address   string `help:"Listen address (overrides server.address)."`
	Transport string `help:"Server transport: fiber or http (overrides server.transport)."`
}

type fixturesCmd struct {
	Export exportCmd `cmd:"" help:"Write fixtures as YAML."`
	Check  checkCmd  `cmd:"" help:"Validate a fixtures file."`
}

type exportCmd struct {
	From string `type:"existingfile" help:"Read fixtures from this file instead of the built-in defaults."`
	Out  string `type:"path" help:"Destination file (defaults to stdout)."`
}

type checkCmd struct {
	Path string `arg:"" type:"existingfile" help:"Fixtures file to validate."`
}

func main() {
	var root cli
	ctx := kong.Parse(&root,
		kong.Name("printshop"),
		kong.Description("Print shop admin dashboard and order form."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&root)
	ctx.FatalIfErrorf(err)
}

func (cmd *serveCmd) Run(root *cli) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if cmd.Address != "" {
		cfg.Server.Address = cmd.Address
	}
	if cmd.Transport != "" {
		cfg.Server.Transport = cmd.Transport
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("printshop: create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	var fixtures *core.Fixtures
	if cfg.Fixtures.Path != "" {
		fixtures, err = core.ReadFixtures(cfg.Fixtures.Path)
		if err != nil {
			return err
		}
		log.Info("fixtures loaded", zap.String("path", fixtures.Source))
	}

	app, err := printshop.New(printshop.Config{
		Credentials:    core.Credentials{Username: cfg.Admin.Username, Password: cfg.Admin.Password},
		Fixtures:       fixtures,
		SubmitDelay:    cfg.Order.SubmitDelay,
		ChartTheme:     cfg.Charts.Theme,
		AssetsHost:     cfg.Charts.AssetsHost,
		ChartCacheTTL:  cfg.Charts.CacheTTL,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		SessionTTL:     cfg.Session.TTL,
		MaxSessions:    cfg.Session.MaxSessions,
		Logger:         log,
	})
	if err != nil {
		return err
	}

	var (
		start    func() error
		shutdown func(context.Context) error
	)
	switch cfg.Server.Transport {
	case config.TransportHTTP:
		srv := server.New(cfg.Server.Address, app.HTTPHandler(), log)
		start, shutdown = srv.Start, srv.Shutdown
	default:
		fapp := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             int(cfg.Server.MaxUploadBytes) + 1<<20,
		})
		if err := app.Mount(fapp); err != nil {
			return err
		}
		start = func() error {
			log.Info("starting server", zap.String("addr", cfg.Server.Address), zap.String("transport", "fiber"))
			return fapp.Listen(cfg.Server.Address)
		}
		shutdown = fapp.ShutdownWithContext
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)
	errs := make(chan error, 1)
	go func() { errs <- start() }()

wait:
	for {
		select {
		case err := <-errs:
			return err
		case <-reload:
			reloadFixtures(app, cfg.Fixtures.Path, log)
		case <-quit:
			log.Info("received shutdown signal")
			break wait
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer cancel()
	if err := shutdown(ctx); err != nil {
		return fmt.Errorf("printshop: shutdown: %w", err)
	}
	log.Info("server stopped gracefully")
	return nil
}

// reloadFixtures re-reads the fixtures file on SIGHUP. Failures keep the
// current dashboard data.
func reloadFixtures(app *printshop.App, path string, log *zap.Logger) {
	if path == "" {
		log.Warn("fixtures reload skipped, fixtures.path is not set")
		return
	}
	doc, err := core.ReadFixtures(path)
	if err == nil {
		err = app.ReloadFixtures(doc)
	}
	if err != nil {
		log.Error("fixtures reload failed", zap.String("path", path), zap.Error(err))
	}
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.Server.ShutdownTimeout > 0 {
		return cfg.Server.ShutdownTimeout
	}
	return 10 * time.Second
}

func (cmd *exportCmd) Run() error {
	doc := core.DefaultFixtures()
	if cmd.From != "" {
		var err error
		if doc, err = core.ReadFixtures(cmd.From); err != nil {
			return err
		}
	}
	if cmd.Out == "" {
		return core.EncodeFixtures(os.Stdout, doc)
	}
	return writeFixtures(cmd.Out, doc)
}

func writeFixtures(path string, doc *core.Fixtures) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("printshop: create fixtures dir: %w", err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("printshop: create fixtures file: %w", err)
	}
	if err := core.EncodeFixtures(file, doc); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("printshop: close fixtures file: %w", err)
	}
	fmt.Fprintf(os.Stdout, "✓ Wrote fixtures to %s\n", path)
	return nil
}

func (cmd *checkCmd) Run() error {
	doc, err := core.ReadFixtures(cmd.Path)
	if err != nil {
		return err
	}
	return reportFixtures(os.Stdout, doc)
}

func reportFixtures(w io.Writer, doc *core.Fixtures) error {
	if doc == nil {
		return errors.New("printshop: no fixtures loaded")
	}
	_, err := fmt.Fprintf(w, "✓ %s: %d pending, %d completed, %d series\n",
		doc.Source, len(doc.Pending), len(doc.Completed), len(doc.Series))
	return err
}
