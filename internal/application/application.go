package application

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/voxdial/voxdial/internal/api"
	"github.com/voxdial/voxdial/internal/config"
	"github.com/voxdial/voxdial/internal/dispatch"
	"github.com/voxdial/voxdial/internal/providers"
	"github.com/voxdial/voxdial/internal/resolve"
	"github.com/voxdial/voxdial/internal/secrets"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	registry *providers.Registry
	resolver *resolve.Resolver
	launcher *dispatch.Launcher
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// New initializes the application with all dependencies from the provided
// configuration. The provider registry is built exactly once here, before any
// traffic is served.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	registry := providers.NewRegistry()
	secretResolver := secrets.NewResolver()
	resolver := resolve.NewResolver(registry, secretResolver, cfg.BaseURL)

	engine := dispatch.NewHTTPEngine(cfg.EngineURL)
	launcher := dispatch.NewLauncher(engine, logger)

	handler := api.NewHandler(resolver, launcher, registry, logger)
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return &App{
		registry: registry,
		resolver: resolver,
		launcher: launcher,
		handler:  handler,
		router:   router,
		logger:   logger,
		server:   server,
	}, nil
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
