package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"dailyledger/config"
	"dailyledger/controller/auth"
	"dailyledger/controller/day"
	"dailyledger/controller/events"
	"dailyledger/controller/history"
	"dailyledger/controller/task"
	"dailyledger/middleware"
	"dailyledger/services"
	"dailyledger/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators the HTTP router is built from.
type Deps struct {
	Engine      *services.Engine
	View        *services.View
	Broadcaster *services.Broadcaster
	Tokens      *services.TokenService
	Gatherer    prometheus.Gatherer
	Logger      *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))
	router.Use(cors.Default())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	auth.TokenController(router, d.Tokens)

	api := router.Group("/api", middleware.AccessTokenMiddleware(d.Tokens))
	day.DayController(api, d.Engine)
	task.TaskController(api, d.Engine)
	history.HistoryController(api, d.Engine)
	events.EventsController(api, d.Broadcaster, d.View)

	return router
}

// StartServer wires storage, engine and router from cfg and serves until
// ctx is cancelled.
func StartServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	kv, err := OpenKV(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize ledger storage: %w", err)
	}
	defer func() { _ = kv.Close() }()

	broadcaster := services.NewBroadcaster()
	registry := prometheus.NewRegistry()
	engine, err := NewEngine(ctx, cfg, kv, services.EngineOptions{
		Notifier: broadcaster,
		Metrics:  services.NewMetrics(registry),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	view := services.OpenView(ctx, engine, services.ViewOptions{
		PollInterval: cfg.Schedule.PollInterval,
		ChartDelay:   cfg.Schedule.ChartDelay,
	})
	defer view.Close()

	tokens := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.PassphraseHash, cfg.Auth.TokenTTL)
	if !tokens.Enabled() {
		logger.Warn("JWT_SECRET_KEY is not set, API is unauthenticated")
	}

	router := NewRouter(Deps{
		Engine:      engine,
		View:        view,
		Broadcaster: broadcaster,
		Tokens:      tokens,
		Gatherer:    registry,
		Logger:      logger,
	})

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
	}
	logger.Info("server listening", "addr", ln.Addr().String(), "today", engine.Date())
	return Serve(ctx, NewHTTPServer(ctx, router), ln, logger)
}

// NewHTTPServer binds every request context to ctx, so long-lived streams end
// when the server is told to stop.
func NewHTTPServer(ctx context.Context, handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// Serve runs srv on ln until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewEngine builds the engine over kv with the clock described by cfg.
// opts.Clock is replaced.
func NewEngine(ctx context.Context, cfg *config.Config, kv storage.KV, opts services.EngineOptions) (*services.Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	hour, minute, err := services.ParseCutoff(cfg.Schedule.AutoSubmitAt)
	if err != nil {
		return nil, err
	}
	opts.Clock = services.NewClock(loc).WithAutoSubmitAt(hour, minute)

	store := storage.NewLedgerStore(kv, opts.Logger)
	return services.NewEngine(ctx, store, opts), nil
}
