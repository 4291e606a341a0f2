package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/dmitrymomot/mailmerge"
	"github.com/dmitrymomot/mailmerge/pkg/health"
	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/merge"
)

const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 5 * time.Minute // a merge runs inside the request
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultShutdownTimeout   = 30 * time.Second
	maxBodyBytes             = 1 << 20
)

// Service is the merge surface served over HTTP. *mailmerge.Service satisfies it.
type Service interface {
	SendNow(ctx context.Context, cfg merge.Config) mailmerge.Result
	SendTest(ctx context.Context, cfg merge.Config) mailmerge.Result
	Schedule(ctx context.Context, at time.Time, cfg merge.Config) mailmerge.Result
	CancelSchedule(ctx context.Context) mailmerge.Result
	ScheduleStatus(ctx context.Context) mailmerge.Result
	SaveConfig(ctx context.Context, cfg merge.Config) mailmerge.Result
	LoadConfig(ctx context.Context) mailmerge.Result
	SaveTemplate(ctx context.Context, name, body string) mailmerge.Result
	LoadTemplates(ctx context.Context) mailmerge.Result
	DeleteTemplate(ctx context.Context, name string) mailmerge.Result
	Headers(ctx context.Context, source string) mailmerge.Result
	Sources(ctx context.Context) mailmerge.Result
	RunOutcomes(ctx context.Context, runID string) mailmerge.Result
}

// Config holds HTTP server settings.
type Config struct {
	Addr           string   `env:"HTTP_ADDR" envDefault:":8080"`
	AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Server serves the API.
type Server struct {
	svc             Service
	router          chi.Router
	logger          *slog.Logger
	checks          health.Checks
	shutdownHooks   []func(context.Context) error
	cfg             Config
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHealthChecks sets the readiness checks.
func WithHealthChecks(checks health.Checks) Option {
	return func(s *Server) {
		s.checks = checks
	}
}

// WithShutdownHook registers a function run after the server stops.
func WithShutdownHook(hook func(context.Context) error) Option {
	return func(s *Server) {
		s.shutdownHooks = append(s.shutdownHooks, hook)
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// New creates a server for svc.
func New(svc Service, cfg Config, opts ...Option) *Server {
	s := &Server{
		svc:             svc,
		cfg:             cfg,
		logger:          logger.NewNope(),
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(accessLog(s.logger))
	r.Use(recoverer(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(s.checks, health.WithLogger(s.logger)))

	h := &handlers{svc: s.svc}
	r.Post("/send", h.sendNow)
	r.Post("/send/test", h.sendTest)

	r.Route("/schedule", func(r chi.Router) {
		r.Get("/", h.scheduleStatus)
		r.Post("/", h.schedule)
		r.Delete("/", h.cancelSchedule)
	})

	r.Get("/config", h.loadConfig)
	r.Put("/config", h.saveConfig)

	r.Get("/templates", h.loadTemplates)
	r.Put("/templates/{name}", h.saveTemplate)
	r.Delete("/templates/{name}", h.deleteTemplate)

	r.Get("/sources", h.sources)
	r.Get("/sources/{name}/headers", h.headers)
	r.Get("/runs/{id}", h.runOutcomes)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully and runs the
// shutdown hooks.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range s.shutdownHooks {
		if err := hook(shutdownCtx); err != nil {
			s.logger.Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	s.logger.Info("shutdown completed")
	return nil
}
