// Package server assembles the HTTP surface: Connect services, health and
// metrics endpoints, uploaded files and the static frontend.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/clubhouse/internal/auth"
	"github.com/mmynk/clubhouse/internal/config"
	"github.com/mmynk/clubhouse/internal/metrics"
	"github.com/mmynk/clubhouse/internal/middleware"
	"github.com/mmynk/clubhouse/internal/service"
	"github.com/mmynk/clubhouse/internal/storage"
	"github.com/mmynk/clubhouse/internal/storage/blob"
	"github.com/mmynk/clubhouse/pkg/api/apiconnect"
)

const apiPrefix = "/clubhouse.v1."

// Deps are the collaborators the server is built from. Revoker, Blobs and
// Metrics may be nil.
type Deps struct {
	Store   storage.Store
	Blobs   *blob.LocalStore
	Revoker auth.Revoker
	Metrics *metrics.Registry
	Logger  *slog.Logger
}

// Server serves Clubhouse over HTTP/1.1 and cleartext HTTP/2.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	limiter *middleware.RateLimiter
	handler http.Handler
}

// New wires every service onto a chi router.
func New(cfg *config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRegistry()
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authn := middleware.NewAuthenticator(jwtManager, deps.Revoker)
	limiter := middleware.NewRateLimiter(cfg.RSVP.RateLimit, cfg.RSVP.Burst, deps.Metrics)

	// Interceptors run in order: metrics wrap everything, then session, then
	// logging (so it sees the user), then the admin gate.
	protected := connect.WithInterceptors(
		middleware.MetricsInterceptor(deps.Metrics),
		authn.RequireAuth(publicProcedures...),
		middleware.LoggingInterceptor(logger),
		middleware.RequireAdmin(adminProcedures...),
	)
	open := connect.WithInterceptors(
		middleware.MetricsInterceptor(deps.Metrics),
		middleware.LoggingInterceptor(logger),
	)

	authenticator := auth.NewPasswordAuthenticator(deps.Store)
	authSvc := service.NewAuthService(authenticator, jwtManager, deps.Revoker, deps.Store, logger)
	var blobs storage.BlobStore
	if deps.Blobs != nil {
		blobs = deps.Blobs
	}
	memberSvc := service.NewMemberService(deps.Store, blobs)
	ledgerSvc := service.NewLedgerService(deps.Store, cfg.Ledger.BaseInitialBalance, deps.Metrics)
	feeSvc := service.NewFeeService(deps.Store, service.FeeDefaults{
		Amount:    cfg.Ledger.MonthlyFee,
		AccountID: cfg.Ledger.FeeAccountID,
	})
	gameSvc := service.NewGameService(deps.Store, cfg.Server.PublicBaseURL)
	rsvpSvc := service.NewRSVPService(deps.Store, cfg.RSVP.RedirectDelay, deps.Metrics)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.Server.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.NewStructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.HTTPMetrics(deps.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders:   []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Gatherer(), promhttp.HandlerOpts{}))
	if deps.Blobs != nil {
		r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(deps.Blobs.Root()))))
	}

	mount := func(path string, h http.Handler) {
		r.Handle(path+"*", h)
	}
	mount(apiconnect.NewAuthServiceHandler(authSvc, protected))
	mount(apiconnect.NewMemberServiceHandler(memberSvc, protected))
	mount(apiconnect.NewLedgerServiceHandler(ledgerSvc, protected))
	mount(apiconnect.NewFeeServiceHandler(feeSvc, protected))
	mount(apiconnect.NewGameServiceHandler(gameSvc, protected))

	rsvpPath, rsvpHandler := apiconnect.NewRSVPServiceHandler(rsvpSvc, open)
	mount(rsvpPath, limiter.Handler(rsvpHandler))

	r.NotFound(staticHandler(cfg.Server.StaticDir))

	return &Server{
		cfg:     cfg,
		logger:  logger,
		limiter: limiter,
		handler: h2c.NewHandler(r, &http2.Server{}),
	}
}

// Handler returns the root handler, wrapped with h2c for HTTP/2 without TLS.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweepLimiter(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Connect server starting", "address", s.cfg.Server.Addr, "url", s.cfg.Server.PublicBaseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down", "timeout", s.cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.Sweep()
		}
	}
}

// staticHandler serves the frontend build. Unknown paths fall back to
// index.html so client-side routes such as /rsvp/{id} load the app.
func staticHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, apiPrefix) {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(dir, filepath.Clean("/"+urlPath))
		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		http.ServeFile(w, r, filePath)
	}
}
