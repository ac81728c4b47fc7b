// Package server is the composition root: it assembles the store, the
// services and the handlers, and owns the HTTP server's lifecycle.
//
//	Config → App (sqlite.DB → services) → handlers → chi router
package server

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/fittrack/internal/auth"
	"github.com/sakif/fittrack/internal/handler"
	"github.com/sakif/fittrack/internal/middleware"
	"github.com/sakif/fittrack/internal/web"
)

const (
	shutdownTimeout = 30 * time.Second
	pruneInterval   = time.Hour
)

// Server is the HTTP front end of an App.
type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	app     *App
	limiter *middleware.RateLimiter
}

// New opens the App and builds the router. Start (or Close) releases it.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	app, err := NewApp(cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		app:     app,
		limiter: middleware.NewRateLimiter(cfg.LoginRatePerMinute),
	}

	if err := s.setupRoutes(); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close stops the rate limiter's cleanup goroutine and closes the database.
func (s *Server) Close() error {
	s.limiter.Stop()
	return s.app.Close()
}

// setupRoutes registers middleware and the route table. Middleware order:
//
//	RequestID → RealIP → Recoverer → Logger → CSRF → LoadSession
func (s *Server) setupRoutes() error {
	render, err := handler.NewRenderer(web.Templates(), s.logger)
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	var github *auth.GitHubProvider
	if s.config.GitHub.Enabled() {
		github = auth.NewGitHubProvider(s.config.GitHub)
		s.logger.Info("github login enabled", slog.String("callback", s.config.GitHub.CallbackURL))
	}

	secure := s.config.SecureCookies
	authHandler := handler.NewAuthHandler(s.app.Auth, github, render, secure, s.logger)
	statsHandler := handler.NewStatsHandler(s.app.Stats, render, s.logger)
	routesHandler := handler.NewRoutesHandler(s.app.Routes, render, s.logger)
	dashboardHandler := handler.NewDashboardHandler(s.app.Stats, s.app.Routes, render, s.logger)
	accountHandler := handler.NewAccountHandler(s.app.Auth, s.app.Export, render, secure, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	if !secure {
		s.router.Use(plaintextHTTP)
	}
	s.router.Use(s.csrfProtect(render))
	s.router.Use(auth.LoadSession(s.app.Auth, secure))

	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.Static())))

	// Public
	s.router.Get("/login", authHandler.ShowLogin)
	s.router.With(s.limiter.Middleware).Post("/login", authHandler.Login)
	s.router.Get("/register", authHandler.ShowRegister)
	s.router.With(s.limiter.Middleware).Post("/register", authHandler.Register)
	s.router.Get("/logout", authHandler.Logout)
	if github != nil {
		s.router.Get("/auth/github/login", authHandler.GitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.GitHubCallback)
	}

	// Signed in
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession("/login"))

		r.Get("/", dashboardHandler.Home)

		r.Get("/stats", statsHandler.List)
		r.Get("/stats/add", statsHandler.ShowAdd)
		r.Post("/stats/add", statsHandler.Add)
		r.Get("/stats/{category}", statsHandler.Category)
		r.Get("/stats/{date}/edit", statsHandler.ShowEdit)
		r.Post("/stats/{date}/edit", statsHandler.Edit)
		r.Post("/stats/{date}/delete", statsHandler.Delete)

		r.Get("/routes", routesHandler.List)
		r.Get("/routes/add", routesHandler.ShowAdd)
		r.Post("/routes/add", routesHandler.Add)
		r.Post("/routes/{route}/delete", routesHandler.Delete)

		r.Get("/activities", routesHandler.Activities)
		r.Get("/activities/add", routesHandler.ShowAddActivity)
		r.Post("/activities/add", routesHandler.AddActivity)
		r.Get("/activities/{route}", routesHandler.Activities)

		r.Get("/delete", accountHandler.ShowDelete)
		r.Post("/delete", accountHandler.Delete)
		r.Get("/export", accountHandler.Export)
	})

	return nil
}

// csrfProtect derives the CSRF key from the session secret so one secret
// configures both.
func (s *Server) csrfProtect(render *handler.Renderer) func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte("csrf:" + s.config.SessionSecret))
	return csrf.Protect(key[:],
		csrf.Secure(s.config.SecureCookies),
		csrf.Path("/"),
		csrf.FieldName(handler.CSRFFieldName),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Warn("csrf check failed",
				slog.String("path", r.URL.Path),
				slog.Any("reason", csrf.FailureReason(r)),
			)
			render.Render(w, r, http.StatusForbidden, "error", handler.Page{
				Title: http.StatusText(http.StatusForbidden),
				Error: "The form has expired, please go back and try again.",
			})
		})),
	)
}

// plaintextHTTP tells gorilla/csrf the site is served over plain HTTP, which
// skips its HTTPS-only Referer check.
func plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

// Start serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully and closes the database. Expired sessions are pruned
// hourly while the server runs.
func (s *Server) Start(ctx context.Context) error {
	defer s.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	})

	g.Go(func() error {
		s.pruneSessions(gctx, pruneInterval)
		return nil
	})

	return g.Wait()
}

func (s *Server) pruneSessions(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.app.Auth.PruneSessions(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error("pruning sessions failed", slog.String("error", err.Error()))
				}
				continue
			}
			if n > 0 {
				s.logger.Info("pruned expired sessions", slog.Int64("count", n))
			}
		}
	}
}
