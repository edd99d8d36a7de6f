// Package httpapi exposes the services over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/kalahboard/internal/logging"
	"github.com/dmitrijs2005/kalahboard/internal/server/metrics"
	"github.com/dmitrijs2005/kalahboard/internal/server/models"
	"github.com/dmitrijs2005/kalahboard/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const shutdownTimeout = 10 * time.Second

// AuthService is the registration and login flow.
type AuthService interface {
	Register(ctx context.Context, userName, email, password string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (string, error)
}

// SessionGuard resolves bearer tokens to users.
type SessionGuard interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type ProfileService interface {
	UpdateProfile(ctx context.Context, current *models.User, upd models.ProfileUpdate) (*models.User, error)
}

type LeaderboardService interface {
	Top(ctx context.Context) ([]models.LeaderboardEntry, error)
	Add(ctx context.Context, entry models.LeaderboardEntry) (*models.LeaderboardEntry, error)
}

type AvatarService interface {
	Upload(ctx context.Context, user *models.User, filename string, size int64, r io.Reader) (*services.AvatarUpload, error)
}

// Services groups the business logic the API delegates to.
type Services struct {
	Auth        AuthService
	Sessions    SessionGuard
	Profiles    ProfileService
	Leaderboard LeaderboardService
	Avatars     AvatarService
}

// Options tunes the HTTP surface. Empty directories disable the
// corresponding static route; a nil Metrics disables /metrics.
type Options struct {
	AllowedOrigins []string
	StaticDir      string
	UploadDir      string
	MaxAvatarSize  int64
	Metrics        *metrics.Metrics
}

type HTTPServer struct {
	address string
	logger  logging.Logger
	svc     Services
	opts    Options
}

func NewHTTPServer(address string, l logging.Logger, svc Services, opts Options) *HTTPServer {
	return &HTTPServer{
		address: address,
		logger:  l.With("module", "http_server"),
		svc:     svc,
		opts:    opts,
	}
}

// Handler builds the router with all middleware applied.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           600,
	}))

	r.Get("/", s.handleRoot)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/token", s.handleToken)
	})

	r.Get("/leaderboard", s.handleLeaderboard)
	r.Post("/leaderboard", s.handleAddLeaderboardEntry)

	r.Group(func(r chi.Router) {
		r.Use(s.bearerAuth)
		r.Get("/users/me", s.handleMe)
		r.Put("/users/update-profile", s.handleUpdateProfile)
		r.Post("/users/upload-avatar", s.handleUploadAvatar)
		r.Get("/protected", s.handleProtected)
	})

	if s.opts.StaticDir != "" {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(s.opts.StaticDir))))
	}
	if s.opts.UploadDir != "" {
		r.Handle("/uploads/avatars/*", http.StripPrefix("/uploads/avatars/", http.FileServer(http.Dir(s.opts.UploadDir))))
	}
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
