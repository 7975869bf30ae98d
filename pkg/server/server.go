// Package server exposes the editor core and the saved-edit store over a
// JSON REST API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Fepozopo/lunaratelier/pkg/adjust"
	"github.com/Fepozopo/lunaratelier/pkg/auth"
	"github.com/Fepozopo/lunaratelier/pkg/imagesrc"
	"github.com/Fepozopo/lunaratelier/pkg/store"
)

const shutdownTimeout = 10 * time.Second

// Repository is the persistence the API needs. *store.Store implements it.
type Repository interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, email, name, passwordHash string) (store.User, error)
	UserByEmail(ctx context.Context, email string) (store.User, error)
	UserByID(ctx context.Context, id string) (store.User, error)

	SaveEdit(ctx context.Context, in store.NewEdit) (store.Edit, error)
	ListEdits(ctx context.Context, userID string) ([]store.Edit, error)
	ListAlbumEdits(ctx context.Context, userID, albumID string) ([]store.Edit, error)
	DeleteEdit(ctx context.Context, userID, id string) error

	CreateAlbum(ctx context.Context, userID, name, description string) (store.Album, error)
	ListAlbums(ctx context.Context, userID string) ([]store.Album, error)
	UpdateAlbum(ctx context.Context, userID, id, name, description string) (store.Album, error)
	DeleteAlbum(ctx context.Context, userID, id string) error
}

// Options wires the server's collaborators.
type Options struct {
	Addr           string
	Store          Repository
	Issuer         *auth.Issuer
	Loader         *imagesrc.Loader
	Catalog        *adjust.Catalog
	Logger         *zap.Logger
	AllowedOrigins []string
	MaxBodyBytes   int64

	// AllowPrivateNetworks lets image URLs reach loopback and private
	// addresses. Off by default since the image endpoints are public.
	AllowPrivateNetworks bool
}

// Server is the HTTP API.
type Server struct {
	store   Repository
	issuer  *auth.Issuer
	loader  *imagesrc.Loader
	catalog *adjust.Catalog
	log     *zap.Logger
	maxBody int64
	origins []string
	addr    string
	now     func() time.Time
}

// New validates opts and returns a server. Loader, Catalog and Logger
// default when nil.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if opts.Issuer == nil {
		return nil, errors.New("server: token issuer is required")
	}
	s := &Server{
		store:   opts.Store,
		issuer:  opts.Issuer,
		loader:  opts.Loader,
		catalog: opts.Catalog,
		log:     opts.Logger,
		maxBody: opts.MaxBodyBytes,
		origins: opts.AllowedOrigins,
		addr:    opts.Addr,
		now:     time.Now,
	}
	if s.loader == nil {
		s.loader = imagesrc.NewLoader(0, s.maxBody)
	}
	if !opts.AllowPrivateNetworks {
		s.loader = s.loader.PublicOnly()
	}
	if s.catalog == nil {
		cat, err := adjust.NewCatalog()
		if err != nil {
			return nil, err
		}
		s.catalog = cat
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.maxBody <= 0 {
		s.maxBody = imagesrc.DefaultMaxBytes
	}
	return s, nil
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
			r.With(s.requireAuth).Get("/me", s.handleMe)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/edits/save", s.handleSaveEdit)
			r.Get("/edits", s.handleListEdits)
			r.Delete("/edits/{id}", s.handleDeleteEdit)

			r.Get("/albums", s.handleListAlbums)
			r.Post("/albums", s.handleCreateAlbum)
			r.Put("/albums/{id}", s.handleUpdateAlbum)
			r.Delete("/albums/{id}", s.handleDeleteAlbum)
			r.Get("/albums/{id}/edits", s.handleListAlbumEdits)
		})

		r.Get("/presets", s.handlePresets)
		r.Post("/pipeline", s.handlePipeline)
		r.Post("/histogram", s.handleHistogram)
		r.Post("/export", s.handleExport)
		r.Get("/stock", s.handleStock)
		r.Post("/stock/import", s.handleStockImport)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	return r
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(s.log),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
