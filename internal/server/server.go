package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/moling/userservice/config"
	"github.com/moling/userservice/internal/auth"
	"github.com/moling/userservice/internal/authz"
	"github.com/moling/userservice/internal/db"
	"github.com/moling/userservice/internal/handlers"
	"github.com/moling/userservice/internal/services"
	"github.com/moling/userservice/internal/storage"
	"github.com/moling/userservice/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	blacklist  *auth.RedisBlacklist
}

// New constructs a fully wired Server. The only fatal misconfiguration is a
// missing JWT signing secret; everything else has defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)

	var (
		blacklist      auth.Blacklist
		redisBlacklist *auth.RedisBlacklist
	)
	if cfg.Redis.Addr != "" {
		redisBlacklist = auth.NewRedisBlacklist(cfg.Redis)
		blacklist = redisBlacklist
	}

	tokenService := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Leeway, userRepo, blacklist)

	objects, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("init storage backend: %w", err)
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("ensure storage bucket: %w", err)
	}

	table := authz.DefaultTable()

	userService := services.NewUserService(userRepo)
	authService := services.NewAuthService(userRepo, tokenService)
	avatarService := services.NewAvatarService(objects, userRepo, cfg.Avatar)

	authMiddleware := handlers.RequireAuth(tokenService)
	healthHandler := handlers.NewHealthHandler(dbConn, objects)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", healthHandler.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService, userService, authMiddleware)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, table, authMiddleware)
	})
	router.Route("/avatars", func(r chi.Router) {
		handlers.AvatarRouter(r, avatarService, table, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		blacklist:  redisBlacklist,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.blacklist != nil {
		_ = s.blacklist.Close()
	}
	return s.httpServer.Close()
}
