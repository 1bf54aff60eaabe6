package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/socialmock/apiserver/config"
	"github.com/socialmock/apiserver/internal/handlers"
	"github.com/socialmock/apiserver/internal/services"
	"github.com/socialmock/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	store      *store.Store
}

// New constructs a Server over st with the API mounted under cfg.APIPrefix.
func New(cfg config.Config, st *store.Store) (*Server, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}

	router := NewRouter(cfg, st)

	port := cfg.ServerPort
	if port == 0 {
		port = 3000
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
		store:      st,
	}, nil
}

// NewRouter builds the full route tree over st.
func NewRouter(cfg config.Config, st *store.Store) *chi.Mux {
	userRepo := store.NewUserRepository(st)
	postRepo := store.NewPostRepository(st)
	commentRepo := store.NewCommentRepository(st)

	passwords := services.NewPasswordPolicy(cfg.HashPasswords)
	faker := gofakeit.New(0)

	userService := services.NewUserService(userRepo, postRepo, commentRepo, passwords, faker)
	postService := services.NewPostService(postRepo, userRepo, faker)
	commentService := services.NewCommentService(commentRepo, postRepo, userRepo)
	collections := services.NewCollections(userRepo, postRepo, commentRepo, passwords)

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/"
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		handlers.CORS,
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route(prefix, func(r chi.Router) {
		r.Use(handlers.Delay(cfg.Delay))

		handlers.AuthRouter(r, userService, cfg.Secret)
		r.Route("/users", func(r chi.Router) {
			handlers.UserRouter(r, userService, collections.Users)
		})
		r.Route("/posts", func(r chi.Router) {
			handlers.PostRouter(r, postService, commentService, collections.Posts)
		})
		r.Route("/comments", func(r chi.Router) {
			handlers.CommentRouter(r, commentService, collections.Comments)
		})
	})

	return router
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if closeErr := s.store.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
