package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/config"
	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/db"
	"github.com/Akilesh-programmer/Blog-Website-GDG/internal/handlers"
	appmiddleware "github.com/Akilesh-programmer/Blog-Website-GDG/internal/middleware"
)

func main() {
	cfg := config.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := db.NewStore(ctx, cfg.MongoURI, cfg.MongoDB, log)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store.Close(closeCtx)
	}()

	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = store.EnsureIndexes(indexCtx)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	blogsHandler := handlers.NewBlogsHandler(store, log)
	usersHandler := handlers.NewUsersHandler(store, store, []byte(cfg.JWTSecret), cfg.JWTExpiresIn, log)
	requireAuth := appmiddleware.RequireAuth(store, []byte(cfg.JWTSecret))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)

	r.Get("/health", handlers.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitMax, cfg.RateLimitWindow))

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", blogsHandler.List)
			r.Get("/tag/{tag}", blogsHandler.ListByTag)
			r.Get("/slug/{slug}", blogsHandler.GetBySlug)
			r.Get("/{id}", blogsHandler.GetByID)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", blogsHandler.Create)
				r.Patch("/{id}", blogsHandler.Update)
				r.Delete("/{id}", blogsHandler.Delete)
				r.Post("/{id}/like", blogsHandler.ToggleLike)
				r.Post("/{id}/comments", blogsHandler.AddComment)
				r.Delete("/{id}/comments/{commentId}", blogsHandler.DeleteComment)
			})
		})

		r.Route("/users", func(r chi.Router) {
			// Stricter limiter on the credential endpoints.
			loginLimiter := appmiddleware.NewRateLimiter(cfg.LoginRateLimitMax, time.Minute)
			r.With(loginLimiter.Limit).Post("/signup", usersHandler.Signup)
			r.With(loginLimiter.Limit).Post("/login", usersHandler.Login)
			r.Get("/logout", usersHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", usersHandler.Me)
				r.Get("/bookmarks", usersHandler.Bookmarks)
				r.Post("/bookmarks/{blogId}", usersHandler.ToggleBookmark)
				r.With(appmiddleware.RequireAdmin).Get("/admin/ping", usersHandler.AdminPing)
			})
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
