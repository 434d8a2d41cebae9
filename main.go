package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/pooplog/backend/api/v1/database"
	"github.com/pooplog/backend/api/v1/handlers"
	"github.com/pooplog/backend/api/v1/middleware"
	"github.com/pooplog/backend/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	sessions := middleware.NewSessionManager(db, cfg.SessionSecret)

	authHandler := handlers.NewAuthHandler(db, sessions)
	homeHandler := handlers.NewHomeHandler(db)
	entryHandler := handlers.NewEntryHandler(db)
	userHandler := handlers.NewUserHandler(db)
	apiHandler := handlers.NewAPIHandler(db)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.HealthHandler)

	// Dashboard is public; a valid session only widens the visible accounts
	r.Group(func(r chi.Router) {
		r.Use(sessions.OptionalAuth)
		r.Get("/", homeHandler.Dashboard)
		r.Get("/login", authHandler.LoginForm)
	})

	// Credential-bearing browser routes, throttled per client IP
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Post("/login", authHandler.Login)
		r.Get("/register", authHandler.RegisterForm)
		r.Post("/register", authHandler.Register)
	})

	// Session-only routes
	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireAuth)
		r.Get("/logout", authHandler.Logout)
		r.Route("/private", func(r chi.Router) {
			r.Get("/poop", entryHandler.Form)
			r.Post("/poop", entryHandler.Create)
			r.Get("/user", userHandler.Privacy)
			r.Post("/user", userHandler.UpdatePrivacy)
		})
	})

	// Mobile API: credentials travel in the JSON body on every call
	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(60, time.Minute))
		r.Post("/login", apiHandler.Login)
		r.Post("/register", apiHandler.Register)
		r.Post("/home", apiHandler.Home)
		r.Post("/poop", apiHandler.CreateEntry)
		r.Get("/poop/metrics", apiHandler.Metrics)
		r.Post("/poop/delete", apiHandler.DeleteEntry)
		r.Post("/user/privacy", apiHandler.GetPrivacy)
		r.Post("/user/privacy/update", apiHandler.UpdatePrivacy)
	})

	log.Printf("Starting server on port %s", cfg.Port)
	err = http.ListenAndServe(":"+cfg.Port, r)
	if err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
