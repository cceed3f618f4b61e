package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"turnaround/internal/config"
	"turnaround/internal/game"
	"turnaround/internal/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("config: %v", err)
	}
	rules, err := cfg.Rules()
	if err != nil {
		config.Exitf("rules: %v", err)
	}

	store := game.NewStore()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	instructor := handlers.NewInstructor(cfg.InstructorPassword)
	if !instructor.Enabled() {
		log.Printf("TURNAROUND_INSTRUCTOR_PASSWORD is empty; advance, reset and delete are disabled")
	}

	homeHandler := handlers.NewHomeHandler(store, rules, cfg.Seed)
	sessionHandler := handlers.NewSessionHandler(store, instructor)

	// The stream route holds its connection open, so the request timeout
	// only wraps the regular routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		homeHandler.RegisterRoutes(r)
	})
	sessionHandler.RegisterRoutes(r)

	addr := cfg.Addr()
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("turnaround: %d rounds, threshold %d min, fine split %s, risk %s",
		rules.Rounds, rules.OnTimeThresholdMinutes, rules.FineSplit, rules.RiskMode)
	log.Printf("listening on http://localhost%s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
