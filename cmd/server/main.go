package main

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sociogram/backend/internal/events"
	"github.com/sociogram/backend/internal/repositories"
	"github.com/sociogram/backend/internal/router"
	"github.com/sociogram/backend/internal/ws"
	"github.com/sociogram/backend/pkg/config"
	"github.com/sociogram/backend/pkg/firebase"
	"github.com/sociogram/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := config.InitDB(cfg.PostgresURL)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Firebase login is optional; without credentials only local auth is served
	var firebaseAuthClient *auth.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			logrus.Fatalf("Failed to initialize Firebase: %v", err)
		}
		firebaseAuthClient = firebaseApp.AuthClient
	} else {
		logrus.Info("Firebase credentials not configured, firebase-login disabled.")
	}

	// Realtime fan-out: hub delivers to subscribers, dispatcher drains the outbox
	hub := ws.NewHub()
	dispatcher := events.NewDispatcher(repositories.NewGormStore(db.Postgres), hub)
	go dispatcher.Run(ctx)

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, hub, dispatcher, firebaseAuthClient, cfg.JWTSecret)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
