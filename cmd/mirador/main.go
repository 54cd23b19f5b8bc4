package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/mirador-dev/mirador/db"
	"github.com/mirador-dev/mirador/internal/auth"
	"github.com/mirador-dev/mirador/internal/cache"
	"github.com/mirador-dev/mirador/internal/handlers"
	"github.com/mirador-dev/mirador/internal/router"
	"github.com/mirador-dev/mirador/internal/services"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment")
	}

	if err := auth.InitJWTSecret(); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize JWT secret")
	}

	if err := db.ConnectDatabase(os.Getenv("DATABASE_URL")); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	if err := db.MigrateDatabase(); err != nil {
		logrus.WithError(err).Fatal("Failed to migrate database")
	}

	readCache := cache.New()
	h := handlers.New(db.DB, readCache)

	dispatcher := services.NewDispatcher(h.Rules, h.Notifications, h.Profiles, services.NewNotifierFromEnv(), readCache)

	if err := dispatcher.Start(); err != nil {
		logrus.WithError(err).Fatal("Failed to start dispatcher")
	}
	defer dispatcher.Stop()

	r := router.NewRouter(h)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
		logrus.Info("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}
}
