package main

import (
	"context"
	"log"

	"github.com/Valneuskaya/foodgram-project-react/config"
	"github.com/Valneuskaya/foodgram-project-react/internal/database"
	"github.com/Valneuskaya/foodgram-project-react/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Redis unavailable, continuing without cache: %v", err)
		redisClient = nil
	}

	s3cfg, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to configure S3 storage: %v", err)
	}

	srv := server.New(cfg, db, redisClient, s3cfg)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
