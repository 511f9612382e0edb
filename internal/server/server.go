package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Valneuskaya/foodgram-project-react/config"
	"github.com/Valneuskaya/foodgram-project-react/internal/api"
	"github.com/Valneuskaya/foodgram-project-react/internal/router"
	"github.com/Valneuskaya/foodgram-project-react/internal/service"
)

// Server wires services and handlers over the shared database handle.
type Server struct {
	router *gin.Engine
	cfg    *config.Config
}

// New creates a new server instance. redisClient and s3cfg may be nil.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, s3cfg *config.S3Config) *Server {
	imageService := service.NewImageService(s3cfg, cfg.MediaDir, cfg.MediaBaseURL)
	authService := service.NewAuthService(db, redisClient, cfg.JWTSecret)
	userService := service.NewUserService(db)
	catalogService := service.NewCatalogService(db, redisClient)
	recipeService := service.NewRecipeService(db, imageService)
	queryService := service.NewRecipeQueryService(db)
	relationService := service.NewRelationService(db)
	shoppingListService := service.NewShoppingListService(db)
	subscriptionService := service.NewSubscriptionService(db)

	authHandler := api.NewAuthHandler(authService)
	userHandler := api.NewUserHandler(authService, userService, subscriptionService)
	recipeHandler := api.NewRecipeHandler(authService, recipeService, queryService, relationService, shoppingListService)
	catalogHandler := api.NewCatalogHandler(db, authService, catalogService)

	r := router.SetupRouter(
		authHandler,
		userHandler,
		recipeHandler,
		catalogHandler,
		cfg.AllowedOrigin,
		cfg.MediaDir,
		cfg.MediaBaseURL,
	)

	return &Server{
		router: r,
		cfg:    cfg,
	}
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:    s.cfg.ServerHost + ":" + s.cfg.ServerPort,
		Handler: s.router,
	}

	go func() {
		log.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
