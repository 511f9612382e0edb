package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Valneuskaya/foodgram-project-react/internal/api"
)

// SetupRouter configures the application routes
func SetupRouter(
	authHandler *api.AuthHandler,
	userHandler *api.UserHandler,
	recipeHandler *api.RecipeHandler,
	catalogHandler *api.CatalogHandler,
	allowedOrigin string,
	mediaDir string,
	mediaBaseURL string,
) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{allowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	// Locally stored recipe images
	if mediaDir != "" {
		router.Static(mediaBaseURL, mediaDir)
	}

	v1 := router.Group("/api")
	authHandler.RegisterRoutes(v1)
	userHandler.RegisterRoutes(v1)
	recipeHandler.RegisterRoutes(v1)
	catalogHandler.RegisterRoutes(v1)

	return router
}
