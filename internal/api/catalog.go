package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Valneuskaya/foodgram-project-react/internal/middleware"
	"github.com/Valneuskaya/foodgram-project-react/internal/models"
	"github.com/Valneuskaya/foodgram-project-react/internal/service"
)

type CatalogHandler struct {
	db             *gorm.DB
	authService    *service.AuthService
	catalogService *service.CatalogService
}

func NewCatalogHandler(db *gorm.DB, authService *service.AuthService, catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		db:             db,
		authService:    authService,
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags")
	{
		tags.GET("", h.ListTags)
		tags.GET("/:id", h.GetTag)
		tags.POST("", middleware.AuthMiddleware(h.authService), h.adminOnly, h.CreateTag)
	}

	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
		ingredients.POST("", middleware.AuthMiddleware(h.authService), h.adminOnly, h.CreateIngredient)
	}
}

// adminOnly guards the reference-data write endpoints.
func (h *CatalogHandler) adminOnly(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		c.Abort()
		return
	}
	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil || !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		c.Abort()
		return
	}
	c.Next()
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.catalogService.ListTags(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	tag, err := h.catalogService.GetTag(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *CatalogHandler) CreateTag(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
		Slug  string `json:"slug"`
	}
	if bindJSON(c, &req) != nil {
		return
	}

	tag, err := h.catalogService.CreateTag(c.Request.Context(), req.Name, req.Color, req.Slug)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.catalogService.SearchIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	ingredient, err := h.catalogService.GetIngredient(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *CatalogHandler) CreateIngredient(c *gin.Context) {
	var req struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}
	if bindJSON(c, &req) != nil {
		return
	}

	ingredient, err := h.catalogService.CreateIngredient(c.Request.Context(), req.Name, req.MeasurementUnit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}
