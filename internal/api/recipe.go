package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Valneuskaya/foodgram-project-react/internal/middleware"
	"github.com/Valneuskaya/foodgram-project-react/internal/service"
)

type RecipeHandler struct {
	authService         *service.AuthService
	recipeService       *service.RecipeService
	queryService        *service.RecipeQueryService
	relationService     *service.RelationService
	shoppingListService *service.ShoppingListService
}

func NewRecipeHandler(
	authService *service.AuthService,
	recipeService *service.RecipeService,
	queryService *service.RecipeQueryService,
	relationService *service.RelationService,
	shoppingListService *service.ShoppingListService,
) *RecipeHandler {
	return &RecipeHandler{
		authService:         authService,
		recipeService:       recipeService,
		queryService:        queryService,
		relationService:     relationService,
		shoppingListService: shoppingListService,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListRecipes)
		recipes.POST("", middleware.AuthMiddleware(h.authService), h.CreateRecipe)
		recipes.GET("/download_shopping_cart", middleware.AuthMiddleware(h.authService), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetRecipe)
		recipes.PATCH("/:id", middleware.AuthMiddleware(h.authService), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.authService), h.DeleteRecipe)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.authService), h.AddFavorite)
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.authService), h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", middleware.AuthMiddleware(h.authService), h.RemoveFromCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	requester := optionalUserID(c)

	filter := service.RecipeFilter{
		TagSlugs: c.QueryArray("tags"),
	}
	if author := c.Query("author"); author != "" {
		id, err := strconv.ParseUint(author, 10, 32)
		if err == nil {
			authorID := uint(id)
			filter.AuthorID = &authorID
		}
	}
	filter.Favorited = c.Query("is_favorited") == "1"
	filter.InCart = c.Query("is_in_shopping_cart") == "1"

	page := parsePage(c)
	views, total, err := h.queryService.List(c.Request.Context(), requester, filter, page)
	if err != nil {
		abortWithError(c, err)
		return
	}

	results := make([]RecipeResponse, len(views))
	for i, v := range views {
		results[i] = newRecipeResponse(v)
	}
	c.JSON(http.StatusOK, paginated(c, page, total, results))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	view, err := h.queryService.Get(c.Request.Context(), optionalUserID(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRecipeResponse(*view))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req recipeRequest
	if bindJSON(c, &req) != nil {
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), userID, req.toInput())
	if err != nil {
		abortWithError(c, err)
		return
	}

	view, err := h.queryService.Get(c.Request.Context(), &userID, recipe.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRecipeResponse(*view))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req recipeRequest
	if bindJSON(c, &req) != nil {
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), id, userID, req.toInput())
	if err != nil {
		abortWithError(c, err)
		return
	}

	view, err := h.queryService.Get(c.Request.Context(), &userID, recipe.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRecipeResponse(*view))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), id, userID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addRelation(c, service.RelationFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeRelation(c, service.RelationFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addRelation(c, service.RelationCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeRelation(c, service.RelationCart)
}

func (h *RecipeHandler) addRelation(c *gin.Context, kind service.RelationKind) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	recipeID, err := parseID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	recipe, err := h.relationService.Add(c.Request.Context(), userID, recipeID, kind)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRecipeSummary(*recipe))
}

func (h *RecipeHandler) removeRelation(c *gin.Context, kind service.RelationKind) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	recipeID, err := parseID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := h.relationService.Remove(c.Request.Context(), userID, recipeID, kind); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	report, err := h.shoppingListService.Render(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=shopping_list_%d.txt", userID))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report))
}
