package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Valneuskaya/foodgram-project-react/internal/middleware"
	"github.com/Valneuskaya/foodgram-project-react/internal/service"
)

type UserHandler struct {
	authService         *service.AuthService
	userService         *service.UserService
	subscriptionService *service.SubscriptionService
}

func NewUserHandler(
	authService *service.AuthService,
	userService *service.UserService,
	subscriptionService *service.SubscriptionService,
) *UserHandler {
	return &UserHandler{
		authService:         authService,
		userService:         userService,
		subscriptionService: subscriptionService,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
		users.POST("/set_password", middleware.AuthMiddleware(h.authService), h.SetPassword)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.authService), h.ListSubscriptions)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password"`
	}
	if bindJSON(c, &req) != nil {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(*user, false))
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page := parsePage(c)
	views, total, err := h.userService.List(c.Request.Context(), optionalUserID(c), page)
	if err != nil {
		abortWithError(c, err)
		return
	}

	results := make([]UserResponse, len(views))
	for i, v := range views {
		results[i] = newUserResponse(v.User, v.IsSubscribed)
	}
	c.JSON(http.StatusOK, paginated(c, page, total, results))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	view, err := h.userService.Get(c.Request.Context(), optionalUserID(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(view.User, view.IsSubscribed))
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	view, err := h.userService.Get(c.Request.Context(), &userID, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(view.User, view.IsSubscribed))
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if bindJSON(c, &req) != nil {
		return
	}

	if err := h.authService.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	authorID, err := parseID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	profile, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, authorID, recipesLimit(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSubscriptionResponse(*profile))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	authorID, err := parseID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page := parsePage(c)
	profiles, total, err := h.subscriptionService.List(c.Request.Context(), userID, page, recipesLimit(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	results := make([]SubscriptionResponse, len(profiles))
	for i, p := range profiles {
		results[i] = newSubscriptionResponse(p)
	}
	c.JSON(http.StatusOK, paginated(c, page, total, results))
}

func recipesLimit(c *gin.Context) int {
	if v, err := strconv.Atoi(c.Query("recipes_limit")); err == nil && v > 0 {
		return v
	}
	return service.DefaultRecipePreviewLimit
}
