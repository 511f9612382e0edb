package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Valneuskaya/foodgram-project-react/internal/middleware"
	"github.com/Valneuskaya/foodgram-project-react/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	token := router.Group("/auth/token")
	{
		token.POST("/login", h.Login)
		token.POST("/logout", middleware.AuthMiddleware(h.authService), h.Logout)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if bindJSON(c, &req) != nil {
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"auth_token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.TokenKey)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
