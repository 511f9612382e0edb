package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Valneuskaya/foodgram-project-react/internal/middleware"
	"github.com/Valneuskaya/foodgram-project-react/internal/service"
)

// currentUserID returns the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// optionalUserID returns the requester id, nil for anonymous requests.
func optionalUserID(c *gin.Context) *uint {
	if id, ok := currentUserID(c); ok {
		return &id
	}
	return nil
}

func parseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, service.ErrNotFound
	}
	return uint(id), nil
}

func parsePage(c *gin.Context) service.Page {
	page := service.Page{Number: 1, Limit: 6}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page.Number = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		page.Limit = v
	}
	return page
}

// paginated builds the envelope with next/previous page links.
func paginated(c *gin.Context, page service.Page, count int64, results interface{}) gin.H {
	var next, previous *string
	if int64(page.Number*page.Limit) < count {
		next = pageURL(c, page.Number+1)
	}
	if page.Number > 1 {
		previous = pageURL(c, page.Number-1)
	}
	return gin.H{
		"count":    count,
		"next":     next,
		"previous": previous,
		"results":  results,
	}
}

func pageURL(c *gin.Context, page int) *string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

// abortWithError maps the service error taxonomy onto HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, ve.Fields)
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrSelfSubscription),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
	c.Abort()
}

// bindJSON wraps gin binding so malformed bodies surface as a 400 with a
// consistent shape.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		c.Abort()
		return err
	}
	return nil
}
