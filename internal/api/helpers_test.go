package api_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Valneuskaya/foodgram-project-react/internal/api"
	"github.com/Valneuskaya/foodgram-project-react/internal/models"
	"github.com/Valneuskaya/foodgram-project-react/internal/router"
	"github.com/Valneuskaya/foodgram-project-react/internal/service"
	"github.com/Valneuskaya/foodgram-project-react/internal/testhelpers"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)

	imageService := service.NewImageService(nil, t.TempDir(), "/media")
	authService := service.NewAuthService(db, nil, "test-secret")
	userService := service.NewUserService(db)
	catalogService := service.NewCatalogService(db, nil)
	recipeService := service.NewRecipeService(db, imageService)
	queryService := service.NewRecipeQueryService(db)
	relationService := service.NewRelationService(db)
	shoppingListService := service.NewShoppingListService(db)
	subscriptionService := service.NewSubscriptionService(db)

	r := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewUserHandler(authService, userService, subscriptionService),
		api.NewRecipeHandler(authService, recipeService, queryService, relationService, shoppingListService),
		api.NewCatalogHandler(db, authService, catalogService),
		"http://localhost:3000",
		"", // no static media in tests
		"/media",
	)
	return r, db
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), "body: %s", w.Body.String())
}

// registerAndLogin creates a user through the public endpoints and returns
// its id and auth token.
func registerAndLogin(t *testing.T, r *gin.Engine, username string) (uint, string) {
	t.Helper()

	email := fmt.Sprintf("%s@example.com", username)
	w := doJSON(t, r, http.MethodPost, "/api/users", "", gin.H{
		"email":      email,
		"username":   username,
		"first_name": username,
		"last_name":  "Tester",
		"password":   "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var created api.UserResponse
	decodeBody(t, w, &created)

	w = doJSON(t, r, http.MethodPost, "/api/auth/token/login", "", gin.H{
		"email":    email,
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var login struct {
		AuthToken string `json:"auth_token"`
	}
	decodeBody(t, w, &login)
	require.NotEmpty(t, login.AuthToken)
	return created.ID, login.AuthToken
}

func seedTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()
	tag := models.Tag{Name: slug, Color: "#E26C2D", Slug: slug}
	require.NoError(t, db.Create(&tag).Error)
	return &tag
}

func seedIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&ingredient).Error)
	return &ingredient
}

func imagePayload() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
}

func recipeBody(tagID, ingredientID uint) gin.H {
	return gin.H{
		"name":         "test recipe",
		"text":         "cook it",
		"image":        imagePayload(),
		"cooking_time": 25,
		"tags":         []uint{tagID},
		"ingredients":  []gin.H{{"id": ingredientID, "amount": 100}},
	}
}
