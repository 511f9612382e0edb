package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valneuskaya/foodgram-project-react/internal/api"
)

func TestRegisterEndpoint(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/users", "", gin.H{
		"email":      "alice@example.com",
		"username":   "alice",
		"first_name": "Alice",
		"last_name":  "Smith",
		"password":   "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var created api.UserResponse
	decodeBody(t, w, &created)
	assert.Equal(t, "Alice", created.Username)
	assert.NotContains(t, w.Body.String(), "password", "hash must never be serialized")

	// same email again
	w = doJSON(t, r, http.MethodPost, "/api/users", "", gin.H{
		"email":      "alice@example.com",
		"username":   "other",
		"first_name": "Other",
		"last_name":  "Smith",
		"password":   "supersecret",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeEndpoint(t *testing.T) {
	r, _ := setupTestRouter(t)
	userID, token := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me api.UserResponse
	decodeBody(t, w, &me)
	assert.Equal(t, userID, me.ID)
	assert.False(t, me.IsSubscribed)

	w = doJSON(t, r, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/users/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetPasswordEndpoint(t *testing.T) {
	r, _ := setupTestRouter(t)
	_, token := registerAndLogin(t, r, "alice")

	w := doJSON(t, r, http.MethodPost, "/api/users/set_password", token, gin.H{
		"current_password": "wrong",
		"new_password":     "freshsecret",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/users/set_password", token, gin.H{
		"current_password": "supersecret",
		"new_password":     "freshsecret",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/token/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "freshsecret",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubscribeEndpoints(t *testing.T) {
	r, db := setupTestRouter(t)
	followerID, followerToken := registerAndLogin(t, r, "alice")
	authorID, authorToken := registerAndLogin(t, r, "bob")
	tag := seedTag(t, db, "dinner")
	flour := seedIngredient(t, db, "flour", "g")

	for i := 0; i < 4; i++ {
		body := recipeBody(tag.ID, flour.ID)
		body["name"] = fmt.Sprintf("dish %c", 'a'+i)
		w := doJSON(t, r, http.MethodPost, "/api/recipes", authorToken, body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// self subscription
	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", followerID), followerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path := fmt.Sprintf("/api/users/%d/subscribe", authorID)
	w = doJSON(t, r, http.MethodPost, path, followerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var sub api.SubscriptionResponse
	decodeBody(t, w, &sub)
	assert.Equal(t, authorID, sub.ID)
	assert.True(t, sub.IsSubscribed)
	assert.EqualValues(t, 4, sub.RecipesCount)
	assert.Len(t, sub.Recipes, 3, "preview is capped")

	// duplicate
	w = doJSON(t, r, http.MethodPost, path, followerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// listing honors recipes_limit
	w = doJSON(t, r, http.MethodGet, "/api/users/subscriptions?recipes_limit=1", followerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Count   int64                  `json:"count"`
		Results []api.SubscriptionResponse `json:"results"`
	}
	decodeBody(t, w, &envelope)
	assert.EqualValues(t, 1, envelope.Count)
	require.Len(t, envelope.Results, 1)
	assert.Len(t, envelope.Results[0].Recipes, 1)

	w = doJSON(t, r, http.MethodDelete, path, followerToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodDelete, path, followerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUserSubscriptionFlag(t *testing.T) {
	r, _ := setupTestRouter(t)
	_, followerToken := registerAndLogin(t, r, "alice")
	authorID, _ := registerAndLogin(t, r, "bob")

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", authorID), followerToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/users/%d", authorID), followerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile api.UserResponse
	decodeBody(t, w, &profile)
	assert.True(t, profile.IsSubscribed)

	// anonymous view of the same profile
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/users/%d", authorID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &profile)
	assert.False(t, profile.IsSubscribed)
}
