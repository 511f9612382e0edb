package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Valneuskaya/foodgram-project-react/internal/models"
	"github.com/Valneuskaya/foodgram-project-react/internal/testhelpers"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func testImagePayload() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		FirstName:    username,
		LastName:     "Tester",
		PasswordHash: "hashed",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Color: "#49B64E", Slug: slug}
	require.NoError(t, db.Create(&tag).Error)
	return &tag
}

func createTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&ingredient).Error)
	return &ingredient
}

func newTestRecipeService(t *testing.T, db *gorm.DB) *RecipeService {
	t.Helper()
	images := NewImageService(nil, t.TempDir(), "/media")
	return NewRecipeService(db, images)
}

// createTestRecipe commits a minimal valid recipe through the write pipeline.
func createTestRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tagIDs []uint, lines []IngredientAmountInput) *models.Recipe {
	t.Helper()
	svc := newTestRecipeService(t, db)
	recipe, err := svc.CreateRecipe(context.Background(), author.ID, RecipeInput{
		Name:        strPtr(name),
		Text:        strPtr("test description"),
		Image:       strPtr(testImagePayload()),
		CookingTime: intPtr(30),
		TagIDs:      tagIDs,
		Ingredients: lines,
	})
	require.NoError(t, err)
	return recipe
}

func setupServiceTest(t *testing.T) *gorm.DB {
	t.Helper()
	return testhelpers.SetupTestDB(t)
}
