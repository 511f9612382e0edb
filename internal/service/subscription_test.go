package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valneuskaya/foodgram-project-react/internal/models"
)

func TestSubscribeRejectsSelf(t *testing.T) {
	db := setupServiceTest(t)
	user := createTestUser(t, db, "Alice")

	svc := NewSubscriptionService(db)
	_, err := svc.Subscribe(context.Background(), user.ID, user.ID, 0)
	require.ErrorIs(t, err, ErrSelfSubscription)
}

func TestSubscribeTwiceConflicts(t *testing.T) {
	db := setupServiceTest(t)
	follower := createTestUser(t, db, "Alice")
	author := createTestUser(t, db, "Bob")

	svc := NewSubscriptionService(db)
	profile, err := svc.Subscribe(context.Background(), follower.ID, author.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, author.ID, profile.User.ID)
	assert.True(t, profile.IsSubscribed)

	_, err = svc.Subscribe(context.Background(), follower.ID, author.ID, 0)
	require.ErrorIs(t, err, ErrConflict)
}

func TestSubscribeUnknownAuthor(t *testing.T) {
	db := setupServiceTest(t)
	follower := createTestUser(t, db, "Alice")

	svc := NewSubscriptionService(db)
	_, err := svc.Subscribe(context.Background(), follower.ID, 9999, 0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUnsubscribe(t *testing.T) {
	db := setupServiceTest(t)
	follower := createTestUser(t, db, "Alice")
	author := createTestUser(t, db, "Bob")

	svc := NewSubscriptionService(db)
	_, err := svc.Subscribe(context.Background(), follower.ID, author.ID, 0)
	require.NoError(t, err)

	require.NoError(t, svc.Unsubscribe(context.Background(), follower.ID, author.ID))
	require.ErrorIs(t, svc.Unsubscribe(context.Background(), follower.ID, author.ID), ErrNotFound)
}

func TestSubscriptionListCountsAndPreviews(t *testing.T) {
	db := setupServiceTest(t)
	follower := createTestUser(t, db, "Alice")
	author := createTestUser(t, db, "Bob")
	quiet := createTestUser(t, db, "Carol")
	tag := createTestTag(t, db, "lunch", "lunch")
	flour := createTestIngredient(t, db, "flour", "g")
	lines := []IngredientAmountInput{{ID: flour.ID, Amount: 100}}

	for _, name := range []string{"one", "two", "three", "four", "five"} {
		createTestRecipe(t, db, author, name, []uint{tag.ID}, lines)
	}

	svc := NewSubscriptionService(db)
	_, err := svc.Subscribe(context.Background(), follower.ID, author.ID, 0)
	require.NoError(t, err)
	_, err = svc.Subscribe(context.Background(), follower.ID, quiet.ID, 0)
	require.NoError(t, err)

	profiles, total, err := svc.List(context.Background(), follower.ID, Page{}, 0)
	require.NoError(t, err)

	assert.EqualValues(t, 2, total)
	require.Len(t, profiles, 2)

	byID := map[uint]AuthorProfile{}
	for _, p := range profiles {
		byID[p.User.ID] = p
	}

	busy := byID[author.ID]
	assert.EqualValues(t, 5, busy.RecipesCount, "count covers all recipes, not the preview")
	assert.Len(t, busy.Recipes, DefaultRecipePreviewLimit)

	empty := byID[quiet.ID]
	assert.Zero(t, empty.RecipesCount)
	assert.Empty(t, empty.Recipes)
}

func TestSubscriptionListHonorsPreviewLimit(t *testing.T) {
	db := setupServiceTest(t)
	follower := createTestUser(t, db, "Alice")
	author := createTestUser(t, db, "Bob")
	tag := createTestTag(t, db, "lunch", "lunch")
	flour := createTestIngredient(t, db, "flour", "g")
	lines := []IngredientAmountInput{{ID: flour.ID, Amount: 100}}

	for _, name := range []string{"one", "two", "three"} {
		createTestRecipe(t, db, author, name, []uint{tag.ID}, lines)
	}
	require.NoError(t, db.Create(&models.Subscription{UserID: follower.ID, AuthorID: author.ID}).Error)

	svc := NewSubscriptionService(db)
	profiles, _, err := svc.List(context.Background(), follower.ID, Page{}, 1)
	require.NoError(t, err)

	require.Len(t, profiles, 1)
	assert.Len(t, profiles[0].Recipes, 1)
	assert.EqualValues(t, 3, profiles[0].RecipesCount)
}
