package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valneuskaya/foodgram-project-react/internal/models"
)

func TestUserGetSubscriptionFlag(t *testing.T) {
	db := setupServiceTest(t)
	viewer := createTestUser(t, db, "Alice")
	followed := createTestUser(t, db, "Bob")
	other := createTestUser(t, db, "Carol")
	require.NoError(t, db.Create(&models.Subscription{UserID: viewer.ID, AuthorID: followed.ID}).Error)

	svc := NewUserService(db)

	view, err := svc.Get(context.Background(), &viewer.ID, followed.ID)
	require.NoError(t, err)
	assert.True(t, view.IsSubscribed)

	view, err = svc.Get(context.Background(), &viewer.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, view.IsSubscribed)

	view, err = svc.Get(context.Background(), &viewer.ID, viewer.ID)
	require.NoError(t, err)
	assert.False(t, view.IsSubscribed, "users never follow themselves")

	view, err = svc.Get(context.Background(), nil, followed.ID)
	require.NoError(t, err)
	assert.False(t, view.IsSubscribed, "anonymous flag is always false")

	_, err = svc.Get(context.Background(), &viewer.ID, 9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserListPaginatesAndAnnotates(t *testing.T) {
	db := setupServiceTest(t)
	viewer := createTestUser(t, db, "Alice")
	bob := createTestUser(t, db, "Bob")
	createTestUser(t, db, "Carol")
	require.NoError(t, db.Create(&models.Subscription{UserID: viewer.ID, AuthorID: bob.ID}).Error)

	svc := NewUserService(db)

	views, total, err := svc.List(context.Background(), &viewer.ID, Page{Number: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, views, 2)
	assert.Equal(t, viewer.ID, views[0].User.ID)
	assert.False(t, views[0].IsSubscribed)
	assert.Equal(t, bob.ID, views[1].User.ID)
	assert.True(t, views[1].IsSubscribed)

	views, _, err = svc.List(context.Background(), &viewer.ID, Page{Number: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Carol", views[0].User.Username)
}
