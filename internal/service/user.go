package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Valneuskaya/foodgram-project-react/internal/models"
)

// UserView is a user annotated with whether the requester follows them.
type UserView struct {
	User         models.User
	IsSubscribed bool
}

// UserService serves user profiles for listing and retrieval.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Get returns one user; is_subscribed is computed relative to the requester
// and is false for anonymous requesters and for the user themselves.
func (s *UserService) Get(ctx context.Context, requester *uint, id uint) (*UserView, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	view := UserView{User: user}
	if requester != nil && *requester != user.ID {
		var count int64
		err := s.db.WithContext(ctx).
			Model(&models.Subscription{}).
			Where("user_id = ? AND author_id = ?", *requester, user.ID).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		view.IsSubscribed = count > 0
	}
	return &view, nil
}

// List returns one page of users ordered by id, each annotated with
// is_subscribed in a single bulk query for the page.
func (s *UserService) List(ctx context.Context, requester *uint, page Page) ([]UserView, int64, error) {
	page = page.normalized()

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Order("id ASC").
		Offset(page.offset()).
		Limit(page.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	views := make([]UserView, len(users))
	for i, u := range users {
		views[i] = UserView{User: u}
	}
	if requester == nil || len(users) == 0 {
		return views, total, nil
	}

	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	var followed []uint
	err = s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", *requester, ids).
		Pluck("author_id", &followed).Error
	if err != nil {
		return nil, 0, err
	}
	followedSet := toSet(followed)
	for i := range views {
		views[i].IsSubscribed = followedSet[views[i].User.ID]
	}
	return views, total, nil
}
