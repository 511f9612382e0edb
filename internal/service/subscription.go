package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Valneuskaya/foodgram-project-react/internal/models"
)

// DefaultRecipePreviewLimit bounds the recipe preview attached to
// subscription responses.
const DefaultRecipePreviewLimit = 3

// AuthorProfile is a followed author annotated with their recipe count and
// a bounded preview of their latest recipes.
type AuthorProfile struct {
	User         models.User
	IsSubscribed bool
	Recipes      []models.Recipe
	RecipesCount int64
}

// SubscriptionService manages follower relations between users.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe creates the relation and returns the followed author's profile.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, authorID uint, previewLimit int) (*AuthorProfile, error) {
	if userID == authorID {
		return nil, ErrSelfSubscription
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	err := s.db.WithContext(ctx).Create(&models.Subscription{UserID: userID, AuthorID: authorID}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}

	profiles, err := s.buildProfiles(ctx, []models.User{author}, previewLimit)
	if err != nil {
		return nil, err
	}
	return &profiles[0], nil
}

// Unsubscribe removes the relation, failing with ErrNotFound when absent.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of followed authors with annotations, plus the
// total subscription count.
func (s *SubscriptionService) List(ctx context.Context, userID uint, page Page, previewLimit int) ([]AuthorProfile, int64, error) {
	page = page.normalized()

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Subscription{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	err := s.db.WithContext(ctx).
		Where("id IN (SELECT author_id FROM subscriptions WHERE user_id = ?)", userID).
		Order("id ASC").
		Offset(page.offset()).
		Limit(page.Limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}

	profiles, err := s.buildProfiles(ctx, authors, previewLimit)
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// buildProfiles annotates a page of authors using one count query and one
// preview query for the whole page.
func (s *SubscriptionService) buildProfiles(ctx context.Context, authors []models.User, previewLimit int) ([]AuthorProfile, error) {
	if previewLimit <= 0 {
		previewLimit = DefaultRecipePreviewLimit
	}

	profiles := make([]AuthorProfile, len(authors))
	if len(authors) == 0 {
		return profiles, nil
	}

	authorIDs := make([]uint, len(authors))
	for i, a := range authors {
		authorIDs[i] = a.ID
	}

	type authorCount struct {
		AuthorID uint
		Count    int64
	}
	var counts []authorCount
	err := s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS count").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	countByAuthor := make(map[uint]int64, len(counts))
	for _, c := range counts {
		countByAuthor[c.AuthorID] = c.Count
	}

	var recipes []models.Recipe
	err = s.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("pub_date DESC, id ASC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	previewByAuthor := make(map[uint][]models.Recipe, len(authorIDs))
	for _, r := range recipes {
		if len(previewByAuthor[r.AuthorID]) < previewLimit {
			previewByAuthor[r.AuthorID] = append(previewByAuthor[r.AuthorID], r)
		}
	}

	for i, a := range authors {
		profiles[i] = AuthorProfile{
			User:         a,
			IsSubscribed: true,
			Recipes:      previewByAuthor[a.ID],
			RecipesCount: countByAuthor[a.ID],
		}
	}
	return profiles, nil
}
