package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Valneuskaya/foodgram-project-react/internal/models"
)

// RelationKind selects which (user, recipe) relation a toggle acts on.
type RelationKind string

const (
	RelationFavorite RelationKind = "favorite"
	RelationCart     RelationKind = "shopping_cart"
)

// RelationService toggles favorite and shopping-cart membership. Both kinds
// share one code path; the unique index on (user, recipe) serializes
// concurrent adds so the loser gets ErrConflict.
type RelationService struct {
	db *gorm.DB
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

// Add creates the relation and returns a compact summary of the recipe.
// Adding an existing pair fails with ErrConflict.
func (s *RelationService) Add(ctx context.Context, userID, recipeID uint, kind RelationKind) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var err error
	switch kind {
	case RelationFavorite:
		err = s.db.WithContext(ctx).Create(&models.Favorite{UserID: userID, RecipeID: recipeID}).Error
	case RelationCart:
		err = s.db.WithContext(ctx).Create(&models.ShoppingCart{UserID: userID, RecipeID: recipeID}).Error
	default:
		return nil, errors.New("unknown relation kind")
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return &recipe, nil
}

// Remove deletes the relation, failing with ErrNotFound when it is absent.
func (s *RelationService) Remove(ctx context.Context, userID, recipeID uint, kind RelationKind) error {
	var result *gorm.DB
	switch kind {
	case RelationFavorite:
		result = s.db.WithContext(ctx).
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Delete(&models.Favorite{})
	case RelationCart:
		result = s.db.WithContext(ctx).
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Delete(&models.ShoppingCart{})
	default:
		return errors.New("unknown relation kind")
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
