package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Valneuskaya/foodgram-project-react/internal/models"
)

// ShoppingListItem is one aggregated line of the report, grouped by the
// display pair (name, unit) rather than by ingredient id.
type ShoppingListItem struct {
	Name   string
	Unit   string
	Amount int
}

// ShoppingListService reduces a user's cart into a deduplicated,
// summed ingredient report.
type ShoppingListService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{
		db:  db,
		now: time.Now,
	}
}

// Build aggregates all ingredient lines of the recipes in the user's cart.
// An empty cart fails with ErrEmptyCart instead of producing an empty report.
func (s *ShoppingListService) Build(ctx context.Context, userID uint) ([]ShoppingListItem, error) {
	var cartSize int64
	if err := s.db.WithContext(ctx).Model(&models.ShoppingCart{}).Where("user_id = ?", userID).Count(&cartSize).Error; err != nil {
		return nil, err
	}
	if cartSize == 0 {
		return nil, ErrEmptyCart
	}

	var items []ShoppingListItem
	err := s.db.WithContext(ctx).
		Table("ingredient_amounts").
		Select("ingredients.name AS name, ingredients.measurement_unit AS unit, SUM(ingredient_amounts.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_amounts.ingredient_id").
		Where("ingredient_amounts.recipe_id IN (SELECT recipe_id FROM shopping_carts WHERE user_id = ?)", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Render produces the downloadable plain-text report.
func (s *ShoppingListService) Render(ctx context.Context, userID uint) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	items, err := s.Build(ctx, userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list for:\n\n%s\n\n%s\n\n", user.FirstName, s.now().Format("02/01/2006 15:04"))
	for _, item := range items {
		fmt.Fprintf(&b, "%s: %d %s\n", item.Name, item.Amount, item.Unit)
	}
	b.WriteString("\n\nCounted in Foodgram")
	return b.String(), nil
}
