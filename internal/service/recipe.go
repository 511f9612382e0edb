package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"github.com/Valneuskaya/foodgram-project-react/internal/models"
)

const (
	minCookingTime = 1
	maxCookingTime = 600
	minAmount      = 1
	maxAmount      = 10000
)

// IngredientAmountInput is one (ingredient, amount) line of a write request.
type IngredientAmountInput struct {
	ID     uint
	Amount int
}

// RecipeInput carries the fields of a create or update request. Nil
// pointers and nil slices mark fields the caller did not supply; on update
// those keep their previous values.
type RecipeInput struct {
	Name        *string
	Text        *string
	Image       *string
	CookingTime *int
	TagIDs      []uint
	Ingredients []IngredientAmountInput
}

// RecipeService validates and atomically persists recipes together with
// their tag set and ingredient lines.
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
	}
}

// CreateRecipe validates the input, stores the image and commits the recipe
// row together with its relations in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uint, in RecipeInput) (*models.Recipe, error) {
	ve := &ValidationError{}
	if in.Name == nil {
		ve.Add("name", "is required")
	}
	if in.Text == nil {
		ve.Add("text", "is required")
	}
	if in.Image == nil {
		ve.Add("image", "is required")
	}
	if in.CookingTime == nil {
		ve.Add("cooking_time", "is required")
	}
	if in.TagIDs == nil {
		ve.Add("tags", "is required")
	}
	if in.Ingredients == nil {
		ve.Add("ingredients", "is required")
	}
	if !ve.Empty() {
		return nil, ve
	}

	name, tags, lines, err := s.validateInput(ctx, in)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.images.Store(ctx, *in.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        name,
		AuthorID:    authorID,
		Image:       imageURL,
		Text:        *in.Text,
		CookingTime: *in.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Ingredients").Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Append(tags); err != nil {
			return err
		}
		return insertIngredientLines(tx, recipe.ID, lines)
	})
	if err != nil {
		return nil, err
	}

	return s.loadRecipe(ctx, recipe.ID)
}

// UpdateRecipe applies the supplied fields to an existing recipe. Tag sets
// and ingredient lines are replaced wholesale, never merged.
func (s *RecipeService) UpdateRecipe(ctx context.Context, recipeID, editorID uint, in RecipeInput) (*models.Recipe, error) {
	recipe, err := s.authorize(ctx, recipeID, editorID)
	if err != nil {
		return nil, err
	}

	name, tags, lines, err := s.validateInput(ctx, in)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = name
	}
	if in.Text != nil {
		updates["text"] = *in.Text
	}
	if in.CookingTime != nil {
		updates["cooking_time"] = *in.CookingTime
	}
	if in.Image != nil {
		imageURL, err := s.images.Store(ctx, *in.Image)
		if err != nil {
			return nil, err
		}
		updates["image"] = imageURL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(recipe).Updates(updates).Error; err != nil {
				return err
			}
		}
		if in.TagIDs != nil {
			if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		if in.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientAmount{}).Error; err != nil {
				return err
			}
			return insertIngredientLines(tx, recipe.ID, lines)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.loadRecipe(ctx, recipe.ID)
}

// DeleteRecipe removes a recipe and everything that hangs off it.
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID, editorID uint) error {
	recipe, err := s.authorize(ctx, recipeID, editorID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientAmount{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCart{}).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
}

// authorize loads the recipe and checks that the editor is the author or an
// administrator.
func (s *RecipeService) authorize(ctx context.Context, recipeID, editorID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID == editorID {
		return &recipe, nil
	}
	var editor models.User
	if err := s.db.WithContext(ctx).First(&editor, editorID).Error; err != nil {
		return nil, ErrPermission
	}
	if !editor.IsAdmin {
		return nil, ErrPermission
	}
	return &recipe, nil
}

// validateInput checks every supplied field before anything is written, so
// a failing request leaves no partial state behind.
func (s *RecipeService) validateInput(ctx context.Context, in RecipeInput) (string, []models.Tag, []IngredientAmountInput, error) {
	ve := &ValidationError{}

	var name string
	if in.Name != nil {
		name = titleCase(strings.TrimSpace(*in.Name))
		if name == "" {
			ve.Add("name", "must not be empty")
		}
	}
	if in.CookingTime != nil {
		if *in.CookingTime < minCookingTime || *in.CookingTime > maxCookingTime {
			ve.Add("cooking_time", "must be between 1 and 600 minutes")
		}
	}
	if in.TagIDs != nil && len(in.TagIDs) == 0 {
		ve.Add("tags", "must not be empty")
	}

	var lines []IngredientAmountInput
	if in.Ingredients != nil {
		if len(in.Ingredients) == 0 {
			ve.Add("ingredients", "must not be empty")
		}
		lines = dedupeIngredients(in.Ingredients)
		for _, line := range lines {
			if line.Amount < minAmount || line.Amount > maxAmount {
				ve.Add("ingredients", "amount must be between 1 and 10000")
				break
			}
		}
	}
	if !ve.Empty() {
		return "", nil, nil, ve
	}

	var tags []models.Tag
	if len(in.TagIDs) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", in.TagIDs).Find(&tags).Error; err != nil {
			return "", nil, nil, err
		}
		if len(tags) != len(uniqueIDs(in.TagIDs)) {
			return "", nil, nil, ErrNotFound
		}
	}
	if len(lines) > 0 {
		ids := make([]uint, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.ID)
		}
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
			return "", nil, nil, err
		}
		if count != int64(len(ids)) {
			return "", nil, nil, ErrNotFound
		}
	}

	return name, tags, lines, nil
}

func (s *RecipeService) loadRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func insertIngredientLines(tx *gorm.DB, recipeID uint, lines []IngredientAmountInput) error {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]models.IngredientAmount, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, models.IngredientAmount{
			RecipeID:     recipeID,
			IngredientID: line.ID,
			Amount:       line.Amount,
		})
	}
	return tx.Create(&rows).Error
}

// dedupeIngredients collapses duplicate ingredient ids, last entry wins,
// preserving first-seen order.
func dedupeIngredients(lines []IngredientAmountInput) []IngredientAmountInput {
	index := make(map[uint]int, len(lines))
	out := make([]IngredientAmountInput, 0, len(lines))
	for _, line := range lines {
		if at, seen := index[line.ID]; seen {
			out[at] = line
			continue
		}
		index[line.ID] = len(out)
		out = append(out, line)
	}
	return out
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func titleCase(s string) string {
	prev := ' '
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(prev) {
			prev = r
			return unicode.ToUpper(r)
		}
		prev = r
		return r
	}, s)
}
