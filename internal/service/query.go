package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Valneuskaya/foodgram-project-react/internal/models"
)

// RecipeFilter narrows a recipe listing; all fields are optional and
// combine with AND. Multiple tag slugs combine with OR.
type RecipeFilter struct {
	AuthorID  *uint
	TagSlugs  []string
	Favorited bool
	InCart    bool
}

// Page is 1-based pagination.
type Page struct {
	Number int
	Limit  int
}

func (p Page) normalized() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit < 1 {
		p.Limit = 6
	}
	return p
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Limit
}

// RecipeView is a recipe annotated with the requesting user's relations.
type RecipeView struct {
	Recipe           models.Recipe
	IsFavorited      bool
	IsInShoppingCart bool
	AuthorSubscribed bool
}

// RecipeQueryService builds filtered, annotated recipe listings.
type RecipeQueryService struct {
	db *gorm.DB
}

func NewRecipeQueryService(db *gorm.DB) *RecipeQueryService {
	return &RecipeQueryService{db: db}
}

// List returns one page of recipes plus the total match count. requester is
// nil for anonymous users: their annotation flags are always false and the
// favorite/cart filters are ignored.
func (s *RecipeQueryService) List(ctx context.Context, requester *uint, filter RecipeFilter, page Page) ([]RecipeView, int64, error) {
	page = page.normalized()

	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Recipe{})
		if filter.AuthorID != nil {
			q = q.Where("recipes.author_id = ?", *filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			q = q.Where(
				"recipes.id IN (SELECT rt.recipe_id FROM recipe_tags rt JOIN tags ON tags.id = rt.tag_id WHERE tags.slug IN ?)",
				filter.TagSlugs,
			)
		}
		if requester != nil {
			if filter.Favorited {
				q = q.Where(
					"EXISTS (SELECT 1 FROM favorites WHERE favorites.user_id = ? AND favorites.recipe_id = recipes.id)",
					*requester,
				)
			}
			if filter.InCart {
				q = q.Where(
					"EXISTS (SELECT 1 FROM shopping_carts WHERE shopping_carts.user_id = ? AND shopping_carts.recipe_id = recipes.id)",
					*requester,
				)
			}
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := base().
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.pub_date DESC, recipes.id ASC").
		Offset(page.offset()).
		Limit(page.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}

	views, err := s.annotate(ctx, requester, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// Get returns a single annotated recipe.
func (s *RecipeQueryService) Get(ctx context.Context, requester *uint, id uint) (*RecipeView, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	views, err := s.annotate(ctx, requester, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// annotate computes the per-user flags for a page of recipes with one bulk
// membership query per relation, never one per recipe row.
func (s *RecipeQueryService) annotate(ctx context.Context, requester *uint, recipes []models.Recipe) ([]RecipeView, error) {
	views := make([]RecipeView, len(recipes))
	for i, r := range recipes {
		views[i] = RecipeView{Recipe: r}
	}
	if requester == nil || len(recipes) == 0 {
		return views, nil
	}

	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, err := s.membership(ctx, &models.Favorite{}, *requester, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.membership(ctx, &models.ShoppingCart{}, *requester, recipeIDs)
	if err != nil {
		return nil, err
	}

	var followed []uint
	err = s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", *requester, authorIDs).
		Pluck("author_id", &followed).Error
	if err != nil {
		return nil, err
	}
	followedSet := toSet(followed)

	for i := range views {
		views[i].IsFavorited = favorited[views[i].Recipe.ID]
		views[i].IsInShoppingCart = inCart[views[i].Recipe.ID]
		views[i].AuthorSubscribed = followedSet[views[i].Recipe.AuthorID]
	}
	return views, nil
}

func (s *RecipeQueryService) membership(ctx context.Context, model interface{}, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return toSet(ids), nil
}

func toSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
