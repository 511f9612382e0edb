package api

import (
	"github.com/Valneuskaya/foodgram-project-react/internal/models"
	"github.com/Valneuskaya/foodgram-project-react/internal/service"
)

// UserResponse is the outward user shape; the password hash never leaves
// the service layer.
type UserResponse struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type IngredientInRecipeResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeResponse struct {
	ID               uint                         `json:"id"`
	Tags             []models.Tag                 `json:"tags"`
	Author           UserResponse                 `json:"author"`
	Ingredients      []IngredientInRecipeResponse `json:"ingredients"`
	IsFavorited      bool                         `json:"is_favorited"`
	IsInShoppingCart bool                         `json:"is_in_shopping_cart"`
	Name             string                       `json:"name"`
	Image            string                       `json:"image"`
	Text             string                       `json:"text"`
	CookingTime      int                          `json:"cooking_time"`
}

// RecipeSummaryResponse is the compact shape returned by relation toggles
// and subscription previews.
type RecipeSummaryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeSummaryResponse `json:"recipes"`
	RecipesCount int64                   `json:"recipes_count"`
}

// ingredientAmountRequest is one ingredient line of a recipe write request.
type ingredientAmountRequest struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// recipeRequest covers create and partial update; nil means "not supplied".
type recipeRequest struct {
	Ingredients []ingredientAmountRequest `json:"ingredients"`
	Tags        []uint                    `json:"tags"`
	Image       *string                   `json:"image"`
	Name        *string                   `json:"name"`
	Text        *string                   `json:"text"`
	CookingTime *int                      `json:"cooking_time"`
}

func (r recipeRequest) toInput() service.RecipeInput {
	in := service.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		Image:       r.Image,
		CookingTime: r.CookingTime,
		TagIDs:      r.Tags,
	}
	if r.Ingredients != nil {
		in.Ingredients = make([]service.IngredientAmountInput, len(r.Ingredients))
		for i, line := range r.Ingredients {
			in.Ingredients[i] = service.IngredientAmountInput{ID: line.ID, Amount: line.Amount}
		}
	}
	return in
}

func newUserResponse(user models.User, isSubscribed bool) UserResponse {
	return UserResponse{
		Email:        user.Email,
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
	}
}

func newRecipeResponse(view service.RecipeView) RecipeResponse {
	recipe := view.Recipe
	ingredients := make([]IngredientInRecipeResponse, len(recipe.Ingredients))
	for i, line := range recipe.Ingredients {
		ingredients[i] = IngredientInRecipeResponse{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		}
	}
	tags := recipe.Tags
	if tags == nil {
		tags = []models.Tag{}
	}
	return RecipeResponse{
		ID:               recipe.ID,
		Tags:             tags,
		Author:           newUserResponse(recipe.Author, view.AuthorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      view.IsFavorited,
		IsInShoppingCart: view.IsInShoppingCart,
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}
}

func newRecipeSummary(recipe models.Recipe) RecipeSummaryResponse {
	return RecipeSummaryResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

func newSubscriptionResponse(profile service.AuthorProfile) SubscriptionResponse {
	recipes := make([]RecipeSummaryResponse, len(profile.Recipes))
	for i, r := range profile.Recipes {
		recipes[i] = newRecipeSummary(r)
	}
	return SubscriptionResponse{
		UserResponse: newUserResponse(profile.User, profile.IsSubscribed),
		Recipes:      recipes,
		RecipesCount: profile.RecipesCount,
	}
}
