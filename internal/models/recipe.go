package models

import (
	"time"
)

type Recipe struct {
	ID          uint               `gorm:"primarykey" json:"id"`
	Name        string             `gorm:"size:200;not null" json:"name"`
	AuthorID    uint               `gorm:"not null;index" json:"author_id"`
	Author      User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Image       string             `gorm:"size:255;not null" json:"image"`
	Text        string             `gorm:"type:text;not null" json:"text"`
	CookingTime int                `gorm:"not null" json:"cooking_time"`
	PubDate     time.Time          `gorm:"autoCreateTime;index" json:"pub_date"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []IngredientAmount `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`
}

// IngredientAmount is the (recipe, ingredient, amount) join row. The
// (recipe, ingredient) pair is unique; the write pipeline replaces lines
// instead of accumulating duplicates.
type IngredientAmount struct {
	ID           uint       `gorm:"primarykey" json:"-"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_ingredient_amounts_recipe_ingredient" json:"-"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_ingredient_amounts_recipe_ingredient" json:"id"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"-"`
	Amount       int        `gorm:"not null" json:"amount"`
}
