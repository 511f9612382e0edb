package database

import (
	"gorm.io/gorm"

	"github.com/Valneuskaya/foodgram-project-react/internal/models"
)

// Migrate creates or updates the schema for all application models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.IngredientAmount{},
		&models.Favorite{},
		&models.ShoppingCart{},
	)
}
