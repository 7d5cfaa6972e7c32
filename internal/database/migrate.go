package database

import (
	"fmt"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table together with the unique indexes,
// check constraints and cascading foreign keys the services rely on
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Recipe{}, "Tags", &models.RecipeTag{}); err != nil {
		return fmt.Errorf("setting up recipe_tags join table: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeTag{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.Cart{},
		&models.Follow{},
		&models.OAuthClient{},
		&models.OAuthToken{},
	)
	if err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}

	log.Info("Database schema migrated")
	return nil
}
