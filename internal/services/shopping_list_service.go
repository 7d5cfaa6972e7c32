package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/franciscosanchezn/foodgram-api/internal/apperror"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ShoppingListFilename is the attachment name of an exported shopping list
const ShoppingListFilename = "shopping_list.txt"

// ShoppingListService sums the ingredients of every recipe in a user's cart
type ShoppingListService interface {
	// AggregateShoppingList groups cart ingredients by (name, unit) and sums the
	// amounts. Rows are ordered by name, then unit. An empty cart is an error.
	AggregateShoppingList(ctx context.Context, userID uint) ([]models.ShoppingListRow, error)
}

type shoppingListService struct {
	db *gorm.DB
}

// NewShoppingListService creates a new instance of ShoppingListService
func NewShoppingListService(db *gorm.DB) ShoppingListService {
	return &shoppingListService{db: db}
}

func (s *shoppingListService) AggregateShoppingList(ctx context.Context, userID uint) ([]models.ShoppingListRow, error) {
	var rows []models.ShoppingListRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entries int64
		if err := tx.Model(&models.Cart{}).Where("user_id = ?", userID).Count(&entries).Error; err != nil {
			return err
		}
		if entries == 0 {
			return apperror.EmptyCart()
		}

		return tx.Table("recipe_ingredients").
			Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total_amount").
			Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
			Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
			Where("shopping_carts.user_id = ?", userID).
			Group("ingredients.name, ingredients.measurement_unit").
			Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	// collation differs between engines, so the final order is fixed here
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].MeasurementUnit < rows[j].MeasurementUnit
	})

	log.WithFields(logrus.Fields{
		"user_id": userID,
		"rows":    len(rows),
	}).Debug("Shopping list aggregated")
	return rows, nil
}

// RenderShoppingList formats rows as the plain text shopping list download
func RenderShoppingList(rows []models.ShoppingListRow) []byte {
	var buf bytes.Buffer
	buf.WriteString("Shopping list:\n")
	for _, row := range rows {
		fmt.Fprintf(&buf, "- %s %d %s\n", row.Name, row.TotalAmount, row.MeasurementUnit)
	}
	return buf.Bytes()
}
