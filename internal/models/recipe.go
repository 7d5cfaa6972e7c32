package models

import (
	"time"
)

// Recipe is the aggregate root owning its tag links and ingredient amounts
type Recipe struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	AuthorID    uint               `gorm:"not null;uniqueIndex:idx_recipe_author_name" json:"-"`
	Author      User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Name        string             `gorm:"size:200;not null;uniqueIndex:idx_recipe_author_name" json:"name"`
	Image       string             `gorm:"not null" json:"image"`
	Text        string             `gorm:"type:text;not null" json:"text"`
	CookingTime int                `gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1" json:"cooking_time"`
	Tags        []Tag              `gorm:"many2many:recipe_tags" json:"-"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time          `json:"-"`
	UpdatedAt   time.Time          `json:"-"`
}

// RecipeTag is the join row between a recipe and a tag. Tags outlive recipes.
type RecipeTag struct {
	RecipeID uint   `gorm:"primaryKey"`
	TagID    uint   `gorm:"primaryKey;index"`
	Recipe   Recipe `gorm:"constraint:OnDelete:CASCADE"`
	Tag      Tag    `gorm:"constraint:OnDelete:CASCADE"`
}

// RecipeIngredient is the amount of one ingredient in one recipe
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE"`
	Amount       int        `gorm:"not null;check:chk_recipe_ingredients_amount,amount >= 1"`
}
