package models

import "time"

// RecipeIngredient links a recipe to one of its owner's ingredients. The pair
// (recipe, ingredient) is unique. Rows have no soft-delete column so a
// replaced link never blocks the unique index.
type RecipeIngredient struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	RecipeID     uint    `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"` // Parent Recipe
	IngredientID uint    `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index:idx_recipe_ingredients_ingredient" json:"ingredient_id"`
	Quantity     float64 `gorm:"not null" json:"quantity"` // grams

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
