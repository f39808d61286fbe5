package models

import (
	"gorm.io/gorm"

	"nutricalc/internal/nutrition"
)

type Recipe struct {
	gorm.Model
	OwnerID uint               `gorm:"not null;index" json:"owner_id"`
	Owner   *User              `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Name    string             `gorm:"type:varchar(100);not null" json:"name"`
	Items   []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
}

// Portions converts the preloaded items into aggregation input. Items whose
// ingredient was not preloaded are skipped.
func (r Recipe) Portions() []nutrition.Portion {
	portions := make([]nutrition.Portion, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Ingredient == nil {
			continue
		}
		portions = append(portions, nutrition.Portion{
			Per100g: item.Ingredient.Macros(),
			Grams:   item.Quantity,
		})
	}
	return portions
}

// Totals aggregates the recipe's preloaded items.
func (r Recipe) Totals() nutrition.Totals {
	return nutrition.Sum(r.Portions())
}
