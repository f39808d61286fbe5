package models

import (
	"gorm.io/gorm"

	"nutricalc/internal/nutrition"
)

// Ingredient stores nutrient values per 100 g. Rows are private to their owner.
type Ingredient struct {
	gorm.Model
	OwnerID  uint    `gorm:"not null;index" json:"owner_id"`
	Owner    *User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Name     string  `gorm:"type:varchar(100);not null" json:"name"`
	Calories float64 `gorm:"not null" json:"calories"`
	Protein  float64 `gorm:"not null" json:"protein"`
	Fat      float64 `gorm:"not null" json:"fat"`
	Carbs    float64 `gorm:"not null" json:"carbs"`
}

// Macros returns the per-100g values of the ingredient.
func (i Ingredient) Macros() nutrition.Macros {
	return nutrition.Macros{
		Calories: i.Calories,
		Protein:  i.Protein,
		Fat:      i.Fat,
		Carbs:    i.Carbs,
	}
}
