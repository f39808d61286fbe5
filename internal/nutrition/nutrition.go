// Package nutrition aggregates per-100g macro values into recipe totals.
package nutrition

import (
	"math"
	"sort"
	"strconv"
)

// Macros holds nutrient values expressed per 100 g of an ingredient.
type Macros struct {
	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64
}

// Portion is an amount in grams of an ingredient with known macros.
type Portion struct {
	Per100g Macros
	Grams   float64
}

// Totals are the rounded sums for a list of portions.
type Totals struct {
	Calories float64 `json:"total_calories"`
	Protein  float64 `json:"total_protein"`
	Fat      float64 `json:"total_fat"`
	Carbs    float64 `json:"total_carbs"`
}

// Sum scales every portion by grams/100 and rounds the accumulated totals to
// two decimals. An empty slice yields zero totals.
func Sum(portions []Portion) Totals {
	var raw Macros
	for _, portion := range portions {
		factor := portion.Grams / 100.0
		raw.Calories += portion.Per100g.Calories * factor
		raw.Protein += portion.Per100g.Protein * factor
		raw.Fat += portion.Per100g.Fat * factor
		raw.Carbs += portion.Per100g.Carbs * factor
	}

	return Totals{
		Calories: Round2(raw.Calories),
		Protein:  Round2(raw.Protein),
		Fat:      Round2(raw.Fat),
		Carbs:    Round2(raw.Carbs),
	}
}

// Calories returns the rounded calorie total of the portions.
func Calories(portions []Portion) float64 {
	return Sum(portions).Calories
}

// Round2 rounds the exact binary value to two decimal places, ties to even.
func Round2(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(value, 'f', 2, 64), 64)
	if err != nil {
		return value
	}
	if rounded == 0 {
		// normalise -0
		return 0
	}
	return rounded
}

// Ranked pairs an arbitrary item with its computed totals so callers can
// filter and order on derived values.
type Ranked[T any] struct {
	Item   T
	Totals Totals
}

// AtLeastCalories keeps the entries whose total calories are >= min,
// preserving order.
func AtLeastCalories[T any](entries []Ranked[T], min float64) []Ranked[T] {
	filtered := make([]Ranked[T], 0, len(entries))
	for _, entry := range entries {
		if entry.Totals.Calories >= min {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// SortByCalories orders entries by total calories. Equal totals keep their
// relative order.
func SortByCalories[T any](entries []Ranked[T], descending bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		if descending {
			return entries[i].Totals.Calories > entries[j].Totals.Calories
		}
		return entries[i].Totals.Calories < entries[j].Totals.Calories
	})
}
