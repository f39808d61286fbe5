package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"nutricalc/internal/nutrition"
	"nutricalc/models"
)

// IngredientFields is the full set of writable ingredient attributes.
type IngredientFields struct {
	Name   string
	Macros nutrition.Macros
}

// CreateIngredient stores a new ingredient owned by ownerID.
func (s *Store) CreateIngredient(ctx context.Context, ownerID uint, fields IngredientFields) (*models.Ingredient, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	ingredient := &models.Ingredient{
		OwnerID:  ownerID,
		Name:     strings.TrimSpace(fields.Name),
		Calories: fields.Macros.Calories,
		Protein:  fields.Macros.Protein,
		Fat:      fields.Macros.Fat,
		Carbs:    fields.Macros.Carbs,
	}
	if err := db.Create(ingredient).Error; err != nil {
		return nil, fmt.Errorf("create ingredient: %w", err)
	}
	return ingredient, nil
}

// ListIngredients returns the owner's ingredients in insertion order,
// optionally filtered by a case-insensitive name substring.
func (s *Store) ListIngredients(ctx context.Context, ownerID uint, search string) ([]models.Ingredient, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Where("owner_id = ?", ownerID).Order("id asc")
	if term := strings.TrimSpace(search); term != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(term))
	}

	var results []models.Ingredient
	if err := query.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return results, nil
}

// GetIngredient loads one of the owner's ingredients.
func (s *Store) GetIngredient(ctx context.Context, ownerID, id uint) (*models.Ingredient, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	return findIngredient(db, ownerID, id)
}

// FindIngredientByName returns the owner's oldest ingredient whose name
// matches case-insensitively.
func (s *Store) FindIngredientByName(ctx context.Context, ownerID uint, name string) (*models.Ingredient, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	ingredient := &models.Ingredient{}
	err = db.Where("owner_id = ? AND LOWER(name) = ?", ownerID, strings.ToLower(strings.TrimSpace(name))).
		Order("id asc").
		First(ingredient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ingredient %q: %w", name, ErrNotFound)
		}
		return nil, err
	}
	return ingredient, nil
}

func findIngredient(db *gorm.DB, ownerID, id uint) (*models.Ingredient, error) {
	ingredient := &models.Ingredient{}
	if err := db.Where("id = ? AND owner_id = ?", id, ownerID).First(ingredient).Error; err != nil {
		return nil, notFound(err, "ingredient", id)
	}
	return ingredient, nil
}

// UpdateIngredient replaces every writable field of one of the owner's
// ingredients.
func (s *Store) UpdateIngredient(ctx context.Context, ownerID, id uint, fields IngredientFields) (*models.Ingredient, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	ingredient, err := findIngredient(db, ownerID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":     strings.TrimSpace(fields.Name),
		"calories": fields.Macros.Calories,
		"protein":  fields.Macros.Protein,
		"fat":      fields.Macros.Fat,
		"carbs":    fields.Macros.Carbs,
	}
	if err := db.Model(ingredient).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update ingredient %d: %w", id, err)
	}

	return findIngredient(db, ownerID, id)
}

// DeleteIngredient removes one of the owner's ingredients and every recipe
// link that references it, in one transaction.
func (s *Store) DeleteIngredient(ctx context.Context, ownerID, id uint) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		ingredient, err := findIngredient(tx, ownerID, id)
		if err != nil {
			return err
		}
		if err := tx.Where("ingredient_id = ?", ingredient.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("delete recipe links for ingredient %d: %w", id, err)
		}
		if err := tx.Delete(ingredient).Error; err != nil {
			return fmt.Errorf("delete ingredient %d: %w", id, err)
		}
		return nil
	})
}
