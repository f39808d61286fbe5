package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"nutricalc/models"
)

// RecipeLine is one (ingredient, grams) pair of a recipe write.
type RecipeLine struct {
	IngredientID uint
	Quantity     float64
}

// CreateRecipe stores a recipe and its ingredient links. Every ingredient must
// belong to ownerID; otherwise nothing is written and ErrNotFound is returned.
func (s *Store) CreateRecipe(ctx context.Context, ownerID uint, name string, lines []RecipeLine) (*models.Recipe, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{OwnerID: ownerID, Name: strings.TrimSpace(name)}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := resolveLines(tx, ownerID, lines); err != nil {
			return err
		}
		if err := tx.Create(recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		return insertLines(tx, recipe.ID, lines)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, ownerID, recipe.ID)
}

// ListRecipes returns the owner's recipes with their items and ingredients
// preloaded, optionally filtered by a case-insensitive name substring.
func (s *Store) ListRecipes(ctx context.Context, ownerID uint, name string) ([]models.Recipe, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	query := withItems(db).Where("owner_id = ?", ownerID).Order("id asc")
	if term := strings.TrimSpace(name); term != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(term))
	}

	var results []models.Recipe
	if err := query.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return results, nil
}

// GetRecipe loads one of the owner's recipes with items and ingredients.
func (s *Store) GetRecipe(ctx context.Context, ownerID, id uint) (*models.Recipe, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{}
	if err := withItems(db).Where("id = ? AND owner_id = ?", id, ownerID).First(recipe).Error; err != nil {
		return nil, notFound(err, "recipe", id)
	}
	return recipe, nil
}

// UpdateRecipe renames the recipe and replaces all of its ingredient links
// with lines. The replacement is atomic: readers never observe a partially
// rewritten recipe and a failed lookup leaves the old links in place.
func (s *Store) UpdateRecipe(ctx context.Context, ownerID, id uint, name string, lines []RecipeLine) (*models.Recipe, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		recipe := &models.Recipe{}
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(recipe).Error; err != nil {
			return notFound(err, "recipe", id)
		}
		if err := resolveLines(tx, ownerID, lines); err != nil {
			return err
		}
		if err := tx.Model(recipe).Update("name", strings.TrimSpace(name)).Error; err != nil {
			return fmt.Errorf("rename recipe %d: %w", id, err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("clear recipe %d items: %w", id, err)
		}
		return insertLines(tx, recipe.ID, lines)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, ownerID, id)
}

// DeleteRecipe removes one of the owner's recipes and its ingredient links.
func (s *Store) DeleteRecipe(ctx context.Context, ownerID, id uint) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		recipe := &models.Recipe{}
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(recipe).Error; err != nil {
			return notFound(err, "recipe", id)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("delete recipe %d items: %w", id, err)
		}
		if err := tx.Delete(recipe).Error; err != nil {
			return fmt.Errorf("delete recipe %d: %w", id, err)
		}
		return nil
	})
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id asc")
		}).
		Preload("Items.Ingredient")
}

// resolveLines checks that every referenced ingredient exists, belongs to the
// owner and appears only once.
func resolveLines(tx *gorm.DB, ownerID uint, lines []RecipeLine) error {
	if len(lines) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(lines))
	seen := make(map[uint]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.IngredientID]; ok {
			return fmt.Errorf("ingredient %d: %w", line.IngredientID, ErrDuplicateIngredient)
		}
		seen[line.IngredientID] = struct{}{}
		ids = append(ids, line.IngredientID)
	}

	var owned []uint
	if err := tx.Model(&models.Ingredient{}).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Pluck("id", &owned).Error; err != nil {
		return fmt.Errorf("resolve ingredients: %w", err)
	}

	found := make(map[uint]struct{}, len(owned))
	for _, id := range owned {
		found[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("ingredient %d: %w", id, ErrNotFound)
		}
	}
	return nil
}

func insertLines(tx *gorm.DB, recipeID uint, lines []RecipeLine) error {
	if len(lines) == 0 {
		return nil
	}

	items := make([]models.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
		})
	}
	if err := tx.Create(&items).Error; err != nil {
		return fmt.Errorf("create recipe %d items: %w", recipeID, err)
	}
	return nil
}
