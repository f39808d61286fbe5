package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	applog "nutricalc/internal/log"
	"nutricalc/internal/store"
	"nutricalc/models"
)

type importer struct {
	db      *gorm.DB
	ownerID uint
	dryRun  bool
}

type importSummary struct {
	Created int
	Updated int
}

// importRows upserts every row in its own transaction. A duplicate name later
// in the same file updates the row created earlier.
func (im *importer) importRows(ctx context.Context, rows []ingredientRow) (importSummary, error) {
	var summary importSummary
	for _, row := range rows {
		created, err := im.upsert(ctx, row)
		if err != nil {
			return summary, fmt.Errorf("line %d (%s): %w", row.Line, row.Name, err)
		}
		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}
	applog.Info(ctx, "ingredient import finished",
		"ownerID", im.ownerID,
		"created", summary.Created,
		"updated", summary.Updated,
		"dryRun", im.dryRun,
	)
	return summary, nil
}

func (im *importer) upsert(ctx context.Context, row ingredientRow) (bool, error) {
	if im.db == nil {
		return false, gorm.ErrInvalidDB
	}

	created := false
	fields := store.IngredientFields{Name: row.Name, Macros: row.Macros}
	err := im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		records := store.New(tx)

		existing, err := records.FindIngredientByName(ctx, im.ownerID, row.Name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			created = true
			if im.dryRun {
				return nil
			}
			ingredient, err := records.CreateIngredient(ctx, im.ownerID, fields)
			if err != nil {
				return err
			}
			applog.Debug(ctx, "ingredient created", "ingredientID", ingredient.ID, "name", row.Name)
			return nil
		case err != nil:
			return fmt.Errorf("find ingredient: %w", err)
		}

		if im.dryRun {
			return nil
		}
		if _, err := records.UpdateIngredient(ctx, im.ownerID, existing.ID, fields); err != nil {
			return err
		}
		applog.Debug(ctx, "ingredient updated", "ingredientID", existing.ID, "name", row.Name)
		return nil
	})
	return created, err
}

// resolveOwner finds the named account, or the first account when username is
// blank.
func resolveOwner(ctx context.Context, db *gorm.DB, username string) (*models.User, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is nil")
	}

	records := store.New(db)
	if username = strings.TrimSpace(username); username != "" {
		user, err := records.FindUserByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("find owner %q: %w", username, err)
		}
		return user, nil
	}

	user, err := records.FirstUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("find default owner: %w", err)
	}
	return user, nil
}
