// Package store provides owner-scoped persistence for users, ingredients and
// recipes. Every read and write of an ingredient or recipe takes the caller's
// user id; rows owned by someone else behave exactly like missing rows.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound reports a missing row or a row owned by another user.
	ErrNotFound = errors.New("store: record not found")
	// ErrConflict reports a uniqueness violation such as a taken username.
	ErrConflict = errors.New("store: record already exists")
	// ErrDuplicateIngredient reports a recipe payload that lists the same
	// ingredient more than once.
	ErrDuplicateIngredient = errors.New("store: ingredient listed more than once")
)

// Store wraps a gorm handle.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	return s.db.WithContext(ctx), nil
}

func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return err
}

// containsPattern builds a LIKE pattern matching value anywhere, with LIKE
// wildcards in value escaped by a backslash.
func containsPattern(value string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(strings.ToLower(value)) + "%"
}
