package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"nutricalc/models"
)

// CreateUser stores a new account. A taken username returns ErrConflict.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("username %q: %w", username, ErrConflict)
	}

	user := &models.User{Username: username, PasswordHash: passwordHash}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("username %q: %w", username, ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// FindUserByUsername looks up an account by its exact username.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	user := &models.User{}
	if err := db.Where("username = ?", username).First(user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// GetUser loads an account by id.
func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	user := &models.User{}
	if err := db.First(user, id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return user, nil
}

// FirstUser returns the account with the lowest id.
func (s *Store) FirstUser(ctx context.Context) (*models.User, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	user := &models.User{}
	if err := db.Order("id asc").First(user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("first user: %w", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}
