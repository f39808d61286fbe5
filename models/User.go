package models

import "gorm.io/gorm"

// User represents an account that owns ingredients and recipes.
type User struct {
	gorm.Model
	Username     string `gorm:"type:varchar(150);uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
}
