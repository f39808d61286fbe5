package mock

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"golang.org/x/crypto/bcrypt"

	"nutricalc/models"
)

func TestNewSeedsExpectedRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := New(ctx)
	if err != nil {
		t.Fatalf("mock database initialization failed: %v", err)
	}

	var ingredients []models.Ingredient
	if err := db.WithContext(ctx).Find(&ingredients).Error; err != nil {
		t.Fatalf("query ingredients: %v", err)
	}
	if len(ingredients) != 3 {
		t.Fatalf("expected 3 seeded ingredients, got %d", len(ingredients))
	}

	var recipe models.Recipe
	if err := db.WithContext(ctx).Preload("Items.Ingredient").Where("name = ?", "Omelette").First(&recipe).Error; err != nil {
		t.Fatalf("query recipe: %v", err)
	}
	totals := recipe.Totals()
	if totals.Calories != 268.5 {
		t.Fatalf("expected omelette calories 268.5, got %v", totals.Calories)
	}

	var user models.User
	if err := db.WithContext(ctx).Where("username = ?", DemoUsername).First(&user).Error; err != nil {
		t.Fatalf("query user: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(DemoPassword)); err != nil {
		t.Fatalf("unexpected password hash: %v", err)
	}
	if recipe.OwnerID != user.ID {
		t.Fatalf("expected recipe to belong to the demo user")
	}
}

func TestNewReturnsIndependentDatabases(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	first, err := New(ctx)
	if err != nil {
		t.Fatalf("first mock database: %v", err)
	}
	second, err := New(ctx)
	if err != nil {
		t.Fatalf("second mock database: %v", err)
	}

	if err := first.WithContext(ctx).Where("name = ?", "Egg").Delete(&models.Ingredient{}).Error; err != nil {
		t.Fatalf("delete from first database: %v", err)
	}

	var count int64
	if err := second.WithContext(ctx).Model(&models.Ingredient{}).Where("name = ?", "Egg").Count(&count).Error; err != nil {
		t.Fatalf("count in second database: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected second database to keep its egg, got %d", count)
	}
}

func TestDuplicateUsernameIsTranslated(t *testing.T) {
	t.Parallel()

	db, err := New(context.Background())
	if err != nil {
		t.Fatalf("mock database initialization failed: %v", err)
	}

	err = db.Create(&models.User{Username: DemoUsername, PasswordHash: "x"}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey for a second %q, got %v", DemoUsername, err)
	}
}
