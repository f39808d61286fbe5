package mock

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appdb "nutricalc/internal/db"
	applog "nutricalc/internal/log"
	"nutricalc/models"
)

const (
	// DemoUsername and DemoPassword sign in to the seeded account.
	DemoUsername = "demo"
	DemoPassword = "demo-pass"
)

var instances atomic.Uint64

// New returns an in-memory sqlite database seeded with a demo account, a few
// pantry ingredients and one recipe. Each call gets its own database.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	dsn := fmt.Sprintf("file:nutricalc-mock-%d?mode=memory&cache=shared", instances.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	// A single connection keeps the shared in-memory database alive and
	// serialises writers.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := appdb.AutoMigrate(db); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	password, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := &models.User{
			Username:     DemoUsername,
			PasswordHash: string(password),
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		egg := models.Ingredient{OwnerID: user.ID, Name: "Egg", Calories: 155, Protein: 13, Fat: 11, Carbs: 1.1}
		rice := models.Ingredient{OwnerID: user.ID, Name: "Rice, cooked", Calories: 130, Protein: 2.7, Fat: 0.3, Carbs: 28}
		chicken := models.Ingredient{OwnerID: user.ID, Name: "Chicken breast", Calories: 165, Protein: 31, Fat: 3.6, Carbs: 0}

		pantry := []*models.Ingredient{&egg, &rice, &chicken}
		for _, ingredient := range pantry {
			if err := tx.Create(ingredient).Error; err != nil {
				return err
			}
		}

		omelette := models.Recipe{OwnerID: user.ID, Name: "Omelette"}
		if err := tx.Create(&omelette).Error; err != nil {
			return err
		}

		items := []models.RecipeIngredient{
			{RecipeID: omelette.ID, IngredientID: egg.ID, Quantity: 120},
			{RecipeID: omelette.ID, IngredientID: chicken.ID, Quantity: 50},
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		applog.Debug(ctx, "mock database seeded", "userID", user.ID, "ingredients", len(pantry))
		return nil
	})
}
