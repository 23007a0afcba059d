package mock

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"switchmarket/internal/db"
	applog "switchmarket/internal/log"
	"switchmarket/models"
)

// SeededImages are the image lookups present in every mock database.
var SeededImages = []models.ImageLookup{
	{EAN: "3600523614455", URL: "https://images.openbeautyfacts.org/images/products/360/052/361/4455/front_fr.3.400.jpg", Source: models.ImageSourcePattern},
	{EAN: "3337875597388", URL: "https://images.openbeautyfacts.org/images/products/333/787/559/7388/front_fr.3.400.jpg", Source: models.ImageSourcePattern},
	{EAN: "0000000000000", URL: "/assets/img/placeholder.svg", Source: models.ImageSourcePlaceholder},
}

// New returns an in-memory sqlite database migrated like production and seeded
// with cached product images, so the server runs without Postgres.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	database, err := gorm.Open(sqlite.Open("file:switchmarket-mock?mode=memory&cache=shared"), db.GormConfig(logger.Silent))
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	now := time.Now().UTC()
	for _, image := range SeededImages {
		lookup := image
		lookup.CheckedAt = now
		if err := database.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&lookup).Error; err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded", "images", len(SeededImages))
	return nil
}
