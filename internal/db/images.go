package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"switchmarket/models"
)

// ImageCache stores resolved product images by barcode.
type ImageCache struct {
	db *gorm.DB
}

// NewImageCache returns an ImageCache over db.
func NewImageCache(db *gorm.DB) *ImageCache {
	return &ImageCache{db: db}
}

func (c *ImageCache) Get(ctx context.Context, ean string) (models.ImageLookup, bool, error) {
	var lookup models.ImageLookup
	err := c.db.WithContext(ctx).Where("ean = ?", ean).Take(&lookup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ImageLookup{}, false, nil
	}
	if err != nil {
		return models.ImageLookup{}, false, err
	}
	return lookup, true, nil
}

// Put upserts lookup on its barcode.
func (c *ImageCache) Put(ctx context.Context, lookup models.ImageLookup) error {
	return c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ean"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "source", "checked_at", "updated_at"}),
	}).Create(&lookup).Error
}
