package models

import (
	"time"

	"gorm.io/gorm"
)

// Image sources recorded for a lookup.
const (
	ImageSourceOBF         = "obf"
	ImageSourcePattern     = "pattern"
	ImageSourcePlaceholder = "placeholder"
)

// ImageLookup caches the resolved image for a product barcode.
type ImageLookup struct {
	gorm.Model
	EAN       string    `gorm:"uniqueIndex;not null"`
	URL       string    `gorm:"not null"`
	Source    string    `gorm:"type:varchar(16);not null"`
	CheckedAt time.Time `gorm:"not null"`
}

// Session stores server-side session payloads keyed by their token.
type Session struct {
	Token  string    `gorm:"primaryKey;type:varchar(64)"`
	Data   []byte    `gorm:"not null"`
	Expiry time.Time `gorm:"index;not null"`
}
