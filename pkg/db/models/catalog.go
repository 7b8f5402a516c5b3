package models

import (
	"time"

	"github.com/google/uuid"
)

// Release is a music release (digital or vinyl) uploaded by an artist.
type Release struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	SubmitterID uuid.UUID `gorm:"column:submitter_id;type:uuid;not null;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// MerchProduct is a merchandise product listed by a supplier.
type MerchProduct struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	SupplierID uuid.UUID `gorm:"column:supplier_id;type:uuid;not null;index"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// CrateListing is a secondhand vinyl listing in the marketplace crates.
type CrateListing struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string    `gorm:"column:title;not null"`
	SellerID  uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
