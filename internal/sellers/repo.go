package sellers

import (
	"context"

	"github.com/DJCodeOne/freshwax-sub005/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository manages sellers and the catalog lookups needed to attribute
// order items to them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindSeller(ctx context.Context, id uuid.UUID) (*models.Seller, error)
	FindRelease(ctx context.Context, id uuid.UUID) (*models.Release, error)
	FindMerchProduct(ctx context.Context, id uuid.UUID) (*models.MerchProduct, error)
	FindCrateListing(ctx context.Context, id uuid.UUID) (*models.CrateListing, error)
	AddPendingBalance(ctx context.Context, sellerID uuid.UUID, delta decimal.Decimal) error
	AddEarnings(ctx context.Context, sellerID uuid.UUID, delta decimal.Decimal) error
	SetSubAccountActive(ctx context.Context, sellerID uuid.UUID, active bool) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a seller repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindSeller(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&seller).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *repository) FindRelease(ctx context.Context, id uuid.UUID) (*models.Release, error) {
	var release models.Release
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&release).Error; err != nil {
		return nil, err
	}
	return &release, nil
}

func (r *repository) FindMerchProduct(ctx context.Context, id uuid.UUID) (*models.MerchProduct, error) {
	var product models.MerchProduct
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindCrateListing(ctx context.Context, id uuid.UUID) (*models.CrateListing, error) {
	var listing models.CrateListing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) AddPendingBalance(ctx context.Context, sellerID uuid.UUID, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Seller{}).
		Where("id = ?", sellerID).
		UpdateColumn("pending_balance", gorm.Expr("pending_balance + ?", delta)).Error
}

func (r *repository) AddEarnings(ctx context.Context, sellerID uuid.UUID, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Seller{}).
		Where("id = ?", sellerID).
		UpdateColumn("total_earnings", gorm.Expr("total_earnings + ?", delta)).Error
}

func (r *repository) SetSubAccountActive(ctx context.Context, sellerID uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Seller{}).
		Where("id = ?", sellerID).
		UpdateColumn("sub_account_active", active).Error
}
