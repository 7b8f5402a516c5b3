package ledger

import (
	"context"

	"github.com/DJCodeOne/freshwax-sub005/pkg/db/models"
	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for the append-only revenue ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.LedgerEntry) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEntry, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.LedgerEntry, error)
	ListByMonth(ctx context.Context, year, month int) ([]models.LedgerEntry, error)
	MarkPaid(ctx context.Context, orderID, sellerID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	query := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("sold_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var entries []models.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListByMonth(ctx context.Context, year, month int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("year = ? AND month = ?", year, month).
		Order("sold_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) MarkPaid(ctx context.Context, orderID, sellerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("order_id = ? AND seller_id = ?", orderID, sellerID).
		UpdateColumn("payout_status", enums.LedgerPayoutStatusPaid).Error
}
