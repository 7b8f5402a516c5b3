package reversal

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DJCodeOne/freshwax-sub005/pkg/db/models"
)

// Repository persists dispute and refund records and the order-side refund
// bookkeeping the reversal engine maintains.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindOrderByChargeID(ctx context.Context, chargeID string) (*models.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error

	CreateDispute(ctx context.Context, dispute *models.Dispute) error
	FindDisputeByDisputeID(ctx context.Context, disputeID string) (*models.Dispute, error)
	UpdateDispute(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListDisputesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Dispute, error)

	CreateRefund(ctx context.Context, refund *models.Refund) error
	FindRefundByRefundID(ctx context.Context, refundID string) (*models.Refund, error)
	ListRefundsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Refund, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reversal repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOrderByChargeID(ctx context.Context, chargeID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("charge_id = ?", chargeID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) CreateDispute(ctx context.Context, dispute *models.Dispute) error {
	if dispute.ID == uuid.Nil {
		dispute.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(dispute).Error
}

func (r *repository) FindDisputeByDisputeID(ctx context.Context, disputeID string) (*models.Dispute, error) {
	var dispute models.Dispute
	if err := r.db.WithContext(ctx).Where("dispute_id = ?", disputeID).First(&dispute).Error; err != nil {
		return nil, err
	}
	return &dispute, nil
}

func (r *repository) UpdateDispute(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Dispute{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListDisputesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Dispute, error) {
	var disputes []models.Dispute
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&disputes).Error; err != nil {
		return nil, err
	}
	return disputes, nil
}

func (r *repository) CreateRefund(ctx context.Context, refund *models.Refund) error {
	if refund.ID == uuid.Nil {
		refund.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(refund).Error
}

func (r *repository) FindRefundByRefundID(ctx context.Context, refundID string) (*models.Refund, error) {
	var refund models.Refund
	if err := r.db.WithContext(ctx).Where("refund_id = ?", refundID).First(&refund).Error; err != nil {
		return nil, err
	}
	return &refund, nil
}

func (r *repository) ListRefundsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Refund, error) {
	var refunds []models.Refund
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&refunds).Error; err != nil {
		return nil, err
	}
	return refunds, nil
}
