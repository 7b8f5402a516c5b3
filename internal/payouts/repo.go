package payouts

import (
	"context"

	"github.com/DJCodeOne/freshwax-sub005/pkg/db/models"
	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages the payout queue and completed transfer records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreatePending(ctx context.Context, payout *models.PendingPayout) error
	FindPending(ctx context.Context, id uuid.UUID) (*models.PendingPayout, error)
	ListPendingBySeller(ctx context.Context, sellerID uuid.UUID, statuses []enums.PendingPayoutStatus, limit int) ([]models.PendingPayout, error)
	ListPendingByOrder(ctx context.Context, orderID uuid.UUID, statuses []enums.PendingPayoutStatus) ([]models.PendingPayout, error)
	UpdatePending(ctx context.Context, id uuid.UUID, updates map[string]any) error
	// TransitionPending moves a payout between states only when it is still in
	// one of the expected source states, reporting whether the claim won.
	TransitionPending(ctx context.Context, id uuid.UUID, from []enums.PendingPayoutStatus, to enums.PendingPayoutStatus) (bool, error)
	SellerIDsWithStatus(ctx context.Context, status enums.PendingPayoutStatus, limit int) ([]uuid.UUID, error)

	CreatePayout(ctx context.Context, payout *models.Payout) error
	FindPayoutByTransferID(ctx context.Context, transferID string) (*models.Payout, error)
	ListPayoutsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payout, error)
	ListPayoutsBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.Payout, error)
	ListPayoutsByTransferGroup(ctx context.Context, transferGroup string) ([]models.Payout, error)
	UpdatePayout(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payouts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePending(ctx context.Context, payout *models.PendingPayout) error {
	if payout.ID == uuid.Nil {
		payout.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *repository) FindPending(ctx context.Context, id uuid.UUID) (*models.PendingPayout, error) {
	var payout models.PendingPayout
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&payout).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *repository) ListPendingBySeller(ctx context.Context, sellerID uuid.UUID, statuses []enums.PendingPayoutStatus, limit int) ([]models.PendingPayout, error) {
	query := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at ASC")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var payouts []models.PendingPayout
	if err := query.Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *repository) ListPendingByOrder(ctx context.Context, orderID uuid.UUID, statuses []enums.PendingPayoutStatus) ([]models.PendingPayout, error) {
	query := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var payouts []models.PendingPayout
	if err := query.Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *repository) UpdatePending(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PendingPayout{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) TransitionPending(ctx context.Context, id uuid.UUID, from []enums.PendingPayoutStatus, to enums.PendingPayoutStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PendingPayout{}).
		Where("id = ? AND status IN ?", id, from).
		UpdateColumn("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) SellerIDsWithStatus(ctx context.Context, status enums.PendingPayoutStatus, limit int) ([]uuid.UUID, error) {
	query := r.db.WithContext(ctx).
		Model(&models.PendingPayout{}).
		Distinct("seller_id").
		Where("status = ?", status)
	if limit > 0 {
		query = query.Limit(limit)
	}
	var ids []uuid.UUID
	if err := query.Pluck("seller_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) CreatePayout(ctx context.Context, payout *models.Payout) error {
	if payout.ID == uuid.Nil {
		payout.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *repository) FindPayoutByTransferID(ctx context.Context, transferID string) (*models.Payout, error) {
	var payout models.Payout
	if err := r.db.WithContext(ctx).Where("transfer_id = ?", transferID).First(&payout).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *repository) ListPayoutsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payout, error) {
	var payouts []models.Payout
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *repository) ListPayoutsBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.Payout, error) {
	query := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var payouts []models.Payout
	if err := query.Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *repository) ListPayoutsByTransferGroup(ctx context.Context, transferGroup string) ([]models.Payout, error) {
	var payouts []models.Payout
	if err := r.db.WithContext(ctx).
		Where("transfer_group = ?", transferGroup).
		Order("created_at ASC").
		Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *repository) UpdatePayout(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("id = ?", id).
		Updates(updates).Error
}
