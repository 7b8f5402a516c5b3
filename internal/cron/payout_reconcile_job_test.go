package cron

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DJCodeOne/freshwax-sub005/internal/sellers"
	"github.com/DJCodeOne/freshwax-sub005/pkg/db/models"
	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
)

type stubQueue struct {
	sellersAwaitingAccount func(ctx context.Context, limit int) ([]uuid.UUID, error)
	processSellerQueue     func(ctx context.Context, sellerID uuid.UUID) (int, error)
}

func (s *stubQueue) Enqueue(context.Context, *models.PendingPayout) error { return nil }

func (s *stubQueue) ProcessOrderPayouts(context.Context, uuid.UUID) error { return nil }

func (s *stubQueue) ProcessSellerQueue(ctx context.Context, sellerID uuid.UUID) (int, error) {
	if s.processSellerQueue == nil {
		return 0, nil
	}
	return s.processSellerQueue(ctx, sellerID)
}

func (s *stubQueue) Retry(context.Context, uuid.UUID) error { return nil }

func (s *stubQueue) AdjustForRefund(context.Context, uuid.UUID, decimal.Decimal) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *stubQueue) SellersAwaitingAccount(ctx context.Context, limit int) ([]uuid.UUID, error) {
	if s.sellersAwaitingAccount == nil {
		return nil, nil
	}
	return s.sellersAwaitingAccount(ctx, limit)
}

func (s *stubQueue) SellerQueue(context.Context, uuid.UUID) ([]models.PendingPayout, error) {
	return nil, nil
}

func (s *stubQueue) SellerHistory(context.Context, uuid.UUID, int) ([]models.Payout, error) {
	return nil, nil
}

func (s *stubQueue) OrderPayouts(context.Context, uuid.UUID) ([]models.Payout, error) {
	return nil, nil
}

type stubSellerRepo struct {
	findSeller func(ctx context.Context, id uuid.UUID) (*models.Seller, error)
}

func (s *stubSellerRepo) WithTx(*gorm.DB) sellers.Repository { return s }

func (s *stubSellerRepo) FindSeller(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	if s.findSeller == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.findSeller(ctx, id)
}

func (s *stubSellerRepo) FindRelease(context.Context, uuid.UUID) (*models.Release, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSellerRepo) FindMerchProduct(context.Context, uuid.UUID) (*models.MerchProduct, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSellerRepo) FindCrateListing(context.Context, uuid.UUID) (*models.CrateListing, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSellerRepo) AddPendingBalance(context.Context, uuid.UUID, decimal.Decimal) error {
	return nil
}

func (s *stubSellerRepo) AddEarnings(context.Context, uuid.UUID, decimal.Decimal) error {
	return nil
}

func (s *stubSellerRepo) SetSubAccountActive(context.Context, uuid.UUID, bool) error {
	return nil
}

func activeSeller(id uuid.UUID) *models.Seller {
	subAccount := "acct_1"
	return &models.Seller{
		ID:               id,
		Kind:             enums.SellerKindArtist,
		SubAccountID:     &subAccount,
		SubAccountActive: true,
	}
}

func TestPayoutReconcileJob_DrainsActiveSellers(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	activeID := uuid.New()
	inactiveID := uuid.New()

	queue := &stubQueue{
		sellersAwaitingAccount: func(_ context.Context, limit int) ([]uuid.UUID, error) {
			if limit != maxSellersPerCycle {
				t.Fatalf("limit %d, want %d", limit, maxSellersPerCycle)
			}
			return []uuid.UUID{activeID, inactiveID}, nil
		},
	}
	repo := &stubSellerRepo{
		findSeller: func(_ context.Context, id uuid.UUID) (*models.Seller, error) {
			if id == activeID {
				return activeSeller(id), nil
			}
			return &models.Seller{ID: id, SubAccountActive: false}, nil
		},
	}

	var drained []uuid.UUID
	queue.processSellerQueue = func(_ context.Context, sellerID uuid.UUID) (int, error) {
		drained = append(drained, sellerID)
		return 3, nil
	}

	job, err := NewPayoutReconcileJob(queue, repo, nil, logg)
	if err != nil {
		t.Fatalf("NewPayoutReconcileJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(drained) != 1 || drained[0] != activeID {
		t.Fatalf("drained %v, want only the active seller", drained)
	}
}

func TestPayoutReconcileJob_SellerFailureIsolated(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	badID := uuid.New()
	goodID := uuid.New()

	queue := &stubQueue{
		sellersAwaitingAccount: func(context.Context, int) ([]uuid.UUID, error) {
			return []uuid.UUID{badID, goodID}, nil
		},
	}
	repo := &stubSellerRepo{
		findSeller: func(_ context.Context, id uuid.UUID) (*models.Seller, error) {
			return activeSeller(id), nil
		},
	}

	var drained []uuid.UUID
	queue.processSellerQueue = func(_ context.Context, sellerID uuid.UUID) (int, error) {
		if sellerID == badID {
			return 0, fmt.Errorf("transfer rejected")
		}
		drained = append(drained, sellerID)
		return 1, nil
	}

	job, err := NewPayoutReconcileJob(queue, repo, nil, logg)
	if err != nil {
		t.Fatalf("NewPayoutReconcileJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected the failed seller's error to surface")
	}
	if len(drained) != 1 || drained[0] != goodID {
		t.Fatalf("drained %v, want the healthy seller despite the failure", drained)
	}
}

func TestRegistry_OrderAndNilFiltering(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	queue := &stubQueue{}
	repo := &stubSellerRepo{}

	first, err := NewPayoutReconcileJob(queue, repo, nil, logg)
	if err != nil {
		t.Fatalf("NewPayoutReconcileJob: %v", err)
	}

	registry := NewRegistry(first, nil)
	registry.Register(nil)

	jobs := registry.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Name() != "payout_reconcile" {
		t.Fatalf("job name %s, want payout_reconcile", jobs[0].Name())
	}
}
