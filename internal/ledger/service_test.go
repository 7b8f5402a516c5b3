package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DJCodeOne/freshwax-sub005/pkg/db/models"
)

type stubRepo struct {
	create func(ctx context.Context, entry *models.LedgerEntry) error
}

func (s *stubRepo) WithTx(*gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if s.create == nil {
		return nil
	}
	return s.create(ctx, entry)
}

func (s *stubRepo) ListByOrderID(context.Context, uuid.UUID) ([]models.LedgerEntry, error) {
	return nil, nil
}

func (s *stubRepo) ListBySeller(context.Context, uuid.UUID, int) ([]models.LedgerEntry, error) {
	return nil, nil
}

func (s *stubRepo) ListByMonth(context.Context, int, int) ([]models.LedgerEntry, error) {
	return nil, nil
}

func (s *stubRepo) MarkPaid(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func validEntry() *models.LedgerEntry {
	return &models.LedgerEntry{
		ID:         uuid.New(),
		OrderID:    uuid.New(),
		ChargeID:   "ch_123",
		GrossTotal: decimal.RequireFromString("15.00"),
		TotalFees:  decimal.RequireFromString("0.75"),
		NetRevenue: decimal.RequireFromString("14.25"),
		SoldAt:     time.Date(2025, time.March, 14, 18, 30, 0, 0, time.UTC),
	}
}

func TestRecord_DerivesDateParts(t *testing.T) {
	var recorded *models.LedgerEntry
	repo := &stubRepo{create: func(_ context.Context, entry *models.LedgerEntry) error {
		recorded = entry
		return nil
	}}
	service, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := service.Record(context.Background(), validEntry()); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if recorded == nil {
		t.Fatal("entry never reached repository")
	}
	if recorded.Year != 2025 || recorded.Month != 3 || recorded.Day != 14 {
		t.Fatalf("date parts %d-%d-%d, want 2025-3-14", recorded.Year, recorded.Month, recorded.Day)
	}
}

func TestRecord_DefaultsSoldAt(t *testing.T) {
	repo := &stubRepo{}
	service, _ := NewService(repo)

	entry := validEntry()
	entry.SoldAt = time.Time{}
	before := time.Now().UTC()

	if err := service.Record(context.Background(), entry); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if entry.SoldAt.Before(before) {
		t.Fatalf("SoldAt %s not defaulted to now", entry.SoldAt)
	}
}

func TestRecord_RejectsMissingIdentifiers(t *testing.T) {
	service, _ := NewService(&stubRepo{})

	entry := validEntry()
	entry.OrderID = uuid.Nil
	if err := service.Record(context.Background(), entry); err == nil {
		t.Fatal("expected error for missing order id")
	}

	entry = validEntry()
	entry.ChargeID = ""
	if err := service.Record(context.Background(), entry); err == nil {
		t.Fatal("expected error for missing charge id")
	}

	if err := service.Record(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil entry")
	}
}

func TestRecord_RejectsInconsistentNet(t *testing.T) {
	service, _ := NewService(&stubRepo{})

	entry := validEntry()
	entry.NetRevenue = decimal.RequireFromString("15.00")
	if err := service.Record(context.Background(), entry); err == nil {
		t.Fatal("expected error when net does not equal gross minus fees")
	}
}

func TestMonthlyReport_ValidatesPeriod(t *testing.T) {
	service, _ := NewService(&stubRepo{})

	if _, err := service.MonthlyReport(context.Background(), 1999, 6); err == nil {
		t.Fatal("expected error for out-of-range year")
	}
	if _, err := service.MonthlyReport(context.Background(), 2025, 13); err == nil {
		t.Fatal("expected error for out-of-range month")
	}
	if _, err := service.MonthlyReport(context.Background(), 2025, 6); err != nil {
		t.Fatalf("MonthlyReport: %v", err)
	}
}
