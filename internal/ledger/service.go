package ledger

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/DJCodeOne/freshwax-sub005/pkg/db/models"
	pkgerrors "github.com/DJCodeOne/freshwax-sub005/pkg/errors"
	"github.com/google/uuid"
)

// Service records and reads immutable per-seller revenue entries. Every write
// goes through Record so the net = gross - fees invariant is enforced in one
// place.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Record(ctx context.Context, entry *models.LedgerEntry) error
	MonthlyReport(ctx context.Context, year, month int) ([]models.LedgerEntry, error)
	SellerHistory(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.LedgerEntry, error)
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Record(ctx context.Context, entry *models.LedgerEntry) error {
	if entry == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "ledger entry required")
	}
	if entry.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if entry.ChargeID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "charge id is required")
	}
	if entry.SoldAt.IsZero() {
		entry.SoldAt = time.Now().UTC()
	}
	entry.Year = entry.SoldAt.Year()
	entry.Month = int(entry.SoldAt.Month())
	entry.Day = entry.SoldAt.Day()

	expectedNet := entry.GrossTotal.Sub(entry.TotalFees)
	if !entry.NetRevenue.Equal(expectedNet) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("net revenue %s does not equal gross %s minus fees %s",
				entry.NetRevenue, entry.GrossTotal, entry.TotalFees))
	}

	return s.repo.Create(ctx, entry)
}

func (s *service) MonthlyReport(ctx context.Context, year, month int) ([]models.LedgerEntry, error) {
	if year < 2000 || month < 1 || month > 12 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid year or month")
	}
	return s.repo.ListByMonth(ctx, year, month)
}

func (s *service) SellerHistory(ctx context.Context, sellerID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	return s.repo.ListBySeller(ctx, sellerID, limit)
}
