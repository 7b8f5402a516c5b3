package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/DJCodeOne/freshwax-sub005/pkg/db/models"
	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  order_number TEXT NOT NULL,
  sold_at DATETIME NOT NULL,
  year INTEGER NOT NULL,
  month INTEGER NOT NULL,
  day INTEGER NOT NULL,
  customer_id TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  seller_id TEXT,
  seller_kind TEXT,
  seller_name TEXT,
  seller_email TEXT,
  subtotal NUMERIC NOT NULL,
  shipping NUMERIC NOT NULL DEFAULT 0,
  gross_total NUMERIC NOT NULL,
  processor_fee NUMERIC NOT NULL,
  platform_fee NUMERIC NOT NULL,
  total_fees NUMERIC NOT NULL,
  net_revenue NUMERIC NOT NULL,
  payout_amount NUMERIC NOT NULL,
  payout_status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT,
  charge_id TEXT NOT NULL,
  currency TEXT NOT NULL,
  item_count INTEGER NOT NULL,
  has_physical INTEGER NOT NULL DEFAULT 0,
  has_digital INTEGER NOT NULL DEFAULT 0,
  items TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newEntry(t *testing.T, db *gorm.DB, sellerID *uuid.UUID, soldAt time.Time, net string) *models.LedgerEntry {
	t.Helper()

	amount := decimal.RequireFromString(net)
	entry := &models.LedgerEntry{
		ID:            uuid.New(),
		OrderID:       uuid.New(),
		OrderNumber:   "FW-100",
		SoldAt:        soldAt,
		Year:          soldAt.Year(),
		Month:         int(soldAt.Month()),
		Day:           soldAt.Day(),
		CustomerID:    uuid.New(),
		CustomerEmail: "buyer@freshwax.test",
		SellerID:      sellerID,
		Subtotal:      amount,
		GrossTotal:    amount,
		ProcessorFee:  decimal.Zero,
		PlatformFee:   decimal.Zero,
		TotalFees:     decimal.Zero,
		NetRevenue:    amount,
		PayoutAmount:  amount,
		PayoutStatus:  enums.LedgerPayoutStatusPending,
		ChargeID:      "ch_" + uuid.NewString()[:8],
		Currency:      "GBP",
		ItemCount:     1,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func TestLedgerRepo_ListByMonth(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	sellerID := uuid.New()

	march := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	april := time.Date(2025, time.April, 2, 12, 0, 0, 0, time.UTC)
	newEntry(t, db, &sellerID, march, "10.00")
	newEntry(t, db, &sellerID, march.AddDate(0, 0, 10), "20.00")
	newEntry(t, db, &sellerID, april, "30.00")

	entries, err := repo.ListByMonth(context.Background(), 2025, 3)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Oldest first within the month.
	assert.True(t, entries[0].SoldAt.Before(entries[1].SoldAt))

	entries, err = repo.ListByMonth(context.Background(), 2025, 4)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLedgerRepo_ListBySeller(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	sellerA := uuid.New()
	sellerB := uuid.New()

	base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	newEntry(t, db, &sellerA, base, "10.00")
	newEntry(t, db, &sellerA, base.AddDate(0, 0, 1), "20.00")
	newEntry(t, db, &sellerB, base, "30.00")

	entries, err := repo.ListBySeller(context.Background(), sellerA, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Most recent sale first.
	assert.True(t, entries[0].SoldAt.After(entries[1].SoldAt))

	limited, err := repo.ListBySeller(context.Background(), sellerA, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestLedgerRepo_MarkPaid(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	sellerID := uuid.New()
	otherSeller := uuid.New()

	soldAt := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	target := newEntry(t, db, &sellerID, soldAt, "10.00")
	other := newEntry(t, db, &otherSeller, soldAt, "20.00")
	require.NoError(t, db.Model(other).Update("order_id", target.OrderID).Error)

	require.NoError(t, repo.MarkPaid(context.Background(), target.OrderID, sellerID))

	var reloaded models.LedgerEntry
	require.NoError(t, db.First(&reloaded, "id = ?", target.ID).Error)
	assert.Equal(t, enums.LedgerPayoutStatusPaid, reloaded.PayoutStatus)

	// Same order, different seller stays pending.
	var reloadedOther models.LedgerEntry
	require.NoError(t, db.First(&reloadedOther, "id = ?", other.ID).Error)
	assert.Equal(t, enums.LedgerPayoutStatusPending, reloadedOther.PayoutStatus)
}

func TestLedgerRepo_CreateAssignsID(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)

	entry := &models.LedgerEntry{
		OrderID:       uuid.New(),
		OrderNumber:   "FW-101",
		SoldAt:        time.Now().UTC(),
		Year:          2025,
		Month:         6,
		Day:           1,
		CustomerID:    uuid.New(),
		CustomerEmail: "buyer@freshwax.test",
		Subtotal:      decimal.RequireFromString("5.00"),
		GrossTotal:    decimal.RequireFromString("5.00"),
		ProcessorFee:  decimal.Zero,
		PlatformFee:   decimal.Zero,
		TotalFees:     decimal.Zero,
		NetRevenue:    decimal.RequireFromString("5.00"),
		PayoutAmount:  decimal.RequireFromString("5.00"),
		PayoutStatus:  enums.LedgerPayoutStatusPending,
		ChargeID:      "ch_assign",
		Currency:      "GBP",
		ItemCount:     1,
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEqual(t, uuid.Nil, entry.ID)
}
