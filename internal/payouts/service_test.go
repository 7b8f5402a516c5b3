package payouts

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/DJCodeOne/freshwax-sub005/internal/ledger"
	"github.com/DJCodeOne/freshwax-sub005/internal/sellers"
	"github.com/DJCodeOne/freshwax-sub005/pkg/config"
	"github.com/DJCodeOne/freshwax-sub005/pkg/db"
	"github.com/DJCodeOne/freshwax-sub005/pkg/db/models"
	"github.com/DJCodeOne/freshwax-sub005/pkg/enums"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
	"github.com/DJCodeOne/freshwax-sub005/pkg/processor"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	schema := []string{
		`CREATE TABLE sellers (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  sub_account_id TEXT,
  sub_account_active INTEGER NOT NULL DEFAULT 0,
  pending_balance NUMERIC NOT NULL DEFAULT 0,
  total_earnings NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
)`,
		`CREATE TABLE pending_payouts (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  seller_kind TEXT NOT NULL,
  seller_name TEXT NOT NULL,
  seller_email TEXT NOT NULL,
  order_id TEXT NOT NULL,
  order_number TEXT NOT NULL,
  transfer_group TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  original_amount NUMERIC,
  shipping_amount NUMERIC,
  currency TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  failure_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
)`,
		`CREATE TABLE payouts (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  pending_payout_id TEXT,
  transfer_id TEXT NOT NULL UNIQUE,
  transfer_group TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  reversed_amount NUMERIC NOT NULL DEFAULT 0,
  currency TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'completed',
  created_at DATETIME,
  updated_at DATETIME
)`,
		`CREATE TABLE ledger_entries (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  seller_id TEXT,
  payout_status TEXT NOT NULL DEFAULT 'pending'
)`,
	}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}

type stubTransfers struct {
	createTransfer  func(ctx context.Context, params processor.TransferParams) (*processor.Transfer, error)
	reverseTransfer func(ctx context.Context, transferID string, amount *decimal.Decimal) (*processor.Reversal, error)
}

func (s *stubTransfers) CreateTransfer(ctx context.Context, params processor.TransferParams) (*processor.Transfer, error) {
	if s.createTransfer == nil {
		return &processor.Transfer{
			ID:            "tr_" + uuid.NewString()[:8],
			Destination:   params.Destination,
			Amount:        params.Amount,
			Currency:      params.Currency,
			TransferGroup: params.TransferGroup,
		}, nil
	}
	return s.createTransfer(ctx, params)
}

func (s *stubTransfers) ReverseTransfer(ctx context.Context, transferID string, amount *decimal.Decimal) (*processor.Reversal, error) {
	if s.reverseTransfer == nil {
		return &processor.Reversal{ID: "trr_1", TransferID: transferID}, nil
	}
	return s.reverseTransfer(ctx, transferID, amount)
}

func (s *stubTransfers) GetTransfer(context.Context, string) (*processor.Transfer, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubTransfers) ListTransfers(context.Context, string) ([]processor.Transfer, error) {
	return nil, fmt.Errorf("not implemented")
}

type payoutServiceTest struct {
	conn      *gorm.DB
	service   Service
	repo      Repository
	sellers   sellers.Repository
	transfers *stubTransfers
}

func newPayoutServiceTest(t *testing.T) *payoutServiceTest {
	t.Helper()
	conn := newTestDB(t)
	repo := NewRepository(conn)
	sellerRepo := sellers.NewRepository(conn)
	ledgerRepo := ledger.NewRepository(conn)
	transfers := &stubTransfers{}
	logg := logger.New(logger.Options{ServiceName: "test"})

	service, err := NewService(
		db.NewWithConn(conn),
		repo,
		sellerRepo,
		ledgerRepo,
		transfers,
		config.PayoutsConfig{SweepBatchSize: 25, Currency: "GBP"},
		logg,
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &payoutServiceTest{
		conn:      conn,
		service:   service,
		repo:      repo,
		sellers:   sellerRepo,
		transfers: transfers,
	}
}

func (h *payoutServiceTest) seedSeller(t *testing.T, active bool) *models.Seller {
	t.Helper()
	subAccount := "acct_" + uuid.NewString()[:8]
	seller := &models.Seller{
		ID:               uuid.New(),
		Kind:             enums.SellerKindArtist,
		Name:             "Dub Pressure",
		Email:            "dub@freshwax.test",
		SubAccountID:     &subAccount,
		SubAccountActive: active,
	}
	if err := h.conn.Create(seller).Error; err != nil {
		t.Fatalf("seed seller: %v", err)
	}
	return seller
}

func (h *payoutServiceTest) seedPending(t *testing.T, seller *models.Seller, amount string, status enums.PendingPayoutStatus) *models.PendingPayout {
	t.Helper()
	pending := &models.PendingPayout{
		ID:            uuid.New(),
		SellerID:      seller.ID,
		SellerKind:    seller.Kind,
		SellerName:    seller.Name,
		SellerEmail:   seller.Email,
		OrderID:       uuid.New(),
		OrderNumber:   "FW-1001",
		TransferGroup: "order_" + uuid.NewString()[:8],
		Amount:        decimal.RequireFromString(amount),
		Currency:      "GBP",
		Status:        status,
	}
	if err := h.conn.Create(pending).Error; err != nil {
		t.Fatalf("seed pending payout: %v", err)
	}
	if err := h.sellers.AddPendingBalance(context.Background(), seller.ID, pending.Amount); err != nil {
		t.Fatalf("seed pending balance: %v", err)
	}
	return pending
}

func (h *payoutServiceTest) reloadPending(t *testing.T, id uuid.UUID) *models.PendingPayout {
	t.Helper()
	pending, err := h.repo.FindPending(context.Background(), id)
	if err != nil {
		t.Fatalf("reload pending payout: %v", err)
	}
	return pending
}

func TestProcessOrderPayouts_CompletesTransfer(t *testing.T) {
	h := newPayoutServiceTest(t)
	seller := h.seedSeller(t, true)
	pending := h.seedPending(t, seller, "14.30", enums.PendingPayoutStatusPending)

	if err := h.service.ProcessOrderPayouts(context.Background(), pending.OrderID); err != nil {
		t.Fatalf("ProcessOrderPayouts: %v", err)
	}

	reloaded := h.reloadPending(t, pending.ID)
	if reloaded.Status != enums.PendingPayoutStatusCompleted {
		t.Fatalf("expected completed, got %s", reloaded.Status)
	}

	executed, err := h.repo.ListPayoutsByOrder(context.Background(), pending.OrderID)
	if err != nil {
		t.Fatalf("list payouts: %v", err)
	}
	if len(executed) != 1 {
		t.Fatalf("expected 1 payout, got %d", len(executed))
	}
	if !executed[0].Amount.Equal(pending.Amount) {
		t.Fatalf("payout amount %s, want %s", executed[0].Amount, pending.Amount)
	}
	if executed[0].TransferGroup != pending.TransferGroup {
		t.Fatalf("transfer group not carried over")
	}

	var reloadedSeller models.Seller
	if err := h.conn.First(&reloadedSeller, "id = ?", seller.ID).Error; err != nil {
		t.Fatalf("reload seller: %v", err)
	}
	if !reloadedSeller.TotalEarnings.Equal(pending.Amount) {
		t.Fatalf("earnings %s, want %s", reloadedSeller.TotalEarnings, pending.Amount)
	}
	if !reloadedSeller.PendingBalance.IsZero() {
		t.Fatalf("pending balance %s, want 0", reloadedSeller.PendingBalance)
	}
}

func TestProcessOrderPayouts_ParksWhenAccountInactive(t *testing.T) {
	h := newPayoutServiceTest(t)
	seller := h.seedSeller(t, false)
	pending := h.seedPending(t, seller, "20.00", enums.PendingPayoutStatusPending)

	h.transfers.createTransfer = func(context.Context, processor.TransferParams) (*processor.Transfer, error) {
		t.Fatal("transfer must not be attempted without an active account")
		return nil, nil
	}

	if err := h.service.ProcessOrderPayouts(context.Background(), pending.OrderID); err != nil {
		t.Fatalf("ProcessOrderPayouts: %v", err)
	}

	reloaded := h.reloadPending(t, pending.ID)
	if reloaded.Status != enums.PendingPayoutStatusAwaitingAccount {
		t.Fatalf("expected awaiting_account, got %s", reloaded.Status)
	}
}

func TestProcessOrderPayouts_FailureMarksRetryPending(t *testing.T) {
	h := newPayoutServiceTest(t)
	seller := h.seedSeller(t, true)
	pending := h.seedPending(t, seller, "9.99", enums.PendingPayoutStatusPending)

	h.transfers.createTransfer = func(context.Context, processor.TransferParams) (*processor.Transfer, error) {
		return nil, fmt.Errorf("insufficient platform balance")
	}

	err := h.service.ProcessOrderPayouts(context.Background(), pending.OrderID)
	if err == nil {
		t.Fatal("expected transfer failure to surface")
	}

	reloaded := h.reloadPending(t, pending.ID)
	if reloaded.Status != enums.PendingPayoutStatusRetryPending {
		t.Fatalf("expected retry_pending, got %s", reloaded.Status)
	}
	if reloaded.FailureReason == nil || *reloaded.FailureReason == "" {
		t.Fatal("expected failure reason to be recorded")
	}
}

func TestProcessOrderPayouts_FailureIsolatedPerSeller(t *testing.T) {
	h := newPayoutServiceTest(t)
	good := h.seedSeller(t, true)
	bad := h.seedSeller(t, true)
	orderID := uuid.New()

	goodPending := h.seedPending(t, good, "10.00", enums.PendingPayoutStatusPending)
	badPending := h.seedPending(t, bad, "5.00", enums.PendingPayoutStatusPending)
	for _, pending := range []*models.PendingPayout{goodPending, badPending} {
		if err := h.conn.Model(&models.PendingPayout{}).
			Where("id = ?", pending.ID).
			Update("order_id", orderID).Error; err != nil {
			t.Fatalf("point pending at order: %v", err)
		}
	}

	h.transfers.createTransfer = func(_ context.Context, params processor.TransferParams) (*processor.Transfer, error) {
		if params.Destination == *bad.SubAccountID {
			return nil, fmt.Errorf("destination rejected")
		}
		return &processor.Transfer{ID: "tr_good", Destination: params.Destination, Amount: params.Amount}, nil
	}

	err := h.service.ProcessOrderPayouts(context.Background(), orderID)
	if err == nil {
		t.Fatal("expected aggregated error")
	}

	if got := h.reloadPending(t, goodPending.ID).Status; got != enums.PendingPayoutStatusCompleted {
		t.Fatalf("good seller payout should complete, got %s", got)
	}
	if got := h.reloadPending(t, badPending.ID).Status; got != enums.PendingPayoutStatusRetryPending {
		t.Fatalf("bad seller payout should be retry_pending, got %s", got)
	}
}

func TestProcessSellerQueue_RespectsBatchSize(t *testing.T) {
	h := newPayoutServiceTest(t)
	conn := h.conn
	repo := NewRepository(conn)
	sellerRepo := sellers.NewRepository(conn)
	ledgerRepo := ledger.NewRepository(conn)
	logg := logger.New(logger.Options{ServiceName: "test"})

	service, err := NewService(
		db.NewWithConn(conn), repo, sellerRepo, ledgerRepo, h.transfers,
		config.PayoutsConfig{SweepBatchSize: 2, Currency: "GBP"}, logg,
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	seller := h.seedSeller(t, true)
	for i := 0; i < 5; i++ {
		h.seedPending(t, seller, "1.00", enums.PendingPayoutStatusAwaitingAccount)
	}

	completed, err := service.ProcessSellerQueue(context.Background(), seller.ID)
	if err != nil {
		t.Fatalf("ProcessSellerQueue: %v", err)
	}
	if completed != 2 {
		t.Fatalf("expected 2 transfers in one sweep, got %d", completed)
	}

	remaining, err := repo.ListPendingBySeller(context.Background(), seller.ID,
		[]enums.PendingPayoutStatus{enums.PendingPayoutStatusAwaitingAccount}, 0)
	if err != nil {
		t.Fatalf("list remaining: %v", err)
	}
	if len(remaining) != 3 {
		t.Fatalf("expected 3 parked payouts left, got %d", len(remaining))
	}
}

func TestRetry_OnlyRetryPendingEligible(t *testing.T) {
	h := newPayoutServiceTest(t)
	seller := h.seedSeller(t, true)
	pending := h.seedPending(t, seller, "7.50", enums.PendingPayoutStatusCompleted)

	err := h.service.Retry(context.Background(), pending.ID)
	if err == nil {
		t.Fatal("expected state conflict for completed payout")
	}
}

func TestRetry_ReattemptsFailedPayout(t *testing.T) {
	h := newPayoutServiceTest(t)
	seller := h.seedSeller(t, true)
	pending := h.seedPending(t, seller, "7.50", enums.PendingPayoutStatusRetryPending)

	if err := h.service.Retry(context.Background(), pending.ID); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if got := h.reloadPending(t, pending.ID).Status; got != enums.PendingPayoutStatusCompleted {
		t.Fatalf("expected completed after retry, got %s", got)
	}
}

func TestAdjustForRefund_CancelsAndShrinks(t *testing.T) {
	h := newPayoutServiceTest(t)
	seller := h.seedSeller(t, true)
	orderID := uuid.New()

	first := h.seedPending(t, seller, "10.00", enums.PendingPayoutStatusPending)
	second := h.seedPending(t, seller, "10.00", enums.PendingPayoutStatusPending)
	for _, pending := range []*models.PendingPayout{first, second} {
		if err := h.conn.Model(&models.PendingPayout{}).
			Where("id = ?", pending.ID).
			Update("order_id", orderID).Error; err != nil {
			t.Fatalf("point pending at order: %v", err)
		}
	}

	absorbed, err := h.service.AdjustForRefund(context.Background(), orderID, decimal.RequireFromString("13.00"))
	if err != nil {
		t.Fatalf("AdjustForRefund: %v", err)
	}
	if !absorbed.Equal(decimal.RequireFromString("13.00")) {
		t.Fatalf("absorbed %s, want 13.00", absorbed)
	}

	cancelled := h.reloadPending(t, first.ID)
	if cancelled.Status != enums.PendingPayoutStatusCancelled {
		t.Fatalf("first payout should be cancelled, got %s", cancelled.Status)
	}
	if cancelled.OriginalAmount == nil || !cancelled.OriginalAmount.Equal(decimal.RequireFromString("10.00")) {
		t.Fatal("cancelled payout should keep its original amount")
	}

	shrunk := h.reloadPending(t, second.ID)
	if shrunk.Status != enums.PendingPayoutStatusPending {
		t.Fatalf("second payout should stay pending, got %s", shrunk.Status)
	}
	if !shrunk.Amount.Equal(decimal.RequireFromString("7.00")) {
		t.Fatalf("second payout amount %s, want 7.00", shrunk.Amount)
	}
	if shrunk.OriginalAmount == nil || !shrunk.OriginalAmount.Equal(decimal.RequireFromString("10.00")) {
		t.Fatal("shrunk payout should keep its original amount")
	}
}

func TestAdjustForRefund_PreservesOriginalAcrossRefunds(t *testing.T) {
	h := newPayoutServiceTest(t)
	seller := h.seedSeller(t, true)
	pending := h.seedPending(t, seller, "100.00", enums.PendingPayoutStatusPending)

	if _, err := h.service.AdjustForRefund(context.Background(), pending.OrderID, decimal.RequireFromString("30.00")); err != nil {
		t.Fatalf("first AdjustForRefund: %v", err)
	}
	if _, err := h.service.AdjustForRefund(context.Background(), pending.OrderID, decimal.RequireFromString("20.00")); err != nil {
		t.Fatalf("second AdjustForRefund: %v", err)
	}

	reloaded := h.reloadPending(t, pending.ID)
	if !reloaded.Amount.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("amount %s after two refunds, want 50.00", reloaded.Amount)
	}
	// The audit value records what was owed before any refund touched it.
	if reloaded.OriginalAmount == nil || !reloaded.OriginalAmount.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("original amount %v, want the pre-refund 100.00", reloaded.OriginalAmount)
	}
}
