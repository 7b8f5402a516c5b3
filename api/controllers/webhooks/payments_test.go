package webhooks

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/DJCodeOne/freshwax-sub005/internal/webhooks/payments"
	pkgerrors "github.com/DJCodeOne/freshwax-sub005/pkg/errors"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
)

const testSecret = "whsec_test"

type stubWebhookService struct {
	handleEvent func(ctx context.Context, event payments.Event) error
}

func (s *stubWebhookService) HandleEvent(ctx context.Context, event payments.Event) error {
	if s.handleEvent == nil {
		return nil
	}
	return s.handleEvent(ctx, event)
}

type stubSignatureConfig struct{}

func (stubSignatureConfig) SigningSecret() string { return testSecret }

func (stubSignatureConfig) SignatureTolerance() time.Duration { return 5 * time.Minute }

func signedRequest(t *testing.T, payload string) *http.Request {
	t.Helper()
	now := time.Now()
	sig := webhook.ComputeSignature(now, []byte(payload), testSecret)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", bytes.NewBufferString(payload))
	req.Header.Set("X-Payment-Signature",
		fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig)))
	return req
}

func TestPaymentsWebhook_AcceptsSignedEvent(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})

	var handled bool
	svc := &stubWebhookService{handleEvent: func(_ context.Context, event payments.Event) error {
		if event.ID != "evt_1" {
			t.Fatalf("event id %s, want evt_1", event.ID)
		}
		handled = true
		return nil
	}}

	w := httptest.NewRecorder()
	handler := PaymentsWebhook(svc, stubSignatureConfig{}, logg)
	handler(w, signedRequest(t, `{"id":"evt_1","type":"payment.completed","data":{"charge_id":"ch_1"}}`))

	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	if !handled {
		t.Fatal("event never reached the service")
	}
}

func TestPaymentsWebhook_RejectsMissingSignature(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	svc := &stubWebhookService{handleEvent: func(context.Context, payments.Event) error {
		t.Fatal("unsigned request must not be handled")
		return nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments",
		bytes.NewBufferString(`{"id":"evt_1"}`))
	w := httptest.NewRecorder()
	PaymentsWebhook(svc, stubSignatureConfig{}, logg)(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestPaymentsWebhook_RejectsBadSignature(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	svc := &stubWebhookService{handleEvent: func(context.Context, payments.Event) error {
		t.Fatal("tampered request must not be handled")
		return nil
	}}

	req := signedRequest(t, `{"id":"evt_1"}`)
	// Body swapped after signing.
	req.Body = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"id":"evt_2"}`)).Body

	w := httptest.NewRecorder()
	PaymentsWebhook(svc, stubSignatureConfig{}, logg)(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestPaymentsWebhook_AcknowledgesHandlerFailure(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	svc := &stubWebhookService{handleEvent: func(context.Context, payments.Event) error {
		return fmt.Errorf("settlement temporarily unavailable")
	}}

	w := httptest.NewRecorder()
	handler := PaymentsWebhook(svc, stubSignatureConfig{}, logg)
	handler(w, signedRequest(t, `{"id":"evt_1","type":"payment.completed","data":{"charge_id":"ch_1"}}`))

	// The idempotency claim was released inside HandleEvent; a 200 lets the
	// processor redeliver on its own schedule.
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
}

func TestPaymentsWebhook_SurfacesValidationErrors(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	svc := &stubWebhookService{handleEvent: func(context.Context, payments.Event) error {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid event payload")
	}}

	w := httptest.NewRecorder()
	handler := PaymentsWebhook(svc, stubSignatureConfig{}, logg)
	handler(w, signedRequest(t, `{"id":"evt_1","type":"payment.completed","data":{}}`))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}
