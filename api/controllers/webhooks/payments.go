package webhooks

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/DJCodeOne/freshwax-sub005/api/responses"
	"github.com/DJCodeOne/freshwax-sub005/internal/webhooks/payments"
	pkgerrors "github.com/DJCodeOne/freshwax-sub005/pkg/errors"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
	"github.com/DJCodeOne/freshwax-sub005/pkg/processor"
)

const signatureHeader = "X-Payment-Signature"

type signatureConfig interface {
	SigningSecret() string
	SignatureTolerance() time.Duration
}

// PaymentsWebhook receives processor events. Signature failures are rejected;
// once an event is accepted the endpoint acknowledges with 200 even when a
// handler partially fails, since the idempotency claim is released and the
// processor's redelivery will re-run the work.
func PaymentsWebhook(svc payments.Service, client signatureConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "processor client unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get(signatureHeader)
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "payment signature missing"))
			return
		}

		if err := processor.VerifySignature(payload, sigHeader, client.SigningSecret(), client.SignatureTolerance()); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "verify signature"))
			return
		}

		var event payments.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event"))
			return
		}

		if err := svc.HandleEvent(ctx, event); err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeValidation {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if logg != nil {
				scoped := logg.WithField(ctx, "event_id", event.ID)
				logg.Error(scoped, "webhook event handling failed; acknowledging for redelivery", err)
			}
			responses.WriteSuccess(w, nil)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}
