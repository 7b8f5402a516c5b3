package processor

import (
	"errors"
	"time"

	"github.com/stripe/stripe-go/v84/webhook"
)

// DefaultTolerance is the accepted clock skew between the signature timestamp
// and the receiving host. Older deliveries are rejected as stale.
const DefaultTolerance = 5 * time.Minute

var (
	// ErrSignatureInvalid means no candidate signature matched the payload.
	ErrSignatureInvalid = errors.New("webhook signature mismatch")
	// ErrSignatureExpired means the timestamp fell outside the tolerance.
	ErrSignatureExpired = errors.New("webhook signature timestamp outside tolerance")
)

// VerifySignature checks a webhook signature header of the form
// "t=<unix>,v1=<hex hmac>". The signed message is "<t>.<payload>" keyed with
// the shared webhook secret, and multiple v1 entries are accepted so the
// processor can rotate secrets. The scheme is the one Stripe's webhooks use,
// so validation delegates to the stripe-go verifier.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration) error {
	if secret == "" {
		return ErrSignatureInvalid
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	err := webhook.ValidatePayloadWithTolerance(payload, header, secret, tolerance)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, webhook.ErrTooOld):
		return ErrSignatureExpired
	default:
		return ErrSignatureInvalid
	}
}
