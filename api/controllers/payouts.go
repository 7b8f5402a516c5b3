package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/DJCodeOne/freshwax-sub005/api/responses"
	"github.com/DJCodeOne/freshwax-sub005/internal/payouts"
	"github.com/DJCodeOne/freshwax-sub005/internal/sellers"
	pkgerrors "github.com/DJCodeOne/freshwax-sub005/pkg/errors"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
)

// SellerPayoutQueue returns the seller's queued payouts in every state.
func SellerPayoutQueue(queue payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sellerID, err := uuid.Parse(chi.URLParam(r, "sellerID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid seller id"))
			return
		}

		pending, err := queue.SellerQueue(ctx, sellerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, pending)
	}
}

// SellerPayoutHistory returns the seller's executed transfers.
func SellerPayoutHistory(queue payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sellerID, err := uuid.Parse(chi.URLParam(r, "sellerID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid seller id"))
			return
		}

		limit := parseLimit(r.URL.Query().Get("limit"), 50)
		history, err := queue.SellerHistory(ctx, sellerID, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

// RetryPayout re-attempts one failed payout on operator request.
func RetryPayout(queue payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		payoutID, err := uuid.Parse(chi.URLParam(r, "payoutID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payout id"))
			return
		}

		if err := queue.Retry(ctx, payoutID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "processed"})
	}
}

// SellerAccountActivated marks a seller's sub-account live and immediately
// drains their parked payouts. Called by the platform's account onboarding
// flow once the processor confirms the sub-account.
func SellerAccountActivated(sellerRepo sellers.Repository, queue payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sellerID, err := uuid.Parse(chi.URLParam(r, "sellerID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid seller id"))
			return
		}

		if err := sellerRepo.SetSubAccountActive(ctx, sellerID, true); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate seller account"))
			return
		}

		completed, err := queue.ProcessSellerQueue(ctx, sellerID)
		if err != nil {
			// Activation stuck; the reconcile sweep retries what remains.
			if logg != nil {
				scoped := logg.WithSellerID(ctx, sellerID.String())
				logg.Error(scoped, "draining parked payouts after activation failed", err)
			}
		}
		responses.WriteSuccess(w, map[string]any{
			"transfers_completed": completed,
		})
	}
}
