package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/DJCodeOne/freshwax-sub005/api/responses"
	"github.com/DJCodeOne/freshwax-sub005/internal/ledger"
	"github.com/DJCodeOne/freshwax-sub005/internal/payouts"
	"github.com/DJCodeOne/freshwax-sub005/internal/reversal"
	pkgerrors "github.com/DJCodeOne/freshwax-sub005/pkg/errors"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
)

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "orderID"))
}

// OrderLedger returns the per-seller ledger entries recorded for an order.
func OrderLedger(repo ledger.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		entries, err := repo.ListByOrderID(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// OrderPayouts returns the transfers executed for an order.
func OrderPayouts(queue payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		executed, err := queue.OrderPayouts(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, executed)
	}
}

// OrderDisputes returns the disputes recorded against an order's charge.
func OrderDisputes(repo reversal.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		disputes, err := repo.ListDisputesByOrder(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, disputes)
	}
}

// OrderRefunds returns the refund audit records for an order.
func OrderRefunds(repo reversal.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		refunds, err := repo.ListRefundsByOrder(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, refunds)
	}
}
