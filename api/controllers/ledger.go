package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/DJCodeOne/freshwax-sub005/api/responses"
	"github.com/DJCodeOne/freshwax-sub005/internal/ledger"
	pkgerrors "github.com/DJCodeOne/freshwax-sub005/pkg/errors"
	"github.com/DJCodeOne/freshwax-sub005/pkg/logger"
)

// LedgerMonth returns every ledger entry recorded for a calendar month.
func LedgerMonth(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		year, err := strconv.Atoi(chi.URLParam(r, "year"))
		if err != nil || year < 2000 || year > 2200 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid year"))
			return
		}
		month, err := strconv.Atoi(chi.URLParam(r, "month"))
		if err != nil || month < 1 || month > 12 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid month"))
			return
		}

		entries, err := svc.MonthlyReport(ctx, year, month)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// SellerLedger returns a seller's recent ledger entries.
func SellerLedger(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sellerID, err := uuid.Parse(chi.URLParam(r, "sellerID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid seller id"))
			return
		}

		limit := parseLimit(r.URL.Query().Get("limit"), 50)
		entries, err := svc.SellerHistory(ctx, sellerID, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 500 {
		return fallback
	}
	return limit
}
