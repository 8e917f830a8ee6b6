// Package render writes JSON responses and maps ledger errors to HTTP statuses.
package render

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
	"github.com/MrJamesThe3rd/pocket/internal/matching"
)

type errorResponse struct {
	Error string `json:"error"`
}

type partialTransferResponse struct {
	Error          string `json:"error"`
	TransferID     string `json:"transfer_id"`
	PersistedLegID string `json:"persisted_leg_id"`
	Compensated    bool   `json:"compensated"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// Error writes err with the status its kind maps to. Unexpected errors are
// logged and reported without detail.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var partial *ledger.TransferPartiallyFailedError
	if errors.As(err, &partial) {
		slog.ErrorContext(r.Context(), "transfer partially failed",
			"transfer_id", partial.TransferID,
			"leg_id", partial.PersistedLegID,
			"compensated", partial.Compensated,
			"error", partial.Err)

		JSON(w, http.StatusInternalServerError, partialTransferResponse{
			Error:          "transfer partially failed",
			TransferID:     partial.TransferID,
			PersistedLegID: partial.PersistedLegID,
			Compensated:    partial.Compensated,
		})

		return
	}

	status := Status(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		JSON(w, status, errorResponse{Error: "internal error"})

		return
	}

	JSON(w, status, errorResponse{Error: err.Error()})
}

// Status maps an error returned by the services to a response status.
func Status(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrProtected),
		errors.Is(err, ledger.ErrInUse),
		errors.Is(err, ledger.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidTransfer),
		errors.Is(err, ledger.ErrInvalidType),
		errors.Is(err, ledger.ErrEmptyName),
		errors.Is(err, ledger.ErrInvalidID),
		errors.Is(err, ledger.ErrUnknownAccount),
		errors.Is(err, ledger.ErrUnknownCategory),
		errors.Is(err, ledger.ErrUnknownPaymentMethod),
		errors.Is(err, matching.ErrEmptyPattern):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
