package render_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pocket/internal/http/render"
	"github.com/MrJamesThe3rd/pocket/internal/ledger"
	"github.com/MrJamesThe3rd/pocket/internal/matching"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "NotFound", err: fmt.Errorf("deleting: %w", ledger.ErrNotFound), want: http.StatusNotFound},
		{name: "Protected", err: ledger.ErrProtected, want: http.StatusConflict},
		{name: "InUse", err: ledger.ErrInUse, want: http.StatusConflict},
		{name: "AlreadyExists", err: ledger.WrapRepo("insert", ledger.ErrAlreadyExists), want: http.StatusConflict},
		{name: "InvalidAmount", err: ledger.ErrInvalidAmount, want: http.StatusUnprocessableEntity},
		{name: "SameAccount", err: ledger.ErrInvalidTransfer, want: http.StatusUnprocessableEntity},
		{name: "UnknownAccount", err: fmt.Errorf("%w: ghost", ledger.ErrUnknownAccount), want: http.StatusUnprocessableEntity},
		{name: "EmptyPattern", err: matching.ErrEmptyPattern, want: http.StatusUnprocessableEntity},
		{name: "InvalidID", err: fmt.Errorf("account %q: %w", "all", ledger.ErrInvalidID), want: http.StatusUnprocessableEntity},
		{name: "Unexpected", err: errors.New("connection reset"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render.Status(tt.err))
		})
	}
}

func TestError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	render.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("dial tcp 10.0.0.1:5432"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestError_PartialTransfer(t *testing.T) {
	rec := httptest.NewRecorder()
	err := fmt.Errorf("recording transfer: %w", &ledger.TransferPartiallyFailedError{
		TransferID:     "tr-1",
		PersistedLegID: "leg-1",
		Err:            errors.New("disk full"),
	})

	render.Error(rec, httptest.NewRequest(http.MethodPost, "/api/v1/transfers", nil), err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tr-1", body["transfer_id"])
	assert.Equal(t, "leg-1", body["persisted_leg_id"])
	assert.Equal(t, false, body["compensated"])
}
