package transaction

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pocket/internal/http/render"
	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
	now func() time.Time
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) TransferRoutes(r chi.Router) {
	r.Post("/", h.transfer)
}

// ParseFilter reads the account and type query parameters.
func ParseFilter(r *http.Request) (ledger.Filter, error) {
	q := r.URL.Query()

	filter := ledger.Filter{
		AccountID: q.Get("account"),
		Type:      q.Get("type"),
	}

	switch filter.Type {
	case "", ledger.AllTypes, string(ledger.TypeIncome), string(ledger.TypeExpense):
	default:
		return ledger.Filter{}, fmt.Errorf("invalid type filter %q", filter.Type)
	}

	return filter, nil
}

type createTransactionRequest struct {
	Description   string      `json:"description"`
	Amount        int64       `json:"amount"`
	Type          ledger.Type `json:"type"`
	Category      string      `json:"category"`
	Date          time.Time   `json:"date"`
	PaymentMethod string      `json:"payment_method"`
	AccountID     string      `json:"account_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	if req.Date.IsZero() {
		req.Date = h.today()
	}

	tx, err := h.svc.CreateTransaction(r.Context(), ledger.CreateParams{
		Description:   req.Description,
		Amount:        req.Amount,
		Type:          req.Type,
		Category:      req.Category,
		Date:          req.Date,
		PaymentMethod: req.PaymentMethod,
		AccountID:     req.AccountID,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, ToResponse(*tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r)
	if err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	txs, err := h.svc.ListTransactions(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, ToResponseList(txs))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type transferRequest struct {
	FromAccountID string    `json:"from_account_id"`
	ToAccountID   string    `json:"to_account_id"`
	Amount        int64     `json:"amount"`
	Date          time.Time `json:"date"`
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	if req.Date.IsZero() {
		req.Date = h.today()
	}

	t, err := h.svc.Transfer(r.Context(), ledger.TransferRequest{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Date:          req.Date,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toTransferResponse(t))
}

func (h *Handler) today() time.Time {
	y, m, d := h.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
