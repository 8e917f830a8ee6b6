package account

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pocket/internal/http/render"
	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type accountResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	InitialBalance int64     `json:"initial_balance"`
	Default        bool      `json:"default"`
	CreatedAt      time.Time `json:"created_at"`
}

func toResponse(a ledger.Account) accountResponse {
	return accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		InitialBalance: a.InitialBalance,
		Default:        a.ID == ledger.DefaultAccountID,
		CreatedAt:      a.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = toResponse(a)
	}

	render.JSON(w, http.StatusOK, resp)
}

type createAccountRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	InitialBalance int64  `json:"initial_balance"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	a, err := h.svc.CreateAccount(r.Context(), ledger.AccountParams{
		ID:             req.ID,
		Name:           req.Name,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(*a))
}

type updateAccountRequest struct {
	Name           *string `json:"name,omitempty"`
	InitialBalance *int64  `json:"initial_balance,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	a, err := h.svc.UpdateAccount(r.Context(), chi.URLParam(r, "id"), ledger.AccountUpdate{
		Name:           req.Name,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(*a))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
