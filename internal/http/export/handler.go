package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pocket/internal/export"
	"github.com/MrJamesThe3rd/pocket/internal/http/render"
	"github.com/MrJamesThe3rd/pocket/internal/http/transaction"
	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

type Handler struct {
	svc    *export.Service
	ledger *ledger.Service
	now    func() time.Time
}

func NewHandler(svc *export.Service, ledger *ledger.Service) *Handler {
	return &Handler{svc: svc, ledger: ledger, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
}

// download streams the filtered transactions as CSV, or as a plain-text
// report with resolved names when format=text.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	filter, err := transaction.ParseFilter(r)
	if err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "csv":
		h.csv(w, r, filter)
	case "text":
		h.text(w, r, filter)
	default:
		render.BadRequest(w, "format must be csv or text")
	}
}

func (h *Handler) csv(w http.ResponseWriter, r *http.Request, filter ledger.Filter) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(h.now())))

	// Listing fails before anything is written, so the error still gets a status.
	n, err := h.svc.CSV(r.Context(), w, filter)
	if err != nil {
		w.Header().Del("Content-Disposition")
		render.Error(w, r, err)

		return
	}

	slog.DebugContext(r.Context(), "exported transactions", "count", n)
}

func (h *Handler) text(w http.ResponseWriter, r *http.Request, filter ledger.Filter) {
	st, err := h.ledger.Load(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	txs := ledger.SortByDateDesc(ledger.FilterTransactions(st.Transactions, filter))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if err := export.WriteText(w, txs, st); err != nil {
		slog.ErrorContext(r.Context(), "failed to write export", "error", err)
	}
}
