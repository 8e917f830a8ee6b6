package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/pocket/internal/http/account"
	"github.com/MrJamesThe3rd/pocket/internal/http/auth"
	"github.com/MrJamesThe3rd/pocket/internal/http/category"
	"github.com/MrJamesThe3rd/pocket/internal/http/export"
	"github.com/MrJamesThe3rd/pocket/internal/http/importcsv"
	"github.com/MrJamesThe3rd/pocket/internal/http/live"
	"github.com/MrJamesThe3rd/pocket/internal/http/matching"
	"github.com/MrJamesThe3rd/pocket/internal/http/paymentmethod"
	"github.com/MrJamesThe3rd/pocket/internal/http/summary"
	"github.com/MrJamesThe3rd/pocket/internal/http/transaction"
)

type Handlers struct {
	Transactions   *transaction.Handler
	Summary        *summary.Handler
	Accounts       *account.Handler
	Categories     *category.Handler
	PaymentMethods *paymentmethod.Handler
	Matching       *matching.Handler
	Import         *importcsv.Handler
	Export         *export.Handler
	Live           *live.Hub
}

type Options struct {
	AllowedOrigins []string
	// Verifier, when set, guards every /api/v1 route.
	Verifier *auth.Verifier
}

func New(opts Options, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Verifier != nil {
			r.Use(opts.Verifier.Middleware)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))

			r.Route("/transactions", h.Transactions.Routes)
			r.Route("/transfers", h.Transactions.TransferRoutes)
			r.Route("/accounts", h.Accounts.Routes)
			r.Route("/categories", func(r chi.Router) {
				h.Categories.Routes(r)
				h.Matching.Routes(r)
			})
			r.Route("/payment-methods", h.PaymentMethods.Routes)
		})

		r.Route("/summary", h.Summary.Routes)
		r.Route("/import", h.Import.Routes)
		r.Route("/export", h.Export.Routes)
		r.Handle("/live", h.Live)
	})

	return router
}
