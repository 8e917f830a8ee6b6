package importcsv

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pocket/internal/http/render"
	"github.com/MrJamesThe3rd/pocket/internal/http/transaction"
	"github.com/MrJamesThe3rd/pocket/internal/importer"
)

const maxUploadSize = 10 << 20

type Handler struct {
	svc *importer.Service
}

func NewHandler(svc *importer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type lineErrorResponse struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type importResponse struct {
	Charset      string                 `json:"charset"`
	Parsed       int                    `json:"parsed"`
	Imported     int                    `json:"imported"`
	Transfers    int                    `json:"transfers"`
	Transactions []transaction.Response `json:"transactions"`
	Failed       []lineErrorResponse    `json:"failed"`
	Skipped      []lineErrorResponse    `json:"skipped"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		render.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	format := importer.Format(r.FormValue("format"))
	if format == "" {
		format = importer.FormatPocket
	}

	var dryRun bool

	if v := r.FormValue("dry_run"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			render.BadRequest(w, "dry_run must be a boolean")
			return
		}

		dryRun = b
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		render.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	res, err := h.svc.Import(r.Context(), format, file, importer.Options{
		AccountID: r.FormValue("account"),
		DryRun:    dryRun,
	})
	if err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	status := http.StatusCreated
	if dryRun {
		status = http.StatusOK
	}

	render.JSON(w, status, toResponse(res))
}

func toResponse(res *importer.Result) importResponse {
	return importResponse{
		Charset:      res.Charset,
		Parsed:       res.Parsed,
		Imported:     len(res.Transactions),
		Transfers:    len(res.Transfers),
		Transactions: transaction.ToResponseList(res.Transactions),
		Failed:       toLineErrors(res.Failed),
		Skipped:      toLineErrors(res.Skipped),
	}
}

func toLineErrors(errs []importer.LineError) []lineErrorResponse {
	resp := make([]lineErrorResponse, 0, len(errs))
	for _, e := range errs {
		resp = append(resp, lineErrorResponse{Line: e.Line, Error: e.Err.Error()})
	}

	return resp
}
