package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-ops/meridian/internal/platform/httpx"
)

const dateLayout = "2006-01-02"

// Handler serves the per-account ledger summary.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts/{id}/ledger", h.summary)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Account ID", err.Error())
		return
	}
	query := r.URL.Query()
	from, ok := h.parseDate(w, query.Get("from"))
	if !ok {
		return
	}
	to, ok := h.parseDate(w, query.Get("to"))
	if !ok {
		return
	}
	summary, err := h.service.Summarize(r.Context(), accountID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDateRange):
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date Range", err.Error())
		case errors.Is(err, ErrUnknownAccount):
			httpx.Problem(w, http.StatusNotFound, "Account Not Found", err.Error())
		default:
			h.logger.Error("ledger handler", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) parseDate(w http.ResponseWriter, value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
		return time.Time{}, false
	}
	return date, true
}
