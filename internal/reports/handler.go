package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/meridian-ops/meridian/internal/ledger"
	"github.com/meridian-ops/meridian/internal/platform/httpx"
	"github.com/meridian-ops/meridian/internal/voucher"
)

const dateLayout = "2006-01-02"

// Handler serves the report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes. Reports walk the full row set,
// so the group carries its own tighter rate limit.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(httprate.LimitByIP(30, time.Minute))
		r.Get("/trial-balance", h.trialBalance)
		r.Get("/balance-sheet", h.balanceSheet)
		r.Get("/profit-loss", h.profitLoss)
		r.Get("/day-book", h.dayBook)
		r.Get("/cash-flow", h.cashFlow)
		r.Get("/ageing", h.ageing)
		r.Get("/soa", h.statementOfAccount)
	})
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	report, err := h.service.TrialBalance(r.Context(), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	report, err := h.service.BalanceSheet(r.Context(), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) profitLoss(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	report, err := h.service.ProfitLoss(r.Context(), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) dayBook(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	report, err := h.service.DayBook(r.Context(), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) cashFlow(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	report, err := h.service.CashFlow(r.Context(), from, to)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) ageing(w http.ResponseWriter, r *http.Request) {
	partnerType := voucher.PartnerType(r.URL.Query().Get("partnerType"))
	asOn, ok := h.parseDate(w, r.URL.Query().Get("asOn"))
	if !ok {
		return
	}
	report, err := h.service.Ageing(r.Context(), partnerType, asOn)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) statementOfAccount(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	report, err := h.service.StatementOfAccount(r.Context(),
		query.Get("partner"),
		voucher.PartnerType(query.Get("partnerType")),
		from, to,
		SOAReportType(query.Get("reportType")))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) parseRange(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	query := r.URL.Query()
	from, ok = h.parseDate(w, query.Get("from"))
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok = h.parseDate(w, query.Get("to"))
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
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

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidDateRange):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Date Range", err.Error())
	case errors.Is(err, ErrUnknownPartnerType), errors.Is(err, ErrPartnerRequired):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", err.Error())
	default:
		h.logger.Error("report handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
