package coa

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-ops/meridian/internal/platform/httpx"
	"github.com/meridian-ops/meridian/internal/shared"
)

// Handler wires chart of accounts endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers HTTP routes for the registry.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts", h.list)
	r.Post("/accounts", h.create)
	r.Get("/accounts/{id}", h.get)
	r.Put("/accounts/{id}", h.update)
	r.Delete("/accounts/{id}", h.deactivate)
}

type accountPayload struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	SubType        string `json:"subType"`
	Classification string `json:"classification"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload accountPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	account, err := h.service.Create(r.Context(), CreateInput{
		Code:           payload.Code,
		Name:           payload.Name,
		Type:           AccountType(payload.Type),
		SubType:        payload.SubType,
		Classification: payload.Classification,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := Filter{
		Type:   AccountType(query.Get("type")),
		Search: query.Get("q"),
	}
	accounts, err := h.service.Find(r.Context(), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}

	page, _ := strconv.Atoi(query.Get("page"))
	perPage, _ := strconv.Atoi(query.Get("perPage"))
	pagination := shared.NewPagination(page, perPage, len(accounts))
	start := (pagination.Page - 1) * pagination.PerPage
	if start > len(accounts) {
		start = len(accounts)
	}
	end := start + pagination.PerPage
	if end > len(accounts) {
		end = len(accounts)
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       accounts[start:end],
		"pagination": pagination,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	account, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	var payload accountPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	account, err := h.service.Update(r.Context(), UpdateInput{
		ID:             id,
		Name:           payload.Name,
		SubType:        payload.SubType,
		Classification: payload.Classification,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return
	}
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDuplicateCode):
		httpx.Problem(w, http.StatusConflict, "Duplicate Account Code", err.Error())
	case errors.Is(err, ErrAccountNotFound):
		httpx.Problem(w, http.StatusNotFound, "Account Not Found", err.Error())
	case errors.Is(err, ErrAccountReferenced):
		httpx.Problem(w, http.StatusConflict, "Account Referenced", err.Error())
	default:
		h.logger.Error("coa handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
