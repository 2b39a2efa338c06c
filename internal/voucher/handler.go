package voucher

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meridian-ops/meridian/internal/ledger"
	"github.com/meridian-ops/meridian/internal/platform/httpx"
)

const dateLayout = "2006-01-02"

// Handler wires voucher endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers HTTP routes for vouchers.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/vouchers/payments", h.createPayment)
	r.Post("/vouchers/receipts", h.createReceipt)
	r.Post("/vouchers/journals", h.createJournal)
	r.Post("/vouchers/notes", h.createNote)
	r.Post("/vouchers/notes/{id}/confirm", h.confirmNote)
	r.Post("/vouchers/transfers", h.createTransfer)
	r.Post("/vouchers/{id}/clear", h.clearCheque)
	r.Get("/vouchers/cheques", h.listCheques)
	r.Get("/vouchers/{id}", h.get)
	r.Delete("/vouchers/{id}", h.delete)
}

type paymentPayload struct {
	Date           string  `json:"date" validate:"required"`
	PartyAccountID int64   `json:"partyAccountId" validate:"required"`
	PartyName      string  `json:"partyName"`
	BankID         int64   `json:"bankId" validate:"required"`
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	Narration      string  `json:"narration"`
	ChequeNumber   string  `json:"chequeNumber"`
	ChequeDate     string  `json:"chequeDate"`
	CreatedBy      string  `json:"createdBy"`
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var payload paymentPayload
	if !h.decode(w, r, &payload) {
		return
	}
	date, ok := h.parseDate(w, payload.Date)
	if !ok {
		return
	}
	chequeDate, _ := time.Parse(dateLayout, payload.ChequeDate)
	result, err := h.service.CreatePayment(r.Context(), PaymentInput{
		Date:           date,
		PartyAccountID: payload.PartyAccountID,
		PartyName:      payload.PartyName,
		BankID:         payload.BankID,
		Amount:         payload.Amount,
		Narration:      payload.Narration,
		ChequeNumber:   payload.ChequeNumber,
		ChequeDate:     chequeDate,
		CreatedBy:      payload.CreatedBy,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPostResponse(result))
}

type receiptPayload struct {
	Date          string  `json:"date" validate:"required"`
	FromAccountID int64   `json:"fromAccountId" validate:"required"`
	PartyName     string  `json:"partyName"`
	BankID        int64   `json:"bankId" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Narration     string  `json:"narration"`
	ChequeNumber  string  `json:"chequeNumber"`
	ChequeDate    string  `json:"chequeDate"`
	CreatedBy     string  `json:"createdBy"`
}

func (h *Handler) createReceipt(w http.ResponseWriter, r *http.Request) {
	var payload receiptPayload
	if !h.decode(w, r, &payload) {
		return
	}
	date, ok := h.parseDate(w, payload.Date)
	if !ok {
		return
	}
	chequeDate, _ := time.Parse(dateLayout, payload.ChequeDate)
	result, err := h.service.CreateReceipt(r.Context(), ReceiptInput{
		Date:          date,
		FromAccountID: payload.FromAccountID,
		PartyName:     payload.PartyName,
		BankID:        payload.BankID,
		Amount:        payload.Amount,
		Narration:     payload.Narration,
		ChequeNumber:  payload.ChequeNumber,
		ChequeDate:    chequeDate,
		CreatedBy:     payload.CreatedBy,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPostResponse(result))
}

type journalLinePayload struct {
	AccountID int64   `json:"accountId" validate:"required"`
	Debit     float64 `json:"debit" validate:"gte=0"`
	Credit    float64 `json:"credit" validate:"gte=0"`
	Narration string  `json:"narration"`
}

type journalPayload struct {
	Date      string               `json:"date" validate:"required"`
	Narration string               `json:"narration"`
	Lines     []journalLinePayload `json:"lines" validate:"required,min=1,dive"`
	CreatedBy string               `json:"createdBy"`
}

func (h *Handler) createJournal(w http.ResponseWriter, r *http.Request) {
	var payload journalPayload
	if !h.decode(w, r, &payload) {
		return
	}
	date, ok := h.parseDate(w, payload.Date)
	if !ok {
		return
	}
	lines := make([]JournalLine, 0, len(payload.Lines))
	for _, line := range payload.Lines {
		lines = append(lines, JournalLine{
			AccountID: line.AccountID,
			Debit:     line.Debit,
			Credit:    line.Credit,
			Narration: line.Narration,
		})
	}
	result, err := h.service.CreateJournal(r.Context(), JournalInput{
		Date:      date,
		Narration: payload.Narration,
		Lines:     lines,
		CreatedBy: payload.CreatedBy,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPostResponse(result))
}

type notePayload struct {
	Kind            string  `json:"kind" validate:"required,oneof=CREDIT_NOTE DEBIT_NOTE"`
	Date            string  `json:"date" validate:"required"`
	PartyAccountID  int64   `json:"partyAccountId" validate:"required"`
	PartyName       string  `json:"partyName"`
	PartyType       string  `json:"partyType" validate:"omitempty,oneof=customer vendor"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	VATAmount       float64 `json:"vatAmount" validate:"gte=0"`
	VATAccountID    int64   `json:"vatAccountId"`
	OffsetAccountID int64   `json:"offsetAccountId" validate:"required"`
	Narration       string  `json:"narration"`
	CreatedBy       string  `json:"createdBy"`
}

func (h *Handler) createNote(w http.ResponseWriter, r *http.Request) {
	var payload notePayload
	if !h.decode(w, r, &payload) {
		return
	}
	date, ok := h.parseDate(w, payload.Date)
	if !ok {
		return
	}
	note, err := h.service.CreateNote(r.Context(), NoteInput{
		Kind:            Kind(payload.Kind),
		Date:            date,
		PartyAccountID:  payload.PartyAccountID,
		PartyName:       payload.PartyName,
		PartyType:       PartnerType(payload.PartyType),
		Amount:          payload.Amount,
		VATAmount:       payload.VATAmount,
		VATAccountID:    payload.VATAccountID,
		OffsetAccountID: payload.OffsetAccountID,
		Narration:       payload.Narration,
		CreatedBy:       payload.CreatedBy,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, note)
}

func (h *Handler) confirmNote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	result, err := h.service.ConfirmNote(r.Context(), id, r.Header.Get("X-Actor"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPostResponse(result))
}

type transferPayload struct {
	Date       string  `json:"date" validate:"required"`
	FromBankID int64   `json:"fromBankId" validate:"required"`
	ToBankID   int64   `json:"toBankId" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Narration  string  `json:"narration"`
	CreatedBy  string  `json:"createdBy"`
}

func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	var payload transferPayload
	if !h.decode(w, r, &payload) {
		return
	}
	date, ok := h.parseDate(w, payload.Date)
	if !ok {
		return
	}
	result, err := h.service.CreateTransfer(r.Context(), TransferInput{
		Date:       date,
		FromBankID: payload.FromBankID,
		ToBankID:   payload.ToBankID,
		Amount:     payload.Amount,
		Narration:  payload.Narration,
		CreatedBy:  payload.CreatedBy,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPostResponse(result))
}

type clearPayload struct {
	ClearedDate string `json:"clearedDate" validate:"required"`
}

func (h *Handler) clearCheque(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var payload clearPayload
	if !h.decode(w, r, &payload) {
		return
	}
	clearedDate, ok := h.parseDate(w, payload.ClearedDate)
	if !ok {
		return
	}
	cleared, err := h.service.ClearCheque(r.Context(), id, clearedDate, r.Header.Get("X-Actor"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cleared)
}

func (h *Handler) listCheques(w http.ResponseWriter, r *http.Request) {
	status := ChequeStatus(r.URL.Query().Get("status"))
	cheques, err := h.service.ListCheques(r.Context(), status)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cheques)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	v, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, v)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	kind := Kind(r.URL.Query().Get("kind"))
	if err := h.service.Delete(r.Context(), id, kind, r.Header.Get("X-Actor")); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) parseDate(w http.ResponseWriter, value string) (time.Time, bool) {
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Date", err.Error())
		return time.Time{}, false
	}
	return date, true
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", err.Error())
		return uuid.Nil, false
	}
	return id, true
}

type postResponse struct {
	Voucher        Voucher     `json:"voucher"`
	LedgerEntryIDs []uuid.UUID `json:"ledgerEntryIds"`
}

func toPostResponse(result PostResult) postResponse {
	ids := make([]uuid.UUID, 0, len(result.Entries))
	for _, entry := range result.Entries {
		ids = append(ids, entry.ID)
	}
	return postResponse{Voucher: result.Voucher, LedgerEntryIDs: ids}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrImbalanced):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Imbalanced Voucher", err.Error())
	case errors.Is(err, ledger.ErrNoLines):
		httpx.Problem(w, http.StatusBadRequest, "Empty Voucher", err.Error())
	case errors.Is(err, ledger.ErrNegativeAmount):
		httpx.Problem(w, http.StatusBadRequest, "Negative Amount", err.Error())
	case errors.Is(err, ErrNonPositiveAmount):
		httpx.Problem(w, http.StatusBadRequest, "Non Positive Amount", err.Error())
	case errors.Is(err, ErrInvalidReference):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Reference", err.Error())
	case errors.Is(err, ErrInvalidTransfer):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Transfer", err.Error())
	case errors.Is(err, ErrVoucherNotFound):
		httpx.Problem(w, http.StatusNotFound, "Voucher Not Found", err.Error())
	case errors.Is(err, ErrAlreadyConfirmed):
		httpx.Problem(w, http.StatusConflict, "Already Confirmed", err.Error())
	case errors.Is(err, ErrNotCheque), errors.Is(err, ErrAlreadyCleared):
		httpx.Problem(w, http.StatusConflict, "Cheque State", err.Error())
	default:
		h.logger.Error("voucher handler", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
