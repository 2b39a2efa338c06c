package voucher

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-ops/meridian/internal/ledger"
)

// Kind tags the voucher variant. All six kinds share one contract: when
// posted they produce a set of ledger rows whose debits equal credits.
type Kind string

const (
	KindPayment      Kind = "PAYMENT"
	KindReceipt      Kind = "RECEIPT"
	KindJournal      Kind = "JOURNAL"
	KindCreditNote   Kind = "CREDIT_NOTE"
	KindDebitNote    Kind = "DEBIT_NOTE"
	KindBankTransfer Kind = "BANK_TRANSFER"
)

// NoteStatus enumerates the credit/debit note lifecycle. Confirmed is
// terminal; only confirmation posts ledger rows.
type NoteStatus string

const (
	NoteStatusDraft     NoteStatus = "DRAFT"
	NoteStatusConfirmed NoteStatus = "CONFIRMED"
)

// ChequeStatus enumerates bank reconciliation states for cheque-backed
// payments and receipts. Clearing is an explicit action, never automatic.
type ChequeStatus string

const (
	ChequeStatusPending ChequeStatus = "PENDING"
	ChequeStatusCleared ChequeStatus = "CLEARED"
)

// PartnerType distinguishes the two grouping sides of ageing and SOA.
type PartnerType string

const (
	PartnerCustomer PartnerType = "customer"
	PartnerVendor   PartnerType = "vendor"
)

// Voucher is the tagged-variant record shared by all six kinds. Fields
// irrelevant to a kind stay at their zero value.
type Voucher struct {
	ID        uuid.UUID
	Kind      Kind
	Number    string
	Date      time.Time
	Amount    float64
	Narration string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Payment / Receipt / notes
	PartyAccountID int64
	PartyName      string
	PartyType      PartnerType

	// Payment / Receipt
	BankID        int64
	FromAccountID int64

	// Bank transfer
	FromBankID int64
	ToBankID   int64

	// Credit / Debit note
	Status          NoteStatus
	VATAmount       float64
	VATAccountID    int64
	OffsetAccountID int64

	// Cheque metadata for bank reconciliation
	ChequeNumber string
	ChequeDate   time.Time
	ChequeStatus ChequeStatus
	ClearedDate  *time.Time

	// Journal entry lines
	Lines []JournalLine
}

// JournalLine is one free-form line of a journal entry voucher.
type JournalLine struct {
	AccountID int64
	Debit     float64
	Credit    float64
	Narration string
}

// Bank is the slice of the external bank master this core reads: an
// opaque id carrying a pointer to the bank's GL account.
type Bank struct {
	ID          int64
	Name        string
	GLAccountID int64
}

var (
	// ErrNonPositiveAmount indicates amount <= 0.
	ErrNonPositiveAmount = errors.New("voucher: amount must be positive")
	// ErrInvalidReference indicates an account, bank, or party that does not resolve.
	ErrInvalidReference = errors.New("voucher: referenced account or bank does not exist")
	// ErrInvalidTransfer indicates a same-bank transfer.
	ErrInvalidTransfer = errors.New("voucher: transfer requires two distinct banks")
	// ErrVoucherNotFound indicates a missing voucher.
	ErrVoucherNotFound = errors.New("voucher: not found")
	// ErrAlreadyConfirmed indicates a repeated note confirmation.
	ErrAlreadyConfirmed = errors.New("voucher: note already confirmed")
	// ErrNotCheque indicates a clearance attempt on a voucher without cheque metadata.
	ErrNotCheque = errors.New("voucher: no cheque to clear")
	// ErrAlreadyCleared indicates the cheque was cleared before.
	ErrAlreadyCleared = errors.New("voucher: cheque already cleared")
)

// PaymentInput creates a payment voucher: money out to a party.
type PaymentInput struct {
	Date           time.Time
	PartyAccountID int64
	PartyName      string
	BankID         int64
	Amount         float64
	Narration      string
	ChequeNumber   string
	ChequeDate     time.Time
	CreatedBy      string
}

// ReceiptInput creates a receipt voucher: money in from a source account.
type ReceiptInput struct {
	Date          time.Time
	FromAccountID int64
	PartyName     string
	BankID        int64
	Amount        float64
	Narration     string
	ChequeNumber  string
	ChequeDate    time.Time
	CreatedBy     string
}

// JournalInput creates a journal entry voucher with free-form lines.
type JournalInput struct {
	Date      time.Time
	Narration string
	Lines     []JournalLine
	CreatedBy string
}

// NoteInput creates a credit or debit note in Draft state.
type NoteInput struct {
	Kind            Kind
	Date            time.Time
	PartyAccountID  int64
	PartyName       string
	PartyType       PartnerType
	Amount          float64
	VATAmount       float64
	VATAccountID    int64
	OffsetAccountID int64
	Narration       string
	CreatedBy       string
}

// TransferInput creates a bank transfer voucher.
type TransferInput struct {
	Date       time.Time
	FromBankID int64
	ToBankID   int64
	Amount     float64
	Narration  string
	CreatedBy  string
}

// Validate checks payment fields before any write.
func (in PaymentInput) Validate() error {
	if in.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if in.PartyAccountID == 0 || in.BankID == 0 {
		return ErrInvalidReference
	}
	return nil
}

// Validate checks receipt fields before any write.
func (in ReceiptInput) Validate() error {
	if in.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if in.FromAccountID == 0 || in.BankID == 0 {
		return ErrInvalidReference
	}
	return nil
}

// Validate checks journal lines before any write. Balance itself is
// enforced by ledger.ValidateBalanced at posting time.
func (in JournalInput) Validate() error {
	if len(in.Lines) == 0 {
		return ledger.ErrNoLines
	}
	for _, line := range in.Lines {
		if line.AccountID == 0 {
			return ErrInvalidReference
		}
		if line.Debit < 0 || line.Credit < 0 {
			return ErrNonPositiveAmount
		}
	}
	return nil
}

// Validate checks note fields before any write.
func (in NoteInput) Validate() error {
	if in.Kind != KindCreditNote && in.Kind != KindDebitNote {
		return errors.New("voucher: note kind must be credit or debit note")
	}
	if in.Amount <= 0 || in.VATAmount < 0 {
		return ErrNonPositiveAmount
	}
	if in.PartyAccountID == 0 || in.OffsetAccountID == 0 {
		return ErrInvalidReference
	}
	if in.VATAmount > 0 && in.VATAccountID == 0 {
		return ErrInvalidReference
	}
	return nil
}

// Validate checks transfer fields before any write.
func (in TransferInput) Validate() error {
	if in.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if in.FromBankID == 0 || in.ToBankID == 0 {
		return ErrInvalidReference
	}
	if in.FromBankID == in.ToBankID {
		return ErrInvalidTransfer
	}
	return nil
}
