package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one immutable debit/credit row. Rows are owned by the voucher
// that posted them and are only ever removed as a unit with it.
type Entry struct {
	ID          uuid.UUID
	Seq         int64
	Date        time.Time
	AccountID   int64
	Debit       float64
	Credit      float64
	Narration   string
	VoucherID   uuid.UUID
	VoucherType string
	CreatedBy   string
	CreatedAt   time.Time
}

// Line describes one row of a posting before it is written.
type Line struct {
	AccountID int64
	Debit     float64
	Credit    float64
	Narration string
}

// PostInput groups the fields required to append a balanced set of rows.
type PostInput struct {
	Date        time.Time
	VoucherID   uuid.UUID
	VoucherType string
	CreatedBy   string
	Lines       []Line
}

// SummaryRow is an entry annotated with the running balance at that point.
type SummaryRow struct {
	Entry
	RunningBalance float64
}

// Summary is the account statement over a date range.
type Summary struct {
	AccountID      int64
	OpeningBalance float64
	Entries        []SummaryRow
	TotalDebit     float64
	TotalCredit    float64
	ClosingBalance float64
}

var (
	// ErrImbalanced indicates total debit != total credit.
	ErrImbalanced = errors.New("ledger: lines must balance")
	// ErrNoLines indicates an empty posting.
	ErrNoLines = errors.New("ledger: at least one line required")
	// ErrNegativeAmount indicates a line with a negative debit or credit.
	ErrNegativeAmount = errors.New("ledger: negative amount")
	// ErrUnknownAccount indicates a line references a missing account.
	ErrUnknownAccount = errors.New("ledger: account does not exist")
	// ErrInvalidDateRange indicates toDate precedes fromDate.
	ErrInvalidDateRange = errors.New("ledger: invalid date range")
)

// ValidateBalanced is the single choke point for the double-entry law.
// Every voucher poster runs its lines through here before writing.
// Amounts compare at two decimal places, matching storage precision.
func ValidateBalanced(lines []Line) error {
	if len(lines) == 0 {
		return ErrNoLines
	}
	var debit, credit float64
	for idx, line := range lines {
		if line.AccountID == 0 {
			return fmt.Errorf("ledger: line %d missing account", idx)
		}
		if line.Debit < 0 || line.Credit < 0 {
			return fmt.Errorf("%w on line %d", ErrNegativeAmount, idx)
		}
		debit += line.Debit
		credit += line.Credit
	}
	if fmt.Sprintf("%.2f", debit) != fmt.Sprintf("%.2f", credit) {
		return ErrImbalanced
	}
	return nil
}

// ValidateRange rejects ranges where the upper bound precedes the lower.
// Zero times mean the bound is open.
func ValidateRange(from, to time.Time) error {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return ErrInvalidDateRange
	}
	return nil
}
