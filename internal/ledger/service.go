package ledger

import (
	"context"
	"time"
)

// ReadPort abstracts balance queries for the service.
type ReadPort interface {
	AccountExists(ctx context.Context, accountID int64) (bool, error)
	SumBefore(ctx context.Context, accountID int64, before time.Time) (float64, float64, error)
	SumRange(ctx context.Context, accountID int64, from, to time.Time) (float64, float64, error)
	EntriesInRange(ctx context.Context, accountID int64, from, to time.Time) ([]Entry, error)
	GlobalTotals(ctx context.Context, from, to time.Time) (float64, float64, error)
}

// Service answers account summary queries. Balances are always
// recomputed from the full row history; no mutable counter exists, so
// concurrent postings cannot race a stored balance.
type Service struct {
	store ReadPort
}

// NewService constructs the ledger query service.
func NewService(store ReadPort) *Service {
	return &Service{store: store}
}

// Summarize builds the account statement for the inclusive range.
// Opening balance covers everything before from; the running balance
// walks entries in (date, insertion) order; range totals are aggregated
// independently of the walk so the two paths cross-check each other.
func (s *Service) Summarize(ctx context.Context, accountID int64, from, to time.Time) (Summary, error) {
	if err := ValidateRange(from, to); err != nil {
		return Summary{}, err
	}
	exists, err := s.store.AccountExists(ctx, accountID)
	if err != nil {
		return Summary{}, err
	}
	if !exists {
		return Summary{}, ErrUnknownAccount
	}

	summary := Summary{AccountID: accountID}

	if !from.IsZero() {
		debit, credit, err := s.store.SumBefore(ctx, accountID, from)
		if err != nil {
			return Summary{}, err
		}
		summary.OpeningBalance = debit - credit
	}

	entries, err := s.store.EntriesInRange(ctx, accountID, from, to)
	if err != nil {
		return Summary{}, err
	}
	running := summary.OpeningBalance
	summary.Entries = make([]SummaryRow, 0, len(entries))
	for _, entry := range entries {
		running += entry.Debit - entry.Credit
		summary.Entries = append(summary.Entries, SummaryRow{Entry: entry, RunningBalance: running})
	}

	totalDebit, totalCredit, err := s.store.SumRange(ctx, accountID, from, to)
	if err != nil {
		return Summary{}, err
	}
	summary.TotalDebit = totalDebit
	summary.TotalCredit = totalCredit
	summary.ClosingBalance = summary.OpeningBalance + totalDebit - totalCredit

	return summary, nil
}

// GlobalTotals reports ledger-wide debit and credit sums.
func (s *Service) GlobalTotals(ctx context.Context, from, to time.Time) (float64, float64, error) {
	if err := ValidateRange(from, to); err != nil {
		return 0, 0, err
	}
	return s.store.GlobalTotals(ctx, from, to)
}
