package ledger

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeReadStore struct {
	entries []Entry
	// accounts restricts AccountExists when set; nil means every
	// account id resolves.
	accounts map[int64]bool
	err      error
}

func (f *fakeReadStore) AccountExists(ctx context.Context, accountID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.accounts == nil {
		return true, nil
	}
	return f.accounts[accountID], nil
}

func (f *fakeReadStore) filter(accountID int64, from, to time.Time) []Entry {
	var out []Entry
	for _, e := range f.entries {
		if e.AccountID != accountID {
			continue
		}
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && e.Date.After(to) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

func (f *fakeReadStore) SumBefore(ctx context.Context, accountID int64, before time.Time) (float64, float64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	var debit, credit float64
	for _, e := range f.entries {
		if e.AccountID == accountID && e.Date.Before(before) {
			debit += e.Debit
			credit += e.Credit
		}
	}
	return debit, credit, nil
}

func (f *fakeReadStore) SumRange(ctx context.Context, accountID int64, from, to time.Time) (float64, float64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	var debit, credit float64
	for _, e := range f.filter(accountID, from, to) {
		debit += e.Debit
		credit += e.Credit
	}
	return debit, credit, nil
}

func (f *fakeReadStore) EntriesInRange(ctx context.Context, accountID int64, from, to time.Time) ([]Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.filter(accountID, from, to), nil
}

func (f *fakeReadStore) GlobalTotals(ctx context.Context, from, to time.Time) (float64, float64, error) {
	var debit, credit float64
	for _, e := range f.entries {
		debit += e.Debit
		credit += e.Credit
	}
	return debit, credit, nil
}

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func entry(seq int64, accountID int64, date string, debit, credit float64) Entry {
	return Entry{
		ID:        uuid.New(),
		Seq:       seq,
		Date:      day(date),
		AccountID: accountID,
		Debit:     debit,
		Credit:    credit,
	}
}

func TestValidateBalanced(t *testing.T) {
	cases := []struct {
		name  string
		lines []Line
		want  error
	}{
		{name: "empty", lines: nil, want: ErrNoLines},
		{name: "balanced pair", lines: []Line{
			{AccountID: 2001, Debit: 500},
			{AccountID: 1001, Credit: 500},
		}},
		{name: "imbalanced", lines: []Line{
			{AccountID: 3001, Debit: 100},
			{AccountID: 4001, Credit: 60},
		}, want: ErrImbalanced},
		{name: "rounding noise tolerated", lines: []Line{
			{AccountID: 1, Debit: 0.1},
			{AccountID: 2, Debit: 0.2},
			{AccountID: 3, Credit: 0.3},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBalanced(tc.lines)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("ValidateBalanced() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("ValidateBalanced() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidateBalancedRejectsNegativeAmounts(t *testing.T) {
	err := ValidateBalanced([]Line{
		{AccountID: 1, Debit: -10},
		{AccountID: 2, Credit: -10},
	})
	if !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("error = %v, want ErrNegativeAmount", err)
	}
}

func TestSummarizeClosingBalanceLaw(t *testing.T) {
	store := &fakeReadStore{entries: []Entry{
		entry(1, 1001, "2024-12-15", 1000, 0),
		entry(2, 1001, "2025-01-15", 200, 0),
		entry(3, 1001, "2025-01-20", 0, 50),
		entry(4, 2001, "2025-01-18", 75, 0),
	}}
	svc := NewService(store)

	summary, err := svc.Summarize(context.Background(), 1001, day("2025-01-01"), day("2025-01-31"))
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.OpeningBalance != 1000 {
		t.Fatalf("opening = %v, want 1000", summary.OpeningBalance)
	}
	if summary.TotalDebit != 200 || summary.TotalCredit != 50 {
		t.Fatalf("range totals = %v/%v, want 200/50", summary.TotalDebit, summary.TotalCredit)
	}
	if summary.ClosingBalance != 1150 {
		t.Fatalf("closing = %v, want 1150", summary.ClosingBalance)
	}
	if got := summary.OpeningBalance + summary.TotalDebit - summary.TotalCredit; got != summary.ClosingBalance {
		t.Fatalf("closing law broken: %v != %v", got, summary.ClosingBalance)
	}
	if len(summary.Entries) != 2 {
		t.Fatalf("expected 2 entries in range, got %d", len(summary.Entries))
	}
	if last := summary.Entries[len(summary.Entries)-1].RunningBalance; last != summary.ClosingBalance {
		t.Fatalf("final running balance %v != closing %v", last, summary.ClosingBalance)
	}
}

func TestSummarizeOpenLowerBound(t *testing.T) {
	store := &fakeReadStore{entries: []Entry{
		entry(1, 1001, "2024-12-15", 1000, 0),
		entry(2, 1001, "2025-01-15", 200, 0),
	}}
	svc := NewService(store)

	summary, err := svc.Summarize(context.Background(), 1001, time.Time{}, day("2025-01-31"))
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.OpeningBalance != 0 {
		t.Fatalf("opening with no lower bound = %v, want 0", summary.OpeningBalance)
	}
	if summary.ClosingBalance != 1200 {
		t.Fatalf("closing = %v, want 1200", summary.ClosingBalance)
	}
}

func TestSummarizeDeterministicSameDayOrdering(t *testing.T) {
	store := &fakeReadStore{entries: []Entry{
		entry(3, 1001, "2025-02-01", 0, 30),
		entry(1, 1001, "2025-02-01", 100, 0),
		entry(2, 1001, "2025-02-01", 40, 0),
	}}
	svc := NewService(store)

	first, err := svc.Summarize(context.Background(), 1001, day("2025-02-01"), day("2025-02-28"))
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	second, err := svc.Summarize(context.Background(), 1001, day("2025-02-01"), day("2025-02-28"))
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	running := func(s Summary) []float64 {
		out := make([]float64, 0, len(s.Entries))
		for _, row := range s.Entries {
			out = append(out, row.RunningBalance)
		}
		return out
	}
	want := []float64{100, 140, 110}
	if got := running(first); !reflect.DeepEqual(got, want) {
		t.Fatalf("running balances = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(running(first), running(second)) {
		t.Fatalf("running balances differ across identical reads")
	}
}

func TestSummarizeRejectsUnknownAccount(t *testing.T) {
	store := &fakeReadStore{
		entries:  []Entry{entry(1, 1001, "2025-01-15", 200, 0)},
		accounts: map[int64]bool{1001: true},
	}
	svc := NewService(store)

	_, err := svc.Summarize(context.Background(), 9999, time.Time{}, day("2025-01-31"))
	if !errors.Is(err, ErrUnknownAccount) {
		t.Fatalf("error = %v, want ErrUnknownAccount", err)
	}
}

func TestSummarizeRejectsInvertedRange(t *testing.T) {
	svc := NewService(&fakeReadStore{})
	_, err := svc.Summarize(context.Background(), 1001, day("2025-02-01"), day("2025-01-01"))
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("error = %v, want ErrInvalidDateRange", err)
	}
}
