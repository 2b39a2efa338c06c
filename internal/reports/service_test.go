package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meridian-ops/meridian/internal/coa"
	"github.com/meridian-ops/meridian/internal/ledger"
	"github.com/meridian-ops/meridian/internal/voucher"
)

type fakeReportRepo struct {
	balances     []AccountBalance
	byKind       map[voucher.Kind][]VoucherRow
	balanceCalls int
	err          error
}

func (f *fakeReportRepo) AccountBalances(ctx context.Context, from, to time.Time) ([]AccountBalance, error) {
	f.balanceCalls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]AccountBalance(nil), f.balances...), nil
}

func (f *fakeReportRepo) VouchersByKind(ctx context.Context, kind voucher.Kind, from, to time.Time) ([]VoucherRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]VoucherRow(nil), f.byKind[kind]...), nil
}

func (f *fakeReportRepo) AgeingVouchers(ctx context.Context, kind voucher.Kind, asOn time.Time) ([]VoucherRow, error) {
	return f.VouchersByKind(ctx, kind, time.Time{}, asOn)
}

func (f *fakeReportRepo) PartnerVouchersBefore(ctx context.Context, partner string, before time.Time) ([]VoucherRow, error) {
	return nil, f.err
}

func (f *fakeReportRepo) PartnerVouchersInRange(ctx context.Context, partner string, from, to time.Time) ([]VoucherRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []VoucherRow
	for _, rows := range f.byKind {
		for _, row := range rows {
			if row.PartyName == partner {
				out = append(out, row)
			}
		}
	}
	return out, nil
}

func TestTrialBalanceRejectsInvertedRange(t *testing.T) {
	svc := NewService(&fakeReportRepo{}, nil)
	_, err := svc.TrialBalance(context.Background(), day("2025-02-01"), day("2025-01-01"))
	if !errors.Is(err, ledger.ErrInvalidDateRange) {
		t.Fatalf("error = %v, want ErrInvalidDateRange", err)
	}
}

func TestTrialBalanceServedFromCacheOnRepeat(t *testing.T) {
	repo := &fakeReportRepo{balances: []AccountBalance{
		{Code: "1001", Name: "Bank Cash", Type: coa.AccountTypeAsset, Debit: 500},
		{Code: "2001", Name: "Accounts Payable", Type: coa.AccountTypeLiability, Credit: 500},
	}}
	svc := NewService(repo, newTestCache(t))
	ctx := context.Background()

	first, err := svc.TrialBalance(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("TrialBalance() error = %v", err)
	}
	second, err := svc.TrialBalance(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("TrialBalance() error = %v", err)
	}
	if repo.balanceCalls != 1 {
		t.Fatalf("expected 1 repository read, got %d", repo.balanceCalls)
	}
	if first.TotalDebit != second.TotalDebit || first.Difference != second.Difference {
		t.Fatalf("cached report differs: %+v vs %+v", first, second)
	}
}

func TestDayBookFansOutAcrossSources(t *testing.T) {
	repo := &fakeReportRepo{byKind: map[voucher.Kind][]VoucherRow{
		voucher.KindPayment: {{Kind: voucher.KindPayment, Date: day("2025-03-02"), Amount: 500}},
		voucher.KindReceipt: {{Kind: voucher.KindReceipt, Date: day("2025-03-01"), Amount: 200}},
		voucher.KindJournal: {{Kind: voucher.KindJournal, Date: day("2025-03-03"), Lines: []voucher.JournalLine{
			{AccountID: 1, Debit: 50}, {AccountID: 2, Credit: 50},
		}}},
	}}
	svc := NewService(repo, nil)

	book, err := svc.DayBook(context.Background(), day("2025-03-01"), day("2025-03-31"))
	if err != nil {
		t.Fatalf("DayBook() error = %v", err)
	}
	if len(book.Entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(book.Entries))
	}
}

func TestDayBookPropagatesSourceErrors(t *testing.T) {
	wantErr := errors.New("storage down")
	svc := NewService(&fakeReportRepo{err: wantErr}, nil)

	_, err := svc.DayBook(context.Background(), day("2025-03-01"), day("2025-03-31"))
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
}

func TestAgeingRejectsUnknownPartnerType(t *testing.T) {
	svc := NewService(&fakeReportRepo{}, nil)
	_, err := svc.Ageing(context.Background(), voucher.PartnerType("supplier"), day("2025-04-15"))
	if !errors.Is(err, ErrUnknownPartnerType) {
		t.Fatalf("error = %v, want ErrUnknownPartnerType", err)
	}
}

func TestStatementOfAccountRequiresPartner(t *testing.T) {
	svc := NewService(&fakeReportRepo{}, nil)
	_, err := svc.StatementOfAccount(context.Background(), "  ", voucher.PartnerCustomer, time.Time{}, time.Time{}, SOASummaryOnly)
	if !errors.Is(err, ErrPartnerRequired) {
		t.Fatalf("error = %v, want ErrPartnerRequired", err)
	}
}

func TestCancelledContextAbortsReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := &fakeReportRepo{err: context.Canceled}
	svc := NewService(repo, nil)
	if _, err := svc.CashFlow(ctx, day("2025-03-01"), day("2025-03-31")); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
