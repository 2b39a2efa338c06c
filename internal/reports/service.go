package reports

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meridian-ops/meridian/internal/ledger"
	"github.com/meridian-ops/meridian/internal/voucher"
)

var (
	// ErrUnknownPartnerType indicates a partner type outside customer/vendor.
	ErrUnknownPartnerType = errors.New("reports: partner type must be customer or vendor")
	// ErrPartnerRequired indicates a statement request without a partner.
	ErrPartnerRequired = errors.New("reports: partner name is required")
)

// RepositoryPort abstracts the read-only report queries.
type RepositoryPort interface {
	AccountBalances(ctx context.Context, from, to time.Time) ([]AccountBalance, error)
	VouchersByKind(ctx context.Context, kind voucher.Kind, from, to time.Time) ([]VoucherRow, error)
	AgeingVouchers(ctx context.Context, kind voucher.Kind, asOn time.Time) ([]VoucherRow, error)
	PartnerVouchersBefore(ctx context.Context, partner string, before time.Time) ([]VoucherRow, error)
	PartnerVouchersInRange(ctx context.Context, partner string, from, to time.Time) ([]VoucherRow, error)
}

// Service generates reports on demand. Every statement recomputes from
// the raw rows; the cache only short-circuits identical requests and is
// busted on every write.
type Service struct {
	repo  RepositoryPort
	cache *Cache
}

// NewService constructs Service. cache may be nil.
func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// TrialBalance lists every active account's period totals grouped by
// account type.
func (s *Service) TrialBalance(ctx context.Context, from, to time.Time) (TrialBalance, error) {
	if err := ledger.ValidateRange(from, to); err != nil {
		return TrialBalance{}, err
	}
	key := Key("tb", filterKey(from, to)...)
	var cached TrialBalance
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	balances, err := s.repo.AccountBalances(ctx, from, to)
	if err != nil {
		return TrialBalance{}, err
	}
	report := BuildTrialBalance(balances)
	s.cache.Set(ctx, key, report)
	return report, nil
}

// BalanceSheet reports Asset, Liability and Equity balances.
func (s *Service) BalanceSheet(ctx context.Context, from, to time.Time) (BalanceSheet, error) {
	if err := ledger.ValidateRange(from, to); err != nil {
		return BalanceSheet{}, err
	}
	key := Key("bs", filterKey(from, to)...)
	var cached BalanceSheet
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	balances, err := s.repo.AccountBalances(ctx, from, to)
	if err != nil {
		return BalanceSheet{}, err
	}
	report := BuildBalanceSheet(balances)
	s.cache.Set(ctx, key, report)
	return report, nil
}

// ProfitLoss reports Income and Expense balances with the net result.
func (s *Service) ProfitLoss(ctx context.Context, from, to time.Time) (ProfitLoss, error) {
	if err := ledger.ValidateRange(from, to); err != nil {
		return ProfitLoss{}, err
	}
	key := Key("pl", filterKey(from, to)...)
	var cached ProfitLoss
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	balances, err := s.repo.AccountBalances(ctx, from, to)
	if err != nil {
		return ProfitLoss{}, err
	}
	report := BuildProfitLoss(balances)
	s.cache.Set(ctx, key, report)
	return report, nil
}

// DayBook unifies the period's payments, receipts and journal lines.
// The three collections are fetched concurrently; a cancelled context
// aborts the whole report rather than returning partial data.
func (s *Service) DayBook(ctx context.Context, from, to time.Time) (DayBook, error) {
	if err := ledger.ValidateRange(from, to); err != nil {
		return DayBook{}, err
	}
	key := Key("daybook", filterKey(from, to)...)
	var cached DayBook
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	payments, receipts, journals, err := s.transactionSources(ctx, from, to)
	if err != nil {
		return DayBook{}, err
	}
	report := BuildDayBook(payments, receipts, journals)
	s.cache.Set(ctx, key, report)
	return report, nil
}

// CashFlow classifies the period's movements by bank, with journal
// lines under the Adjustment category.
func (s *Service) CashFlow(ctx context.Context, from, to time.Time) (CashFlow, error) {
	if err := ledger.ValidateRange(from, to); err != nil {
		return CashFlow{}, err
	}
	key := Key("cashflow", filterKey(from, to)...)
	var cached CashFlow
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	payments, receipts, journals, err := s.transactionSources(ctx, from, to)
	if err != nil {
		return CashFlow{}, err
	}
	report := BuildCashFlow(payments, receipts, journals)
	s.cache.Set(ctx, key, report)
	return report, nil
}

func (s *Service) transactionSources(ctx context.Context, from, to time.Time) (payments, receipts, journals []VoucherRow, err error) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payments, err = s.repo.VouchersByKind(ctx, voucher.KindPayment, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		receipts, err = s.repo.VouchersByKind(ctx, voucher.KindReceipt, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		journals, err = s.repo.VouchersByKind(ctx, voucher.KindJournal, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return payments, receipts, journals, nil
}

// Ageing buckets each partner's balance by transaction age as of asOn.
func (s *Service) Ageing(ctx context.Context, partnerType voucher.PartnerType, asOn time.Time) ([]AgeingRow, error) {
	kind, err := ageingKind(partnerType)
	if err != nil {
		return nil, err
	}
	if asOn.IsZero() {
		asOn = time.Now().UTC()
	}
	key := Key("ageing", filterKey(string(partnerType), asOn)...)
	var cached []AgeingRow
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	rows, err := s.repo.AgeingVouchers(ctx, kind, asOn)
	if err != nil {
		return nil, err
	}
	report := BuildAgeing(partnerType, asOn, rows)
	s.cache.Set(ctx, key, report)
	return report, nil
}

func ageingKind(partnerType voucher.PartnerType) (voucher.Kind, error) {
	switch partnerType {
	case voucher.PartnerCustomer:
		return voucher.KindReceipt, nil
	case voucher.PartnerVendor:
		return voucher.KindPayment, nil
	default:
		return "", ErrUnknownPartnerType
	}
}

// StatementOfAccount merges one partner's vouchers into a running
// statement. The opening balance and the in-range rows are fetched
// concurrently.
func (s *Service) StatementOfAccount(ctx context.Context, partner string, partnerType voucher.PartnerType, from, to time.Time, reportType SOAReportType) (SOA, error) {
	partner = strings.TrimSpace(partner)
	if partner == "" {
		return SOA{}, ErrPartnerRequired
	}
	if partnerType != voucher.PartnerCustomer && partnerType != voucher.PartnerVendor {
		return SOA{}, ErrUnknownPartnerType
	}
	if err := ledger.ValidateRange(from, to); err != nil {
		return SOA{}, err
	}
	if reportType != SOATransactions {
		reportType = SOASummaryOnly
	}

	key := Key("soa", filterKey(partner, string(partnerType), from, to, string(reportType))...)
	var cached SOA
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	var before, inRange []VoucherRow
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if from.IsZero() {
			return nil
		}
		var err error
		before, err = s.repo.PartnerVouchersBefore(gctx, partner, from)
		return err
	})
	g.Go(func() error {
		var err error
		inRange, err = s.repo.PartnerVouchersInRange(gctx, partner, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return SOA{}, err
	}

	report := BuildSOA(partner, partnerType, before, inRange, reportType)
	s.cache.Set(ctx, key, report)
	return report, nil
}
