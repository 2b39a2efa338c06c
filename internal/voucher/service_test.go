package voucher

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/meridian-ops/meridian/internal/ledger"
)

// memRepo is an in-memory RepositoryPort. The "transaction" snapshots
// state and restores it on error so atomicity behaves like the real
// store: a failed posting leaves no voucher and no ledger rows behind.
type memRepo struct {
	vouchers  map[uuid.UUID]Voucher
	entries   []ledger.Entry
	accounts  map[int64]bool
	banks     map[int64]Bank
	sequences map[Kind]int64
	nextSeq   int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		vouchers:  make(map[uuid.UUID]Voucher),
		accounts:  make(map[int64]bool),
		banks:     make(map[int64]Bank),
		sequences: make(map[Kind]int64),
	}
}

func (m *memRepo) snapshot() *memRepo {
	clone := newMemRepo()
	for k, v := range m.vouchers {
		clone.vouchers[k] = v
	}
	clone.entries = append([]ledger.Entry(nil), m.entries...)
	for k, v := range m.accounts {
		clone.accounts[k] = v
	}
	for k, v := range m.banks {
		clone.banks[k] = v
	}
	for k, v := range m.sequences {
		clone.sequences[k] = v
	}
	clone.nextSeq = m.nextSeq
	return clone
}

func (m *memRepo) restore(from *memRepo) {
	m.vouchers = from.vouchers
	m.entries = from.entries
	m.accounts = from.accounts
	m.banks = from.banks
	m.sequences = from.sequences
	m.nextSeq = from.nextSeq
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	saved := m.snapshot()
	if err := fn(ctx, &memTx{repo: m}); err != nil {
		m.restore(saved)
		return err
	}
	return nil
}

func (m *memRepo) Get(ctx context.Context, id uuid.UUID) (Voucher, error) {
	v, ok := m.vouchers[id]
	if !ok {
		return Voucher{}, ErrVoucherNotFound
	}
	return v, nil
}

func (m *memRepo) GetBank(ctx context.Context, id int64) (Bank, error) {
	bank, ok := m.banks[id]
	if !ok {
		return Bank{}, ErrInvalidReference
	}
	return bank, nil
}

func (m *memRepo) ListCheques(ctx context.Context, status ChequeStatus) ([]Voucher, error) {
	var out []Voucher
	for _, v := range m.vouchers {
		if v.ChequeNumber == "" {
			continue
		}
		if status != "" && v.ChequeStatus != status {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *memRepo) List(ctx context.Context, kind Kind, from, to time.Time) ([]Voucher, error) {
	var out []Voucher
	for _, v := range m.vouchers {
		if v.Kind == kind {
			out = append(out, v)
		}
	}
	return out, nil
}

type memTx struct {
	repo *memRepo
}

func (t *memTx) NextNumber(ctx context.Context, kind Kind) (string, error) {
	t.repo.sequences[kind]++
	return fmt.Sprintf("%s-%06d", numberPrefix[kind], t.repo.sequences[kind]), nil
}

func (t *memTx) InsertVoucher(ctx context.Context, v Voucher) (Voucher, error) {
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	t.repo.vouchers[v.ID] = v
	return v, nil
}

func (t *memTx) InsertJournalLines(ctx context.Context, voucherID uuid.UUID, lines []JournalLine) error {
	return nil
}

func (t *memTx) GetForUpdate(ctx context.Context, id uuid.UUID) (Voucher, error) {
	v, ok := t.repo.vouchers[id]
	if !ok {
		return Voucher{}, ErrVoucherNotFound
	}
	return v, nil
}

func (t *memTx) ConfirmNote(ctx context.Context, id uuid.UUID) error {
	v, ok := t.repo.vouchers[id]
	if !ok {
		return ErrVoucherNotFound
	}
	v.Status = NoteStatusConfirmed
	t.repo.vouchers[id] = v
	return nil
}

func (t *memTx) MarkCleared(ctx context.Context, id uuid.UUID, clearedDate time.Time) error {
	v, ok := t.repo.vouchers[id]
	if !ok {
		return ErrVoucherNotFound
	}
	v.ChequeStatus = ChequeStatusCleared
	v.ClearedDate = &clearedDate
	t.repo.vouchers[id] = v
	return nil
}

func (t *memTx) DeleteVoucher(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := t.repo.vouchers[id]; !ok {
		return false, nil
	}
	delete(t.repo.vouchers, id)
	return true, nil
}

func (t *memTx) Ledger() ledger.TxStore {
	return &memLedger{repo: t.repo}
}

type memLedger struct {
	repo *memRepo
}

func (l *memLedger) InsertEntries(ctx context.Context, in ledger.PostInput) ([]ledger.Entry, error) {
	out := make([]ledger.Entry, 0, len(in.Lines))
	for _, line := range in.Lines {
		l.repo.nextSeq++
		entry := ledger.Entry{
			ID:          uuid.New(),
			Seq:         l.repo.nextSeq,
			Date:        in.Date,
			AccountID:   line.AccountID,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Narration:   line.Narration,
			VoucherID:   in.VoucherID,
			VoucherType: in.VoucherType,
			CreatedBy:   in.CreatedBy,
			CreatedAt:   time.Now(),
		}
		l.repo.entries = append(l.repo.entries, entry)
		out = append(out, entry)
	}
	return out, nil
}

func (l *memLedger) DeleteByVoucher(ctx context.Context, voucherID uuid.UUID, voucherType string) (int64, error) {
	kept := l.repo.entries[:0]
	var removed int64
	for _, e := range l.repo.entries {
		if e.VoucherID == voucherID && e.VoucherType == voucherType {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	l.repo.entries = kept
	return removed, nil
}

func (l *memLedger) MissingAccounts(ctx context.Context, ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		if !l.repo.accounts[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (m *memRepo) balance(accountID int64) float64 {
	var total float64
	for _, e := range m.entries {
		if e.AccountID == accountID {
			total += e.Debit - e.Credit
		}
	}
	return total
}

func (m *memRepo) globalTotals() (debit, credit float64) {
	for _, e := range m.entries {
		debit += e.Debit
		credit += e.Credit
	}
	return debit, credit
}

func testDate(value string) time.Time {
	t, _ := time.Parse("2006-01-02", value)
	return t
}

func setup(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	for _, id := range []int64{1001, 2001, 3001, 4001, 5001, 6001} {
		repo.accounts[id] = true
	}
	repo.banks[1] = Bank{ID: 1, Name: "Bank Cash", GLAccountID: 1001}
	repo.banks[2] = Bank{ID: 2, Name: "Bank Reserve", GLAccountID: 5001}
	return NewService(repo, nil, nil, nil), repo
}

func TestCreatePaymentPostsBalancedPair(t *testing.T) {
	svc, repo := setup(t)

	result, err := svc.CreatePayment(context.Background(), PaymentInput{
		Date:           testDate("2025-03-01"),
		PartyAccountID: 2001,
		PartyName:      "Acme Supplies",
		BankID:         1,
		Amount:         500,
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	require.Equal(t, "PAY-000001", result.Voucher.Number)

	require.Equal(t, int64(2001), result.Entries[0].AccountID)
	require.Equal(t, 500.0, result.Entries[0].Debit)
	require.Equal(t, int64(1001), result.Entries[1].AccountID)
	require.Equal(t, 500.0, result.Entries[1].Credit)

	debit, credit := repo.globalTotals()
	require.Equal(t, debit, credit)
}

func TestCreatePaymentRejectsUnknownBank(t *testing.T) {
	svc, repo := setup(t)

	_, err := svc.CreatePayment(context.Background(), PaymentInput{
		Date:           testDate("2025-03-01"),
		PartyAccountID: 2001,
		BankID:         99,
		Amount:         500,
	})
	require.ErrorIs(t, err, ErrInvalidReference)
	require.Empty(t, repo.entries)
	require.Empty(t, repo.vouchers)
}

func TestCreatePaymentRejectsUnknownPartyAccount(t *testing.T) {
	svc, repo := setup(t)

	_, err := svc.CreatePayment(context.Background(), PaymentInput{
		Date:           testDate("2025-03-01"),
		PartyAccountID: 7777,
		BankID:         1,
		Amount:         500,
	})
	require.ErrorIs(t, err, ErrInvalidReference)
	require.Empty(t, repo.entries)
	require.Empty(t, repo.vouchers)
}

func TestCreatePaymentRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.CreatePayment(context.Background(), PaymentInput{
		Date:           testDate("2025-03-01"),
		PartyAccountID: 2001,
		BankID:         1,
		Amount:         0,
	})
	require.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestCreateReceiptPostsBankDebit(t *testing.T) {
	svc, repo := setup(t)

	result, err := svc.CreateReceipt(context.Background(), ReceiptInput{
		Date:          testDate("2025-03-02"),
		FromAccountID: 3001,
		PartyName:     "Globex",
		BankID:        1,
		Amount:        200,
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	require.Equal(t, 200.0, repo.balance(1001))
	require.Equal(t, -200.0, repo.balance(3001))
}

func TestCreateJournalRejectsImbalancedLines(t *testing.T) {
	svc, repo := setup(t)

	_, err := svc.CreateJournal(context.Background(), JournalInput{
		Date: testDate("2025-03-03"),
		Lines: []JournalLine{
			{AccountID: 3001, Debit: 100},
			{AccountID: 4001, Credit: 60},
		},
	})
	require.ErrorIs(t, err, ledger.ErrImbalanced)
	require.Empty(t, repo.entries)
	require.Empty(t, repo.vouchers)
}

func TestCreateJournalPostsBalancedLines(t *testing.T) {
	svc, repo := setup(t)

	result, err := svc.CreateJournal(context.Background(), JournalInput{
		Date:      testDate("2025-03-03"),
		Narration: "accrual",
		Lines: []JournalLine{
			{AccountID: 3001, Debit: 100},
			{AccountID: 4001, Credit: 100},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 100.0, result.Voucher.Amount)
	require.Equal(t, "JRN-000001", result.Voucher.Number)

	debit, credit := repo.globalTotals()
	require.Equal(t, debit, credit)
}

func TestCreateTransferRejectsSameBank(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.CreateTransfer(context.Background(), TransferInput{
		Date:       testDate("2025-03-04"),
		FromBankID: 1,
		ToBankID:   1,
		Amount:     300,
	})
	require.ErrorIs(t, err, ErrInvalidTransfer)
}

type postingCounter struct {
	kinds    []string
	failures int
}

func (m *postingCounter) ObservePosting(kind string, err error) {
	m.kinds = append(m.kinds, kind)
	if err != nil {
		m.failures++
	}
}

func TestCreateTransferCountsFailedBankLookup(t *testing.T) {
	repo := newMemRepo()
	repo.banks[1] = Bank{ID: 1, Name: "Bank Cash", GLAccountID: 1001}
	metrics := &postingCounter{}
	svc := NewService(repo, nil, nil, metrics)

	_, err := svc.CreateTransfer(context.Background(), TransferInput{
		Date:       testDate("2025-03-04"),
		FromBankID: 1,
		ToBankID:   99,
		Amount:     300,
	})
	require.ErrorIs(t, err, ErrInvalidReference)
	require.Equal(t, []string{string(KindBankTransfer)}, metrics.kinds)
	require.Equal(t, 1, metrics.failures)
}

func TestCreateTransferMovesBetweenBankAccounts(t *testing.T) {
	svc, repo := setup(t)

	_, err := svc.CreateTransfer(context.Background(), TransferInput{
		Date:       testDate("2025-03-04"),
		FromBankID: 1,
		ToBankID:   2,
		Amount:     300,
	})
	require.NoError(t, err)
	require.Equal(t, -300.0, repo.balance(1001))
	require.Equal(t, 300.0, repo.balance(5001))
}

func TestNoteLifecycle(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, NoteInput{
		Kind:            KindCreditNote,
		Date:            testDate("2025-03-05"),
		PartyAccountID:  2001,
		PartyName:       "Acme Supplies",
		PartyType:       PartnerCustomer,
		Amount:          400,
		VATAmount:       40,
		VATAccountID:    6001,
		OffsetAccountID: 4001,
	})
	require.NoError(t, err)
	require.Equal(t, NoteStatusDraft, note.Status)
	require.Empty(t, repo.entries, "draft notes must not reach the ledger")

	result, err := svc.ConfirmNote(ctx, note.ID, "tester")
	require.NoError(t, err)
	require.Equal(t, NoteStatusConfirmed, result.Voucher.Status)
	require.Len(t, result.Entries, 3)

	debit, credit := repo.globalTotals()
	require.Equal(t, debit, credit)
	require.Equal(t, -440.0, repo.balance(2001))

	_, err = svc.ConfirmNote(ctx, note.ID, "tester")
	require.ErrorIs(t, err, ErrAlreadyConfirmed)
}

func TestDeleteRemovesExactlyOwnRows(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	payment, err := svc.CreatePayment(ctx, PaymentInput{
		Date:           testDate("2025-03-01"),
		PartyAccountID: 2001,
		BankID:         1,
		Amount:         500,
	})
	require.NoError(t, err)

	_, err = svc.CreateReceipt(ctx, ReceiptInput{
		Date:          testDate("2025-03-02"),
		FromAccountID: 3001,
		BankID:        1,
		Amount:        200,
	})
	require.NoError(t, err)
	require.Len(t, repo.entries, 4)

	err = svc.Delete(ctx, payment.Voucher.ID, KindPayment, "tester")
	require.NoError(t, err)

	require.Len(t, repo.entries, 2, "only the payment's rows may disappear")
	require.Equal(t, 0.0, repo.balance(2001))
	require.Equal(t, 200.0, repo.balance(1001))

	debit, credit := repo.globalTotals()
	require.Equal(t, debit, credit)
}

func TestDeleteRejectsKindMismatch(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	payment, err := svc.CreatePayment(ctx, PaymentInput{
		Date:           testDate("2025-03-01"),
		PartyAccountID: 2001,
		BankID:         1,
		Amount:         500,
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, payment.Voucher.ID, KindReceipt, "tester")
	require.ErrorIs(t, err, ErrVoucherNotFound)
}

func TestClearCheque(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	payment, err := svc.CreatePayment(ctx, PaymentInput{
		Date:           testDate("2025-03-01"),
		PartyAccountID: 2001,
		BankID:         1,
		Amount:         500,
		ChequeNumber:   "CHQ-1009",
		ChequeDate:     testDate("2025-03-01"),
	})
	require.NoError(t, err)
	require.Equal(t, ChequeStatusPending, payment.Voucher.ChequeStatus)

	clearedDate := testDate("2025-03-10")
	cleared, err := svc.ClearCheque(ctx, payment.Voucher.ID, clearedDate, "tester")
	require.NoError(t, err)
	require.Equal(t, ChequeStatusCleared, cleared.ChequeStatus)
	require.NotNil(t, cleared.ClearedDate)
	require.Equal(t, clearedDate, *cleared.ClearedDate)

	_, err = svc.ClearCheque(ctx, payment.Voucher.ID, clearedDate, "tester")
	require.ErrorIs(t, err, ErrAlreadyCleared)
}

func TestClearChequeRejectsPlainVoucher(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	payment, err := svc.CreatePayment(ctx, PaymentInput{
		Date:           testDate("2025-03-01"),
		PartyAccountID: 2001,
		BankID:         1,
		Amount:         500,
	})
	require.NoError(t, err)

	_, err = svc.ClearCheque(ctx, payment.Voucher.ID, testDate("2025-03-10"), "tester")
	require.ErrorIs(t, err, ErrNotCheque)
}

func TestVoucherNumbersIncrementPerKind(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	first, err := svc.CreatePayment(ctx, PaymentInput{
		Date: testDate("2025-03-01"), PartyAccountID: 2001, BankID: 1, Amount: 100,
	})
	require.NoError(t, err)
	second, err := svc.CreatePayment(ctx, PaymentInput{
		Date: testDate("2025-03-02"), PartyAccountID: 2001, BankID: 1, Amount: 100,
	})
	require.NoError(t, err)
	receipt, err := svc.CreateReceipt(ctx, ReceiptInput{
		Date: testDate("2025-03-03"), FromAccountID: 3001, BankID: 1, Amount: 100,
	})
	require.NoError(t, err)

	require.Equal(t, "PAY-000001", first.Voucher.Number)
	require.Equal(t, "PAY-000002", second.Voucher.Number)
	require.Equal(t, "RCT-000001", receipt.Voucher.Number)
}
