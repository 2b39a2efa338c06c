package voucher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-ops/meridian/internal/ledger"
	"github.com/meridian-ops/meridian/internal/shared"
)

// RepositoryPort abstracts transactional voucher persistence.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id uuid.UUID) (Voucher, error)
	GetBank(ctx context.Context, id int64) (Bank, error)
	ListCheques(ctx context.Context, status ChequeStatus) ([]Voucher, error)
	List(ctx context.Context, kind Kind, from, to time.Time) ([]Voucher, error)
}

// AuditPort records voucher events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheBuster invalidates report caches after a successful write.
type CacheBuster interface {
	Bust(ctx context.Context)
}

// MetricsPort counts posting outcomes.
type MetricsPort interface {
	ObservePosting(kind string, err error)
}

// PostResult pairs a stored voucher with the ledger rows it produced.
type PostResult struct {
	Voucher Voucher
	Entries []ledger.Entry
}

// Service is the single poster for all six voucher kinds. Every create
// and delete commits the voucher and its ledger rows in one transaction.
type Service struct {
	repo    RepositoryPort
	audit   AuditPort
	cache   CacheBuster
	metrics MetricsPort
	now     func() time.Time
}

// NewService constructs the voucher service.
func NewService(repo RepositoryPort, audit AuditPort, cache CacheBuster, metrics MetricsPort) *Service {
	return &Service{repo: repo, audit: audit, cache: cache, metrics: metrics, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreatePayment posts a payment: debit the party account, credit the
// paying bank's GL account.
func (s *Service) CreatePayment(ctx context.Context, in PaymentInput) (PostResult, error) {
	if err := in.Validate(); err != nil {
		return PostResult{}, err
	}
	bank, err := s.repo.GetBank(ctx, in.BankID)
	if err != nil {
		s.observe(KindPayment, err)
		return PostResult{}, err
	}
	v := Voucher{
		ID:             uuid.New(),
		Kind:           KindPayment,
		Date:           in.Date,
		Amount:         in.Amount,
		Narration:      in.Narration,
		PartyAccountID: in.PartyAccountID,
		PartyName:      in.PartyName,
		PartyType:      PartnerVendor,
		BankID:         in.BankID,
		ChequeNumber:   in.ChequeNumber,
		ChequeDate:     in.ChequeDate,
		CreatedBy:      in.CreatedBy,
	}
	if v.ChequeNumber != "" {
		v.ChequeStatus = ChequeStatusPending
	}
	return s.post(ctx, v, paymentLines(v, bank))
}

// CreateReceipt posts a receipt: debit the receiving bank's GL account,
// credit the source account.
func (s *Service) CreateReceipt(ctx context.Context, in ReceiptInput) (PostResult, error) {
	if err := in.Validate(); err != nil {
		return PostResult{}, err
	}
	bank, err := s.repo.GetBank(ctx, in.BankID)
	if err != nil {
		s.observe(KindReceipt, err)
		return PostResult{}, err
	}
	v := Voucher{
		ID:            uuid.New(),
		Kind:          KindReceipt,
		Date:          in.Date,
		Amount:        in.Amount,
		Narration:     in.Narration,
		FromAccountID: in.FromAccountID,
		PartyName:     in.PartyName,
		PartyType:     PartnerCustomer,
		BankID:        in.BankID,
		ChequeNumber:  in.ChequeNumber,
		ChequeDate:    in.ChequeDate,
		CreatedBy:     in.CreatedBy,
	}
	if v.ChequeNumber != "" {
		v.ChequeStatus = ChequeStatusPending
	}
	return s.post(ctx, v, receiptLines(v, bank))
}

// CreateJournal posts a free-form journal entry. Balance is enforced
// here explicitly because the lines are caller-supplied.
func (s *Service) CreateJournal(ctx context.Context, in JournalInput) (PostResult, error) {
	if err := in.Validate(); err != nil {
		return PostResult{}, err
	}
	var totalDebit float64
	for _, line := range in.Lines {
		totalDebit += line.Debit
	}
	v := Voucher{
		ID:        uuid.New(),
		Kind:      KindJournal,
		Date:      in.Date,
		Amount:    totalDebit,
		Narration: in.Narration,
		Lines:     in.Lines,
		CreatedBy: in.CreatedBy,
	}
	return s.post(ctx, v, journalLines(v))
}

// CreateTransfer posts a bank transfer: debit the receiving bank's GL
// account, credit the sending bank's.
func (s *Service) CreateTransfer(ctx context.Context, in TransferInput) (PostResult, error) {
	if err := in.Validate(); err != nil {
		return PostResult{}, err
	}
	from, err := s.repo.GetBank(ctx, in.FromBankID)
	if err != nil {
		s.observe(KindBankTransfer, err)
		return PostResult{}, err
	}
	to, err := s.repo.GetBank(ctx, in.ToBankID)
	if err != nil {
		s.observe(KindBankTransfer, err)
		return PostResult{}, err
	}
	v := Voucher{
		ID:         uuid.New(),
		Kind:       KindBankTransfer,
		Date:       in.Date,
		Amount:     in.Amount,
		Narration:  in.Narration,
		FromBankID: in.FromBankID,
		ToBankID:   in.ToBankID,
		CreatedBy:  in.CreatedBy,
	}
	return s.post(ctx, v, transferLines(v, from, to))
}

// CreateNote stores a credit or debit note in Draft. Nothing reaches the
// ledger until Confirm.
func (s *Service) CreateNote(ctx context.Context, in NoteInput) (Voucher, error) {
	if err := in.Validate(); err != nil {
		return Voucher{}, err
	}
	v := Voucher{
		ID:              uuid.New(),
		Kind:            in.Kind,
		Date:            in.Date,
		Amount:          in.Amount,
		Narration:       in.Narration,
		PartyAccountID:  in.PartyAccountID,
		PartyName:       in.PartyName,
		PartyType:       in.PartyType,
		Status:          NoteStatusDraft,
		VATAmount:       in.VATAmount,
		VATAccountID:    in.VATAccountID,
		OffsetAccountID: in.OffsetAccountID,
		CreatedBy:       in.CreatedBy,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		missing, err := tx.Ledger().MissingAccounts(ctx, noteAccountIDs(v))
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return ErrInvalidReference
		}
		number, err := tx.NextNumber(ctx, v.Kind)
		if err != nil {
			return err
		}
		v.Number = number
		v, err = tx.InsertVoucher(ctx, v)
		return err
	})
	if err != nil {
		return Voucher{}, err
	}
	s.record(ctx, v.CreatedBy, "voucher.draft", v)
	return v, nil
}

// ConfirmNote transitions Draft to Confirmed and posts the note's ledger
// rows. Confirmed is terminal; there is no reverse transition.
func (s *Service) ConfirmNote(ctx context.Context, id uuid.UUID, actor string) (PostResult, error) {
	var result PostResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		v, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if v.Kind != KindCreditNote && v.Kind != KindDebitNote {
			return ErrVoucherNotFound
		}
		if v.Status != NoteStatusDraft {
			return ErrAlreadyConfirmed
		}
		lines := noteLines(v)
		if err := ledger.ValidateBalanced(lines); err != nil {
			return err
		}
		if err := tx.ConfirmNote(ctx, v.ID); err != nil {
			return err
		}
		entries, err := tx.Ledger().InsertEntries(ctx, ledger.PostInput{
			Date:        v.Date,
			VoucherID:   v.ID,
			VoucherType: string(v.Kind),
			CreatedBy:   actor,
			Lines:       lines,
		})
		if err != nil {
			return err
		}
		v.Status = NoteStatusConfirmed
		result = PostResult{Voucher: v, Entries: entries}
		return nil
	})
	s.observe(result.Voucher.Kind, err)
	if err != nil {
		return PostResult{}, err
	}
	s.bust(ctx)
	s.record(ctx, actor, "voucher.confirm", result.Voucher)
	return result, nil
}

// Delete removes a voucher and exactly its ledger rows in one
// transaction. Ledger removal is idempotent; a draft note simply has no
// rows to remove.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, kind Kind, actor string) error {
	var deleted Voucher
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		v, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if kind != "" && v.Kind != kind {
			return ErrVoucherNotFound
		}
		ok, err := tx.DeleteVoucher(ctx, v.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrVoucherNotFound
		}
		if _, err := tx.Ledger().DeleteByVoucher(ctx, v.ID, string(v.Kind)); err != nil {
			return err
		}
		deleted = v
		return nil
	})
	if err != nil {
		return err
	}
	s.bust(ctx)
	s.record(ctx, actor, "voucher.delete", deleted)
	return nil
}

// ClearCheque transitions a pending cheque to Cleared, recording the
// clearance date. Clearing never happens automatically.
func (s *Service) ClearCheque(ctx context.Context, id uuid.UUID, clearedDate time.Time, actor string) (Voucher, error) {
	var cleared Voucher
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		v, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if v.ChequeNumber == "" {
			return ErrNotCheque
		}
		if v.ChequeStatus == ChequeStatusCleared {
			return ErrAlreadyCleared
		}
		if err := tx.MarkCleared(ctx, v.ID, clearedDate); err != nil {
			return err
		}
		v.ChequeStatus = ChequeStatusCleared
		v.ClearedDate = &clearedDate
		cleared = v
		return nil
	})
	if err != nil {
		return Voucher{}, err
	}
	s.record(ctx, actor, "voucher.clear_cheque", cleared)
	return cleared, nil
}

// Get fetches one voucher.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Voucher, error) {
	return s.repo.Get(ctx, id)
}

// List lists vouchers of one kind within the range.
func (s *Service) List(ctx context.Context, kind Kind, from, to time.Time) ([]Voucher, error) {
	if err := ledger.ValidateRange(from, to); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, kind, from, to)
}

// ListCheques lists cheque-backed vouchers for bank reconciliation.
func (s *Service) ListCheques(ctx context.Context, status ChequeStatus) ([]Voucher, error) {
	return s.repo.ListCheques(ctx, status)
}

// post validates the lines through the shared choke point and commits
// voucher plus ledger rows atomically.
func (s *Service) post(ctx context.Context, v Voucher, lines []ledger.Line) (PostResult, error) {
	var result PostResult
	err := func() error {
		if err := ledger.ValidateBalanced(lines); err != nil {
			return err
		}
		return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			missing, err := tx.Ledger().MissingAccounts(ctx, lineAccountIDs(lines))
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				return fmt.Errorf("%w: accounts %v", ErrInvalidReference, missing)
			}
			number, err := tx.NextNumber(ctx, v.Kind)
			if err != nil {
				return err
			}
			v.Number = number
			inserted, err := tx.InsertVoucher(ctx, v)
			if err != nil {
				return err
			}
			if v.Kind == KindJournal {
				if err := tx.InsertJournalLines(ctx, v.ID, v.Lines); err != nil {
					return err
				}
				inserted.Lines = v.Lines
			}
			entries, err := tx.Ledger().InsertEntries(ctx, ledger.PostInput{
				Date:        v.Date,
				VoucherID:   v.ID,
				VoucherType: string(v.Kind),
				CreatedBy:   v.CreatedBy,
				Lines:       lines,
			})
			if err != nil {
				return err
			}
			result = PostResult{Voucher: inserted, Entries: entries}
			return nil
		})
	}()
	s.observe(v.Kind, err)
	if err != nil {
		return PostResult{}, err
	}
	s.bust(ctx)
	s.record(ctx, v.CreatedBy, "voucher.post", result.Voucher)
	return result, nil
}

func (s *Service) observe(kind Kind, err error) {
	if s.metrics != nil {
		s.metrics.ObservePosting(string(kind), err)
	}
}

func (s *Service) bust(ctx context.Context) {
	if s.cache != nil {
		s.cache.Bust(ctx)
	}
}

func (s *Service) record(ctx context.Context, actor, action string, v Voucher) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		Action:   action,
		Entity:   "voucher",
		EntityID: v.ID.String(),
		Meta: map[string]any{
			"kind":   string(v.Kind),
			"number": v.Number,
			"amount": v.Amount,
		},
		At: s.now(),
	})
}

func lineAccountIDs(lines []ledger.Line) []int64 {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.AccountID)
	}
	return ids
}

func noteAccountIDs(v Voucher) []int64 {
	ids := []int64{v.PartyAccountID, v.OffsetAccountID}
	if v.VATAccountID != 0 {
		ids = append(ids, v.VATAccountID)
	}
	return ids
}
