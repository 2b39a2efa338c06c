package voucher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-ops/meridian/internal/ledger"
	"github.com/meridian-ops/meridian/internal/platform/db"
)

// Repository persists vouchers and their journal lines.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations that share the posting transaction.
// The ledger store rides the same transaction so a voucher and its rows
// commit or roll back together.
type TxRepository interface {
	NextNumber(ctx context.Context, kind Kind) (string, error)
	InsertVoucher(ctx context.Context, v Voucher) (Voucher, error)
	InsertJournalLines(ctx context.Context, voucherID uuid.UUID, lines []JournalLine) error
	GetForUpdate(ctx context.Context, id uuid.UUID) (Voucher, error)
	ConfirmNote(ctx context.Context, id uuid.UUID) error
	MarkCleared(ctx context.Context, id uuid.UUID, clearedDate time.Time) error
	DeleteVoucher(ctx context.Context, id uuid.UUID) (bool, error)
	Ledger() ledger.TxStore
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes fn within a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("voucher repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *txRepository) Ledger() ledger.TxStore {
	return ledger.NewTxStore(r.tx)
}

var numberPrefix = map[Kind]string{
	KindPayment:      "PAY",
	KindReceipt:      "RCT",
	KindJournal:      "JRN",
	KindCreditNote:   "CRN",
	KindDebitNote:    "DBN",
	KindBankTransfer: "TRF",
}

// NextNumber increments the storage-backed sequence for the kind. The
// upsert runs inside the posting transaction, so concurrent service
// instances never hand out the same number.
func (r *txRepository) NextNumber(ctx context.Context, kind Kind) (string, error) {
	var next int64
	err := r.tx.QueryRow(ctx, `INSERT INTO voucher_sequences (kind, next) VALUES ($1, 1)
ON CONFLICT (kind) DO UPDATE SET next = voucher_sequences.next + 1
RETURNING next`, kind).Scan(&next)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", numberPrefix[kind], next), nil
}

const voucherColumns = `id, kind, number, date, amount, narration, party_account_id, party_name, party_type,
bank_id, from_account_id, from_bank_id, to_bank_id, status, vat_amount, vat_account_id, offset_account_id,
cheque_number, cheque_date, cheque_status, cleared_date, created_by, created_at, updated_at`

func scanVoucher(row pgx.Row) (Voucher, error) {
	var v Voucher
	var status, chequeStatus, partyType *string
	var chequeDate *time.Time
	err := row.Scan(&v.ID, &v.Kind, &v.Number, &v.Date, &v.Amount, &v.Narration, &v.PartyAccountID, &v.PartyName, &partyType,
		&v.BankID, &v.FromAccountID, &v.FromBankID, &v.ToBankID, &status, &v.VATAmount, &v.VATAccountID, &v.OffsetAccountID,
		&v.ChequeNumber, &chequeDate, &chequeStatus, &v.ClearedDate, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return Voucher{}, err
	}
	if partyType != nil {
		v.PartyType = PartnerType(*partyType)
	}
	if status != nil {
		v.Status = NoteStatus(*status)
	}
	if chequeStatus != nil {
		v.ChequeStatus = ChequeStatus(*chequeStatus)
	}
	if chequeDate != nil {
		v.ChequeDate = *chequeDate
	}
	return v, nil
}

func (r *txRepository) InsertVoucher(ctx context.Context, v Voucher) (Voucher, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO vouchers
(id, kind, number, date, amount, narration, party_account_id, party_name, party_type, bank_id, from_account_id,
 from_bank_id, to_bank_id, status, vat_amount, vat_account_id, offset_account_id, cheque_number, cheque_date,
 cheque_status, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULLIF($9,''),$10,$11,$12,$13,NULLIF($14,''),$15,$16,$17,$18,$19,NULLIF($20,''),$21)
RETURNING created_at, updated_at`,
		v.ID, v.Kind, v.Number, v.Date, v.Amount, v.Narration, v.PartyAccountID, v.PartyName, string(v.PartyType),
		v.BankID, v.FromAccountID, v.FromBankID, v.ToBankID, string(v.Status), v.VATAmount, v.VATAccountID,
		v.OffsetAccountID, v.ChequeNumber, nullTime(v.ChequeDate), string(v.ChequeStatus), v.CreatedBy)
	if err := row.Scan(&v.CreatedAt, &v.UpdatedAt); err != nil {
		return Voucher{}, err
	}
	return v, nil
}

func (r *txRepository) InsertJournalLines(ctx context.Context, voucherID uuid.UUID, lines []JournalLine) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO voucher_lines (voucher_id, account_id, debit, credit, narration)
VALUES ($1,$2,$3,$4,$5)`, voucherID, line.AccountID, line.Debit, line.Credit, line.Narration); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (Voucher, error) {
	v, err := scanVoucher(r.tx.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voucher{}, ErrVoucherNotFound
		}
		return Voucher{}, err
	}
	return v, nil
}

func (r *txRepository) ConfirmNote(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE vouchers SET status=$2, updated_at=NOW() WHERE id=$1`, id, NoteStatusConfirmed)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVoucherNotFound
	}
	return nil
}

func (r *txRepository) MarkCleared(ctx context.Context, id uuid.UUID, clearedDate time.Time) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE vouchers SET cheque_status=$2, cleared_date=$3, updated_at=NOW() WHERE id=$1`,
		id, ChequeStatusCleared, clearedDate)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVoucherNotFound
	}
	return nil
}

func (r *txRepository) DeleteVoucher(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := r.tx.Exec(ctx, `DELETE FROM voucher_lines WHERE voucher_id=$1`, id); err != nil {
		return false, err
	}
	cmd, err := r.tx.Exec(ctx, `DELETE FROM vouchers WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// Get fetches a voucher with its journal lines.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Voucher, error) {
	v, err := scanVoucher(r.pool.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voucher{}, ErrVoucherNotFound
		}
		return Voucher{}, err
	}
	if v.Kind == KindJournal {
		lines, err := r.journalLines(ctx, id)
		if err != nil {
			return Voucher{}, err
		}
		v.Lines = lines
	}
	return v, nil
}

func (r *Repository) journalLines(ctx context.Context, voucherID uuid.UUID) ([]JournalLine, error) {
	rows, err := r.pool.Query(ctx, `SELECT account_id, debit, credit, narration FROM voucher_lines
WHERE voucher_id=$1 ORDER BY id ASC`, voucherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []JournalLine
	for rows.Next() {
		var line JournalLine
		if err := rows.Scan(&line.AccountID, &line.Debit, &line.Credit, &line.Narration); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// GetBank resolves a bank id from the external bank master.
func (r *Repository) GetBank(ctx context.Context, id int64) (Bank, error) {
	var bank Bank
	err := r.pool.QueryRow(ctx, `SELECT id, name, gl_account_id FROM banks WHERE id=$1`, id).
		Scan(&bank.ID, &bank.Name, &bank.GLAccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Bank{}, ErrInvalidReference
		}
		return Bank{}, err
	}
	return bank, nil
}

// ListCheques lists payment and receipt vouchers carrying cheque
// metadata, optionally filtered by clearance status.
func (r *Repository) ListCheques(ctx context.Context, status ChequeStatus) ([]Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers
WHERE kind IN ('PAYMENT','RECEIPT') AND cheque_number <> ''`
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += ` AND cheque_status=$1`
	}
	query += ` ORDER BY date ASC, created_at ASC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVouchers(rows)
}

// List lists vouchers of one kind in the inclusive range.
func (r *Repository) List(ctx context.Context, kind Kind, from, to time.Time) ([]Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE kind=$1`
	args := []any{kind}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(` AND date <= $%d`, len(args))
	}
	query += ` ORDER BY date ASC, created_at ASC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVouchers(rows)
}

func collectVouchers(rows pgx.Rows) ([]Voucher, error) {
	var out []Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
