package ledger

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxStore exposes the write operations that must share a transaction
// with the owning voucher.
type TxStore interface {
	InsertEntries(ctx context.Context, in PostInput) ([]Entry, error)
	DeleteByVoucher(ctx context.Context, voucherID uuid.UUID, voucherType string) (int64, error)
	MissingAccounts(ctx context.Context, ids []int64) ([]int64, error)
}

type txStore struct {
	tx pgx.Tx
}

// NewTxStore wraps a transaction with ledger write operations.
func NewTxStore(tx pgx.Tx) TxStore {
	return &txStore{tx: tx}
}

const entryColumns = `id, seq, date, account_id, debit, credit, narration, voucher_id, voucher_type, created_by, created_at`

// InsertEntries appends the rows of one voucher. The seq column comes
// from a bigserial so insertion order survives as the tie-break for
// same-day entries.
func (s *txStore) InsertEntries(ctx context.Context, in PostInput) ([]Entry, error) {
	if len(in.Lines) == 0 {
		return nil, ErrNoLines
	}
	entries := make([]Entry, 0, len(in.Lines))
	for _, line := range in.Lines {
		id := uuid.New()
		row := s.tx.QueryRow(ctx, `INSERT INTO ledger_entries (id, date, account_id, debit, credit, narration, voucher_id, voucher_type, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING seq, created_at`,
			id, in.Date, line.AccountID, line.Debit, line.Credit, line.Narration, in.VoucherID, in.VoucherType, in.CreatedBy)
		entry := Entry{
			ID:          id,
			Date:        in.Date,
			AccountID:   line.AccountID,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Narration:   line.Narration,
			VoucherID:   in.VoucherID,
			VoucherType: in.VoucherType,
			CreatedBy:   in.CreatedBy,
		}
		if err := row.Scan(&entry.Seq, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DeleteByVoucher removes exactly the rows of one voucher. Deleting a
// voucher with no rows is a no-op, so the call is idempotent.
func (s *txStore) DeleteByVoucher(ctx context.Context, voucherID uuid.UUID, voucherType string) (int64, error) {
	cmd, err := s.tx.Exec(ctx, `DELETE FROM ledger_entries WHERE voucher_id=$1 AND voucher_type=$2`, voucherID, voucherType)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// MissingAccounts returns the subset of ids without an accounts row.
func (s *txStore) MissingAccounts(ctx context.Context, ids []int64) ([]int64, error) {
	rows, err := s.tx.Query(ctx, `SELECT candidate FROM unnest($1::bigint[]) AS candidate
WHERE NOT EXISTS (SELECT 1 FROM accounts WHERE accounts.id = candidate)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var missing []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		missing = append(missing, id)
	}
	return missing, rows.Err()
}

// ReadStore serves balance queries from the pool. Reports never write.
type ReadStore struct {
	pool *pgxpool.Pool
}

// NewReadStore constructs ReadStore.
func NewReadStore(pool *pgxpool.Pool) *ReadStore {
	return &ReadStore{pool: pool}
}

// AccountExists reports whether the registry holds the account. Summary
// requests for unknown accounts fail instead of aggregating to zeros.
func (r *ReadStore) AccountExists(ctx context.Context, accountID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id=$1)`, accountID).Scan(&exists)
	return exists, err
}

// SumBefore aggregates debit and credit for an account strictly before
// the given date.
func (r *ReadStore) SumBefore(ctx context.Context, accountID int64, before time.Time) (float64, float64, error) {
	var debit, credit float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(debit),0), COALESCE(SUM(credit),0)
FROM ledger_entries WHERE account_id=$1 AND date < $2`, accountID, before).Scan(&debit, &credit)
	return debit, credit, err
}

// SumRange aggregates debit and credit over the inclusive range. Zero
// bounds are open.
func (r *ReadStore) SumRange(ctx context.Context, accountID int64, from, to time.Time) (float64, float64, error) {
	query := `SELECT COALESCE(SUM(debit),0), COALESCE(SUM(credit),0) FROM ledger_entries WHERE account_id=$1`
	args := []any{accountID}
	query, args = appendRange(query, args, from, to)
	var debit, credit float64
	err := r.pool.QueryRow(ctx, query, args...).Scan(&debit, &credit)
	return debit, credit, err
}

// EntriesInRange lists entries for one account ordered by date then
// insertion sequence, which keeps the running balance deterministic for
// same-day rows.
func (r *ReadStore) EntriesInRange(ctx context.Context, accountID int64, from, to time.Time) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE account_id=$1`
	args := []any{accountID}
	query, args = appendRange(query, args, from, to)
	query += ` ORDER BY date ASC, seq ASC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Seq, &e.Date, &e.AccountID, &e.Debit, &e.Credit, &e.Narration, &e.VoucherID, &e.VoucherType, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GlobalTotals aggregates every row in the ledger, optionally bounded by
// the inclusive range. Used by the trial balance and the integrity scan.
func (r *ReadStore) GlobalTotals(ctx context.Context, from, to time.Time) (float64, float64, error) {
	query := `SELECT COALESCE(SUM(debit),0), COALESCE(SUM(credit),0) FROM ledger_entries WHERE TRUE`
	args := []any{}
	query, args = appendRange(query, args, from, to)
	var debit, credit float64
	err := r.pool.QueryRow(ctx, query, args...).Scan(&debit, &credit)
	return debit, credit, err
}

func appendRange(query string, args []any, from, to time.Time) (string, []any) {
	if !from.IsZero() {
		args = append(args, from)
		query += ` AND date >= $` + strconv.Itoa(len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += ` AND date <= $` + strconv.Itoa(len(args))
	}
	return query, args
}
