package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-ops/meridian/internal/voucher"
)

// Repository owns the read-only report queries. It never writes;
// every statement recomputes from the raw voucher and ledger tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// AccountBalances sums each account's debits and credits within the
// range. Accounts without activity come back with zero totals so the
// builders decide what to hide.
func (r *Repository) AccountBalances(ctx context.Context, from, to time.Time) ([]AccountBalance, error) {
	query := `SELECT a.id, a.code, a.name, a.type,
COALESCE(SUM(e.debit), 0), COALESCE(SUM(e.credit), 0)
FROM accounts a
LEFT JOIN ledger_entries e ON e.account_id = a.id`
	args := []any{}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(` AND e.date >= $%d`, len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(` AND e.date <= $%d`, len(args))
	}
	query += ` GROUP BY a.id, a.code, a.name, a.type ORDER BY a.code ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.AccountID, &b.Code, &b.Name, &b.Type, &b.Debit, &b.Credit); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

const voucherRowColumns = `v.id, v.kind, v.number, v.date, v.amount, v.vat_amount, v.narration,
v.party_name, v.party_type, v.status, COALESCE(b.name, '')`

func scanVoucherRow(rows pgx.Rows) (VoucherRow, error) {
	var row VoucherRow
	var partyType, status *string
	err := rows.Scan(&row.ID, &row.Kind, &row.Number, &row.Date, &row.Amount, &row.VATAmount,
		&row.Narration, &row.PartyName, &partyType, &status, &row.BankName)
	if err != nil {
		return VoucherRow{}, err
	}
	if partyType != nil {
		row.PartyType = voucher.PartnerType(*partyType)
	}
	if status != nil {
		row.Status = voucher.NoteStatus(*status)
	}
	return row, nil
}

// VouchersByKind fetches one kind's vouchers in the inclusive range,
// hydrating journal lines when the kind is JOURNAL.
func (r *Repository) VouchersByKind(ctx context.Context, kind voucher.Kind, from, to time.Time) ([]VoucherRow, error) {
	query := `SELECT ` + voucherRowColumns + `
FROM vouchers v LEFT JOIN banks b ON b.id = v.bank_id
WHERE v.kind = $1`
	args := []any{kind}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(` AND v.date >= $%d`, len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(` AND v.date <= $%d`, len(args))
	}
	query += ` ORDER BY v.date ASC, v.created_at ASC`

	out, err := r.queryVoucherRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if kind == voucher.KindJournal {
		if err := r.attachJournalLines(ctx, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AgeingVouchers fetches partner-tagged vouchers of one kind dated on
// or before asOn.
func (r *Repository) AgeingVouchers(ctx context.Context, kind voucher.Kind, asOn time.Time) ([]VoucherRow, error) {
	query := `SELECT ` + voucherRowColumns + `
FROM vouchers v LEFT JOIN banks b ON b.id = v.bank_id
WHERE v.kind = $1 AND v.party_name <> '' AND v.date <= $2
ORDER BY v.date ASC, v.created_at ASC`
	return r.queryVoucherRows(ctx, query, kind, asOn)
}

// PartnerVouchersBefore fetches a partner's vouchers strictly before
// the statement window, for the opening balance.
func (r *Repository) PartnerVouchersBefore(ctx context.Context, partner string, before time.Time) ([]VoucherRow, error) {
	query := `SELECT ` + voucherRowColumns + `
FROM vouchers v LEFT JOIN banks b ON b.id = v.bank_id
WHERE v.party_name = $1 AND v.date < $2
ORDER BY v.date ASC, v.created_at ASC`
	return r.queryVoucherRows(ctx, query, partner, before)
}

// PartnerVouchersInRange fetches a partner's vouchers within the
// inclusive statement window.
func (r *Repository) PartnerVouchersInRange(ctx context.Context, partner string, from, to time.Time) ([]VoucherRow, error) {
	query := `SELECT ` + voucherRowColumns + `
FROM vouchers v LEFT JOIN banks b ON b.id = v.bank_id
WHERE v.party_name = $1`
	args := []any{partner}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(` AND v.date >= $%d`, len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(` AND v.date <= $%d`, len(args))
	}
	query += ` ORDER BY v.date ASC, v.created_at ASC`
	return r.queryVoucherRows(ctx, query, args...)
}

func (r *Repository) queryVoucherRows(ctx context.Context, query string, args ...any) ([]VoucherRow, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VoucherRow
	for rows.Next() {
		row, err := scanVoucherRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repository) attachJournalLines(ctx context.Context, vouchers []VoucherRow) error {
	if len(vouchers) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(vouchers))
	index := make(map[uuid.UUID]int, len(vouchers))
	for i, v := range vouchers {
		ids = append(ids, v.ID)
		index[v.ID] = i
	}
	rows, err := r.pool.Query(ctx, `SELECT voucher_id, account_id, debit, credit, narration
FROM voucher_lines WHERE voucher_id = ANY($1) ORDER BY id ASC`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var voucherID uuid.UUID
		var line voucher.JournalLine
		if err := rows.Scan(&voucherID, &line.AccountID, &line.Debit, &line.Credit, &line.Narration); err != nil {
			return err
		}
		if i, ok := index[voucherID]; ok {
			vouchers[i].Lines = append(vouchers[i].Lines, line)
		}
	}
	return rows.Err()
}
