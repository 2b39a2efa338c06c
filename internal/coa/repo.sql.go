package coa

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists chart of accounts entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, code, name, type, sub_type, classification, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.SubType, &a.Classification, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create inserts an account and maps the unique-code violation.
func (r *Repository) Create(ctx context.Context, in CreateInput) (Account, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO accounts (code, name, type, sub_type, classification, is_active)
VALUES ($1,$2,$3,$4,$5,TRUE) RETURNING `+accountColumns, in.Code, in.Name, in.Type, in.SubType, in.Classification)
	account, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, ErrDuplicateCode
		}
		return Account{}, err
	}
	return account, nil
}

// Get fetches a single account by id.
func (r *Repository) Get(ctx context.Context, id int64) (Account, error) {
	account, err := scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return account, nil
}

// GetByCode fetches a single account by its code.
func (r *Repository) GetByCode(ctx context.Context, code string) (Account, error) {
	account, err := scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code=$1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return account, nil
}

// Find lists accounts matching the filter, ordered by code.
func (r *Repository) Find(ctx context.Context, filter Filter) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE is_active`
	args := []any{}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += ` AND type=$1`
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		if len(args) == 1 {
			query += ` AND (name ILIKE $1 OR code ILIKE $1)`
		} else {
			query += ` AND (name ILIKE $2 OR code ILIKE $2)`
		}
	}
	query += ` ORDER BY code`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.SubType, &a.Classification, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Update changes the mutable account fields.
func (r *Repository) Update(ctx context.Context, in UpdateInput) (Account, error) {
	row := r.pool.QueryRow(ctx, `UPDATE accounts SET name=$2, sub_type=$3, classification=$4, updated_at=NOW()
WHERE id=$1 RETURNING `+accountColumns, in.ID, in.Name, in.SubType, in.Classification)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return account, nil
}

// CountLedgerReferences reports how many ledger rows point at the account.
func (r *Repository) CountLedgerReferences(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_entries WHERE account_id=$1`, id).Scan(&count)
	return count, err
}

// Deactivate soft-deletes an unreferenced account.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE accounts SET is_active=FALSE, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}
