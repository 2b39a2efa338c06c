package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// entryInsertTx fakes the transactional insert path. It records the id
// handed to the INSERT and scans back a sequence like the bigserial
// column would. Only QueryRow is implemented; nothing else is reached.
type entryInsertTx struct {
	pgx.Tx
	insertedIDs []uuid.UUID
	seq         int64
}

type entryInsertRow struct {
	seq int64
}

func (r entryInsertRow) Scan(dest ...any) error {
	*dest[0].(*int64) = r.seq
	*dest[1].(*time.Time) = time.Now()
	return nil
}

func (t *entryInsertTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	t.insertedIDs = append(t.insertedIDs, args[0].(uuid.UUID))
	t.seq++
	return entryInsertRow{seq: t.seq}
}

func TestInsertEntriesReturnsStoredIDs(t *testing.T) {
	tx := &entryInsertTx{}
	store := NewTxStore(tx)

	entries, err := store.InsertEntries(context.Background(), PostInput{
		Date:        day("2025-03-01"),
		VoucherID:   uuid.New(),
		VoucherType: "PAYMENT",
		Lines: []Line{
			{AccountID: 2001, Debit: 500},
			{AccountID: 1001, Credit: 500},
		},
	})
	if err != nil {
		t.Fatalf("InsertEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if len(tx.insertedIDs) != 2 {
		t.Fatalf("expected 2 inserts, got %d", len(tx.insertedIDs))
	}
	for i, entry := range entries {
		if entry.ID == uuid.Nil {
			t.Fatalf("entry %d: returned ID is uuid.Nil", i)
		}
		if entry.ID != tx.insertedIDs[i] {
			t.Fatalf("entry %d: returned ID %s does not match stored row %s", i, entry.ID, tx.insertedIDs[i])
		}
		if entry.Seq != int64(i+1) {
			t.Fatalf("entry %d: seq = %d, want %d", i, entry.Seq, i+1)
		}
	}
}

func TestInsertEntriesRejectsEmptyInput(t *testing.T) {
	store := NewTxStore(&entryInsertTx{})
	if _, err := store.InsertEntries(context.Background(), PostInput{}); err != ErrNoLines {
		t.Fatalf("error = %v, want ErrNoLines", err)
	}
}
