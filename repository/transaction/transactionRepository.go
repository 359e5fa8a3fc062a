package txnrepo

import (
	"context"
	"database/sql"
	"errors"

	"bookhub/model"
)

// All writes are tx-scoped: ledger entries commit or roll back together with
// the book counters they describe.
type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, t *model.Transaction) error

	// LatestBorrowForUpdate returns the most recent BORROW entry for the
	// (user, book) pair, locked for the duration of tx, or nil when none
	// exists.
	LatestBorrowForUpdate(ctx context.Context, tx *sql.Tx, userID, bookID int64) (*model.Transaction, error)

	UpdateTypeAndStatus(ctx context.Context, tx *sql.Tx, id int64, typ model.TransactionType, status model.TransactionStatus) error

	ListByUser(ctx context.Context, userID int64) ([]model.Transaction, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
	const q = `
INSERT INTO transactions (user_id, book_id, type, status, amount)
VALUES ($1,$2,$3,$4,$5)
RETURNING id, occurred_at`
	return tx.QueryRowContext(ctx, q, t.UserID, t.BookID, t.Type, t.Status, t.Amount).
		Scan(&t.ID, &t.OccurredAt)
}

func (r *repo) LatestBorrowForUpdate(ctx context.Context, tx *sql.Tx, userID, bookID int64) (*model.Transaction, error) {
	const q = `
SELECT id, user_id, book_id, type, status, amount, occurred_at
FROM transactions
WHERE user_id=$1 AND book_id=$2 AND type=$3
ORDER BY occurred_at DESC, id DESC
LIMIT 1
FOR UPDATE`
	var t model.Transaction
	err := tx.QueryRowContext(ctx, q, userID, bookID, model.TxnBorrow).
		Scan(&t.ID, &t.UserID, &t.BookID, &t.Type, &t.Status, &t.Amount, &t.OccurredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repo) UpdateTypeAndStatus(ctx context.Context, tx *sql.Tx, id int64, typ model.TransactionType, status model.TransactionStatus) error {
	const q = `UPDATE transactions SET type=$2, status=$3 WHERE id=$1`
	_, err := tx.ExecContext(ctx, q, id, typ, status)
	return err
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Transaction, error) {
	const q = `
SELECT id, user_id, book_id, type, status, amount, occurred_at
FROM transactions
WHERE user_id=$1
ORDER BY occurred_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.BookID, &t.Type, &t.Status, &t.Amount, &t.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
