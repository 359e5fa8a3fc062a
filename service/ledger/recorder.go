package ledgersvc

import (
	"context"
	"database/sql"
	"log/slog"

	"bookhub/model"

	"github.com/shopspring/decimal"
)

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, t *model.Transaction) error
	LatestBorrowForUpdate(ctx context.Context, tx *sql.Tx, userID, bookID int64) (*model.Transaction, error)
	UpdateTypeAndStatus(ctx context.Context, tx *sql.Tx, id int64, typ model.TransactionType, status model.TransactionStatus) error
	ListByUser(ctx context.Context, userID int64) ([]model.Transaction, error)
}

// Recorder appends ledger entries for completed inventory operations. It runs
// inside the caller's transaction so a ledger write can never outlive a failed
// counter update (or the other way round).
type Recorder struct {
	r   Repo
	log *slog.Logger
}

func New(r Repo, log *slog.Logger) *Recorder { return &Recorder{r: r, log: log} }

// Record appends a COMPLETED entry timestamped by the store at insert time.
func (rec *Recorder) Record(ctx context.Context, tx *sql.Tx, userID, bookID int64, kind model.TransactionType, amount decimal.Decimal) (*model.Transaction, error) {
	t := &model.Transaction{
		UserID: userID,
		BookID: bookID,
		Type:   kind,
		Status: model.TxnCompleted,
		Amount: amount,
	}
	if err := rec.r.Insert(ctx, tx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ReconcileReturn flips the most recent BORROW entry for (user, book) to
// RETURN/COMPLETED. A return without a matching borrow entry is still honored
// against inventory; the missing trace is logged instead of failing the
// operation.
func (rec *Recorder) ReconcileReturn(ctx context.Context, tx *sql.Tx, userID, bookID int64) (*model.Transaction, error) {
	t, err := rec.r.LatestBorrowForUpdate(ctx, tx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		rec.log.Warn("return without matching borrow entry",
			"user_id", userID, "book_id", bookID)
		return nil, nil
	}
	if err := rec.r.UpdateTypeAndStatus(ctx, tx, t.ID, model.TxnReturn, model.TxnCompleted); err != nil {
		return nil, err
	}
	t.Type = model.TxnReturn
	t.Status = model.TxnCompleted
	return t, nil
}

// History lists a user's ledger entries, newest first.
func (rec *Recorder) History(ctx context.Context, userID int64) ([]model.Transaction, error) {
	return rec.r.ListByUser(ctx, userID)
}
