package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxnBorrow   TransactionType = "BORROW"
	TxnReturn   TransactionType = "RETURN"
	TxnPurchase TransactionType = "PURCHASE"
)

type TransactionStatus string

const (
	TxnCompleted TransactionStatus = "COMPLETED"
	TxnPending   TransactionStatus = "PENDING"
	TxnCancelled TransactionStatus = "CANCELLED"
)

// Transaction is one ledger entry: who did what against which book.
// User and book references never change after creation; a return flips the
// matching BORROW entry's Type/Status in place rather than appending.
type Transaction struct {
	ID         int64             `json:"id"`
	UserID     int64             `json:"user_id"`
	BookID     int64             `json:"book_id"`
	Type       TransactionType   `json:"type"`
	Status     TransactionStatus `json:"status"`
	Amount     decimal.Decimal   `json:"amount"`
	OccurredAt time.Time         `json:"occurred_at"`
}
