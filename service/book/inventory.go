package booksvc

import (
	"fmt"

	"bookhub/model"
)

// applyInventory computes the post-operation state of a book for one
// borrow/return/purchase of count copies. The argument is taken by value and
// never touched: a rejected operation hands back the input unchanged, so the
// caller persists either the full transition or nothing.
func applyInventory(b model.Book, count int64, kind model.TransactionType) (model.Book, error) {
	if count <= 0 {
		return b, makeErr(ErrInvalidArgument, fmt.Sprintf("%s count must be greater than 0", kind))
	}

	switch kind {
	case model.TxnBorrow:
		if !b.IsAvailable() {
			return b, makeErr(ErrOutOfStock, "book is out of stock")
		}
		if count > b.AvailableCopies {
			return b, makeErr(ErrNotAllowed,
				fmt.Sprintf("cannot borrow more copies than available copies %d", b.AvailableCopies))
		}
		b.AvailableCopies -= count
		b.BorrowedCopies += count
		if b.AvailableCopies == 0 {
			b.Status = model.BookBorrowed
		} else {
			b.Status = model.BookAvailable
		}
		return b, nil

	case model.TxnReturn:
		if count > b.BorrowedCopies {
			return b, makeErr(ErrNotAllowed, "return count exceeds the number of borrowed copies")
		}
		b.AvailableCopies += count
		b.BorrowedCopies -= count
		// AvailableCopies is positive again after any return, so the
		// unconditional reset is safe.
		b.Status = model.BookAvailable
		return b, nil

	case model.TxnPurchase:
		if count > b.AvailableCopies {
			return b, makeErr(ErrNotAllowed,
				fmt.Sprintf("cannot purchase more copies than available copies %d", b.AvailableCopies))
		}
		b.AvailableCopies -= count
		if b.AvailableCopies == 0 {
			b.Status = model.BookSoldOut
		} else {
			b.Status = model.BookAvailable
		}
		return b, nil

	default:
		return b, makeErr(ErrInvalidArgument, "invalid transaction type")
	}
}
