package model

import "github.com/shopspring/decimal"

type BookStatus string

const (
	BookAvailable BookStatus = "AVAILABLE"
	BookBorrowed  BookStatus = "BORROWED"
	BookSoldOut   BookStatus = "SOLD_OUT"
)

// Book carries the stock counters for one catalogue entry. Status is derived
// from the counters and must only change through the inventory transitions in
// service/book.
type Book struct {
	ID              int64           `json:"id"`
	ISBN            string          `json:"isbn"`
	Title           string          `json:"title"`
	Edition         string          `json:"edition,omitempty"`
	Description     string          `json:"description"`
	Genre           string          `json:"genre"`
	AuthorName      string          `json:"author_name"`
	PublisherName   string          `json:"publisher_name,omitempty"`
	PublicationYear int             `json:"publication_year"`
	AvailableCopies int64           `json:"available_copies"`
	BorrowedCopies  int64           `json:"borrowed_copies"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Status          BookStatus      `json:"status"`
}

// IsAvailable reports whether at least one copy can be borrowed or sold.
func (b Book) IsAvailable() bool {
	return b.Status == BookAvailable && b.AvailableCopies > 0
}
