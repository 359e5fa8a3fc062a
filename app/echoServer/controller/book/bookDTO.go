package book

import "github.com/shopspring/decimal"

type BookReq struct {
	ISBN            string          `json:"isbn" validate:"required"`
	Title           string          `json:"title" validate:"required"`
	Edition         string          `json:"edition"`
	Description     string          `json:"description" validate:"required"`
	Genre           string          `json:"genre" validate:"required"`
	AuthorName      string          `json:"author_name" validate:"required"`
	PublisherName   string          `json:"publisher_name"`
	PublicationYear int             `json:"publication_year" validate:"required,gte=1000"`
	TotalCopies     int64           `json:"total_copies" validate:"gte=0"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

type CountReq struct {
	Count int64 `json:"count" validate:"required,gt=0"`
}
