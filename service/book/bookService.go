package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookhub/model"
	bookrepo "bookhub/repository/book"

	"github.com/shopspring/decimal"
)

type BookRepo interface {
	Insert(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Book, error)
	FindByTitleAndAuthor(ctx context.Context, title, author string) (*model.Book, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error)
	UpdateCounters(ctx context.Context, tx *sql.Tx, b model.Book) error
	List(ctx context.Context, p bookrepo.ListParams) ([]model.Book, int64, error)
	SearchByTitleOrAuthor(ctx context.Context, term string, page, size int) ([]model.Book, int64, error)
}

type UserRepo interface {
	ByEmail(ctx context.Context, email string) (*model.User, error)
}

// Ledger is the transaction recorder; both calls run inside the unit of work.
type Ledger interface {
	Record(ctx context.Context, tx *sql.Tx, userID, bookID int64, kind model.TransactionType, amount decimal.Decimal) (*model.Transaction, error)
	ReconcileReturn(ctx context.Context, tx *sql.Tx, userID, bookID int64) (*model.Transaction, error)
}

// Cache guards against duplicate submissions of the same mutating request.
// Optional; a nil Cache disables the guard.
type Cache interface {
	SetIdempotency(ctx context.Context, key string) (bool, error)
}

// BookInput is the catalogue payload for create/edit.
type BookInput struct {
	ISBN            string
	Title           string
	Edition         string
	Description     string
	Genre           string
	AuthorName      string
	PublisherName   string
	PublicationYear int
	TotalCopies     int64
	UnitPrice       decimal.Decimal
}

type ListQuery struct {
	Page      int
	Size      int
	SortBy    string
	SortOrder string
	Search    string
}

type Paged struct {
	Content       []model.Book `json:"content"`
	PageNumber    int          `json:"page_number"`
	PageSize      int          `json:"page_size"`
	TotalPages    int64        `json:"total_pages"`
	TotalElements int64        `json:"total_elements"`
}

type Service interface {
	Create(ctx context.Context, email string, in BookInput) (*model.Book, error)
	Edit(ctx context.Context, email string, id int64, in BookInput) (*model.Book, error)
	Detail(ctx context.Context, email string, id int64) (*model.Book, error)
	List(ctx context.Context, email string, q ListQuery) (*Paged, error)
	Search(ctx context.Context, email string, term string, page, size int) (*Paged, error)
	Delete(ctx context.Context, email string, id int64) error

	Borrow(ctx context.Context, email string, bookID, count int64, idemKey string) (*model.Book, error)
	Return(ctx context.Context, email string, bookID, count int64, idemKey string) (*model.Book, error)
	Purchase(ctx context.Context, email string, bookID, count int64, idemKey string) (*model.Book, error)
}

type service struct {
	db     *sql.DB
	books  BookRepo
	users  UserRepo
	ledger Ledger
	cache  Cache
}

func New(db *sql.DB, books BookRepo, users UserRepo, ledger Ledger, cache Cache) Service {
	return &service{db: db, books: books, users: users, ledger: ledger, cache: cache}
}

func (s *service) findUser(ctx context.Context, email string) (*model.User, error) {
	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrUserNotFound, "user not found with email: "+email)
		}
		return nil, wrapErr(ErrOperationFailed, "user lookup failed", err)
	}
	return u, nil
}

func (s *service) checkForDuplicateBook(ctx context.Context, title, author string) error {
	existing, err := s.books.FindByTitleAndAuthor(ctx, title, author)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return wrapErr(ErrOperationFailed, "duplicate check failed", err)
	}
	return makeErr(ErrDuplicateBook,
		fmt.Sprintf("a book with the same title and author already exists: %s by %s", existing.Title, existing.AuthorName))
}

func (s *service) Create(ctx context.Context, email string, in BookInput) (*model.Book, error) {
	if _, err := s.findUser(ctx, email); err != nil {
		return nil, err
	}
	if err := s.checkForDuplicateBook(ctx, in.Title, in.AuthorName); err != nil {
		return nil, err
	}
	b := model.Book{
		ISBN:            in.ISBN,
		Title:           in.Title,
		Edition:         in.Edition,
		Description:     in.Description,
		Genre:           in.Genre,
		AuthorName:      in.AuthorName,
		PublisherName:   in.PublisherName,
		PublicationYear: in.PublicationYear,
		AvailableCopies: in.TotalCopies,
		BorrowedCopies:  0,
		UnitPrice:       in.UnitPrice,
		Status:          model.BookAvailable,
	}
	if err := s.books.Insert(ctx, &b); err != nil {
		return nil, wrapErr(ErrOperationFailed, "error creating "+in.Title, err)
	}
	return &b, nil
}

func (s *service) Edit(ctx context.Context, email string, id int64, in BookInput) (*model.Book, error) {
	if _, err := s.findUser(ctx, email); err != nil {
		return nil, err
	}
	b, err := s.findBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != b.Title || in.AuthorName != b.AuthorName {
		if err := s.checkForDuplicateBook(ctx, in.Title, in.AuthorName); err != nil {
			return nil, err
		}
	}
	b.ISBN = in.ISBN
	b.Title = in.Title
	b.Edition = in.Edition
	b.Description = in.Description
	b.Genre = in.Genre
	b.AuthorName = in.AuthorName
	b.PublisherName = in.PublisherName
	b.PublicationYear = in.PublicationYear
	b.UnitPrice = in.UnitPrice
	b.AvailableCopies = in.TotalCopies
	b.Status = deriveStatus(*b)

	if err := s.books.Update(ctx, b); err != nil {
		return nil, wrapErr(ErrOperationFailed, fmt.Sprintf("error editing book (ID: %d)", id), err)
	}
	return b, nil
}

// deriveStatus recomputes status from the counters after an admin edit.
func deriveStatus(b model.Book) model.BookStatus {
	switch {
	case b.AvailableCopies > 0:
		return model.BookAvailable
	case b.BorrowedCopies > 0:
		return model.BookBorrowed
	default:
		return model.BookSoldOut
	}
}

func (s *service) findBook(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.books.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound, fmt.Sprintf("book not found for id %d", id))
		}
		return nil, wrapErr(ErrOperationFailed, "book lookup failed", err)
	}
	return b, nil
}

func (s *service) Detail(ctx context.Context, email string, id int64) (*model.Book, error) {
	if _, err := s.findUser(ctx, email); err != nil {
		return nil, err
	}
	return s.findBook(ctx, id)
}

func (s *service) List(ctx context.Context, email string, q ListQuery) (*Paged, error) {
	if _, err := s.findUser(ctx, email); err != nil {
		return nil, err
	}
	if q.Size <= 0 {
		q.Size = 10
	}
	if q.Page < 0 {
		q.Page = 0
	}
	books, total, err := s.books.List(ctx, bookrepo.ListParams{
		Page:      q.Page,
		Size:      q.Size,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Search:    q.Search,
	})
	if err != nil {
		return nil, wrapErr(ErrOperationFailed, "error fetching books", err)
	}
	return pageOf(books, q.Page, q.Size, total), nil
}

func (s *service) Search(ctx context.Context, email string, term string, page, size int) (*Paged, error) {
	if _, err := s.findUser(ctx, email); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 10
	}
	if page < 0 {
		page = 0
	}
	books, total, err := s.books.SearchByTitleOrAuthor(ctx, term, page, size)
	if err != nil {
		return nil, wrapErr(ErrOperationFailed, "error searching books", err)
	}
	return pageOf(books, page, size, total), nil
}

func pageOf(books []model.Book, page, size int, total int64) *Paged {
	totalPages := total / int64(size)
	if total%int64(size) != 0 {
		totalPages++
	}
	return &Paged{
		Content:       books,
		PageNumber:    page,
		PageSize:      size,
		TotalPages:    totalPages,
		TotalElements: total,
	}
}

func (s *service) Delete(ctx context.Context, email string, id int64) error {
	if _, err := s.findUser(ctx, email); err != nil {
		return err
	}
	b, err := s.findBook(ctx, id)
	if err != nil {
		return err
	}
	if b.BorrowedCopies > 0 {
		return makeErr(ErrNotAllowed, "cannot delete book with borrowed copies; return all copies before deletion")
	}
	if err := s.books.Delete(ctx, id); err != nil {
		return wrapErr(ErrOperationFailed, fmt.Sprintf("error deleting book (ID: %d)", id), err)
	}
	return nil
}

func (s *service) Borrow(ctx context.Context, email string, bookID, count int64, idemKey string) (*model.Book, error) {
	return s.mutate(ctx, email, bookID, count, idemKey, model.TxnBorrow)
}

func (s *service) Return(ctx context.Context, email string, bookID, count int64, idemKey string) (*model.Book, error) {
	return s.mutate(ctx, email, bookID, count, idemKey, model.TxnReturn)
}

func (s *service) Purchase(ctx context.Context, email string, bookID, count int64, idemKey string) (*model.Book, error) {
	return s.mutate(ctx, email, bookID, count, idemKey, model.TxnPurchase)
}

// mutate is the shared unit of work for the three inventory operations:
// lock the book row, apply the pure transition, persist the counters and the
// ledger entry, commit. Everything between BeginTx and Commit rolls back as
// one on any failure.
func (s *service) mutate(ctx context.Context, email string, bookID, count int64, idemKey string, kind model.TransactionType) (*model.Book, error) {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, makeErr(ErrInvalidArgument, fmt.Sprintf("%s count must be greater than 0", kind))
	}
	if err := s.guardDuplicate(ctx, user.ID, bookID, idemKey, kind); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapErr(ErrOperationFailed, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	book, err := s.books.FindByIDForUpdate(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = makeErr(ErrBookNotFound, fmt.Sprintf("book not found for id %d", bookID))
			return nil, err
		}
		err = wrapErr(ErrOperationFailed, "book lookup failed", err)
		return nil, err
	}

	updated, err := applyInventory(*book, count, kind)
	if err != nil {
		return nil, err
	}

	if err = s.books.UpdateCounters(ctx, tx, updated); err != nil {
		err = wrapErr(ErrOperationFailed, fmt.Sprintf("error persisting book (ID: %d)", bookID), err)
		return nil, err
	}

	switch kind {
	case model.TxnBorrow, model.TxnPurchase:
		_, err = s.ledger.Record(ctx, tx, user.ID, book.ID, kind, ledgerAmount(*book, count, kind))
	case model.TxnReturn:
		_, err = s.ledger.ReconcileReturn(ctx, tx, user.ID, book.ID)
	}
	if err != nil {
		err = wrapErr(ErrOperationFailed, fmt.Sprintf("error recording %s transaction", kind), err)
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = wrapErr(ErrOperationFailed, "commit failed", err)
		return nil, err
	}
	return &updated, nil
}

// ledgerAmount is the money recorded on one ledger entry. Borrowing is free;
// a purchase records the unit price scaled by the number of copies.
func ledgerAmount(b model.Book, count int64, kind model.TransactionType) decimal.Decimal {
	if kind == model.TxnPurchase {
		return b.UnitPrice.Mul(decimal.NewFromInt(count))
	}
	return decimal.Zero
}

func (s *service) guardDuplicate(ctx context.Context, userID, bookID int64, idemKey string, kind model.TransactionType) error {
	if s.cache == nil || idemKey == "" {
		return nil
	}
	key := fmt.Sprintf("op:%s:%d:%d:%s", kind, userID, bookID, idemKey)
	ok, err := s.cache.SetIdempotency(ctx, key)
	if err != nil {
		return wrapErr(ErrOperationFailed, "idempotency check failed", err)
	}
	if !ok {
		return makeErr(ErrDuplicateRequest, "duplicate request")
	}
	return nil
}
