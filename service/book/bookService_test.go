package booksvc

import (
	"context"
	"database/sql"
	"testing"

	"bookhub/model"
	bookrepo "bookhub/repository/book"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type bookRepoMock struct {
	insertFn          func(ctx context.Context, b *model.Book) error
	updateFn          func(ctx context.Context, b *model.Book) error
	deleteFn          func(ctx context.Context, id int64) error
	findByIDFn        func(ctx context.Context, id int64) (*model.Book, error)
	findByTitleFn     func(ctx context.Context, title, author string) (*model.Book, error)
	findForUpdateFn   func(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error)
	updateCountersFn  func(ctx context.Context, tx *sql.Tx, b model.Book) error
	listFn            func(ctx context.Context, p bookrepo.ListParams) ([]model.Book, int64, error)
	searchFn          func(ctx context.Context, term string, page, size int) ([]model.Book, int64, error)
	deleteCalls       int
	updateCounterCall int
}

var _ BookRepo = (*bookRepoMock)(nil)

func (m *bookRepoMock) Insert(ctx context.Context, b *model.Book) error {
	return m.insertFn(ctx, b)
}
func (m *bookRepoMock) Update(ctx context.Context, b *model.Book) error {
	return m.updateFn(ctx, b)
}
func (m *bookRepoMock) Delete(ctx context.Context, id int64) error {
	m.deleteCalls++
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}
func (m *bookRepoMock) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	return m.findByIDFn(ctx, id)
}
func (m *bookRepoMock) FindByTitleAndAuthor(ctx context.Context, title, author string) (*model.Book, error) {
	if m.findByTitleFn == nil {
		return nil, sql.ErrNoRows
	}
	return m.findByTitleFn(ctx, title, author)
}
func (m *bookRepoMock) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error) {
	return m.findForUpdateFn(ctx, tx, id)
}
func (m *bookRepoMock) UpdateCounters(ctx context.Context, tx *sql.Tx, b model.Book) error {
	m.updateCounterCall++
	if m.updateCountersFn == nil {
		return nil
	}
	return m.updateCountersFn(ctx, tx, b)
}
func (m *bookRepoMock) List(ctx context.Context, p bookrepo.ListParams) ([]model.Book, int64, error) {
	return m.listFn(ctx, p)
}
func (m *bookRepoMock) SearchByTitleOrAuthor(ctx context.Context, term string, page, size int) ([]model.Book, int64, error) {
	return m.searchFn(ctx, term, page, size)
}

type userRepoMock struct {
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
}

func (m *userRepoMock) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return &model.User{ID: 7, Email: email, Role: model.RoleUser}, nil
	}
	return m.byEmailFn(ctx, email)
}

type ledgerMock struct {
	recordFn    func(ctx context.Context, tx *sql.Tx, userID, bookID int64, kind model.TransactionType, amount decimal.Decimal) (*model.Transaction, error)
	reconcileFn func(ctx context.Context, tx *sql.Tx, userID, bookID int64) (*model.Transaction, error)
}

func (m *ledgerMock) Record(ctx context.Context, tx *sql.Tx, userID, bookID int64, kind model.TransactionType, amount decimal.Decimal) (*model.Transaction, error) {
	if m.recordFn == nil {
		return &model.Transaction{}, nil
	}
	return m.recordFn(ctx, tx, userID, bookID, kind, amount)
}
func (m *ledgerMock) ReconcileReturn(ctx context.Context, tx *sql.Tx, userID, bookID int64) (*model.Transaction, error) {
	if m.reconcileFn == nil {
		return nil, nil
	}
	return m.reconcileFn(ctx, tx, userID, bookID)
}

type cacheMock struct {
	seen map[string]bool
}

func (m *cacheMock) SetIdempotency(ctx context.Context, key string) (bool, error) {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func TestBorrow_UserNotFound(t *testing.T) {
	users := &userRepoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, sql.ErrNoRows
		},
	}
	s := New(nil, &bookRepoMock{}, users, &ledgerMock{}, nil)

	_, err := s.Borrow(context.Background(), "ghost@example.com", 1, 1, "")
	require.Error(t, err)
	require.Equal(t, ErrUserNotFound, Code(err))
}

func TestBorrow_NonPositiveCountRejectedBeforeInventory(t *testing.T) {
	books := &bookRepoMock{}
	s := New(nil, books, &userRepoMock{}, &ledgerMock{}, nil)

	_, err := s.Borrow(context.Background(), "reader@example.com", 1, 0, "")
	require.Error(t, err)
	require.Equal(t, ErrInvalidArgument, Code(err))
	require.Zero(t, books.updateCounterCall)
}

func TestMutate_DuplicateRequestRejected(t *testing.T) {
	cache := &cacheMock{}
	s := New(nil, &bookRepoMock{}, &userRepoMock{}, &ledgerMock{}, cache).(*service)

	err := s.guardDuplicate(context.Background(), 7, 1, "abc-123", model.TxnBorrow)
	require.NoError(t, err)

	err = s.guardDuplicate(context.Background(), 7, 1, "abc-123", model.TxnBorrow)
	require.Error(t, err)
	require.Equal(t, ErrDuplicateRequest, Code(err))

	// a different key is a different request
	err = s.guardDuplicate(context.Background(), 7, 1, "abc-124", model.TxnBorrow)
	require.NoError(t, err)
}

func TestDelete_GuardedWhileCopiesBorrowed(t *testing.T) {
	books := &bookRepoMock{
		findByIDFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id, BorrowedCopies: 2, Status: model.BookAvailable}, nil
		},
	}
	s := New(nil, books, &userRepoMock{}, &ledgerMock{}, nil)

	err := s.Delete(context.Background(), "admin@example.com", 9)
	require.Error(t, err)
	require.Equal(t, ErrNotAllowed, Code(err))
	require.Zero(t, books.deleteCalls, "delete must never reach the store")
}

func TestDelete_Success(t *testing.T) {
	books := &bookRepoMock{
		findByIDFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id, BorrowedCopies: 0, Status: model.BookAvailable}, nil
		},
	}
	s := New(nil, books, &userRepoMock{}, &ledgerMock{}, nil)

	require.NoError(t, s.Delete(context.Background(), "admin@example.com", 9))
	require.Equal(t, 1, books.deleteCalls)
}

func TestCreate_DuplicateTitleAndAuthorRejected(t *testing.T) {
	books := &bookRepoMock{
		findByTitleFn: func(ctx context.Context, title, author string) (*model.Book, error) {
			return &model.Book{ID: 3, Title: title, AuthorName: author}, nil
		},
	}
	s := New(nil, books, &userRepoMock{}, &ledgerMock{}, nil)

	_, err := s.Create(context.Background(), "admin@example.com", BookInput{
		Title:      "Clean Code",
		AuthorName: "Robert C. Martin",
	})
	require.Error(t, err)
	require.Equal(t, ErrDuplicateBook, Code(err))
}

func TestCreate_NewCatalogueEntryStartsAvailable(t *testing.T) {
	var inserted model.Book
	books := &bookRepoMock{
		insertFn: func(ctx context.Context, b *model.Book) error {
			b.ID = 11
			inserted = *b
			return nil
		},
	}
	s := New(nil, books, &userRepoMock{}, &ledgerMock{}, nil)

	b, err := s.Create(context.Background(), "admin@example.com", BookInput{
		Title:       "Clean Code",
		AuthorName:  "Robert C. Martin",
		TotalCopies: 5,
		UnitPrice:   decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	require.Equal(t, int64(11), b.ID)
	require.Equal(t, int64(5), inserted.AvailableCopies)
	require.Zero(t, inserted.BorrowedCopies)
	require.Equal(t, model.BookAvailable, inserted.Status)
}

func TestLedgerAmount_ScalesWithCount(t *testing.T) {
	b := model.Book{UnitPrice: decimal.NewFromFloat(19.99)}

	tests := []struct {
		name  string
		count int64
		kind  model.TransactionType
		want  decimal.Decimal
	}{
		{"purchase of one records unit price", 1, model.TxnPurchase, decimal.NewFromFloat(19.99)},
		{"purchase amount scales with count", 4, model.TxnPurchase, decimal.NewFromFloat(79.96)},
		{"borrow records no charge", 4, model.TxnBorrow, decimal.Zero},
		{"return records no charge", 4, model.TxnReturn, decimal.Zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ledgerAmount(b, tt.count, tt.kind)
			require.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestDetail_BookNotFound(t *testing.T) {
	books := &bookRepoMock{
		findByIDFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return nil, sql.ErrNoRows
		},
	}
	s := New(nil, books, &userRepoMock{}, &ledgerMock{}, nil)

	_, err := s.Detail(context.Background(), "reader@example.com", 404)
	require.Error(t, err)
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestList_WrapsPagingMetadata(t *testing.T) {
	books := &bookRepoMock{
		listFn: func(ctx context.Context, p bookrepo.ListParams) ([]model.Book, int64, error) {
			require.Equal(t, 10, p.Size) // default page size
			return []model.Book{{ID: 1}, {ID: 2}}, 23, nil
		},
	}
	s := New(nil, books, &userRepoMock{}, &ledgerMock{}, nil)

	out, err := s.List(context.Background(), "reader@example.com", ListQuery{Page: 0})
	require.NoError(t, err)
	require.Len(t, out.Content, 2)
	require.Equal(t, int64(23), out.TotalElements)
	require.Equal(t, int64(3), out.TotalPages)
}
