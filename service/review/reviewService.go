package reviewsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookhub/model"
)

type ErrCode string

const (
	ErrUserNotFound   ErrCode = "USER_NOT_FOUND"
	ErrReviewNotFound ErrCode = "REVIEW_NOT_FOUND"
	ErrBookNotFound   ErrCode = "BOOK_NOT_FOUND"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	Insert(ctx context.Context, rv *model.Review) error
	FindByID(ctx context.Context, id int64) (*model.Review, error)
	List(ctx context.Context) ([]model.Review, error)
	Update(ctx context.Context, rv *model.Review) error
	Delete(ctx context.Context, id int64) error
}

type UserRepo interface {
	ByEmail(ctx context.Context, email string) (*model.User, error)
}

type BookRepo interface {
	FindByID(ctx context.Context, id int64) (*model.Book, error)
}

type Input struct {
	Rating   int
	Comments string
}

type Service interface {
	Create(ctx context.Context, email string, bookID int64, in Input) (*model.Review, error)
	Get(ctx context.Context, email string, id int64) (*model.Review, error)
	List(ctx context.Context) ([]model.Review, error)
	Update(ctx context.Context, email string, id int64, in Input) (*model.Review, error)
	Delete(ctx context.Context, email string, id int64) error
}

type service struct {
	r     Repo
	users UserRepo
	books BookRepo
}

func New(r Repo, users UserRepo, books BookRepo) Service {
	return &service{r: r, users: users, books: books}
}

func (s *service) findUser(ctx context.Context, email string) (*model.User, error) {
	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return nil, makeErr(ErrUserNotFound)
	}
	return u, nil
}

func (s *service) Create(ctx context.Context, email string, bookID int64, in Input) (*model.Review, error) {
	u, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if _, err := s.books.FindByID(ctx, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}
	rv := &model.Review{
		UserID:   u.ID,
		BookID:   bookID,
		Rating:   in.Rating,
		Comments: in.Comments,
	}
	if err := s.r.Insert(ctx, rv); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return rv, nil
}

func (s *service) Get(ctx context.Context, email string, id int64) (*model.Review, error) {
	if _, err := s.findUser(ctx, email); err != nil {
		return nil, err
	}
	rv, err := s.r.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrReviewNotFound)
		}
		return nil, err
	}
	return rv, nil
}

func (s *service) List(ctx context.Context) ([]model.Review, error) {
	return s.r.List(ctx)
}

func (s *service) Update(ctx context.Context, email string, id int64, in Input) (*model.Review, error) {
	if _, err := s.findUser(ctx, email); err != nil {
		return nil, err
	}
	rv, err := s.r.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrReviewNotFound)
		}
		return nil, err
	}
	rv.Rating = in.Rating
	rv.Comments = in.Comments
	if err := s.r.Update(ctx, rv); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return rv, nil
}

func (s *service) Delete(ctx context.Context, email string, id int64) error {
	if _, err := s.findUser(ctx, email); err != nil {
		return err
	}
	if _, err := s.r.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrReviewNotFound)
		}
		return err
	}
	return s.r.Delete(ctx, id)
}
