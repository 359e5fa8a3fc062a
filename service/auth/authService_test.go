package authsvc

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"bookhub/model"
	"bookhub/util/hash"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type userRepoMock struct {
	createFn  func(ctx context.Context, u *model.User) error
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
}

func (m *userRepoMock) Create(ctx context.Context, u *model.User) error {
	return m.createFn(ctx, u)
}
func (m *userRepoMock) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.byEmailFn(ctx, email)
}

func TestRegister_Success(t *testing.T) {
	var created *model.User
	ur := &userRepoMock{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 7
			u.CreatedAt = time.Now()
			created = u
			return nil
		},
	}
	s := New(ur, "test-secret")

	u, token, err := s.Register(context.Background(), model.RegisterReq{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "Ada@Example.com",
		Username:  "ada",
		Password:  "s3cret!!",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, int64(7), u.ID)
	require.Equal(t, "ada@example.com", created.Email, "email is stored lowercased")
	require.Equal(t, model.RoleUser, created.Role)
	require.NotEqual(t, "s3cret!!", created.PasswordHash)
	require.True(t, hash.Check(created.PasswordHash, "s3cret!!"))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ur := &userRepoMock{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{
				Code:           "23505",
				ConstraintName: "users_email_key",
			}
		},
	}
	s := New(ur, "test-secret")

	_, _, err := s.Register(context.Background(), model.RegisterReq{
		Email:    "ada@example.com",
		Username: "ada",
		Password: "s3cret!!",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ur := &userRepoMock{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{
				Code:           "23505",
				ConstraintName: "users_username_key",
			}
		},
	}
	s := New(ur, "test-secret")

	_, _, err := s.Register(context.Background(), model.RegisterReq{
		Email:    "other@example.com",
		Username: "ada",
		Password: "s3cret!!",
	})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin_Success(t *testing.T) {
	hashed, err := hash.HashPassword("s3cret!!")
	require.NoError(t, err)

	ur := &userRepoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{
				ID:           7,
				Email:        email,
				Role:         model.RoleUser,
				PasswordHash: hashed,
			}, nil
		},
	}
	s := New(ur, "test-secret")

	u, token, err := s.Login(context.Background(), model.LoginReq{
		Email:    "ada@example.com",
		Password: "s3cret!!",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, int64(7), u.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	hashed, err := hash.HashPassword("s3cret!!")
	require.NoError(t, err)

	ur := &userRepoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: email, PasswordHash: hashed}, nil
		},
	}
	s := New(ur, "test-secret")

	_, _, err = s.Login(context.Background(), model.LoginReq{
		Email:    "ada@example.com",
		Password: "wrong",
	})
	require.ErrorIs(t, err, ErrInvalidCreds)
}

func TestLogin_UnknownEmail(t *testing.T) {
	ur := &userRepoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, sql.ErrNoRows
		},
	}
	s := New(ur, "test-secret")

	_, _, err := s.Login(context.Background(), model.LoginReq{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	require.ErrorIs(t, err, ErrInvalidCreds)
}
