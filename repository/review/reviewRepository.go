package reviewrepo

import (
	"context"
	"database/sql"

	"bookhub/model"
)

type Repo interface {
	Insert(ctx context.Context, rv *model.Review) error
	FindByID(ctx context.Context, id int64) (*model.Review, error)
	List(ctx context.Context) ([]model.Review, error)
	Update(ctx context.Context, rv *model.Review) error
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, rv *model.Review) error {
	const q = `
INSERT INTO reviews (user_id, book_id, rating, comments)
VALUES ($1,$2,$3,$4)
RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, rv.UserID, rv.BookID, rv.Rating, rv.Comments).
		Scan(&rv.ID, &rv.CreatedAt)
}

func (r *repo) FindByID(ctx context.Context, id int64) (*model.Review, error) {
	const q = `
SELECT id, user_id, book_id, rating, comments, created_at
FROM reviews
WHERE id=$1`
	var rv model.Review
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&rv.ID, &rv.UserID, &rv.BookID, &rv.Rating, &rv.Comments, &rv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *repo) List(ctx context.Context) ([]model.Review, error) {
	const q = `
SELECT id, user_id, book_id, rating, comments, created_at
FROM reviews
ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.BookID, &rv.Rating, &rv.Comments, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *repo) Update(ctx context.Context, rv *model.Review) error {
	const q = `UPDATE reviews SET rating=$2, comments=$3 WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, rv.ID, rv.Rating, rv.Comments)
	return err
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id=$1`, id)
	return err
}
