package bookrepo

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"bookhub/model"
)

// ListParams controls paged catalogue listing. SortBy is matched against a
// column whitelist; anything else falls back to title.
type ListParams struct {
	Page      int
	Size      int
	SortBy    string
	SortOrder string
	Search    string
}

type Repo interface {
	Insert(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error

	FindByID(ctx context.Context, id int64) (*model.Book, error)
	FindByTitleAndAuthor(ctx context.Context, title, author string) (*model.Book, error)

	// FindByIDForUpdate locks the book row for the duration of tx. All
	// inventory mutations go through this lock.
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error)
	UpdateCounters(ctx context.Context, tx *sql.Tx, b model.Book) error

	List(ctx context.Context, p ListParams) ([]model.Book, int64, error)
	SearchByTitleOrAuthor(ctx context.Context, term string, page, size int) ([]model.Book, int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const bookColumns = `id, isbn, title, edition, description, genre, author_name,
       publisher_name, publication_year, available_copies, borrowed_copies,
       unit_price, status`

func scanBook(row interface{ Scan(...any) error }, b *model.Book) error {
	return row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Edition, &b.Description, &b.Genre,
		&b.AuthorName, &b.PublisherName, &b.PublicationYear,
		&b.AvailableCopies, &b.BorrowedCopies, &b.UnitPrice, &b.Status)
}

func (r *repo) Insert(ctx context.Context, b *model.Book) error {
	const q = `
INSERT INTO books (isbn, title, edition, description, genre, author_name,
                   publisher_name, publication_year, available_copies,
                   borrowed_copies, unit_price, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
RETURNING id`
	return r.db.QueryRowContext(ctx, q,
		b.ISBN, b.Title, b.Edition, b.Description, b.Genre, b.AuthorName,
		b.PublisherName, b.PublicationYear, b.AvailableCopies,
		b.BorrowedCopies, b.UnitPrice, b.Status,
	).Scan(&b.ID)
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	const q = `
UPDATE books
SET isbn=$2, title=$3, edition=$4, description=$5, genre=$6, author_name=$7,
    publisher_name=$8, publication_year=$9, available_copies=$10,
    borrowed_copies=$11, unit_price=$12, status=$13
WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.ISBN, b.Title, b.Edition, b.Description, b.Genre, b.AuthorName,
		b.PublisherName, b.PublicationYear, b.AvailableCopies,
		b.BorrowedCopies, b.UnitPrice, b.Status)
	return err
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id=$1`, id)
	return err
}

func (r *repo) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	var b model.Book
	err := scanBook(r.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id=$1`, id), &b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) FindByTitleAndAuthor(ctx context.Context, title, author string) (*model.Book, error) {
	var b model.Book
	err := scanBook(r.db.QueryRowContext(ctx, `
SELECT `+bookColumns+`
FROM books
WHERE lower(title)=lower($1) AND lower(author_name)=lower($2)`, title, author), &b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error) {
	var b model.Book
	err := scanBook(tx.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id=$1 FOR UPDATE`, id), &b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) UpdateCounters(ctx context.Context, tx *sql.Tx, b model.Book) error {
	const q = `
UPDATE books
SET available_copies=$2, borrowed_copies=$3, status=$4
WHERE id=$1`
	_, err := tx.ExecContext(ctx, q, b.ID, b.AvailableCopies, b.BorrowedCopies, b.Status)
	return err
}

var sortColumns = map[string]string{
	"title":            "title",
	"genre":            "genre",
	"author":           "author_name",
	"publication_year": "publication_year",
	"unit_price":       "unit_price",
	"id":               "id",
}

func (r *repo) List(ctx context.Context, p ListParams) ([]model.Book, int64, error) {
	col, ok := sortColumns[strings.ToLower(p.SortBy)]
	if !ok {
		col = "title"
	}
	dir := "ASC"
	if strings.EqualFold(p.SortOrder, "desc") {
		dir = "DESC"
	}

	where := ""
	args := []any{}
	if p.Search != "" {
		where = `WHERE title ILIKE '%' || $1 || '%'`
		args = append(args, p.Search)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, p.Size, p.Page*p.Size)
	limitPos := len(args) - 1
	q := `SELECT ` + bookColumns + ` FROM books ` + where +
		` ORDER BY ` + col + ` ` + dir +
		` LIMIT $` + strconv.Itoa(limitPos) + ` OFFSET $` + strconv.Itoa(limitPos+1)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *repo) SearchByTitleOrAuthor(ctx context.Context, term string, page, size int) ([]model.Book, int64, error) {
	where := ""
	args := []any{}
	if term != "" {
		where = `WHERE title ILIKE '%' || $1 || '%' OR author_name ILIKE '%' || $1 || '%'`
		args = append(args, term)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, size, page*size)
	limitPos := len(args) - 1
	q := `SELECT ` + bookColumns + ` FROM books ` + where +
		` ORDER BY title ASC LIMIT $` + strconv.Itoa(limitPos) + ` OFFSET $` + strconv.Itoa(limitPos+1)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}
