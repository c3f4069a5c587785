// internal/data/models.go
package data

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// queryTimeout bounds every statement so a hung connection cannot hold a
// request forever.
const queryTimeout = 3 * time.Second

// Models is a top-level container that groups all database model types together.
// It is passed around the application via applicationDependencies so every handler
// has access to the database without importing sql directly.
type Models struct {
	Books BookModel // Handles all database operations for the books table
}

// NewModels constructs a Models value wired up to the given database connection pool.
func NewModels(db *sql.DB) Models {
	return Models{
		Books: BookModel{DB: db},
	}
}

// BookModel wraps a *sql.DB connection and provides methods for
// creating, reading, updating, deleting and searching book records.
type BookModel struct {
	DB *sql.DB // Shared database connection pool
}

// bookColumns is the column list shared by every statement that returns
// whole rows; scanBook reads them in the same order.
const bookColumns = `id, name, author, publication_year, categories, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*Book, error) {
	var book Book
	err := row.Scan(
		&book.ID,
		&book.Name,
		&book.Author,
		&book.PublicationYear,
		&book.Categories,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	book.CreatedAt = book.CreatedAt.UTC()
	if book.UpdatedAt != nil {
		t := book.UpdatedAt.UTC()
		book.UpdatedAt = &t
	}
	return &book, nil
}

// Insert adds a new book record to the database.
// The database assigns id and created_at; both are written back into book
// and updated_at is left null.
func (m BookModel) Insert(ctx context.Context, book *Book) error {
	query := `
		INSERT INTO books (name, author, publication_year, categories, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	args := []any{
		book.Name,
		book.Author,
		book.PublicationYear,
		book.Categories,
		time.Now().UTC(),
	}

	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&book.ID, &book.CreatedAt)
	if err != nil {
		return translateError(err)
	}
	book.CreatedAt = book.CreatedAt.UTC()
	book.UpdatedAt = nil
	return nil
}

// Get retrieves a single book by its primary key.
// Returns ErrRecordNotFound if no book with the given id exists.
func (m BookModel) Get(ctx context.Context, id int64) (*Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	book, err := scanBook(m.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return book, nil
}

// GetAll returns every book, newest first. The result is unbounded.
func (m BookModel) GetAll(ctx context.Context) ([]*Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY created_at DESC, id DESC`
	return m.list(ctx, query)
}

// FindByAuthor returns the books whose author contains fragment, using the
// database's default (case-sensitive) LIKE comparison.
func (m BookModel) FindByAuthor(ctx context.Context, fragment string) ([]*Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE author LIKE $1
		ORDER BY created_at DESC, id DESC`
	return m.list(ctx, query, containsPattern(fragment))
}

// FindByCategory returns the books where at least one element of
// categories contains fragment.
func (m BookModel) FindByCategory(ctx context.Context, fragment string) ([]*Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE EXISTS (SELECT 1 FROM unnest(categories) AS category WHERE category LIKE $1)
		ORDER BY created_at DESC, id DESC`
	return m.list(ctx, query, containsPattern(fragment))
}

func (m BookModel) list(ctx context.Context, query string, args ...any) ([]*Book, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	// Always close the result set when we are done to free the database connection.
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, translateError(err)
		}
		books = append(books, book)
	}

	if err = rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return books, nil
}

// Update overwrites name, author, publication_year and categories of the
// book with input.ID and stamps updated_at. The values are not validated.
// Returns ErrRecordNotFound if no such book exists.
func (m BookModel) Update(ctx context.Context, input UpdateBookInput) (*Book, error) {
	if input.ID < 1 {
		return nil, ErrRecordNotFound
	}

	query := `
		UPDATE books
		SET name = $1, author = $2, publication_year = $3, categories = $4, updated_at = $5
		WHERE id = $6
		RETURNING ` + bookColumns

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	args := []any{
		input.Name,
		input.Author,
		input.PublicationYear,
		input.Categories,
		time.Now().UTC(),
		input.ID,
	}

	book, err := scanBook(m.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translateError(err)
	}
	return book, nil
}

// Delete removes the book with the given id and returns the removed row.
// Returns ErrRecordNotFound if no matching record exists.
func (m BookModel) Delete(ctx context.Context, id int64) (*Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	query := `DELETE FROM books WHERE id = $1 RETURNING ` + bookColumns

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	book, err := scanBook(m.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return book, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern wraps fragment in LIKE wildcards. Wildcards inside the
// fragment are escaped so they match literally.
func containsPattern(fragment string) string {
	return "%" + likeEscaper.Replace(fragment) + "%"
}
