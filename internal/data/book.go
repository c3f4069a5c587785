// Package data provides the data models and database interaction logic
// for the book catalogue.
package data

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/aoideee/livros-api/internal/validator"
	"github.com/lib/pq"
)

// Book represents a single book record stored in the database.
// It maps directly to a row in the "books" table.
type Book struct {
	ID              int64      `json:"id"`               // Unique identifier assigned by the database
	Name            string     `json:"name"`             // Title of the book, at most 64 characters
	Author          string     `json:"author"`           // Author name, at most 64 characters
	PublicationYear int        `json:"publication_year"` // Year the book was published
	Categories      Categories `json:"categories"`       // Genres or subjects; elements may be null
	CreatedAt       time.Time  `json:"created_at"`       // Set once, when the row is inserted
	UpdatedAt       *time.Time `json:"updated_at"`       // Set by every update, null until then
}

// Categories is the text[] column of a book. Postgres allows NULL array
// elements, so each entry is a pointer and a nil entry round-trips as null.
type Categories []*string

// NewCategories builds Categories from plain strings.
func NewCategories(values ...string) Categories {
	c := make(Categories, len(values))
	for i := range values {
		c[i] = &values[i]
	}
	return c
}

// Scan implements sql.Scanner.
func (c *Categories) Scan(src any) error {
	var raw []sql.NullString
	if err := pq.Array(&raw).Scan(src); err != nil {
		return err
	}

	out := make(Categories, len(raw))
	for i, s := range raw {
		if s.Valid {
			v := s.String
			out[i] = &v
		}
	}
	*c = out
	return nil
}

// Value implements driver.Valuer. A nil slice is stored as an empty array
// since the column is NOT NULL.
func (c Categories) Value() (driver.Value, error) {
	raw := make([]sql.NullString, len(c))
	for i, s := range c {
		if s != nil {
			raw[i] = sql.NullString{String: *s, Valid: true}
		}
	}
	return pq.Array(raw).Value()
}

// CreateBookInput holds the fields a client must supply when registering a
// new book. PublicationYear is a pointer so an absent year can be told
// apart from year zero.
type CreateBookInput struct {
	Name            string     `json:"name"`
	Author          string     `json:"author"`
	PublicationYear *int       `json:"publication_year"`
	Categories      Categories `json:"categories"`
}

// UpdateBookInput replaces every mutable field of the book identified by ID.
// There is no partial update: omitted fields are written as zero values.
type UpdateBookInput struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Author          string     `json:"author"`
	PublicationYear int        `json:"publication_year"`
	Categories      Categories `json:"categories"`
}

// missingField is the only failure ValidateBook records; the client sees it
// once, after the joined list of field names.
const missingField = "must be filled in"

// ValidateBook runs the create-time checks against input. Keys are the
// display names used in the message returned to the client.
func ValidateBook(v *validator.Validator, input *CreateBookInput) {
	v.Check(validator.NotBlank(input.Name), "Name", missingField)
	v.Check(validator.NotBlank(input.Author), "Author", missingField)
	v.Check(input.PublicationYear != nil, "Publication Year", missingField)
	v.Check(len(input.Categories) > 0, "Categories", missingField)
}

// MissingFieldsMessage turns the failures collected by ValidateBook into a
// single sentence naming every missing field.
func MissingFieldsMessage(v *validator.Validator) string {
	return fmt.Sprintf("could not register the book: the fields [%s] %s", strings.Join(v.Keys(), ", "), missingField)
}
