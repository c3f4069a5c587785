package main

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/livros-api/internal/config"
	"github.com/aoideee/livros-api/internal/data"
)

var bookColumns = []string{"id", "name", "author", "publication_year", "categories", "created_at", "updated_at"}

func newTestApp(t *testing.T) (*applicationDependencies, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	app := &applicationDependencies{
		config: &config.Config{Global: config.Global{Environment: "testing"}},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		models: data.NewModels(db),
		db:     db,
	}
	return app, mock
}

func doRequest(t *testing.T, app *applicationDependencies, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	app.routes().ServeHTTP(rec, req)
	return rec
}

type bookResponse struct {
	Book  data.Book `json:"book"`
	Error string    `json:"error"`
}

type booksResponse struct {
	Books []data.Book `json:"books"`
}

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

var (
	created = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	duneRow = []driver.Value{int64(1), "Dune", "Frank Herbert", int64(1965), []byte(`{scifi}`), created, nil}
)

func TestCreateBookHandler(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`INSERT INTO books`).
		WithArgs("Dune", "Frank Herbert", 1965, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), created))

	rec := doRequest(t, app, http.MethodPost, "/cadastrar_livro",
		`{"name":"Dune","author":"Frank Herbert","publication_year":1965,"categories":["scifi"]}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[messageResponse](t, rec)
	assert.Contains(t, resp.Message, "ID: 42")
	assert.Contains(t, resp.Message, "Dune")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookHandler_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "blank name and author",
			body: `{"name":"  ","author":"","publication_year":1965,"categories":["scifi"]}`,
			want: "could not register the book: the fields [Name, Author] must be filled in",
		},
		{
			name: "empty categories",
			body: `{"name":"Dune","author":"Frank Herbert","publication_year":1965,"categories":[]}`,
			want: "could not register the book: the fields [Categories] must be filled in",
		},
		{
			name: "missing year",
			body: `{"name":"Dune","author":"Frank Herbert","categories":["scifi"]}`,
			want: "could not register the book: the fields [Publication Year] must be filled in",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app, mock := newTestApp(t)

			rec := doRequest(t, app, http.MethodPost, "/cadastrar_livro", tc.body)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, tc.want, decode[messageResponse](t, rec).Error)
			assert.NoError(t, mock.ExpectationsWereMet(), "no statement may run on a validation failure")
		})
	}
}

func TestCreateBookHandler_BadBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"name":`},
		{"unknown field", `{"nome":"Dune"}`},
		{"wrong type", `{"publication_year":"1965"}`},
		{"two values", `{"name":"a"}{"name":"b"}`},
		{"empty", ``},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			rec := doRequest(t, app, http.MethodPost, "/cadastrar_livro", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateBookHandler_Duplicate(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`INSERT INTO books`).WillReturnError(&pq.Error{Code: "23505"})

	rec := doRequest(t, app, http.MethodPost, "/cadastrar_livro",
		`{"name":"Dune","author":"Frank Herbert","publication_year":1965,"categories":["scifi"]}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListBooksHandler(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`FROM books ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(bookColumns).
			AddRow(int64(2), "Emma", "Jane Austen", int64(1815), []byte(`{romance}`), created.Add(time.Minute), nil).
			AddRow(duneRow...))

	rec := doRequest(t, app, http.MethodGet, "/listar_livros", "")

	require.Equal(t, http.StatusOK, rec.Code)
	books := decode[booksResponse](t, rec).Books
	require.Len(t, books, 2)
	assert.Equal(t, "Emma", books[0].Name)
	assert.Equal(t, "Dune", books[1].Name)
}

func TestListBooksHandler_Empty(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`FROM books ORDER BY`).WillReturnRows(sqlmock.NewRows(bookColumns))

	rec := doRequest(t, app, http.MethodGet, "/listar_livros", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"books":[]}`, rec.Body.String())
}

func TestListBooksHandler_HidesDriverErrors(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`FROM books`).WillReturnError(errors.New("pq: password authentication failed for user books"))

	rec := doRequest(t, app, http.MethodGet, "/listar_livros", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestShowBookHandler(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(bookColumns).AddRow(duneRow...))

	rec := doRequest(t, app, http.MethodGet, "/buscar_livro_id/?id=1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	book := decode[bookResponse](t, rec).Book
	assert.Equal(t, int64(1), book.ID)
	assert.Equal(t, "Frank Herbert", book.Author)
	assert.Equal(t, created, book.CreatedAt)
}

func TestShowBookHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing id", "/buscar_livro_id/", http.StatusBadRequest},
		{"non numeric id", "/buscar_livro_id/?id=abc", http.StatusBadRequest},
		{"zero id", "/buscar_livro_id/?id=0", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			rec := doRequest(t, app, http.MethodGet, tc.target, "")
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestShowBookHandler_NotFound(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`WHERE id`).WithArgs(int64(9)).WillReturnRows(sqlmock.NewRows(bookColumns))

	rec := doRequest(t, app, http.MethodGet, "/buscar_livro_id/?id=9", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateBookHandler(t *testing.T) {
	app, mock := newTestApp(t)
	updated := created.Add(time.Hour)

	mock.ExpectQuery(`UPDATE books`).
		WithArgs("Dune Messiah", "Frank Herbert", 1969, sqlmock.AnyArg(), sqlmock.AnyArg(), int64(1)).
		WillReturnRows(sqlmock.NewRows(bookColumns).
			AddRow(int64(1), "Dune Messiah", "Frank Herbert", int64(1969), []byte(`{scifi,sequel}`), created, updated))

	rec := doRequest(t, app, http.MethodPatch, "/atualizar_livro",
		`{"id":1,"name":"Dune Messiah","author":"Frank Herbert","publication_year":1969,"categories":["scifi","sequel"]}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	book := decode[bookResponse](t, rec).Book
	assert.Equal(t, int64(1), book.ID)
	assert.Equal(t, "Dune Messiah", book.Name)
	assert.Equal(t, 1969, book.PublicationYear)
	assert.Len(t, book.Categories, 2)
	assert.Equal(t, created, book.CreatedAt)
	require.NotNil(t, book.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookHandler_NotFound(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`UPDATE books`).WillReturnRows(sqlmock.NewRows(bookColumns))

	rec := doRequest(t, app, http.MethodPatch, "/atualizar_livro",
		`{"id":77,"name":"x","author":"y","publication_year":2000,"categories":["z"]}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateBookHandler_MissingID(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(t, app, http.MethodPatch, "/atualizar_livro", `{"name":"x","author":"y"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateBookHandler_ValueTooLong(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`UPDATE books`).WillReturnError(&pq.Error{Code: "22001"})

	rec := doRequest(t, app, http.MethodPatch, "/atualizar_livro",
		`{"id":1,"name":"`+strings.Repeat("a", 65)+`","author":"y","publication_year":2000,"categories":["z"]}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDeleteBookHandler(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`DELETE FROM books`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(bookColumns).AddRow(duneRow...))

	rec := doRequest(t, app, http.MethodDelete, "/deletar_livro/?id=1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dune", decode[bookResponse](t, rec).Book.Name)
}

func TestDeleteBookHandler_NotFound(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`DELETE FROM books`).WithArgs(int64(3)).WillReturnRows(sqlmock.NewRows(bookColumns))

	rec := doRequest(t, app, http.MethodDelete, "/deletar_livro/?id=3", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchByAuthorHandler(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`WHERE author LIKE`).
		WithArgs("%Tol%").
		WillReturnRows(sqlmock.NewRows(bookColumns).
			AddRow(int64(5), "The Hobbit", "J.R.R. Tolkien", int64(1937), []byte(`{fantasy}`), created, nil))

	rec := doRequest(t, app, http.MethodGet, "/buscar_livro_autor/?author=Tol", "")

	require.Equal(t, http.StatusOK, rec.Code)
	books := decode[booksResponse](t, rec).Books
	require.Len(t, books, 1)
	assert.Equal(t, "J.R.R. Tolkien", books[0].Author)
}

func TestSearchByAuthorHandler_NoMatch(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`WHERE author LIKE`).WithArgs("%Zzz%").WillReturnRows(sqlmock.NewRows(bookColumns))

	rec := doRequest(t, app, http.MethodGet, "/buscar_livro_autor/?author=Zzz", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"books":[]}`, rec.Body.String())
}

func TestSearchByAuthorHandler_MissingParam(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(t, app, http.MethodGet, "/buscar_livro_autor/", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchByCategoryHandler(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(regexp.QuoteMeta(`unnest(categories)`)).
		WithArgs("%fic%").
		WillReturnRows(sqlmock.NewRows(bookColumns).
			AddRow(int64(1), "Dune", "Frank Herbert", int64(1965), []byte(`{"science fiction"}`), created, nil))

	rec := doRequest(t, app, http.MethodGet, "/buscar_livro_categoria/?categoria=fic", "")

	require.Equal(t, http.StatusOK, rec.Code)
	books := decode[booksResponse](t, rec).Books
	require.Len(t, books, 1)
	require.Len(t, books[0].Categories, 1)
	assert.Equal(t, "science fiction", *books[0].Categories[0])
}

func TestSearchByCategoryHandler_MissingParam(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(t, app, http.MethodGet, "/buscar_livro_categoria/?category=fic", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutes_NotFoundAndMethodNotAllowed(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(t, app, http.MethodGet, "/livros", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = doRequest(t, app, http.MethodGet, "/cadastrar_livro", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthcheckHandler(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doRequest(t, app, http.MethodGet, "/v1/healthcheck", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"status":"available","system_info":{"environment":"testing","version":"`+appVersion+`"}}`,
		rec.Body.String())
}

// Register, list, fetch, delete, then fetch again.
func TestBookLifecycle(t *testing.T) {
	app, mock := newTestApp(t)

	mock.ExpectQuery(`INSERT INTO books`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), created))
	mock.ExpectQuery(`FROM books ORDER BY`).
		WillReturnRows(sqlmock.NewRows(bookColumns).AddRow(duneRow...))
	mock.ExpectQuery(`FROM books WHERE id`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(bookColumns).AddRow(duneRow...))
	mock.ExpectQuery(`DELETE FROM books`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(bookColumns).AddRow(duneRow...))
	mock.ExpectQuery(`FROM books WHERE id`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(bookColumns))

	rec := doRequest(t, app, http.MethodPost, "/cadastrar_livro",
		`{"name":"Dune","author":"Frank Herbert","publication_year":1965,"categories":["scifi"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[messageResponse](t, rec).Message, "Dune")

	rec = doRequest(t, app, http.MethodGet, "/listar_livros", "")
	require.Equal(t, http.StatusOK, rec.Code)
	books := decode[booksResponse](t, rec).Books
	require.NotEmpty(t, books)
	assert.Equal(t, "Dune", books[0].Name)

	rec = doRequest(t, app, http.MethodGet, "/buscar_livro_id/?id=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, books[0], decode[bookResponse](t, rec).Book)

	rec = doRequest(t, app, http.MethodDelete, "/deletar_livro/?id=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dune", decode[bookResponse](t, rec).Book.Name)

	rec = doRequest(t, app, http.MethodGet, "/buscar_livro_id/?id=1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}
