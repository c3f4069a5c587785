// cmd/api/handlers.go
// This file contains all HTTP request handlers for the books resource.
// Each handler is a method on *applicationDependencies so it has access
// to the logger and database models.
package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aoideee/livros-api/internal/data"
	"github.com/aoideee/livros-api/internal/validator"
)

// createBookHandler handles POST /cadastrar_livro.
// The body is validated before anything touches the database; on success the
// response carries a confirmation naming the assigned id and the book name.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var input data.CreateBookInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	if data.ValidateBook(v, &input); !v.Valid() {
		app.failedValidationResponse(w, r, data.MissingFieldsMessage(v))
		return
	}

	book := &data.Book{
		Name:            input.Name,
		Author:          input.Author,
		PublicationYear: *input.PublicationYear,
		Categories:      input.Categories,
	}

	err = app.models.Books.Insert(r.Context(), book)
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	app.logger.Info("book registered", "id", book.ID, "name", book.Name)

	message := fmt.Sprintf("book registered | ID: %d | Name: %s", book.ID, book.Name)
	err = app.writeJSON(w, http.StatusOK, envelope{"message": message}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// listBooksHandler handles GET /listar_livros.
// Every book is returned, newest first.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	books, err := app.models.Books.GetAll(r.Context())
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"books": books}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateBookHandler handles PATCH /atualizar_livro.
// The body names the target id and replaces every mutable field.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	var input data.UpdateBookInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if input.ID < 1 {
		app.badRequestResponse(w, r, errors.New("body must contain a positive id"))
		return
	}

	book, err := app.models.Books.Update(r.Context(), input)
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler handles DELETE /deletar_livro/?id=N and responds with
// the row that was removed.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDQuery(r.URL.Query())
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Delete(r.Context(), id)
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	app.logger.Info("book deleted", "id", book.ID)

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBookHandler handles GET /buscar_livro_id/?id=N.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDQuery(r.URL.Query())
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	book, err := app.models.Books.Get(r.Context(), id)
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// searchByAuthorHandler handles GET /buscar_livro_autor/?author=S.
// No match is an empty list, not an error.
func (app *applicationDependencies) searchByAuthorHandler(w http.ResponseWriter, r *http.Request) {
	author, err := app.readQuery(r.URL.Query(), "author")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	books, err := app.models.Books.FindByAuthor(r.Context(), author)
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"books": books}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// searchByCategoryHandler handles GET /buscar_livro_categoria/?categoria=S.
func (app *applicationDependencies) searchByCategoryHandler(w http.ResponseWriter, r *http.Request) {
	category, err := app.readQuery(r.URL.Query(), "categoria")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	books, err := app.models.Books.FindByCategory(r.Context(), category)
	if err != nil {
		app.modelErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"books": books}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// healthcheckHandler handles GET /v1/healthcheck.
func (app *applicationDependencies) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.db.PingContext(r.Context()); err != nil {
		app.unavailableResponse(w, r, err)
		return
	}

	env := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": app.config.Global.Environment,
			"version":     appVersion,
		},
	}
	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
