// cmd/api/routes.go
package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router
// wrapped in the middleware chain.
//
// Middleware chain (outermost → innermost):
//
//	requestID → logRequest → recoverPanic → router
//
// Current endpoints:
//
//	GET    /v1/healthcheck               – liveness and database reachability
//	POST   /cadastrar_livro              – register a new book
//	GET    /listar_livros                – list all books, newest first
//	PATCH  /atualizar_livro              – replace a book's mutable fields
//	DELETE /deletar_livro/?id=N          – delete a book, returning it
//	GET    /buscar_livro_id/?id=N        – retrieve a single book
//	GET    /buscar_livro_autor/?author=S – books whose author contains S
//	GET    /buscar_livro_categoria/?categoria=S – books with a category containing S
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	// Override the default httprouter error handlers to return JSON responses.
	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	router.HandlerFunc(http.MethodPost, "/cadastrar_livro", app.createBookHandler)
	router.HandlerFunc(http.MethodGet, "/listar_livros", app.listBooksHandler)
	router.HandlerFunc(http.MethodPatch, "/atualizar_livro", app.updateBookHandler)
	router.HandlerFunc(http.MethodDelete, "/deletar_livro/", app.deleteBookHandler)
	router.HandlerFunc(http.MethodGet, "/buscar_livro_id/", app.showBookHandler)
	router.HandlerFunc(http.MethodGet, "/buscar_livro_autor/", app.searchByAuthorHandler)
	router.HandlerFunc(http.MethodGet, "/buscar_livro_categoria/", app.searchByCategoryHandler)

	return app.middleware(router)
}

// middleware wraps next in the chain shared by every route. The request id
// is set first so a recovered panic is logged with it, and logRequest sits
// outside recoverPanic so the resulting 500 still gets its request line.
func (app *applicationDependencies) middleware(next http.Handler) http.Handler {
	return app.requestID(app.logRequest(app.recoverPanic(next)))
}
