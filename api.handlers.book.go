package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const (
	msgInvalidID       = "Invalid ID"
	msgBookNotFound    = "Book not found"
	msgBookNameExists  = "Book name already exists"
	msgBookUpdated     = "Updated"
	msgBookDeleted     = "Deleted"
	msgIndexGreeting   = "Hello, world!"
	msgInvalidPayload  = "invalid book payload"
	msgFailedToRespond = "failed to send response"
)

// Index greets the caller with a fixed plain text message.
func (api *APIHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	api.logger.Info("success to greet", zap.String("request.id", requestID))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(msgIndexGreeting)); err != nil {
		api.logger.Error(msgFailedToRespond, zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetAllBooks godoc
// @Summary     List books
// @Description Returns every stored book, without any filtering or pagination.
// @Tags        books
// @Produce     json
// @Success     200 {array}  BookResponse
// @Failure     500 {object} APIError
// @Router      /books [get]
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	books, err := api.bookService.GetAll(r.Context())
	if err != nil {
		api.logger.Error("failed to get all books", zap.String("request.id", requestID), zap.Error(err))
		api.sendError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	api.logger.Info("success to get all books", zap.String("request.id", requestID), zap.Int("books.total", len(books)))
	if err = WriteResponse(r.Context(), w, http.StatusOK, ToBooksResponse(books)); err != nil {
		api.logger.Error(msgFailedToRespond, zap.String("request.id", requestID), zap.Error(err))
	}
}

// CreateBook godoc
// @Summary     Create a book
// @Description Stores a new book. The name must not be used by another book.
// @Tags        books
// @Accept      json
// @Produce     json
// @Param       book body     BookRequest true "book to create"
// @Success     201  {object} CreatedBookResponse
// @Failure     400  {object} APIError
// @Failure     409  {object} APIError
// @Failure     422  {object} APIError
// @Failure     500  {object} APIError
// @Router      /books [post]
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var book BookRequest
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	if err := DecodeBookRequestBody(r, &book); err != nil {
		api.logger.Error("failed to decode book payload", zap.String("request.id", requestID), zap.Error(err))
		api.sendError(w, r, DecodeErrorStatus(err), msgInvalidPayload+": "+err.Error())
		return
	}

	id, err := api.bookService.Add(r.Context(), book)
	if errors.Is(err, ErrBookNameExists) {
		api.logger.Error("book name already exists", zap.String("book.name", book.Name), zap.String("request.id", requestID))
		api.sendError(w, r, http.StatusConflict, msgBookNameExists)
		return
	}
	if err != nil {
		api.logger.Error("failed to create book", zap.String("book.name", book.Name), zap.String("request.id", requestID), zap.Error(err))
		api.sendError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	api.logger.Info("success to create book", zap.String("book.id", id.Hex()), zap.String("request.id", requestID))
	if err = WriteResponse(r.Context(), w, http.StatusCreated, CreatedBookResponse{ID: id.Hex()}); err != nil {
		api.logger.Error(msgFailedToRespond, zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetOneBook godoc
// @Summary     Get a book
// @Tags        books
// @Produce     json
// @Param       id  path     string true "book id (24 hex characters)"
// @Success     200 {object} BookResponse
// @Failure     400 {object} APIError
// @Failure     404 {object} APIError
// @Failure     500 {object} APIError
// @Router      /books/{id} [get]
func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	rawID := ps.ByName("id")
	id, err := ParseBookID(rawID)
	if err != nil {
		api.logger.Error("book id provided is not valid", zap.String("book.id", rawID), zap.String("request.id", requestID))
		api.sendError(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	book, err := api.bookService.GetOne(r.Context(), id)
	if errors.Is(err, ErrBookNotFound) {
		api.logger.Error("book does not exist", zap.String("book.id", rawID), zap.String("request.id", requestID))
		api.sendError(w, r, http.StatusNotFound, msgBookNotFound)
		return
	}
	if err != nil {
		api.logger.Error("failed to get book", zap.String("book.id", rawID), zap.String("request.id", requestID), zap.Error(err))
		api.sendError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	api.logger.Info("success to get book", zap.String("book.id", rawID), zap.String("request.id", requestID))
	if err = WriteResponse(r.Context(), w, http.StatusOK, book.ToResponse()); err != nil {
		api.logger.Error(msgFailedToRespond, zap.String("request.id", requestID), zap.Error(err))
	}
}

// UpdateBook godoc
// @Summary     Update a book
// @Description Overwrites name, author and year of an existing book.
// @Tags        books
// @Accept      json
// @Produce     json
// @Param       id   path     string      true "book id (24 hex characters)"
// @Param       book body     BookRequest true "new book values"
// @Success     200  {object} MessageResponse
// @Failure     400  {object} APIError
// @Failure     404  {object} APIError
// @Failure     422  {object} APIError
// @Failure     500  {object} APIError
// @Router      /books/{id} [put]
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var book BookRequest
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	rawID := ps.ByName("id")
	id, err := ParseBookID(rawID)
	if err != nil {
		api.logger.Error("book id provided is not valid", zap.String("book.id", rawID), zap.String("request.id", requestID))
		api.sendError(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	if err = DecodeBookRequestBody(r, &book); err != nil {
		api.logger.Error("failed to decode book payload", zap.String("book.id", rawID), zap.String("request.id", requestID), zap.Error(err))
		api.sendError(w, r, DecodeErrorStatus(err), msgInvalidPayload+": "+err.Error())
		return
	}

	err = api.bookService.Update(r.Context(), id, book)
	if errors.Is(err, ErrBookNotFound) {
		api.logger.Error("book does not exist", zap.String("book.id", rawID), zap.String("request.id", requestID))
		api.sendError(w, r, http.StatusNotFound, msgBookNotFound)
		return
	}
	if errors.Is(err, ErrBookNameExists) {
		api.logger.Error("book name already exists", zap.String("book.id", rawID), zap.String("book.name", book.Name), zap.String("request.id", requestID))
		api.sendError(w, r, http.StatusConflict, msgBookNameExists)
		return
	}
	if err != nil {
		api.logger.Error("failed to update book", zap.String("book.id", rawID), zap.String("request.id", requestID), zap.Error(err))
		api.sendError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	api.logger.Info("success to update book", zap.String("book.id", rawID), zap.String("request.id", requestID))
	if err = WriteResponse(r.Context(), w, http.StatusOK, MessageResponse{Message: msgBookUpdated}); err != nil {
		api.logger.Error(msgFailedToRespond, zap.String("request.id", requestID), zap.Error(err))
	}
}

// DeleteOneBook godoc
// @Summary     Delete a book
// @Tags        books
// @Produce     json
// @Param       id  path     string true "book id (24 hex characters)"
// @Success     200 {object} MessageResponse
// @Failure     400 {object} APIError
// @Failure     404 {object} APIError
// @Failure     500 {object} APIError
// @Router      /books/{id} [delete]
func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	rawID := ps.ByName("id")
	id, err := ParseBookID(rawID)
	if err != nil {
		api.logger.Error("book id provided is not valid", zap.String("book.id", rawID), zap.String("request.id", requestID))
		api.sendError(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	err = api.bookService.Delete(r.Context(), id)
	if errors.Is(err, ErrBookNotFound) {
		api.logger.Error("book does not exist", zap.String("book.id", rawID), zap.String("request.id", requestID))
		api.sendError(w, r, http.StatusNotFound, msgBookNotFound)
		return
	}
	if err != nil {
		api.logger.Error("failed to delete book", zap.String("book.id", rawID), zap.String("request.id", requestID), zap.Error(err))
		api.sendError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	api.logger.Info("success to delete book", zap.String("book.id", rawID), zap.String("request.id", requestID))
	if err = WriteResponse(r.Context(), w, http.StatusOK, MessageResponse{Message: msgBookDeleted}); err != nil {
		api.logger.Error(msgFailedToRespond, zap.String("request.id", requestID), zap.Error(err))
	}
}

// sendError writes the json error envelope and logs any failure to do so.
func (api *APIHandler) sendError(w http.ResponseWriter, r *http.Request, status int, message string) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	errResp := NewAPIError(requestID, status, message)
	if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
		api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
	}
}
