package main

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// CreateBook registers a new book into the collection. The available
// copies counter defaults to the total when absent from the payload.
func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CreateBookRequest
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	if err := DecodeRequestBody(r, &req); err != nil {
		api.WriteFailure(w, r, "failed to create the book", validationError("invalid create book request body"), EmptyData)
		return
	}

	book := req.ToBook()
	book.ID = api.idsHandler.Generate(BookIDPrefix)
	book.CreatedAt = api.clock.Now().UTC().String()
	book.UpdatedAt = book.CreatedAt

	book, err := api.bookService.Add(r.Context(), book.ID, book)
	if err != nil {
		api.WriteFailure(w, r, "failed to create the book", err, book)
		return
	}
	api.logger.Info("success to create book", zap.String("book.id", book.ID), zap.String("request.id", requestID))
	api.WriteSuccess(w, r, http.StatusCreated, "Book created successfully.", nil, book)
}

// GetAllBooks lists the books with optional filters: genre, author,
// available, search, includeInactive, page and limit.
func (api *APIHandler) GetAllBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	q := r.URL.Query()
	filter := BookFilter{
		Genre:           q.Get("genre"),
		Author:          q.Get("author"),
		Search:          q.Get("search"),
		IncludeInactive: q.Get("includeInactive") == "true",
	}
	if v := q.Get("available"); len(v) != 0 {
		available := v == "true"
		filter.Available = &available
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	books, total, err := api.bookService.GetAll(r.Context(), filter)
	if err != nil {
		api.WriteFailure(w, r, "failed to get all books", err, books)
		return
	}
	api.logger.Info("success to get all books", zap.String("request.id", requestID))
	api.WriteSuccess(w, r, http.StatusOK, "All books fetched successfully.", &total, books)
}

// GetOneBook fetches a single book record by its id.
func (api *APIHandler) GetOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	id := ps.ByName("id")
	if ok := api.idsHandler.IsValid(id, BookIDPrefix); !ok {
		api.WriteFailure(w, r, "book id provided is not valid", validationError("book id provided is not valid"), Book{})
		return
	}
	book, err := api.bookService.GetOne(r.Context(), id)
	if err == ErrBookNotFound {
		api.WriteFailure(w, r, "book does not exist", err, book)
		return
	}
	if err != nil {
		api.WriteFailure(w, r, "failed to get book", err, book)
		return
	}
	api.logger.Info("success to get book", zap.String("book.id", id), zap.String("request.id", requestID))
	api.WriteSuccess(w, r, http.StatusOK, "Book fetched successfully.", nil, book)
}

// UpdateBook applies a partial edit on an existing book record.
func (api *APIHandler) UpdateBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	id := ps.ByName("id")
	if ok := api.idsHandler.IsValid(id, BookIDPrefix); !ok {
		api.WriteFailure(w, r, "book id provided is not valid", validationError("book id provided is not valid"), Book{})
		return
	}
	var req UpdateBookRequest
	if err := DecodeRequestBody(r, &req); err != nil {
		api.WriteFailure(w, r, "failed to update the book", validationError("invalid update book request body"), EmptyData)
		return
	}

	book, err := api.bookService.Update(r.Context(), id, &req)
	if err != nil {
		api.WriteFailure(w, r, "failed to update the book", err, book)
		return
	}
	api.logger.Info("success to update book", zap.String("book.id", book.ID), zap.String("request.id", requestID))
	api.WriteSuccess(w, r, http.StatusOK, "Book updated successfully.", nil, book)
}

// DeleteOneBook marks a book inactive. The record is kept, its copy
// counters stay untouched and open rentals on it remain returnable.
func (api *APIHandler) DeleteOneBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	id := ps.ByName("id")
	if ok := api.idsHandler.IsValid(id, BookIDPrefix); !ok {
		api.WriteFailure(w, r, "book id provided is not valid", validationError("book id provided is not valid"), Book{})
		return
	}
	book, err := api.bookService.SoftDelete(r.Context(), id)
	if err == ErrBookNotFound {
		api.WriteFailure(w, r, "book does not exist", err, book)
		return
	}
	if err != nil {
		api.WriteFailure(w, r, "failed to delete the book", err, book)
		return
	}
	api.logger.Info("success to delete book", zap.String("book.id", id), zap.String("request.id", requestID))
	api.WriteSuccess(w, r, http.StatusOK, "Book deleted successfully.", nil, book)
}

// GetBooksStats serves the aggregate view of the books collection.
func (api *APIHandler) GetBooksStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	stats, err := api.bookService.Stats(r.Context())
	if err != nil {
		api.WriteFailure(w, r, "failed to get books statistics", err, EmptyData)
		return
	}
	api.logger.Info("success to get books statistics", zap.String("request.id", requestID))
	api.WriteSuccess(w, r, http.StatusOK, "Books statistics fetched successfully.", nil, stats)
}
