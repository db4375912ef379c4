package main

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// RentBook creates a rental on a book and takes one copy off the shelf.
func (api *APIHandler) RentBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req RentRequest
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	if err := DecodeRequestBody(r, &req); err != nil {
		api.WriteFailure(w, r, "failed to rent the book", validationError("invalid rent request body"), EmptyData)
		return
	}
	if len(req.BookID) == 0 {
		api.WriteFailure(w, r, "failed to rent the book", missingFieldError("bookId"), EmptyData)
		return
	}
	if ok := api.idsHandler.IsValid(req.BookID, BookIDPrefix); !ok {
		api.WriteFailure(w, r, "book id provided is not valid", validationError("book id provided is not valid"), EmptyData)
		return
	}

	id := api.idsHandler.Generate(RentalIDPrefix)
	rental, err := api.rentalService.Rent(r.Context(), id, req)
	if err != nil {
		api.WriteFailure(w, r, "failed to rent the book", err, EmptyData)
		return
	}
	api.logger.Info("success to rent book",
		zap.String("rental.id", rental.ID),
		zap.String("book.id", rental.BookID),
		zap.String("request.id", requestID),
	)
	api.WriteSuccess(w, r, http.StatusCreated, "Book rented successfully.", nil, rental)
}

// ReturnBook closes a rental, computes its late fee and puts the copy
// back on the shelf.
func (api *APIHandler) ReturnBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	id := ps.ByName("id")
	if ok := api.idsHandler.IsValid(id, RentalIDPrefix); !ok {
		api.WriteFailure(w, r, "rental id provided is not valid", validationError("rental id provided is not valid"), EmptyData)
		return
	}
	var req ReturnRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := DecodeRequestBody(r, &req); err != nil {
			api.WriteFailure(w, r, "failed to return the book", validationError("invalid return request body"), EmptyData)
			return
		}
	}

	rental, err := api.rentalService.Return(r.Context(), id, req)
	if err != nil {
		api.WriteFailure(w, r, "failed to return the book", err, EmptyData)
		return
	}
	api.logger.Info("success to return book",
		zap.String("rental.id", rental.ID),
		zap.String("book.id", rental.BookID),
		zap.Int("rental.latefee", rental.LateFee),
		zap.String("request.id", requestID),
	)
	api.WriteSuccess(w, r, http.StatusOK, "Book returned successfully.", nil, rental)
}

// UpdateRentalStatus forces the stored status of a rental. The returned
// state is terminal and cannot be left.
func (api *APIHandler) UpdateRentalStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	id := ps.ByName("id")
	if ok := api.idsHandler.IsValid(id, RentalIDPrefix); !ok {
		api.WriteFailure(w, r, "rental id provided is not valid", validationError("rental id provided is not valid"), EmptyData)
		return
	}
	var req UpdateRentalStatusRequest
	if err := DecodeRequestBody(r, &req); err != nil {
		api.WriteFailure(w, r, "failed to update the rental status", validationError("invalid status update request body"), EmptyData)
		return
	}

	rental, err := api.rentalService.UpdateStatus(r.Context(), id, req)
	if err != nil {
		api.WriteFailure(w, r, "failed to update the rental status", err, EmptyData)
		return
	}
	api.logger.Info("success to update rental status",
		zap.String("rental.id", rental.ID),
		zap.String("rental.status", string(rental.Status)),
		zap.String("request.id", requestID),
	)
	api.WriteSuccess(w, r, http.StatusOK, "Rental status updated successfully.", nil, rental)
}

// GetOneRental fetches a single rental record with its book snapshot.
func (api *APIHandler) GetOneRental(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	id := ps.ByName("id")
	if ok := api.idsHandler.IsValid(id, RentalIDPrefix); !ok {
		api.WriteFailure(w, r, "rental id provided is not valid", validationError("rental id provided is not valid"), EmptyData)
		return
	}
	rental, err := api.rentalService.GetOne(r.Context(), id)
	if err == ErrRentalNotFound {
		api.WriteFailure(w, r, "rental does not exist", err, EmptyData)
		return
	}
	if err != nil {
		api.WriteFailure(w, r, "failed to get rental", err, EmptyData)
		return
	}
	api.logger.Info("success to get rental", zap.String("rental.id", id), zap.String("request.id", requestID))
	api.WriteSuccess(w, r, http.StatusOK, "Rental fetched successfully.", nil, rental)
}

// GetAllRentals lists the rentals with optional filters: status (effective
// view, so `overdue` also matches stored-active rentals past due), renter
// email, book id, page and limit.
func (api *APIHandler) GetAllRentals(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	q := r.URL.Query()
	filter := RentalFilter{
		Status:      RentalStatus(q.Get("status")),
		RenterEmail: q.Get("renterEmail"),
		BookID:      q.Get("bookId"),
	}
	if len(filter.Status) != 0 && !IsValidRentalStatus(filter.Status) {
		api.WriteFailure(w, r, "failed to get all rentals", validationError("unknown rental status"), EmptyData)
		return
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	rentals, total, err := api.rentalService.GetAll(r.Context(), filter)
	if err != nil {
		api.WriteFailure(w, r, "failed to get all rentals", err, rentals)
		return
	}
	api.logger.Info("success to get all rentals", zap.String("request.id", requestID))
	api.WriteSuccess(w, r, http.StatusOK, "All rentals fetched successfully.", &total, rentals)
}

// GetRentalsStats serves the aggregate view of the rentals collection.
func (api *APIHandler) GetRentalsStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	stats, err := api.rentalService.Stats(r.Context())
	if err != nil {
		api.WriteFailure(w, r, "failed to get rentals statistics", err, EmptyData)
		return
	}
	api.logger.Info("success to get rentals statistics", zap.String("request.id", requestID))
	api.WriteSuccess(w, r, http.StatusOK, "Rentals statistics fetched successfully.", nil, stats)
}
