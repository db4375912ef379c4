package main

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// RentalFilter carries the listing options of the rentals collection.
// Status filtering works on the effective status, so asking for overdue
// also returns active rentals past their due date.
type RentalFilter struct {
	Status      RentalStatus
	RenterEmail string
	BookID      string
	Page        int
	Limit       int
}

// RentalStats is the aggregate view of the rentals collection. Counts use
// the effective status and the monthly histogram is keyed by the rental
// date month (YYYY-MM).
type RentalStats struct {
	Active        int            `json:"active"`
	Overdue       int            `json:"overdue"`
	Returned      int            `json:"returned"`
	TotalLateFees int            `json:"totalLateFees"`
	Monthly       map[string]int `json:"monthly"`
}

type RentalServiceProvider interface {
	Rent(ctx context.Context, id string, req RentRequest) (Rental, error)
	Return(ctx context.Context, id string, req ReturnRequest) (Rental, error)
	UpdateStatus(ctx context.Context, id string, req UpdateRentalStatusRequest) (Rental, error)
	GetOne(ctx context.Context, id string) (Rental, error)
	GetAll(ctx context.Context, filter RentalFilter) ([]Rental, int, error)
	Stats(ctx context.Context) (RentalStats, error)
}

// RentalService coordinates the cross-entity rules between a rental record
// and the copies ledger of its book. It is the only component writing to
// both collections in one request. The two writes are independent storage
// round trips: there is no transaction spanning them, and concurrent rents
// on a book with one copy left can both pass the availability check. That
// over-commit race is a documented limitation, not a prevented outcome.
type RentalService struct {
	logger  *zap.Logger
	config  *Config
	clock   Clocker
	rentals RentalStorage
	books   BookStorage
	queue   Queuer
}

func NewRentalService(logger *zap.Logger, config *Config, clock Clocker, rentals RentalStorage, books BookStorage, queue Queuer) RentalServiceProvider {
	return &RentalService{
		logger:  logger,
		config:  config,
		clock:   clock,
		rentals: rentals,
		books:   books,
		queue:   queue,
	}
}

func (rs *RentalService) push(ctx context.Context, qid, id string, record interface{}) {
	event, err := NewStorageEvent(id, record)
	if err == nil {
		err = rs.queue.Push(ctx, qid, event)
	}
	if err != nil {
		rs.logger.Error("service: failed to push rental event to queue", zap.String("qid", qid), zap.Error(err))
	}
}

// Rent creates a rental on a book and takes one copy out of its available
// pool. The ledger decrement only happens once the rental record passed
// validation and is stored, so a refused creation never leaves an orphaned
// decrement behind.
func (rs *RentalService) Rent(ctx context.Context, id string, req RentRequest) (Rental, error) {
	var rental Rental
	book, err := rs.books.GetOne(ctx, req.BookID)
	if err != nil {
		return rental, err
	}
	if !book.CanBeRented() {
		return rental, ErrBookNotAvailable
	}

	// one open rental per (book, renter) pair.
	email := strings.ToLower(strings.TrimSpace(req.RenterEmail))
	existing, err := rs.rentals.GetAll(ctx)
	if err != nil {
		return rental, err
	}
	for _, r := range existing {
		if r.BookID == req.BookID && r.RenterEmail == email && r.Status != RentalReturned {
			return rental, ErrDuplicateRental
		}
	}

	rentalDate := rs.clock.Now()
	if req.RentalDate != nil {
		rentalDate = *req.RentalDate
	}
	rental, err = NewRental(req.BookID, req.RenterName, req.RenterEmail, req.RenterPhone, rentalDate, req.DueDate, req.Notes)
	if err != nil {
		return rental, err
	}
	rental.ID = id
	rental.CreatedAt = rs.clock.Now().UTC().String()
	rental.UpdatedAt = rental.CreatedAt

	if err = rs.rentals.Add(ctx, id, rental); err != nil {
		return rental, err
	}
	rs.push(ctx, RentalCreateQueue, rental.ID, rental)

	if err = book.DecrementAvailability(); err != nil {
		return rental, err
	}
	book.Normalize()
	book.UpdatedAt = rs.clock.Now().UTC().String()
	if book, err = rs.books.Update(ctx, book.ID, book); err != nil {
		return rental, err
	}
	rs.push(ctx, BookUpdateQueue, book.ID, book)

	rental.Book = &book
	rental.Derive(rs.clock.Now())
	return rental, nil
}

// Return closes a rental, computes its late fee and puts the copy back on
// the shelf. Any failure before the rental state flip leaves the book
// untouched. Once the rental is stored as returned, it stays returned even
// when the ledger increment fails: such a failure denotes an internal
// bookkeeping inconsistency and surfaces as an invariant violation.
func (rs *RentalService) Return(ctx context.Context, id string, req ReturnRequest) (Rental, error) {
	rental, err := rs.rentals.GetOne(ctx, id)
	if err != nil {
		return rental, err
	}
	if rental.Status == RentalReturned {
		return rental, ErrAlreadyReturned
	}

	returnedAt := rs.clock.Now()
	if req.ReturnDate != nil {
		returnedAt = *req.ReturnDate
	}
	if err = rental.MarkReturned(returnedAt, rs.config.Rental.LateFeePerDay); err != nil {
		return rental, err
	}
	if len(req.Notes) != 0 {
		rental.Notes = req.Notes
	}
	rental.UpdatedAt = rs.clock.Now().UTC().String()
	if rental, err = rs.rentals.Update(ctx, id, rental); err != nil {
		return rental, err
	}
	rs.push(ctx, RentalUpdateQueue, rental.ID, rental)

	book, err := rs.books.GetOne(ctx, rental.BookID)
	if err != nil {
		verr := NewInvariantError("book referenced by returned rental is missing", err)
		rs.logger.Error("service: return left the ledger unadjusted", zap.String("rental.id", id), zap.String("book.id", rental.BookID), zap.Error(verr))
		return rental, verr
	}
	if err = book.IncrementAvailability(); err != nil {
		verr := NewInvariantError("book copies counter already at maximum", err)
		rs.logger.Error("service: return left the ledger unadjusted", zap.String("rental.id", id), zap.String("book.id", book.ID), zap.Error(verr))
		return rental, verr
	}
	book.Normalize()
	book.UpdatedAt = rs.clock.Now().UTC().String()
	if book, err = rs.books.Update(ctx, book.ID, book); err != nil {
		return rental, err
	}
	rs.push(ctx, BookUpdateQueue, book.ID, book)

	rental.Book = &book
	rental.Derive(rs.clock.Now())
	return rental, nil
}

// UpdateStatus forces the stored status of a rental for administrative
// corrections. It never touches the book ledger nor the late fee.
func (rs *RentalService) UpdateStatus(ctx context.Context, id string, req UpdateRentalStatusRequest) (Rental, error) {
	rental, err := rs.rentals.GetOne(ctx, id)
	if err != nil {
		return rental, err
	}
	if err = rental.UpdateStatus(rs.clock.Now(), req.Status, req.Notes); err != nil {
		return rental, err
	}
	rental.UpdatedAt = rs.clock.Now().UTC().String()
	if rental, err = rs.rentals.Update(ctx, id, rental); err != nil {
		return rental, err
	}
	rs.push(ctx, RentalUpdateQueue, rental.ID, rental)
	rental.Derive(rs.clock.Now())
	return rental, nil
}

// GetOne retrieves a rental with its book snapshot populated for display
// and its derived overdue view computed against the current clock.
func (rs *RentalService) GetOne(ctx context.Context, id string) (Rental, error) {
	rental, err := rs.rentals.GetOne(ctx, id)
	if err != nil {
		return rental, err
	}
	if book, berr := rs.books.GetOne(ctx, rental.BookID); berr == nil {
		rental.Book = &book
	}
	rental.Derive(rs.clock.Now())
	return rental, nil
}

// GetAll lists the rentals collection after filtering and pagination. It
// returns the number of matching records before pagination.
func (rs *RentalService) GetAll(ctx context.Context, filter RentalFilter) ([]Rental, int, error) {
	rentals, err := rs.rentals.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	now := rs.clock.Now()
	email := strings.ToLower(strings.TrimSpace(filter.RenterEmail))

	matches := []Rental{}
	for _, rental := range rentals {
		if len(filter.Status) != 0 && rental.EffectiveStatus(now) != filter.Status {
			continue
		}
		if len(email) != 0 && rental.RenterEmail != email {
			continue
		}
		if len(filter.BookID) != 0 && rental.BookID != filter.BookID {
			continue
		}
		matches = append(matches, rental)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].RentalDate.Equal(matches[j].RentalDate) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].RentalDate.Before(matches[j].RentalDate)
	})

	total := len(matches)
	matches = paginateRentals(matches, filter.Page, filter.Limit)

	// populate the book snapshots for display.
	books, err := rs.books.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[string]Book, len(books))
	for _, book := range books {
		byID[book.ID] = book
	}
	for i := range matches {
		if book, ok := byID[matches[i].BookID]; ok {
			snapshot := book
			matches[i].Book = &snapshot
		}
		matches[i].Derive(now)
	}
	return matches, total, nil
}

// Stats aggregates the rentals collection with the lazy overdue derivation
// applied, so a stored-active rental past its due date counts as overdue.
func (rs *RentalService) Stats(ctx context.Context) (RentalStats, error) {
	stats := RentalStats{Monthly: make(map[string]int)}
	rentals, err := rs.rentals.GetAll(ctx)
	if err != nil {
		return stats, err
	}
	now := rs.clock.Now()
	for _, rental := range rentals {
		switch rental.EffectiveStatus(now) {
		case RentalActive:
			stats.Active++
		case RentalOverdue:
			stats.Overdue++
		case RentalReturned:
			stats.Returned++
		}
		stats.TotalLateFees += rental.LateFee
		stats.Monthly[rental.RentalDate.Format("2006-01")]++
	}
	return stats, nil
}

func paginateRentals(rentals []Rental, page, limit int) []Rental {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	start := (page - 1) * limit
	if start >= len(rentals) {
		return []Rental{}
	}
	end := start + limit
	if end > len(rentals) {
		end = len(rentals)
	}
	return rentals[start:end]
}
