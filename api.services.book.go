package main

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// BookFilter carries the listing options of the books collection. Inactive
// records are excluded unless IncludeInactive is set.
type BookFilter struct {
	Genre           string
	Author          string
	Search          string
	Available       *bool
	IncludeInactive bool
	Page            int
	Limit           int
}

// BookStats is the aggregate view of the books collection. Rented copies
// is derived: total copies minus available copies.
type BookStats struct {
	Count           int `json:"count"`
	Active          int `json:"active"`
	TotalCopies     int `json:"totalCopies"`
	AvailableCopies int `json:"availableCopies"`
	RentedCopies    int `json:"rentedCopies"`
}

type BookServiceProvider interface {
	Add(ctx context.Context, id string, book Book) (Book, error)
	GetOne(ctx context.Context, id string) (Book, error)
	Update(ctx context.Context, id string, req *UpdateBookRequest) (Book, error)
	SoftDelete(ctx context.Context, id string) (Book, error)
	GetAll(ctx context.Context, filter BookFilter) ([]Book, int, error)
	Stats(ctx context.Context) (BookStats, error)
}

type BookService struct {
	logger  *zap.Logger
	config  *Config
	clock   Clocker
	storage BookStorage
	queue   Queuer
}

func NewBookService(logger *zap.Logger, config *Config, clock Clocker, storage BookStorage, queue Queuer) BookServiceProvider {
	return &BookService{
		logger:  logger,
		config:  config,
		clock:   clock,
		storage: storage,
		queue:   queue,
	}
}

// push mirrors a book change onto the given queue. Mirroring is best
// effort: a queue failure is logged and never fails the main write.
func (bs *BookService) push(ctx context.Context, qid string, book Book) {
	event, err := NewStorageEvent(book.ID, book)
	if err == nil {
		err = bs.queue.Push(ctx, qid, event)
	}
	if err != nil {
		bs.logger.Error("service: failed to push book to queue", zap.String("qid", qid), zap.Error(err))
	}
}

// Add validates and stores a new book record. The isbn, when provided,
// must be unique across the whole collection, inactive records included.
func (bs *BookService) Add(ctx context.Context, id string, book Book) (Book, error) {
	book.Normalize()
	if err := book.Validate(bs.clock.Now()); err != nil {
		return book, err
	}
	if err := bs.checkISBNUnique(ctx, book.ISBN, id); err != nil {
		return book, err
	}
	if err := bs.storage.Add(ctx, id, book); err != nil {
		return book, err
	}
	bs.push(ctx, BookCreateQueue, book)
	return book, nil
}

func (bs *BookService) GetOne(ctx context.Context, id string) (Book, error) {
	book, err := bs.storage.GetOne(ctx, id)
	return book, err
}

// Update applies a partial edit on an existing book. The availability
// counter is re-checked against the effective total and silently clamped
// when a direct edit pushed it above.
func (bs *BookService) Update(ctx context.Context, id string, req *UpdateBookRequest) (Book, error) {
	book, err := bs.storage.GetOne(ctx, id)
	if err != nil {
		return book, err
	}
	req.Apply(&book)
	book.Normalize()
	if err = book.Validate(bs.clock.Now()); err != nil {
		return book, err
	}
	if err = bs.checkISBNUnique(ctx, book.ISBN, id); err != nil {
		return book, err
	}
	book.UpdatedAt = bs.clock.Now().UTC().String()
	book, err = bs.storage.Update(ctx, id, book)
	if err != nil {
		return book, err
	}
	bs.push(ctx, BookUpdateQueue, book)
	return book, nil
}

// SoftDelete marks a book inactive. Copy counts are left untouched and
// outstanding rentals on the book remain open and returnable.
func (bs *BookService) SoftDelete(ctx context.Context, id string) (Book, error) {
	book, err := bs.storage.GetOne(ctx, id)
	if err != nil {
		return book, err
	}
	book.IsActive = false
	book.UpdatedAt = bs.clock.Now().UTC().String()
	book, err = bs.storage.Update(ctx, id, book)
	if err != nil {
		return book, err
	}
	bs.push(ctx, BookUpdateQueue, book)
	return book, nil
}

// GetAll lists the books collection after filtering and pagination. It
// returns the number of matching records before pagination.
func (bs *BookService) GetAll(ctx context.Context, filter BookFilter) ([]Book, int, error) {
	books, err := bs.storage.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	matches := []Book{}
	search := strings.ToLower(filter.Search)
	for _, book := range books {
		if !filter.IncludeInactive && !book.IsActive {
			continue
		}
		if len(filter.Genre) != 0 && book.Genre != filter.Genre {
			continue
		}
		if len(filter.Author) != 0 && !strings.EqualFold(book.Author, filter.Author) {
			continue
		}
		if filter.Available != nil && book.IsAvailable() != *filter.Available {
			continue
		}
		if len(search) != 0 &&
			!strings.Contains(strings.ToLower(book.Title), search) &&
			!strings.Contains(strings.ToLower(book.Author), search) &&
			!strings.Contains(strings.ToLower(book.ISBN), search) {
			continue
		}
		matches = append(matches, book)
	}

	// redis hash values come in no particular order.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt == matches[j].CreatedAt {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt < matches[j].CreatedAt
	})

	total := len(matches)
	return paginateBooks(matches, filter.Page, filter.Limit), total, nil
}

// Stats aggregates the whole collection, inactive books included, so the
// rented copies figure stays truthful for books retired while out.
func (bs *BookService) Stats(ctx context.Context) (BookStats, error) {
	var stats BookStats
	books, err := bs.storage.GetAll(ctx)
	if err != nil {
		return stats, err
	}
	for _, book := range books {
		stats.Count++
		if book.IsActive {
			stats.Active++
		}
		stats.TotalCopies += book.TotalCopies
		stats.AvailableCopies += book.AvailableCopies
	}
	stats.RentedCopies = stats.TotalCopies - stats.AvailableCopies
	return stats, nil
}

// checkISBNUnique scans the collection for another record carrying the
// same isbn. The document store has no sparse unique index so the rule
// lives here.
func (bs *BookService) checkISBNUnique(ctx context.Context, isbn, selfID string) error {
	if len(isbn) == 0 {
		return nil
	}
	books, err := bs.storage.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, book := range books {
		if book.ISBN == isbn && book.ID != selfID {
			return ErrDuplicateISBN
		}
	}
	return nil
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

func paginateBooks(books []Book, page, limit int) []Book {
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
	if start >= len(books) {
		return []Book{}
	}
	end := start + limit
	if end > len(books) {
		end = len(books)
	}
	return books[start:end]
}
