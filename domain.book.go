package main

import (
	"context"
	"regexp"
	"time"
)

// Genres lists the fixed set of values accepted for the book genre field.
var Genres = []string{
	"Fiction", "Non-Fiction", "Mystery", "Thriller", "Romance",
	"Science-Fiction", "Fantasy", "Horror", "Biography", "History",
	"Science", "Philosophy", "Poetry", "Drama", "Adventure",
	"Children", "Young-Adult", "Self-Help", "Travel", "Cooking",
}

// IsValidGenre checks a genre value against the fixed list.
func IsValidGenre(genre string) bool {
	for _, g := range Genres {
		if g == genre {
			return true
		}
	}
	return false
}

const (
	MinTotalCopies   = 1
	MaxTotalCopies   = 1000
	MinPublishedYear = 1000
)

var isbnRegexp = regexp.MustCompile(`^[0-9][0-9-]{8,15}[0-9Xx]$`)

// Book represents a book entity with its copies ledger.
type Book struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	ISBN            string `json:"isbn,omitempty"`
	PublishedYear   int    `json:"publishedYear,omitempty"`
	TotalCopies     int    `json:"totalCopies"`
	AvailableCopies int    `json:"availableCopies"`
	IsActive        bool   `json:"isActive"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// IsAvailable tells whether at least one copy is on the shelf.
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// CanBeRented tells whether a rent operation is allowed on this book.
func (b *Book) CanBeRented() bool {
	return b.IsActive && b.AvailableCopies > 0
}

// DecrementAvailability takes one copy out of the available pool.
func (b *Book) DecrementAvailability() error {
	if !b.CanBeRented() {
		return ErrBookNotAvailable
	}
	b.AvailableCopies--
	return nil
}

// IncrementAvailability puts one copy back into the available pool.
func (b *Book) IncrementAvailability() error {
	if b.AvailableCopies >= b.TotalCopies {
		return ErrAllCopiesInStore
	}
	b.AvailableCopies++
	return nil
}

// Normalize clamps the available copies counter to the total. It runs on
// every save path so direct edits bypassing rent/return cannot leave the
// ledger reporting more copies than the book owns.
func (b *Book) Normalize() {
	if b.AvailableCopies > b.TotalCopies {
		b.AvailableCopies = b.TotalCopies
	}
}

// Validate enforces the book fields invariants.
func (b *Book) Validate(now time.Time) error {
	if len(b.Title) == 0 {
		return missingFieldError("title")
	}
	if len(b.Author) == 0 {
		return missingFieldError("author")
	}
	if !IsValidGenre(b.Genre) {
		return validationError("genre is not part of the supported list")
	}
	if len(b.ISBN) != 0 && !isbnRegexp.MatchString(b.ISBN) {
		return validationError("isbn format is not valid")
	}
	if b.PublishedYear != 0 && (b.PublishedYear < MinPublishedYear || b.PublishedYear > now.Year()) {
		return validationError("published year is out of range")
	}
	if b.TotalCopies < MinTotalCopies || b.TotalCopies > MaxTotalCopies {
		return validationError("total copies must be between 1 and 1000")
	}
	if b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
		return validationError("available copies must be between 0 and total copies")
	}
	return nil
}

// BookStorage defines possible operations on book records. Delete removes
// the record physically and only serves the ops maintenance path; regular
// book deletion is a soft delete performed through Update.
type BookStorage interface {
	Add(ctx context.Context, id string, book Book) error
	GetOne(ctx context.Context, id string) (Book, error)
	Update(ctx context.Context, id string, book Book) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
	Delete(ctx context.Context, id string) error
}
