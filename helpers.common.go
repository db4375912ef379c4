package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

type ContextKey string

const (
	BookIDPrefix            string     = "b"
	RentalIDPrefix          string     = "l"
	RequestIDPrefix         string     = "r"
	ContextRequestID        ContextKey = "request.id"
	ContextRequestNumber    ContextKey = "request.number"
)

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val := ctx.Value(contextKey); val != nil {
		return val.(string)
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val := ctx.Value(ContextRequestNumber); val != nil {
		return val.(uint64)
	}
	return 0
}

// CreateBookRequest is the payload of a book creation call. The available
// copies counter is a pointer so an absent value defaults to the total.
type CreateBookRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	ISBN            string `json:"isbn"`
	PublishedYear   int    `json:"publishedYear"`
	TotalCopies     int    `json:"totalCopies"`
	AvailableCopies *int   `json:"availableCopies"`
}

// ToBook builds the book entity with creation defaults applied.
func (req *CreateBookRequest) ToBook() Book {
	book := Book{
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		ISBN:            req.ISBN,
		PublishedYear:   req.PublishedYear,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies,
		IsActive:        true,
	}
	if req.AvailableCopies != nil {
		book.AvailableCopies = *req.AvailableCopies
	}
	return book
}

// UpdateBookRequest is the payload of a book update call. All fields are
// optional and applied on top of the stored record.
type UpdateBookRequest struct {
	Title           *string `json:"title"`
	Author          *string `json:"author"`
	Genre           *string `json:"genre"`
	ISBN            *string `json:"isbn"`
	PublishedYear   *int    `json:"publishedYear"`
	TotalCopies     *int    `json:"totalCopies"`
	AvailableCopies *int    `json:"availableCopies"`
	IsActive        *bool   `json:"isActive"`
}

// Apply copies the provided fields onto an existing book record.
func (req *UpdateBookRequest) Apply(book *Book) {
	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Genre != nil {
		book.Genre = *req.Genre
	}
	if req.ISBN != nil {
		book.ISBN = *req.ISBN
	}
	if req.PublishedYear != nil {
		book.PublishedYear = *req.PublishedYear
	}
	if req.TotalCopies != nil {
		book.TotalCopies = *req.TotalCopies
	}
	if req.AvailableCopies != nil {
		book.AvailableCopies = *req.AvailableCopies
	}
	if req.IsActive != nil {
		book.IsActive = *req.IsActive
	}
}

// RentRequest is the payload of a rent call. The rental date defaults to
// the current clock time when absent.
type RentRequest struct {
	BookID      string     `json:"bookId"`
	RenterName  string     `json:"renterName"`
	RenterEmail string     `json:"renterEmail"`
	RenterPhone string     `json:"renterPhone"`
	RentalDate  *time.Time `json:"rentalDate"`
	DueDate     time.Time  `json:"dueDate"`
	Notes       string     `json:"notes"`
}

// ReturnRequest is the payload of a return call. The return date defaults
// to the current clock time when absent.
type ReturnRequest struct {
	ReturnDate *time.Time `json:"returnDate"`
	Notes      string     `json:"notes"`
}

// UpdateRentalStatusRequest is the payload of an administrative rental
// status correction call.
type UpdateRentalStatusRequest struct {
	Status RentalStatus `json:"status"`
	Notes  string       `json:"notes"`
}

// DecodeRequestBody is a helper function to read the json content of any api request.
func DecodeRequestBody(r *http.Request, into interface{}) error {
	if r.Body == nil {
		return errors.New("invalid request body")
	}
	return json.NewDecoder(r.Body).Decode(into)
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result. This
// helps know if the App is running in a docker container or not.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}
