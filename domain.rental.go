package main

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"
)

// RentalStatus represents the stored lifecycle state of a rental.
type RentalStatus string

const (
	RentalActive   RentalStatus = "active"
	RentalReturned RentalStatus = "returned"
	RentalOverdue  RentalStatus = "overdue"
)

// IsValidRentalStatus checks a status value against the known set.
func IsValidRentalStatus(s RentalStatus) bool {
	return s == RentalActive || s == RentalReturned || s == RentalOverdue
}

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Rental represents one book rental record. The Book field is a display
// snapshot populated on responses and never part of the stored document.
// The last block holds the derived view recomputed on every read, so an
// active rental past its due date always reports an overdue indication
// even though the stored status enum has not moved.
type Rental struct {
	ID          string       `json:"id"`
	BookID      string       `json:"bookId"`
	RenterName  string       `json:"renterName"`
	RenterEmail string       `json:"renterEmail"`
	RenterPhone string       `json:"renterPhone,omitempty"`
	RentalDate  time.Time    `json:"rentalDate"`
	DueDate     time.Time    `json:"dueDate"`
	ReturnDate  *time.Time   `json:"returnDate,omitempty"`
	Status      RentalStatus `json:"status"`
	LateFee     int          `json:"lateFee"`
	Notes       string       `json:"notes,omitempty"`
	Book        *Book        `json:"book,omitempty"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`

	OverdueDays  int  `json:"daysOverdue"`
	Overdue      bool `json:"isOverdue"`
	DurationDays int  `json:"rentalDuration"`
}

// NewRental builds a rental record in active state after checking the
// renter details and the dates ordering. The renter email is stored
// lower-cased so the one-active-rental-per-renter rule is case insensitive.
func NewRental(bookID, name, email, phone string, rentalDate, dueDate time.Time, notes string) (Rental, error) {
	var rental Rental
	if len(bookID) == 0 {
		return rental, missingFieldError("bookId")
	}
	if len(name) == 0 {
		return rental, missingFieldError("renterName")
	}
	if len(email) == 0 {
		return rental, missingFieldError("renterEmail")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegexp.MatchString(email) {
		return rental, validationError("renter email format is not valid")
	}
	if dueDate.IsZero() {
		return rental, missingFieldError("dueDate")
	}
	if !dueDate.After(rentalDate) {
		return rental, validationError("due date must be after the rental date")
	}
	rental = Rental{
		BookID:      bookID,
		RenterName:  name,
		RenterEmail: email,
		RenterPhone: phone,
		RentalDate:  rentalDate,
		DueDate:     dueDate,
		Status:      RentalActive,
		Notes:       notes,
	}
	return rental, nil
}

// DaysOverdue computes how many started days the rental is past its due
// date. A returned rental is never overdue.
func (r *Rental) DaysOverdue(now time.Time) int {
	if r.Status == RentalReturned {
		return 0
	}
	days := int(math.Ceil(now.Sub(r.DueDate).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// IsOverdue tells whether an active rental is past its due date.
func (r *Rental) IsOverdue(now time.Time) bool {
	return r.Status == RentalActive && r.DaysOverdue(now) > 0
}

// Duration computes the rental length in started days, using the return
// date once set and the current time before that.
func (r *Rental) Duration(now time.Time) int {
	end := now
	if r.ReturnDate != nil {
		end = *r.ReturnDate
	}
	days := int(math.Ceil(end.Sub(r.RentalDate).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// Derive fills the read-time fields of the rental against the given
// clock: the days overdue counter, the overdue flag and the rental
// duration. These values are never authoritative, the stored enum stays
// in charge of the lifecycle.
func (r *Rental) Derive(now time.Time) {
	r.OverdueDays = r.DaysOverdue(now)
	r.Overdue = r.IsOverdue(now)
	r.DurationDays = r.Duration(now)
}

// EffectiveStatus is the read-time view of the stored status: an active
// rental past its due date reports as overdue without any stored
// transition. The stored enum only catches up on return or on an explicit
// status update.
func (r *Rental) EffectiveStatus(now time.Time) RentalStatus {
	if r.Status == RentalActive && r.DaysOverdue(now) > 0 {
		return RentalOverdue
	}
	return r.Status
}

// MarkReturned closes the rental: it stamps the return date, computes the
// late fee against the due date and flips the status, all in one step.
func (r *Rental) MarkReturned(now time.Time, feePerDay int) error {
	if r.Status == RentalReturned {
		return ErrAlreadyReturned
	}
	if now.Before(r.RentalDate) {
		return validationError("return date cannot precede the rental date")
	}
	if days := r.DaysOverdue(now); days > 0 {
		r.LateFee = days * feePerDay
	}
	returnedAt := now
	r.ReturnDate = &returnedAt
	r.Status = RentalReturned
	return nil
}

// UpdateStatus forces the stored status for administrative corrections.
// Returned is terminal: once there, only re-asserting returned is allowed.
// Forcing returned on an open rental stamps the return date but leaves the
// book ledger and the late fee alone.
func (r *Rental) UpdateStatus(now time.Time, status RentalStatus, notes string) error {
	if !IsValidRentalStatus(status) {
		return validationError("unknown rental status")
	}
	if r.Status == RentalReturned && status != RentalReturned {
		return ErrReturnedIsFinal
	}
	if status == RentalReturned && r.ReturnDate == nil {
		returnedAt := now
		r.ReturnDate = &returnedAt
	}
	r.Status = status
	if len(notes) != 0 {
		r.Notes = notes
	}
	return nil
}

// RentalStorage defines possible operations on rental records. Rentals are
// never deleted by the domain; Delete only serves the ops maintenance path.
type RentalStorage interface {
	Add(ctx context.Context, id string, rental Rental) error
	GetOne(ctx context.Context, id string) (Rental, error)
	Update(ctx context.Context, id string, rental Rental) (Rental, error)
	GetAll(ctx context.Context) ([]Rental, error)
	Delete(ctx context.Context, id string) error
}
