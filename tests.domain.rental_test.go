package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestRental() Rental {
	return Rental{
		ID:          "l:0",
		BookID:      "b:0",
		RenterName:  "Jerome Amon",
		RenterEmail: "jerome@example.com",
		RentalDate:  testNow,
		DueDate:     testNow.AddDate(0, 0, 14),
		Status:      RentalActive,
	}
}

// TestNewRental ensures the rental creation checks renter details and dates.
func TestNewRental(t *testing.T) {
	dueDate := testNow.AddDate(0, 0, 14)

	t.Run("should pass: valid rental", func(t *testing.T) {
		rental, err := NewRental("b:0", "Jerome Amon", "Jerome@Example.COM", "+123456789", testNow, dueDate, "first rent")
		require.NoError(t, err)
		assert.Equal(t, RentalActive, rental.Status)
		assert.Equal(t, "jerome@example.com", rental.RenterEmail)
		assert.Nil(t, rental.ReturnDate)
		assert.Equal(t, 0, rental.LateFee)
	})

	t.Run("should fail: missing book id", func(t *testing.T) {
		_, err := NewRental("", "Jerome Amon", "jerome@example.com", "", testNow, dueDate, "")
		assert.True(t, IsValidationError(err))
		assert.Equal(t, "bookId is required", err.Error())
	})

	t.Run("should fail: missing renter name", func(t *testing.T) {
		_, err := NewRental("b:0", "", "jerome@example.com", "", testNow, dueDate, "")
		assert.True(t, IsValidationError(err))
	})

	t.Run("should fail: malformed renter email", func(t *testing.T) {
		_, err := NewRental("b:0", "Jerome Amon", "not-an-email", "", testNow, dueDate, "")
		assert.True(t, IsValidationError(err))
	})

	t.Run("should fail: missing due date", func(t *testing.T) {
		_, err := NewRental("b:0", "Jerome Amon", "jerome@example.com", "", testNow, time.Time{}, "")
		assert.True(t, IsValidationError(err))
	})

	t.Run("should fail: due date equal to rental date", func(t *testing.T) {
		_, err := NewRental("b:0", "Jerome Amon", "jerome@example.com", "", testNow, testNow, "")
		assert.True(t, IsValidationError(err))
	})

	t.Run("should fail: due date before rental date", func(t *testing.T) {
		_, err := NewRental("b:0", "Jerome Amon", "jerome@example.com", "", testNow, testNow.AddDate(0, 0, -1), "")
		assert.True(t, IsValidationError(err))
	})
}

// TestRentalDaysOverdue ensures overdue days count in started days.
func TestRentalDaysOverdue(t *testing.T) {
	rental := validTestRental()

	// before the due date there is nothing overdue.
	assert.Equal(t, 0, rental.DaysOverdue(rental.DueDate.Add(-time.Hour)))
	// at the exact due instant there is nothing overdue.
	assert.Equal(t, 0, rental.DaysOverdue(rental.DueDate))
	// one hour past due already counts as one started day.
	assert.Equal(t, 1, rental.DaysOverdue(rental.DueDate.Add(time.Hour)))
	// exactly three days past due counts three.
	assert.Equal(t, 3, rental.DaysOverdue(rental.DueDate.AddDate(0, 0, 3)))
	// three days and one hour starts a fourth day.
	assert.Equal(t, 4, rental.DaysOverdue(rental.DueDate.AddDate(0, 0, 3).Add(time.Hour)))

	// a returned rental is never overdue no matter the clock.
	rental.Status = RentalReturned
	assert.Equal(t, 0, rental.DaysOverdue(rental.DueDate.AddDate(0, 0, 30)))
}

// TestRentalEffectiveStatus ensures the overdue state is derived at read
// time while the stored status stays active.
func TestRentalEffectiveStatus(t *testing.T) {
	rental := validTestRental()

	assert.Equal(t, RentalActive, rental.EffectiveStatus(rental.DueDate))
	assert.False(t, rental.IsOverdue(rental.DueDate))

	past := rental.DueDate.AddDate(0, 0, 2)
	assert.Equal(t, RentalOverdue, rental.EffectiveStatus(past))
	assert.True(t, rental.IsOverdue(past))
	// the stored status did not move.
	assert.Equal(t, RentalActive, rental.Status)

	rental.Status = RentalReturned
	assert.Equal(t, RentalReturned, rental.EffectiveStatus(past))
}

// TestRentalMarkReturned covers the return transition and its late fee.
func TestRentalMarkReturned(t *testing.T) {
	t.Run("should pass: on time return has no fee", func(t *testing.T) {
		rental := validTestRental()
		returnedAt := rental.DueDate.AddDate(0, 0, -1)
		require.NoError(t, rental.MarkReturned(returnedAt, 1))
		assert.Equal(t, RentalReturned, rental.Status)
		require.NotNil(t, rental.ReturnDate)
		assert.Equal(t, returnedAt, *rental.ReturnDate)
		assert.Equal(t, 0, rental.LateFee)
	})

	t.Run("should pass: late return pays per started day", func(t *testing.T) {
		rental := validTestRental()
		returnedAt := rental.DueDate.AddDate(0, 0, 2).Add(time.Hour)
		require.NoError(t, rental.MarkReturned(returnedAt, 1))
		assert.Equal(t, 3, rental.LateFee)
	})

	t.Run("should pass: fee scales with the per day rate", func(t *testing.T) {
		rental := validTestRental()
		returnedAt := rental.DueDate.AddDate(0, 0, 4)
		require.NoError(t, rental.MarkReturned(returnedAt, 5))
		assert.Equal(t, 20, rental.LateFee)
	})

	t.Run("should fail: double return", func(t *testing.T) {
		rental := validTestRental()
		require.NoError(t, rental.MarkReturned(rental.DueDate, 1))
		fee := rental.LateFee
		returnDate := *rental.ReturnDate
		err := rental.MarkReturned(rental.DueDate.AddDate(0, 0, 5), 1)
		assert.Equal(t, ErrAlreadyReturned, err)
		// the first return remains untouched.
		assert.Equal(t, fee, rental.LateFee)
		assert.Equal(t, returnDate, *rental.ReturnDate)
	})

	t.Run("should fail: return before the rental date", func(t *testing.T) {
		rental := validTestRental()
		err := rental.MarkReturned(rental.RentalDate.AddDate(0, 0, -1), 1)
		assert.True(t, IsValidationError(err))
		assert.Equal(t, RentalActive, rental.Status)
	})
}

// TestRentalUpdateStatus covers the administrative status corrections.
func TestRentalUpdateStatus(t *testing.T) {
	t.Run("should pass: force overdue on active rental", func(t *testing.T) {
		rental := validTestRental()
		require.NoError(t, rental.UpdateStatus(testNow, RentalOverdue, "flagged by librarian"))
		assert.Equal(t, RentalOverdue, rental.Status)
		assert.Equal(t, "flagged by librarian", rental.Notes)
		assert.Nil(t, rental.ReturnDate)
	})

	t.Run("should pass: force returned stamps the return date", func(t *testing.T) {
		rental := validTestRental()
		require.NoError(t, rental.UpdateStatus(testNow, RentalReturned, ""))
		assert.Equal(t, RentalReturned, rental.Status)
		require.NotNil(t, rental.ReturnDate)
		assert.Equal(t, testNow, *rental.ReturnDate)
		// the forced transition never charges a fee.
		assert.Equal(t, 0, rental.LateFee)
	})

	t.Run("should fail: returned is terminal", func(t *testing.T) {
		rental := validTestRental()
		require.NoError(t, rental.UpdateStatus(testNow, RentalReturned, ""))
		err := rental.UpdateStatus(testNow, RentalActive, "")
		assert.Equal(t, ErrReturnedIsFinal, err)
		assert.Equal(t, RentalReturned, rental.Status)
	})

	t.Run("should pass: re-asserting returned is allowed", func(t *testing.T) {
		rental := validTestRental()
		require.NoError(t, rental.UpdateStatus(testNow, RentalReturned, ""))
		stamped := *rental.ReturnDate
		require.NoError(t, rental.UpdateStatus(testNow.AddDate(0, 0, 1), RentalReturned, ""))
		// the original return date is kept.
		assert.Equal(t, stamped, *rental.ReturnDate)
	})

	t.Run("should fail: unknown status", func(t *testing.T) {
		rental := validTestRental()
		err := rental.UpdateStatus(testNow, RentalStatus("lost"), "")
		assert.True(t, IsValidationError(err))
	})
}

// TestRentalDerive ensures the derived view fields land on the record
// while the stored enum stays untouched.
func TestRentalDerive(t *testing.T) {
	t.Run("active rental past due reports overdue", func(t *testing.T) {
		rental := validTestRental()
		now := rental.DueDate.AddDate(0, 0, 6)
		rental.Derive(now)
		assert.Equal(t, 6, rental.OverdueDays)
		assert.True(t, rental.Overdue)
		assert.Equal(t, 20, rental.DurationDays)
		assert.Equal(t, RentalActive, rental.Status)
	})

	t.Run("active rental before due stays clean", func(t *testing.T) {
		rental := validTestRental()
		rental.Derive(rental.DueDate.AddDate(0, 0, -1))
		assert.Equal(t, 0, rental.OverdueDays)
		assert.False(t, rental.Overdue)
	})

	t.Run("returned rental is never overdue", func(t *testing.T) {
		rental := validTestRental()
		require.NoError(t, rental.MarkReturned(rental.DueDate, 1))
		rental.Derive(rental.DueDate.AddDate(0, 0, 30))
		assert.Equal(t, 0, rental.OverdueDays)
		assert.False(t, rental.Overdue)
		// duration freezes on the return date.
		assert.Equal(t, 14, rental.DurationDays)
	})
}

// TestRentalDuration ensures the length computation prefers the return date.
func TestRentalDuration(t *testing.T) {
	rental := validTestRental()
	assert.Equal(t, 7, rental.Duration(rental.RentalDate.AddDate(0, 0, 7)))

	returnedAt := rental.RentalDate.AddDate(0, 0, 3)
	rental.ReturnDate = &returnedAt
	// once returned the current clock no longer matters.
	assert.Equal(t, 3, rental.Duration(rental.RentalDate.AddDate(0, 0, 30)))
}
