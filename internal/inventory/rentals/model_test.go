package rentals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRental_ReturnOne(t *testing.T) {
	today := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	t.Run("last unit closes the rental", func(t *testing.T) {
		r := &Rental{Quantity: 1, Status: StatusBorrowed}
		assert.True(t, r.ReturnOne(today))
		assert.Equal(t, 0, r.Quantity)
		assert.Equal(t, StatusReturned, r.Status)
		assert.True(t, r.ReturnDate.Valid)
		assert.Equal(t, today, r.ReturnDate.Time)
	})

	t.Run("one unit per call", func(t *testing.T) {
		r := &Rental{Quantity: 3, Status: StatusBorrowed}
		assert.True(t, r.ReturnOne(today))
		assert.Equal(t, 2, r.Quantity)
		assert.Equal(t, StatusBorrowed, r.Status)
		assert.False(t, r.ReturnDate.Valid)
	})

	t.Run("returned is a no-op", func(t *testing.T) {
		r := &Rental{Quantity: 0, Status: StatusReturned}
		assert.False(t, r.ReturnOne(today))
		assert.Equal(t, 0, r.Quantity)
	})

	t.Run("invariant holds until closed", func(t *testing.T) {
		r := &Rental{Quantity: 4, Status: StatusBorrowed}
		for r.ReturnOne(today) {
			if r.Status == StatusBorrowed {
				assert.Greater(t, r.Quantity, 0)
			} else {
				assert.Equal(t, 0, r.Quantity)
				assert.True(t, r.ReturnDate.Valid)
			}
		}
		assert.Equal(t, StatusReturned, r.Status)
	})
}

func TestRental_Overdue(t *testing.T) {
	today := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	r := &Rental{Status: StatusBorrowed, ExpectedReturnDate: today}
	assert.False(t, r.Overdue(today))
	r.ExpectedReturnDate = today.AddDate(0, 0, -1)
	assert.True(t, r.Overdue(today))
	r.Status = StatusReturned
	assert.False(t, r.Overdue(today))
}

func TestDateOf(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 2024-05-09 20:00 UTC は東京では 5/10
	got := DateOf(time.Date(2024, 5, 9, 20, 0, 0, 0, time.UTC), tokyo)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), got)
}
