package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(errors.New("Error 1062 (23000): Duplicate entry '7-1-1' for key 'tickets.uq_performance_seat'")))
	assert.False(t, isDuplicateKey(errors.New("Error 1452 (23000): Cannot add or update a child row")))
	assert.False(t, isDuplicateKey(nil))
}

func TestSeatTakenError_NamesTheSeat(t *testing.T) {
	err := &SeatTakenError{PerformanceID: 7, Row: 3, Seat: 12}
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), "seat 12")
	assert.Contains(t, err.Error(), "performance 7")

	var st *SeatTakenError
	assert.True(t, errors.As(error(err), &st))
}
