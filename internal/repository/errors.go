// Package repository defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrConflict signals that an operation cannot proceed
// because of dependent records (e.g. shrinking a hall below seats
// that are already sold), while SeatTakenError identifies the exact
// seat that lost a uniqueness race.
package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConflict is returned when an update or delete cannot be
// performed because of conflicting state, such as shrinking a hall
// below its highest sold seat. Handlers should translate this into
// an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// SeatTakenError reports that a ticket insert collided with an
// existing (performance, row, seat) entry. The collision is detected
// by the database unique key, so it also covers seats raced in by a
// concurrent booking between validation and commit.
type SeatTakenError struct {
	PerformanceID uint64
	Row           uint32
	Seat          uint32
}

func (e *SeatTakenError) Error() string {
	return fmt.Sprintf("seat row %d seat %d is already sold for performance %d", e.Row, e.Seat, e.PerformanceID)
}

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (error 1062). The driver surfaces the code in the message, so the
// substring check mirrors how conflicts are detected elsewhere in
// handlers.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
