package model

import (
	"fmt"
	"sort"
	"strings"
)

// Ticket is a claim on one specific seat for one specific performance.
// For a fixed performance the (row, seat) pair is unique across all
// tickets; the database enforces this with a unique key so that two
// concurrent bookings of the same seat cannot both succeed.  Tickets
// are created only as part of a reservation commit and are never
// updated in place.
//
// Fields:
//  ID            – primary key identifier.
//  PerformanceID – performance the seat is claimed for.
//  Row           – 1-based row number within the hall.
//  Seat          – 1-based seat number within the row.
//  ReservationID – owning reservation.
type Ticket struct {
	ID            uint64 // tickets.id
	PerformanceID uint64 // tickets.performance_id
	Row           uint32 // tickets.row_no
	Seat          uint32 // tickets.seat_no
	ReservationID uint64 // tickets.reservation_id
}

// FieldErrors collects validation failures keyed by the field that
// caused them.  It implements error so validators can return it
// directly; handlers serialize the map into the response body.
type FieldErrors map[string]string

// Error renders the collected failures in field order so the message
// is deterministic regardless of map iteration.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// ValidateTicket checks a candidate (row, seat) pair against the
// geometry of the hall the performance takes place in.  Row and seat
// are checked independently so a request that is wrong on both fields
// reports both violations, each with the valid range.  The check is
// pure; it never touches storage.  Returns nil when the pair fits.
func ValidateTicket(row, seat uint32, hall *Hall) error {
	errs := FieldErrors{}
	if row < 1 || row > hall.Rows {
		errs["row"] = fmt.Sprintf("row must be in range [1, %d], got %d", hall.Rows, row)
	}
	if seat < 1 || seat > hall.SeatsPerRow {
		errs["seat"] = fmt.Sprintf("seat must be in range [1, %d], got %d", hall.SeatsPerRow, seat)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
