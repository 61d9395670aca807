package model

import "time"

// Hall describes a theatre auditorium as a plain grid of seats.
// Every row has the same number of seats, so the capacity is
// fully determined by Rows and SeatsPerRow.  Both dimensions are
// at least 1 for a persisted hall.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – human readable hall name.
//  Rows        – number of seating rows (halls.seat_rows).
//  SeatsPerRow – seats in each row (halls.seat_cols).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Hall struct {
	ID          uint64    // halls.id
	Name        string    // halls.name
	Rows        uint32    // halls.seat_rows
	SeatsPerRow uint32    // halls.seat_cols
	CreatedAt   time.Time // halls.created_at
	UpdatedAt   time.Time // halls.updated_at
}

// TotalSeats returns the capacity of the hall.  Available seats for a
// performance are always derived as TotalSeats minus sold tickets and
// never stored.
func (h *Hall) TotalSeats() uint32 {
	return h.Rows * h.SeatsPerRow
}
