package model

import "time"

// Reservation is a user's atomic purchase unit.  It owns one or more
// tickets exclusively and is created together with all of them in a
// single transaction; there is no partial edit after creation.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who made the reservation.
//  CreatedAt – commit timestamp set by the database.
//  Tickets   – tickets owned by this reservation, in request order.
type Reservation struct {
	ID        uint64    // reservations.id
	UserID    uint64    // reservations.user_id
	CreatedAt time.Time // reservations.created_at
	Tickets   []Ticket  // via tickets.reservation_id
}
