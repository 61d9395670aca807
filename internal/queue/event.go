// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published after a reservation commit.
// It carries enough information for downstream consumers to log or
// notify the customer without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID uint64            `json:"reservation_id"`
	UserID        uint64            `json:"user_id"`
	CreatedAt     string            `json:"created_at"`
	Tickets       []ConfirmedTicket `json:"tickets"`
}

// ConfirmedTicket describes one booked seat inside the event.
type ConfirmedTicket struct {
	PlayTitle string `json:"play_title"`
	ShowTime  string `json:"show_time"`
	HallName  string `json:"theatre_hall"`
	Row       uint32 `json:"row"`
	Seat      uint32 `json:"seat"`
}
