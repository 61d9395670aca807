// Package booking implements the reservation transaction manager: it
// validates a batch of seat requests against hall geometry and commits
// the reservation with all of its tickets as one atomic unit.  The
// all-or-nothing rule is the core design decision of this service; a
// single bad item rejects the whole batch before anything is written,
// and a storage-level seat collision (including one raced in by a
// concurrent request) rolls the whole unit back.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// ErrEmptyBooking is returned when a booking request contains no tickets.
var ErrEmptyBooking = errors.New("at least one ticket is required")

// SeatRequest is one desired seat in a booking batch.
type SeatRequest struct {
	PerformanceID uint64 `json:"performance"`
	Row           uint32 `json:"row"`
	Seat          uint32 `json:"seat"`
}

// RequestError reports a validation failure for one item of the batch.
// Index is the zero-based position of the offending ticket; Fields
// qualifies which of its fields were rejected and why.
type RequestError struct {
	Index  int
	Fields model.FieldErrors
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("ticket %d: %s", e.Index, e.Fields.Error())
}

// PerformanceStore resolves a performance together with its hall so
// seat requests can be checked against the hall geometry.
type PerformanceStore interface {
	GetWithHall(ctx context.Context, id uint64) (*model.Performance, *model.Hall, error)
}

// ReservationStore commits a reservation and all of its tickets
// atomically.  Implementations must enforce seat uniqueness at write
// time and surface a collision as *repository.SeatTakenError.
type ReservationStore interface {
	CreateWithTickets(ctx context.Context, userID uint64, tickets []model.Ticket) (*model.Reservation, error)
}

// Notifier delivers the post-commit confirmation.  Delivery is
// best-effort: the booking never depends on it.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, res *model.Reservation) error
}

// Service is the reservation transaction manager.  It holds no state
// between calls; correctness under concurrency comes from the store's
// transactional commit and unique key, not from in-process locking.
type Service struct {
	performances PerformanceStore
	reservations ReservationStore
	notifier     Notifier
}

// NewService constructs a Service.  The notifier may be nil, in which
// case successful bookings simply skip notification.
func NewService(performances PerformanceStore, reservations ReservationStore, notifier Notifier) *Service {
	if performances == nil || reservations == nil {
		panic("nil store passed to booking.NewService")
	}
	return &Service{performances: performances, reservations: reservations, notifier: notifier}
}

type seatKey struct {
	performanceID uint64
	row           uint32
	seat          uint32
}

// Book validates every request item and, only when the whole batch
// passes, commits the reservation with all tickets in one unit.
// Validation failures identify the item and field; nothing is written
// for a batch containing any invalid item.  After a successful commit
// the notifier fires exactly once; its failure is logged and never
// affects the returned reservation.
func (s *Service) Book(ctx context.Context, userID uint64, requests []SeatRequest) (*model.Reservation, error) {
	if len(requests) == 0 {
		return nil, ErrEmptyBooking
	}

	// hall geometry per performance, resolved once per batch
	halls := make(map[uint64]*model.Hall)
	seen := make(map[seatKey]int)
	tickets := make([]model.Ticket, 0, len(requests))

	for i, rq := range requests {
		hall, ok := halls[rq.PerformanceID]
		if !ok {
			_, h, err := s.performances.GetWithHall(ctx, rq.PerformanceID)
			if err != nil {
				// Only a missing performance is the caller's fault; a
				// failing store is not a validation error.
				if errors.Is(err, repository.ErrPerformanceNotFound) {
					return nil, &RequestError{
						Index:  i,
						Fields: model.FieldErrors{"performance": fmt.Sprintf("performance %d not found", rq.PerformanceID)},
					}
				}
				return nil, err
			}
			hall = h
			halls[rq.PerformanceID] = hall
		}
		if err := model.ValidateTicket(rq.Row, rq.Seat, hall); err != nil {
			var fe model.FieldErrors
			if !errors.As(err, &fe) {
				return nil, err
			}
			return nil, &RequestError{Index: i, Fields: fe}
		}
		key := seatKey{rq.PerformanceID, rq.Row, rq.Seat}
		if first, dup := seen[key]; dup {
			return nil, &RequestError{
				Index:  i,
				Fields: model.FieldErrors{"seat": fmt.Sprintf("duplicates ticket %d in the same request", first)},
			}
		}
		seen[key] = i
		tickets = append(tickets, model.Ticket{PerformanceID: rq.PerformanceID, Row: rq.Row, Seat: rq.Seat})
	}

	res, err := s.reservations.CreateWithTickets(ctx, userID, tickets)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.ReservationConfirmed(ctx, res); err != nil {
			log.Printf("booking: confirmation notify failed for reservation %d: %v", res.ID, err)
		}
	}
	return res, nil
}
