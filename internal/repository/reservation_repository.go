package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// ReservationRepo provides persistence for reservations and the
// tickets they own.  The commit path is the one place tickets are ever
// written: a reservation row and all of its tickets appear together or
// not at all.  Seat uniqueness is guaranteed by the unique key over
// (performance_id, row_no, seat_no) on the tickets table, so a
// concurrent booking of the same seat makes exactly one of the two
// transactions fail.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateWithTickets inserts a reservation for the user and all of its
// tickets as one atomic unit.  Tickets are inserted one by one inside
// the transaction so a unique-key collision can name the exact seat
// that was lost; any failure rolls the whole unit back.  On success
// the returned reservation carries its generated ID, the commit
// timestamp and the tickets with their IDs populated.
func (r *ReservationRepo) CreateWithTickets(ctx context.Context, userID uint64, tickets []model.Ticket) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const qRes = `INSERT INTO reservations (user_id) VALUES (?)`
	res, err := tx.ExecContext(ctx, qRes, userID)
	if err != nil {
		return nil, err
	}
	resID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	const qTicket = `INSERT INTO tickets (performance_id, row_no, seat_no, reservation_id) VALUES (?, ?, ?, ?)`
	out := make([]model.Ticket, len(tickets))
	for i, t := range tickets {
		ins, err := tx.ExecContext(ctx, qTicket, t.PerformanceID, t.Row, t.Seat, resID)
		if err != nil {
			if isDuplicateKey(err) {
				return nil, &SeatTakenError{PerformanceID: t.PerformanceID, Row: t.Row, Seat: t.Seat}
			}
			return nil, err
		}
		tid, err := ins.LastInsertId()
		if err != nil {
			return nil, err
		}
		t.ID = uint64(tid)
		t.ReservationID = uint64(resID)
		out[i] = t
	}

	var createdAt time.Time
	const qSelect = `SELECT created_at FROM reservations WHERE id = ?`
	if err := tx.QueryRowContext(ctx, qSelect, resID).Scan(&createdAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return &model.Reservation{
		ID:        uint64(resID),
		UserID:    userID,
		CreatedAt: createdAt,
		Tickets:   out,
	}, nil
}

// ReservationListItem is the list view of a reservation: only the
// ticket count is exposed, not the tickets themselves.
type ReservationListItem struct {
	ID           uint64    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	TicketsCount int64     `json:"tickets_count"`
}

// TicketDetail is one ticket inside a reservation detail view,
// carrying a summary of its performance.
type TicketDetail struct {
	ID            uint64    `json:"id"`
	Row           uint32    `json:"row"`
	Seat          uint32    `json:"seat"`
	PerformanceID uint64    `json:"performance_id"`
	PlayTitle     string    `json:"play_title"`
	ShowTime      time.Time `json:"show_time"`
	HallName      string    `json:"theatre_hall_name"`
}

// ReservationDetail is the detail view of one reservation with its
// tickets expanded.
type ReservationDetail struct {
	ID        uint64         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Tickets   []TicketDetail `json:"tickets"`
}

// ListByUser returns all reservations of the given user, newest first,
// as list view items.  When no reservations exist an empty slice is
// returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationListItem, error) {
	const q = `SELECT r.id, r.created_at, COUNT(t.id)
	           FROM reservations r
	           LEFT JOIN tickets t ON t.reservation_id = r.id
	           WHERE r.user_id = ?
	           GROUP BY r.id, r.created_at
	           ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ReservationListItem, 0)
	for rows.Next() {
		var it ReservationListItem
		if err := rows.Scan(&it.ID, &it.CreatedAt, &it.TicketsCount); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByIDForUser returns a single reservation for the given user with
// its tickets and their performance summaries.  Ownership is enforced
// in the query: a reservation belonging to someone else behaves like a
// missing one and sql.ErrNoRows is returned.
func (r *ReservationRepo) GetByIDForUser(ctx context.Context, reservationID, userID uint64) (*ReservationDetail, error) {
	const q = `SELECT id, created_at FROM reservations WHERE id = ? AND user_id = ?`
	var det ReservationDetail
	if err := r.db.QueryRowContext(ctx, q, reservationID, userID).Scan(&det.ID, &det.CreatedAt); err != nil {
		return nil, err
	}

	const qTickets = `SELECT t.id, t.row_no, t.seat_no, t.performance_id, pl.title, p.show_time, h.name
	                  FROM tickets t
	                  JOIN performances p ON p.id = t.performance_id
	                  JOIN plays pl ON pl.id = p.play_id
	                  JOIN halls h ON h.id = p.hall_id
	                  WHERE t.reservation_id = ?
	                  ORDER BY t.id`
	rows, err := r.db.QueryContext(ctx, qTickets, det.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	det.Tickets = make([]TicketDetail, 0)
	for rows.Next() {
		var t TicketDetail
		if err := rows.Scan(&t.ID, &t.Row, &t.Seat, &t.PerformanceID, &t.PlayTitle, &t.ShowTime, &t.HallName); err != nil {
			return nil, err
		}
		det.Tickets = append(det.Tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &det, nil
}

// CountTickets returns the number of tickets currently sold for a
// performance.  Exposed mainly for tests and diagnostics; list and
// detail queries derive availability inline.
func (r *ReservationRepo) CountTickets(ctx context.Context, performanceID uint64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(id) FROM tickets WHERE performance_id = ?`, performanceID).Scan(&n)
	return n, err
}
