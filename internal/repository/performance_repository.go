// Package repository contains data access logic for domain entities. This file
// defines repository methods for performances. A performance schedules one
// play in one hall at a specific show time; its available seat count is a
// live derived value and is computed inside the queries, never stored.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// ErrPerformanceNotFound indicates that a performance was not located in the DB.
var ErrPerformanceNotFound = errors.New("performance not found")

// PerformanceRepo manages persistence for performances.
type PerformanceRepo struct {
	db *sql.DB
}

// NewPerformanceRepo constructs a PerformanceRepo bound to the given database.
func NewPerformanceRepo(db *sql.DB) *PerformanceRepo {
	return &PerformanceRepo{db: db}
}

// PerformanceFilter narrows List results.  Date matches the calendar
// day of the show time; PlayID matches performances of one play.
type PerformanceFilter struct {
	Date   *time.Time
	PlayID *uint64
}

// PerformanceListItem is the list view of a performance with the
// derived available seat count attached.
type PerformanceListItem struct {
	ID             uint64    `json:"id"`
	ShowTime       time.Time `json:"show_time"`
	PlayID         uint64    `json:"play"`
	HallID         uint64    `json:"theatre_hall"`
	PlayTitle      string    `json:"play_title"`
	HallName       string    `json:"theatre_hall_name"`
	HallTotalSeats uint32    `json:"theatre_hall_total_seats"`
	AvailableSeats int64     `json:"available_seats"`
}

// SeatRef identifies one sold seat in a performance detail view.
type SeatRef struct {
	Row  uint32 `json:"row"`
	Seat uint32 `json:"seat"`
}

// PerformanceDetail is the detail view: the play and hall are embedded
// and the sold seats are listed so clients can render occupancy.
type PerformanceDetail struct {
	ID             uint64    `json:"id"`
	ShowTime       time.Time `json:"show_time"`
	PlayID         uint64    `json:"play_id"`
	PlayTitle      string    `json:"play_title"`
	HallID         uint64    `json:"theatre_hall_id"`
	HallName       string    `json:"theatre_hall_name"`
	HallRows       uint32    `json:"theatre_hall_rows"`
	HallSeats      uint32    `json:"theatre_hall_seats_in_row"`
	HallTotalSeats uint32    `json:"theatre_hall_total_seats"`
	AvailableSeats int64     `json:"available_seats"`
	TakenPlaces    []SeatRef `json:"taken_places"`
}

// Create inserts a new performance and populates its generated ID.
// The referenced play and hall must exist; a broken reference surfaces
// as the driver's foreign key error.
func (r *PerformanceRepo) Create(ctx context.Context, p *model.Performance) error {
	const q = `INSERT INTO performances (play_id, hall_id, show_time) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.PlayID, p.HallID, p.ShowTime.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// Update rewrites a performance's play, hall and show time.  Returns
// ErrPerformanceNotFound when the row does not exist.
func (r *PerformanceRepo) Update(ctx context.Context, p *model.Performance) error {
	const q = `UPDATE performances SET play_id = ?, hall_id = ?, show_time = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, p.PlayID, p.HallID, p.ShowTime.UTC(), p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM performances WHERE id = ?`, p.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrPerformanceNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a performance.  Its tickets go with it through the
// cascading foreign key.
func (r *PerformanceRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM performances WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPerformanceNotFound
	}
	return nil
}

// GetWithHall loads a performance together with the hall it is
// scheduled in.  The booking path uses it to validate requested seats
// against the hall geometry before committing anything.
func (r *PerformanceRepo) GetWithHall(ctx context.Context, id uint64) (*model.Performance, *model.Hall, error) {
	const q = `SELECT p.id, p.play_id, p.hall_id, p.show_time,
	                  h.id, h.name, h.seat_rows, h.seat_cols
	           FROM performances p
	           JOIN halls h ON h.id = p.hall_id
	           WHERE p.id = ?`
	var p model.Performance
	var h model.Hall
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.PlayID, &p.HallID, &p.ShowTime,
		&h.ID, &h.Name, &h.Rows, &h.SeatsPerRow,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrPerformanceNotFound
		}
		return nil, nil, err
	}
	return &p, &h, nil
}

// List returns performances matching the filter with hall capacity and
// the live available seat count computed in the query, so the value is
// consistent with the ticket table at read time.
func (r *PerformanceRepo) List(ctx context.Context, f PerformanceFilter) ([]PerformanceListItem, error) {
	q := `SELECT p.id, p.show_time, p.play_id, p.hall_id, pl.title, h.name,
	             h.seat_rows * h.seat_cols,
	             h.seat_rows * h.seat_cols - COUNT(t.id)
	      FROM performances p
	      JOIN plays pl ON pl.id = p.play_id
	      JOIN halls h ON h.id = p.hall_id
	      LEFT JOIN tickets t ON t.performance_id = p.id`
	args := make([]interface{}, 0, 2)
	where := ""
	if f.Date != nil {
		where = ` WHERE DATE(p.show_time) = ?`
		args = append(args, f.Date.UTC().Format("2006-01-02"))
	}
	if f.PlayID != nil {
		if where == "" {
			where = ` WHERE p.play_id = ?`
		} else {
			where += ` AND p.play_id = ?`
		}
		args = append(args, *f.PlayID)
	}
	q += where + ` GROUP BY p.id, p.show_time, p.play_id, p.hall_id, pl.title, h.name, h.seat_rows, h.seat_cols
	      ORDER BY p.show_time, p.id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]PerformanceListItem, 0)
	for rows.Next() {
		var it PerformanceListItem
		if err := rows.Scan(&it.ID, &it.ShowTime, &it.PlayID, &it.HallID,
			&it.PlayTitle, &it.HallName, &it.HallTotalSeats, &it.AvailableSeats); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetDetail loads one performance with its embedded play/hall info and
// the list of sold seats ordered by row then seat.  Returns
// ErrPerformanceNotFound when the performance does not exist.
func (r *PerformanceRepo) GetDetail(ctx context.Context, id uint64) (*PerformanceDetail, error) {
	const q = `SELECT p.id, p.show_time, pl.id, pl.title,
	                  h.id, h.name, h.seat_rows, h.seat_cols
	           FROM performances p
	           JOIN plays pl ON pl.id = p.play_id
	           JOIN halls h ON h.id = p.hall_id
	           WHERE p.id = ?`
	var det PerformanceDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &det.ShowTime, &det.PlayID, &det.PlayTitle,
		&det.HallID, &det.HallName, &det.HallRows, &det.HallSeats,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPerformanceNotFound
		}
		return nil, err
	}
	det.HallTotalSeats = det.HallRows * det.HallSeats

	const qSeats = `SELECT row_no, seat_no FROM tickets WHERE performance_id = ? ORDER BY row_no, seat_no`
	rows, err := r.db.QueryContext(ctx, qSeats, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	det.TakenPlaces = make([]SeatRef, 0)
	for rows.Next() {
		var s SeatRef
		if err := rows.Scan(&s.Row, &s.Seat); err != nil {
			return nil, err
		}
		det.TakenPlaces = append(det.TakenPlaces, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	det.AvailableSeats = int64(det.HallTotalSeats) - int64(len(det.TakenPlaces))
	return &det, nil
}

// TicketSummary describes one ticket with enough show context for the
// confirmation event and reservation detail views.
type TicketSummary struct {
	PlayTitle string
	ShowTime  time.Time
	HallName  string
}

// GetSummary returns the play title, show time and hall name for a
// performance.  Used when assembling notification payloads.
func (r *PerformanceRepo) GetSummary(ctx context.Context, id uint64) (*TicketSummary, error) {
	const q = `SELECT pl.title, p.show_time, h.name
	           FROM performances p
	           JOIN plays pl ON pl.id = p.play_id
	           JOIN halls h ON h.id = p.hall_id
	           WHERE p.id = ?`
	var s TicketSummary
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.PlayTitle, &s.ShowTime, &s.HallName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPerformanceNotFound
		}
		return nil, err
	}
	return &s, nil
}
