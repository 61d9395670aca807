package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// ErrHallNotFound is returned when a hall lookup fails.
var ErrHallNotFound = errors.New("hall not found")

// HallRepo provides persistence for halls.  A hall is a plain grid of
// rows by seats-per-row; both dimensions must be at least 1.
type HallRepo struct {
	db *sql.DB
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

// Create inserts a new hall.  The hall must have Name, Rows and
// SeatsPerRow set.  After insert the record is read back so the ID and
// timestamp fields are populated.
func (r *HallRepo) Create(ctx context.Context, h *model.Hall) error {
	const qInsert = `INSERT INTO halls (name, seat_rows, seat_cols) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, h.Name, h.Rows, h.SeatsPerRow)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)

	const qSelect = `SELECT id, name, seat_rows, seat_cols, created_at, updated_at FROM halls WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, h.ID).
		Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsPerRow, &h.CreatedAt, &h.UpdatedAt)
}

// GetByID retrieves a hall by its ID.  It returns ErrHallNotFound when
// no row is found.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.Hall, error) {
	const q = `SELECT id, name, seat_rows, seat_cols, created_at, updated_at FROM halls WHERE id = ?`
	var h model.Hall
	err := r.db.QueryRowContext(ctx, q, id).Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsPerRow, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return &h, nil
}

// ListAll returns every hall ordered by id.
func (r *HallRepo) ListAll(ctx context.Context) ([]*model.Hall, error) {
	const q = `SELECT id, name, seat_rows, seat_cols, created_at, updated_at FROM halls ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Hall
	for rows.Next() {
		h := new(model.Hall)
		if err := rows.Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsPerRow, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes a hall's name and geometry.  Shrinking the grid below
// the highest (row, seat) already sold in any performance of this hall
// would retroactively invalidate those tickets, so the update runs in a
// transaction: the maximum sold position is read first and ErrConflict
// is returned when the new geometry does not cover it.  Growing the
// grid is always allowed.
func (r *HallRepo) Update(ctx context.Context, h *model.Hall) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const qMax = `SELECT COALESCE(MAX(t.row_no), 0), COALESCE(MAX(t.seat_no), 0)
	              FROM tickets t
	              JOIN performances p ON p.id = t.performance_id
	              WHERE p.hall_id = ?`
	var maxRow, maxSeat uint32
	if err := tx.QueryRowContext(ctx, qMax, h.ID).Scan(&maxRow, &maxSeat); err != nil {
		return err
	}
	if h.Rows < maxRow || h.SeatsPerRow < maxSeat {
		return ErrConflict
	}

	const qUpdate = `UPDATE halls
	                 SET name = ?, seat_rows = ?, seat_cols = ?, updated_at = CURRENT_TIMESTAMP
	                 WHERE id = ?`
	res, err := tx.ExecContext(ctx, qUpdate, h.Name, h.Rows, h.SeatsPerRow, h.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// row may exist with identical values; distinguish from missing
		var exists uint64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM halls WHERE id = ?`, h.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrHallNotFound
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
