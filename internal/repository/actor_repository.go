package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// ErrActorNotFound is returned when an actor lookup fails.
var ErrActorNotFound = errors.New("actor not found")

// ActorRepo provides persistence for actors.
type ActorRepo struct {
	db *sql.DB
}

// NewActorRepo constructs an ActorRepo with the given DB handle.
func NewActorRepo(db *sql.DB) *ActorRepo {
	return &ActorRepo{db: db}
}

// Create inserts a new actor and populates its generated ID.
func (r *ActorRepo) Create(ctx context.Context, a *model.Actor) error {
	const q = `INSERT INTO actors (first_name, last_name) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.FirstName, a.LastName)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByID retrieves an actor by ID, returning ErrActorNotFound when
// no row exists.
func (r *ActorRepo) GetByID(ctx context.Context, id uint64) (*model.Actor, error) {
	const q = `SELECT id, first_name, last_name FROM actors WHERE id = ?`
	var a model.Actor
	err := r.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.FirstName, &a.LastName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActorNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListAll returns every actor ordered by last then first name.
func (r *ActorRepo) ListAll(ctx context.Context) ([]model.Actor, error) {
	const q = `SELECT id, first_name, last_name FROM actors ORDER BY last_name, first_name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Actor, 0)
	for rows.Next() {
		var a model.Actor
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
