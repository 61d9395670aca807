package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// ErrGenreNotFound is returned when a genre lookup fails.
var ErrGenreNotFound = errors.New("genre not found")

// ErrGenreExists signals a duplicate genre name.
var ErrGenreExists = errors.New("genre already exists")

// GenreRepo provides persistence for genres.
type GenreRepo struct {
	db *sql.DB
}

// NewGenreRepo constructs a GenreRepo with the given DB handle.
func NewGenreRepo(db *sql.DB) *GenreRepo {
	return &GenreRepo{db: db}
}

// Create inserts a new genre.  Genre names carry a unique key, so a
// repeated name is reported as ErrGenreExists.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	const q = `INSERT INTO genres (name) VALUES (?)`
	res, err := r.db.ExecContext(ctx, q, g.Name)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrGenreExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// GetByID retrieves a genre by ID, returning ErrGenreNotFound when no
// row exists.
func (r *GenreRepo) GetByID(ctx context.Context, id uint64) (*model.Genre, error) {
	const q = `SELECT id, name FROM genres WHERE id = ?`
	var g model.Genre
	err := r.db.QueryRowContext(ctx, q, id).Scan(&g.ID, &g.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}
	return &g, nil
}

// ListAll returns every genre ordered by name.
func (r *GenreRepo) ListAll(ctx context.Context) ([]model.Genre, error) {
	const q = `SELECT id, name FROM genres ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Genre, 0)
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
