package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// ErrPlayNotFound is returned when a play lookup fails.
var ErrPlayNotFound = errors.New("play not found")

// PlayRepo provides persistence for plays and their actor/genre links.
// Links live in the play_actors and play_genres join tables and are
// rewritten as a whole when a play is updated.
type PlayRepo struct {
	db *sql.DB
}

// NewPlayRepo constructs a PlayRepo with the given DB handle.
func NewPlayRepo(db *sql.DB) *PlayRepo {
	return &PlayRepo{db: db}
}

// PlayFilter narrows List results.  Title matches a substring; GenreIDs
// and ActorIDs match plays linked to any of the given ids.
type PlayFilter struct {
	Title    string
	GenreIDs []uint64
	ActorIDs []uint64
}

// PlayListItem is the list view of a play: genres and actors are
// flattened to display names instead of embedded objects.
type PlayListItem struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	Actors      []string `json:"actors"`
}

// Create inserts a play together with its actor and genre links in one
// transaction.  The referenced actors and genres must already exist;
// a broken reference surfaces as the driver's foreign key error.
func (r *PlayRepo) Create(ctx context.Context, p *model.Play, actorIDs, genreIDs []uint64) error {
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

	const qInsert = `INSERT INTO plays (title, description) VALUES (?, ?)`
	res, err := tx.ExecContext(ctx, qInsert, p.Title, p.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	if err := insertLinks(ctx, tx, "play_actors", "actor_id", p.ID, actorIDs); err != nil {
		return err
	}
	if err := insertLinks(ctx, tx, "play_genres", "genre_id", p.ID, genreIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update rewrites a play's own fields and replaces both link sets.
// Returns ErrPlayNotFound when the play does not exist.
func (r *PlayRepo) Update(ctx context.Context, p *model.Play, actorIDs, genreIDs []uint64) error {
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

	var exists uint64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM plays WHERE id = ?`, p.ID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPlayNotFound
		}
		return err
	}

	const qUpdate = `UPDATE plays SET title = ?, description = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, qUpdate, p.Title, p.Description, p.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM play_actors WHERE play_id = ?`, p.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM play_genres WHERE play_id = ?`, p.ID); err != nil {
		return err
	}
	if err := insertLinks(ctx, tx, "play_actors", "actor_id", p.ID, actorIDs); err != nil {
		return err
	}
	if err := insertLinks(ctx, tx, "play_genres", "genre_id", p.ID, genreIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a play.  Performances of the play, and through them
// their tickets, are removed by cascading foreign keys.
func (r *PlayRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plays WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPlayNotFound
	}
	return nil
}

// GetByID loads a play with its full actor and genre objects for the
// detail view.  Returns ErrPlayNotFound when no row exists.
func (r *PlayRepo) GetByID(ctx context.Context, id uint64) (*model.Play, error) {
	const q = `SELECT id, title, description FROM plays WHERE id = ?`
	var p model.Play
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Title, &p.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayNotFound
		}
		return nil, err
	}

	const qActors = `SELECT a.id, a.first_name, a.last_name
	                 FROM play_actors pa
	                 JOIN actors a ON a.id = pa.actor_id
	                 WHERE pa.play_id = ?
	                 ORDER BY a.last_name, a.first_name`
	arows, err := r.db.QueryContext(ctx, qActors, id)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	p.Actors = make([]model.Actor, 0)
	for arows.Next() {
		var a model.Actor
		if err := arows.Scan(&a.ID, &a.FirstName, &a.LastName); err != nil {
			return nil, err
		}
		p.Actors = append(p.Actors, a)
	}
	if err := arows.Err(); err != nil {
		return nil, err
	}

	const qGenres = `SELECT g.id, g.name
	                 FROM play_genres pg
	                 JOIN genres g ON g.id = pg.genre_id
	                 WHERE pg.play_id = ?
	                 ORDER BY g.name`
	grows, err := r.db.QueryContext(ctx, qGenres, id)
	if err != nil {
		return nil, err
	}
	defer grows.Close()
	p.Genres = make([]model.Genre, 0)
	for grows.Next() {
		var g model.Genre
		if err := grows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		p.Genres = append(p.Genres, g)
	}
	if err := grows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns plays matching the filter as list view items.  Genre
// and actor names are loaded in bulk for the whole page instead of
// per play.
func (r *PlayRepo) List(ctx context.Context, f PlayFilter) ([]PlayListItem, error) {
	q := `SELECT DISTINCT p.id, p.title, p.description FROM plays p`
	args := make([]interface{}, 0, 4)
	var conds []string
	if len(f.GenreIDs) > 0 {
		q += ` JOIN play_genres pg ON pg.play_id = p.id`
		conds = append(conds, `pg.genre_id IN (`+placeholders(len(f.GenreIDs))+`)`)
		for _, id := range f.GenreIDs {
			args = append(args, id)
		}
	}
	if len(f.ActorIDs) > 0 {
		q += ` JOIN play_actors pa ON pa.play_id = p.id`
		conds = append(conds, `pa.actor_id IN (`+placeholders(len(f.ActorIDs))+`)`)
		for _, id := range f.ActorIDs {
			args = append(args, id)
		}
	}
	if strings.TrimSpace(f.Title) != "" {
		conds = append(conds, `p.title LIKE ?`)
		args = append(args, "%"+strings.TrimSpace(f.Title)+"%")
	}
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY p.title`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]PlayListItem, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var it PlayListItem
		if err := rows.Scan(&it.ID, &it.Title, &it.Description); err != nil {
			return nil, err
		}
		it.Genres = []string{}
		it.Actors = []string{}
		index[it.ID] = len(items)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]interface{}, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	ph := placeholders(len(items))

	grows, err := r.db.QueryContext(ctx,
		`SELECT pg.play_id, g.name FROM play_genres pg JOIN genres g ON g.id = pg.genre_id
		 WHERE pg.play_id IN (`+ph+`) ORDER BY pg.play_id, g.name`, ids...)
	if err != nil {
		return nil, err
	}
	defer grows.Close()
	for grows.Next() {
		var pid uint64
		var name string
		if err := grows.Scan(&pid, &name); err != nil {
			return nil, err
		}
		if idx, ok := index[pid]; ok {
			items[idx].Genres = append(items[idx].Genres, name)
		}
	}
	if err := grows.Err(); err != nil {
		return nil, err
	}

	arows, err := r.db.QueryContext(ctx,
		`SELECT pa.play_id, a.first_name, a.last_name FROM play_actors pa JOIN actors a ON a.id = pa.actor_id
		 WHERE pa.play_id IN (`+ph+`) ORDER BY pa.play_id, a.last_name, a.first_name`, ids...)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var pid uint64
		var first, last string
		if err := arows.Scan(&pid, &first, &last); err != nil {
			return nil, err
		}
		if idx, ok := index[pid]; ok {
			items[idx].Actors = append(items[idx].Actors, first+" "+last)
		}
	}
	if err := arows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// insertLinks writes play link rows in a single multi-row statement.
// Passing no ids is a no-op.
func insertLinks(ctx context.Context, tx *sql.Tx, table, column string, playID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `INSERT INTO ` + table + ` (play_id, ` + column + `) VALUES `
	args := make([]interface{}, 0, len(ids)*2)
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, playID, id)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// placeholders returns n comma separated "?" markers for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
