//go:build integration

package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/iliyamo/theatre-reservation/internal/database"
	"github.com/iliyamo/theatre-reservation/internal/model"
)

// These tests run the repositories against a real MySQL started in a
// container, so the behavior that mocks cannot reach is exercised for
// real: the unique-key collision on tickets, the rollback of a partly
// written batch and the shrink guard reading sold seats inside its
// transaction.  Run them with:
//
//	go test -tags integration ./internal/repository
//
// Docker must be available on the host.

var ddl = []string{
	`CREATE TABLE users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL DEFAULT 'CUSTOMER',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE halls (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		seat_rows INT UNSIGNED NOT NULL,
		seat_cols INT UNSIGNED NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE plays (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL
	)`,
	`CREATE TABLE performances (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		play_id BIGINT UNSIGNED NOT NULL,
		hall_id BIGINT UNSIGNED NOT NULL,
		show_time DATETIME NOT NULL,
		CONSTRAINT fk_perf_play FOREIGN KEY (play_id) REFERENCES plays (id),
		CONSTRAINT fk_perf_hall FOREIGN KEY (hall_id) REFERENCES halls (id)
	)`,
	`CREATE TABLE reservations (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_res_user FOREIGN KEY (user_id) REFERENCES users (id)
	)`,
	`CREATE TABLE tickets (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		performance_id BIGINT UNSIGNED NOT NULL,
		row_no INT UNSIGNED NOT NULL,
		seat_no INT UNSIGNED NOT NULL,
		reservation_id BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY uq_ticket_seat (performance_id, row_no, seat_no),
		CONSTRAINT fk_ticket_perf FOREIGN KEY (performance_id) REFERENCES performances (id),
		CONSTRAINT fk_ticket_res FOREIGN KEY (reservation_id) REFERENCES reservations (id)
	)`,
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.4",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret",
			"MYSQL_DATABASE":      "theatre",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
			WithStartupTimeout(3 * time.Minute),
	}
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "3306")
	require.NoError(t, err)

	// The server can still be finishing its init right after the log
	// line appears, so retry the first connection for a while.
	var db *sql.DB
	require.Eventually(t, func() bool {
		db, err = database.Open("root", "secret", host, port.Port(), "theatre")
		return err == nil
	}, 2*time.Minute, 2*time.Second, "mysql never became reachable")
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range ddl {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
	return db
}

// seedPerformance creates a user, a hall with the given geometry, a
// play and one performance, returning the performance and user IDs.
func seedPerformance(t *testing.T, db *sql.DB, rows, cols uint32) (perfID, userID, hallID uint64) {
	t.Helper()
	ctx := context.Background()

	res, err := db.ExecContext(ctx,
		`INSERT INTO users (email, password) VALUES (?, ?)`,
		time.Now().Format("150405.000000")+"@example.com", "x")
	require.NoError(t, err)
	uid, err := res.LastInsertId()
	require.NoError(t, err)

	hall := &model.Hall{Name: "Main Stage", Rows: rows, SeatsPerRow: cols}
	require.NoError(t, NewHallRepo(db).Create(ctx, hall))

	res, err = db.ExecContext(ctx,
		`INSERT INTO plays (title, description) VALUES (?, ?)`, "Hamlet", "tragedy")
	require.NoError(t, err)
	playID, err := res.LastInsertId()
	require.NoError(t, err)

	perf := &model.Performance{
		PlayID:   uint64(playID),
		HallID:   hall.ID,
		ShowTime: time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second),
	}
	require.NoError(t, NewPerformanceRepo(db).Create(ctx, perf))

	return perf.ID, uint64(uid), hall.ID
}

func countRows(t *testing.T, db *sql.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestIntegration_CreateWithTickets(t *testing.T) {
	db := startMySQL(t)
	ctx := context.Background()

	perfID, userID, _ := seedPerformance(t, db, 10, 12)
	repo := NewReservationRepo(db)

	t.Run("commit populates ids and timestamp", func(t *testing.T) {
		res, err := repo.CreateWithTickets(ctx, userID, []model.Ticket{
			{PerformanceID: perfID, Row: 1, Seat: 1},
			{PerformanceID: perfID, Row: 1, Seat: 2},
		})
		require.NoError(t, err)
		assert.NotZero(t, res.ID)
		assert.Equal(t, userID, res.UserID)
		assert.False(t, res.CreatedAt.IsZero())
		require.Len(t, res.Tickets, 2)
		for _, tk := range res.Tickets {
			assert.NotZero(t, tk.ID)
			assert.Equal(t, res.ID, tk.ReservationID)
		}
	})

	t.Run("duplicate seat maps the driver 1062 to SeatTakenError", func(t *testing.T) {
		_, err := repo.CreateWithTickets(ctx, userID, []model.Ticket{
			{PerformanceID: perfID, Row: 1, Seat: 1},
		})
		var taken *SeatTakenError
		require.ErrorAs(t, err, &taken)
		assert.Equal(t, perfID, taken.PerformanceID)
		assert.Equal(t, uint32(1), taken.Row)
		assert.Equal(t, uint32(1), taken.Seat)
	})

	t.Run("collision mid-batch rolls the whole unit back", func(t *testing.T) {
		before := countRows(t, db, "tickets")
		resBefore := countRows(t, db, "reservations")

		// Seat (3,3) is free; (1,2) is already sold.  The free insert
		// must not survive the failed batch.
		_, err := repo.CreateWithTickets(ctx, userID, []model.Ticket{
			{PerformanceID: perfID, Row: 3, Seat: 3},
			{PerformanceID: perfID, Row: 1, Seat: 2},
		})
		var taken *SeatTakenError
		require.ErrorAs(t, err, &taken)

		assert.Equal(t, before, countRows(t, db, "tickets"))
		assert.Equal(t, resBefore, countRows(t, db, "reservations"))
	})
}

func TestIntegration_HallShrinkGuard(t *testing.T) {
	db := startMySQL(t)
	ctx := context.Background()

	perfID, userID, hallID := seedPerformance(t, db, 10, 10)
	halls := NewHallRepo(db)

	_, err := NewReservationRepo(db).CreateWithTickets(ctx, userID, []model.Ticket{
		{PerformanceID: perfID, Row: 5, Seat: 7},
	})
	require.NoError(t, err)

	hall, err := halls.GetByID(ctx, hallID)
	require.NoError(t, err)

	t.Run("shrinking below a sold seat is rejected", func(t *testing.T) {
		hall.Rows = 4
		err := halls.Update(ctx, hall)
		assert.ErrorIs(t, err, ErrConflict)

		got, err := halls.GetByID(ctx, hallID)
		require.NoError(t, err)
		assert.Equal(t, uint32(10), got.Rows, "rejected update must leave the hall untouched")
	})

	t.Run("shrinking down to the sold seat is allowed", func(t *testing.T) {
		hall.Rows, hall.SeatsPerRow = 5, 7
		require.NoError(t, halls.Update(ctx, hall))

		got, err := halls.GetByID(ctx, hallID)
		require.NoError(t, err)
		assert.Equal(t, uint32(5), got.Rows)
		assert.Equal(t, uint32(7), got.SeatsPerRow)
	})
}
