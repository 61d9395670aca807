package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-reservation/internal/booking"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// stubBooker lets each test script the booking outcome.
type stubBooker struct {
	gotUserID   uint64
	gotRequests []booking.SeatRequest
	res         *model.Reservation
	err         error
}

func (s *stubBooker) Book(_ context.Context, userID uint64, requests []booking.SeatRequest) (*model.Reservation, error) {
	s.gotUserID = userID
	s.gotRequests = requests
	return s.res, s.err
}

// stubLister serves scripted reservation reads.
type stubLister struct {
	items  []repository.ReservationListItem
	detail *repository.ReservationDetail
	err    error
}

func (s *stubLister) ListByUser(context.Context, uint64) ([]repository.ReservationListItem, error) {
	return s.items, s.err
}

func (s *stubLister) GetByIDForUser(context.Context, uint64, uint64) (*repository.ReservationDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.detail, nil
}

func newBookingContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(42)) // JWT claims decode numbers as float64
	return c, rec
}

func TestCreateReservationSuccess(t *testing.T) {
	created := &model.Reservation{
		ID:        7,
		UserID:    42,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Tickets: []model.Ticket{
			{ID: 70, PerformanceID: 3, Row: 2, Seat: 5},
			{ID: 71, PerformanceID: 3, Row: 2, Seat: 6},
		},
	}
	bk := &stubBooker{res: created}
	h := NewReservationHandler(bk, &stubLister{})

	body := `{"tickets":[{"performance":3,"row":2,"seat":5},{"performance":3,"row":2,"seat":6}]}`
	c, rec := newBookingContext(t, body)
	require.NoError(t, h.CreateReservation(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, uint64(42), bk.gotUserID)
	require.Len(t, bk.gotRequests, 2)
	assert.Equal(t, booking.SeatRequest{PerformanceID: 3, Row: 2, Seat: 5}, bk.gotRequests[0])
	assert.Contains(t, rec.Body.String(), `"id":7`)
	assert.Contains(t, rec.Body.String(), `"seat":6`)
}

func TestCreateReservationEmptyBatch(t *testing.T) {
	bk := &stubBooker{err: booking.ErrEmptyBooking}
	h := NewReservationHandler(bk, &stubLister{})

	c, rec := newBookingContext(t, `{"tickets":[]}`)
	require.NoError(t, h.CreateReservation(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must not be empty")
}

func TestCreateReservationValidationFailure(t *testing.T) {
	bk := &stubBooker{err: &booking.RequestError{
		Index:  1,
		Fields: model.FieldErrors{"row": "row must be in range [1, 10], got 99"},
	}}
	h := NewReservationHandler(bk, &stubLister{})

	body := `{"tickets":[{"performance":3,"row":1,"seat":1},{"performance":3,"row":99,"seat":1}]}`
	c, rec := newBookingContext(t, body)
	require.NoError(t, h.CreateReservation(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ticket_index":1`)
	assert.Contains(t, rec.Body.String(), "row must be in range [1, 10], got 99")
}

func TestCreateReservationSeatTaken(t *testing.T) {
	bk := &stubBooker{err: &repository.SeatTakenError{PerformanceID: 3, Row: 2, Seat: 5}}
	h := NewReservationHandler(bk, &stubLister{})

	c, rec := newBookingContext(t, `{"tickets":[{"performance":3,"row":2,"seat":5}]}`)
	require.NoError(t, h.CreateReservation(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"row":2`)
	assert.Contains(t, rec.Body.String(), `"seat":5`)
}

func TestCreateReservationUnauthenticated(t *testing.T) {
	h := NewReservationHandler(&stubBooker{}, &stubLister{})
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", strings.NewReader(`{"tickets":[]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec) // no user_id in context

	require.NoError(t, h.CreateReservation(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetReservationNotFound(t *testing.T) {
	h := NewReservationHandler(&stubBooker{}, &stubLister{err: sql.ErrNoRows})
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/reservations/9", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("9")
	c.Set("user_id", float64(42))

	require.NoError(t, h.GetReservation(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReservations(t *testing.T) {
	items := []repository.ReservationListItem{
		{ID: 2, CreatedAt: time.Now(), TicketsCount: 3},
		{ID: 1, CreatedAt: time.Now().Add(-time.Hour), TicketsCount: 1},
	}
	h := NewReservationHandler(&stubBooker{}, &stubLister{items: items})
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/my-reservations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(42))

	require.NoError(t, h.ListReservations(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tickets_count":3`)
}
