package handler

import (
	"context"      // booking calls carry the request context
	"database/sql" // sentinel errors returned from repository
	"errors"       // errors.Is / errors.As comparisons
	"net/http"     // HTTP status codes

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/booking"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// Booker is the slice of the booking service the handler needs.  It is
// an interface so tests can drive the handler without a database.
type Booker interface {
	Book(ctx context.Context, userID uint64, requests []booking.SeatRequest) (*model.Reservation, error)
}

// ReservationLister serves the read side of reservations (list and
// owner-scoped detail).
type ReservationLister interface {
	ListByUser(ctx context.Context, userID uint64) ([]repository.ReservationListItem, error)
	GetByIDForUser(ctx context.Context, reservationID, userID uint64) (*repository.ReservationDetail, error)
}

// ReservationHandler exposes booking and reservation browsing for
// authenticated customers.  All methods assume JWT authentication has
// already run; they return 401 when no user id is present in context.
type ReservationHandler struct {
	Bookings     Booker
	Reservations ReservationLister
}

// NewReservationHandler constructs a ReservationHandler.  Both
// dependencies must be non-nil.
func NewReservationHandler(bookings Booker, reservations ReservationLister) *ReservationHandler {
	if bookings == nil || reservations == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Bookings: bookings, Reservations: reservations}
}

// ticketResp is one ticket in the created-reservation response body.
type ticketResp struct {
	ID            uint64 `json:"id"`
	PerformanceID uint64 `json:"performance"`
	Row           uint32 `json:"row"`
	Seat          uint32 `json:"seat"`
}

// CreateReservation handles POST /v1/reservations.  The body carries a
// "tickets" array of {performance, row, seat} items which are booked
// as one all-or-nothing unit.  Responses:
//   - 201 with the reservation and its tickets on success
//   - 400 for an empty batch or a validation failure, identifying the
//     offending ticket index and field
//   - 409 when a requested seat is already sold, naming the seat
func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Tickets []booking.SeatRequest `json:"tickets"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := h.Bookings.Book(c.Request().Context(), userID, body.Tickets)
	if err != nil {
		if errors.Is(err, booking.ErrEmptyBooking) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "tickets is required and must not be empty"})
		}
		var reqErr *booking.RequestError
		if errors.As(err, &reqErr) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":        "invalid ticket",
				"ticket_index": reqErr.Index,
				"fields":       reqErr.Fields,
			})
		}
		var taken *repository.SeatTakenError
		if errors.As(err, &taken) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":       "seat already sold",
				"performance": taken.PerformanceID,
				"row":         taken.Row,
				"seat":        taken.Seat,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}

	tickets := make([]ticketResp, 0, len(res.Tickets))
	for _, t := range res.Tickets {
		tickets = append(tickets, ticketResp{ID: t.ID, PerformanceID: t.PerformanceID, Row: t.Row, Seat: t.Seat})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":         res.ID,
		"created_at": res.CreatedAt,
		"tickets":    tickets,
	})
}

// ListReservations handles GET /v1/my-reservations.  It returns the
// caller's reservations as list items (id, created_at, tickets_count),
// newest first.  When none exist an empty array is returned.
func (h *ReservationHandler) ListReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetReservation handles GET /v1/reservations/:id.  Ownership is
// enforced in the repository query, so a reservation belonging to a
// different user responds 404 exactly like a missing one.
func (h *ReservationHandler) GetReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	detail, err := h.Reservations.GetByIDForUser(c.Request().Context(), resID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reservation"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": detail})
}
