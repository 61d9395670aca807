package handler

import (
	"context"  // request-scoped timeouts on DB calls
	"errors"   // errors.Is comparisons
	"net/http" // HTTP status codes
	"strconv"  // parsing the play query filter
	"strings"  // trimming query parameters
	"time"     // show time and date filter parsing

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// PerformanceCatalog is the slice of the performance repository the
// handler needs.  It is an interface so tests can drive the handler
// without a database.
type PerformanceCatalog interface {
	List(ctx context.Context, f repository.PerformanceFilter) ([]repository.PerformanceListItem, error)
	GetDetail(ctx context.Context, id uint64) (*repository.PerformanceDetail, error)
	Create(ctx context.Context, p *model.Performance) error
	Update(ctx context.Context, p *model.Performance) error
	Delete(ctx context.Context, id uint64) error
}

// PerformanceHandler serves the performance schedule: public browsing
// with date and play filters, per-performance seat availability, and
// admin-side scheduling.
type PerformanceHandler struct {
	Performances PerformanceCatalog
}

func NewPerformanceHandler(performances PerformanceCatalog) *PerformanceHandler {
	return &PerformanceHandler{Performances: performances}
}

// performanceReq is the create/update payload for a performance.
type performanceReq struct {
	PlayID   uint64    `json:"play"`
	HallID   uint64    `json:"theatre_hall"`
	ShowTime time.Time `json:"show_time"`
}

func (r *performanceReq) validate() string {
	switch {
	case r.PlayID == 0:
		return "play is required"
	case r.HallID == 0:
		return "theatre_hall is required"
	case r.ShowTime.IsZero():
		return "show_time is required"
	}
	return ""
}

// ListPerformances handles GET /v1/performances with optional date
// (YYYY-MM-DD, matched against the calendar day of the show time) and
// play (id) query filters.  Each item carries the derived
// available_seats count.
func (h *PerformanceHandler) ListPerformances(c echo.Context) error {
	var filter repository.PerformanceFilter
	if raw := strings.TrimSpace(c.QueryParam("date")); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be formatted as YYYY-MM-DD"})
		}
		filter.Date = &d
	}
	if raw := strings.TrimSpace(c.QueryParam("play")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "play must be a numeric id"})
		}
		filter.PlayID = &id
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Performances.List(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load performances"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetPerformance handles GET /v1/performances/:id.  The detail view
// includes every sold seat position so clients can render the grid.
func (h *PerformanceHandler) GetPerformance(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid performance id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	detail, err := h.Performances.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPerformanceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performance not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch performance"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": detail})
}

// CreatePerformance handles POST /v1/admin/performances.  Admin only.
// The referenced play and hall must exist; a dangling reference is
// surfaced by the foreign keys and reported as a bad request.
func (h *PerformanceHandler) CreatePerformance(c echo.Context) error {
	var req performanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	perf := &model.Performance{PlayID: req.PlayID, HallID: req.HallID, ShowTime: req.ShowTime}
	if err := h.Performances.Create(ctx, perf); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create performance"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": echo.Map{
		"id":           perf.ID,
		"play":         perf.PlayID,
		"theatre_hall": perf.HallID,
		"show_time":    perf.ShowTime,
	}})
}

// UpdatePerformance handles PUT /v1/admin/performances/:id.
func (h *PerformanceHandler) UpdatePerformance(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid performance id"})
	}
	var req performanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	perf := &model.Performance{ID: id, PlayID: req.PlayID, HallID: req.HallID, ShowTime: req.ShowTime}
	if err := h.Performances.Update(ctx, perf); err != nil {
		if errors.Is(err, repository.ErrPerformanceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performance not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update performance"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": echo.Map{
		"id":           perf.ID,
		"play":         perf.PlayID,
		"theatre_hall": perf.HallID,
		"show_time":    perf.ShowTime,
	}})
}

// DeletePerformance handles DELETE /v1/admin/performances/:id.
func (h *PerformanceHandler) DeletePerformance(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid performance id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Performances.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPerformanceNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "performance not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete performance"})
	}
	return c.NoContent(http.StatusNoContent)
}
