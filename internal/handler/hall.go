package handler

import (
	"context"  // request-scoped timeouts on DB calls
	"errors"   // errors.Is comparisons
	"net/http" // HTTP status codes
	"time"     // timeout durations

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// HallHandler serves hall browsing for everyone and hall management
// for administrators.
type HallHandler struct {
	Halls *repository.HallRepo
}

func NewHallHandler(halls *repository.HallRepo) *HallHandler {
	return &HallHandler{Halls: halls}
}

// hallReq is the create/update payload for a hall.
type hallReq struct {
	Name        string `json:"name"`
	Rows        uint32 `json:"rows"`
	SeatsPerRow uint32 `json:"seats_per_row"`
}

// hallResp is the JSON shape halls are rendered as.  Model structs
// carry no JSON tags, so handlers define their own response types.
type hallResp struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Rows        uint32 `json:"rows"`
	SeatsPerRow uint32 `json:"seats_per_row"`
	TotalSeats  uint32 `json:"total_seats"`
}

func toHallResp(h *model.Hall) hallResp {
	return hallResp{
		ID:          h.ID,
		Name:        h.Name,
		Rows:        h.Rows,
		SeatsPerRow: h.SeatsPerRow,
		TotalSeats:  h.TotalSeats(),
	}
}

func (r *hallReq) validate() string {
	switch {
	case r.Name == "":
		return "name is required"
	case r.Rows < 1:
		return "rows must be at least 1"
	case r.SeatsPerRow < 1:
		return "seats_per_row must be at least 1"
	}
	return ""
}

// ListHalls handles GET /v1/halls.
func (h *HallHandler) ListHalls(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	halls, err := h.Halls.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load halls"})
	}
	items := make([]hallResp, 0, len(halls))
	for _, h := range halls {
		items = append(items, toHallResp(h))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetHall handles GET /v1/halls/:id.
func (h *HallHandler) GetHall(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hall id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	hall, err := h.Halls.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch hall"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toHallResp(hall)})
}

// CreateHall handles POST /v1/admin/halls.  Admin only.
func (h *HallHandler) CreateHall(c echo.Context) error {
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	hall := &model.Hall{Name: req.Name, Rows: req.Rows, SeatsPerRow: req.SeatsPerRow}
	if err := h.Halls.Create(ctx, hall); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create hall"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toHallResp(hall)})
}

// UpdateHall handles PUT /v1/admin/halls/:id.  Shrinking the hall
// below an already sold seat position is rejected with 409.
func (h *HallHandler) UpdateHall(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hall id"})
	}
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	hall := &model.Hall{ID: id, Name: req.Name, Rows: req.Rows, SeatsPerRow: req.SeatsPerRow}
	if err := h.Halls.Update(ctx, hall); err != nil {
		switch {
		case errors.Is(err, repository.ErrHallNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hall not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "hall cannot shrink below already sold seats"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update hall"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toHallResp(hall)})
}
