package handler

import (
	"context"  // request-scoped timeouts on DB calls
	"errors"   // errors.Is comparisons
	"net/http" // HTTP status codes
	"strings"  // trimming input fields
	"time"     // timeout durations

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// ActorHandler serves actor browsing and admin-side actor creation.
type ActorHandler struct {
	Actors *repository.ActorRepo
}

func NewActorHandler(actors *repository.ActorRepo) *ActorHandler {
	return &ActorHandler{Actors: actors}
}

// actorResp is the JSON shape actors are rendered as.
type actorResp struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

func toActorResp(a *model.Actor) actorResp {
	return actorResp{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName, FullName: a.FullName()}
}

// ListActors handles GET /v1/actors.
func (h *ActorHandler) ListActors(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	actors, err := h.Actors.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load actors"})
	}
	items := make([]actorResp, 0, len(actors))
	for i := range actors {
		items = append(items, toActorResp(&actors[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetActor handles GET /v1/actors/:id.
func (h *ActorHandler) GetActor(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid actor id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	actor, err := h.Actors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrActorNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch actor"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toActorResp(actor)})
}

// CreateActor handles POST /v1/admin/actors.  Admin only.
func (h *ActorHandler) CreateActor(c echo.Context) error {
	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.FirstName = strings.TrimSpace(body.FirstName)
	body.LastName = strings.TrimSpace(body.LastName)
	if body.FirstName == "" || body.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "first_name and last_name are required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	actor := &model.Actor{FirstName: body.FirstName, LastName: body.LastName}
	if err := h.Actors.Create(ctx, actor); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create actor"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toActorResp(actor)})
}
