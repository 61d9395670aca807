package handler

import (
	"context"  // request-scoped timeouts on DB calls
	"errors"   // errors.Is comparisons
	"net/http" // HTTP status codes
	"strconv"  // parsing comma separated id lists
	"strings"  // query parameter splitting and trimming
	"time"     // timeout durations

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// PlayHandler serves the play catalogue: public browsing with filters
// and admin-side management.
type PlayHandler struct {
	Plays *repository.PlayRepo
}

func NewPlayHandler(plays *repository.PlayRepo) *PlayHandler {
	return &PlayHandler{Plays: plays}
}

// playReq is the create/update payload for a play.  Actors and genres
// are referenced by id and must already exist.
type playReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ActorIDs    []uint64 `json:"actors"`
	GenreIDs    []uint64 `json:"genres"`
}

// playDetailResp is the detail view of a play with embedded actor and
// genre objects, unlike the flattened list view.
type playDetailResp struct {
	ID          uint64      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Actors      []actorResp `json:"actors"`
	Genres      []genreResp `json:"genres"`
}

func toPlayDetailResp(p *model.Play) playDetailResp {
	out := playDetailResp{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Actors:      make([]actorResp, 0, len(p.Actors)),
		Genres:      make([]genreResp, 0, len(p.Genres)),
	}
	for i := range p.Actors {
		out.Actors = append(out.Actors, toActorResp(&p.Actors[i]))
	}
	for _, g := range p.Genres {
		out.Genres = append(out.Genres, genreResp{ID: g.ID, Name: g.Name})
	}
	return out
}

// parseIDList splits a comma separated query value like "1,2,3" into
// ids.  Blank segments are skipped; a malformed segment fails the
// whole value.
func parseIDList(raw string) ([]uint64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil || id == 0 {
			return nil, errors.New("invalid id list")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ListPlays handles GET /v1/plays with optional title, genres and
// actors query filters.  Filters combine with AND; genres and actors
// accept comma separated id lists matched with ANY semantics.
func (h *PlayHandler) ListPlays(c echo.Context) error {
	genreIDs, err := parseIDList(c.QueryParam("genres"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "genres must be a comma separated list of ids"})
	}
	actorIDs, err := parseIDList(c.QueryParam("actors"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "actors must be a comma separated list of ids"})
	}
	filter := repository.PlayFilter{
		Title:    strings.TrimSpace(c.QueryParam("title")),
		GenreIDs: genreIDs,
		ActorIDs: actorIDs,
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Plays.List(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load plays"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetPlay handles GET /v1/plays/:id and returns the detail view with
// full actor and genre objects.
func (h *PlayHandler) GetPlay(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid play id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	play, err := h.Plays.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPlayNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch play"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toPlayDetailResp(play)})
}

// CreatePlay handles POST /v1/admin/plays.  Admin only.
func (h *PlayHandler) CreatePlay(c echo.Context) error {
	var req playReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	play := &model.Play{Title: req.Title, Description: req.Description}
	if err := h.Plays.Create(ctx, play, req.ActorIDs, req.GenreIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create play"})
	}
	created, err := h.Plays.GetByID(ctx, play.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch play"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toPlayDetailResp(created)})
}

// UpdatePlay handles PUT /v1/admin/plays/:id.  The actor and genre
// links are replaced wholesale with the submitted lists.
func (h *PlayHandler) UpdatePlay(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid play id"})
	}
	var req playReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	play := &model.Play{ID: id, Title: req.Title, Description: req.Description}
	if err := h.Plays.Update(ctx, play, req.ActorIDs, req.GenreIDs); err != nil {
		if errors.Is(err, repository.ErrPlayNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update play"})
	}
	updated, err := h.Plays.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch play"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toPlayDetailResp(updated)})
}

// DeletePlay handles DELETE /v1/admin/plays/:id.
func (h *PlayHandler) DeletePlay(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid play id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Plays.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPlayNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "play not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete play"})
	}
	return c.NoContent(http.StatusNoContent)
}
