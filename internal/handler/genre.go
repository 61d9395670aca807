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

// GenreHandler serves genre browsing and admin-side genre creation.
type GenreHandler struct {
	Genres *repository.GenreRepo
}

func NewGenreHandler(genres *repository.GenreRepo) *GenreHandler {
	return &GenreHandler{Genres: genres}
}

// genreResp is the JSON shape genres are rendered as.
type genreResp struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ListGenres handles GET /v1/genres.
func (h *GenreHandler) ListGenres(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	genres, err := h.Genres.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load genres"})
	}
	items := make([]genreResp, 0, len(genres))
	for _, g := range genres {
		items = append(items, genreResp{ID: g.ID, Name: g.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateGenre handles POST /v1/admin/genres.  Admin only.  Genre
// names are unique; a repeated name responds 409.
func (h *GenreHandler) CreateGenre(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	genre := &model.Genre{Name: body.Name}
	if err := h.Genres.Create(ctx, genre); err != nil {
		if errors.Is(err, repository.ErrGenreExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "genre already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create genre"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": genreResp{ID: genre.ID, Name: genre.Name}})
}
