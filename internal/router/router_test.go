package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-reservation/internal/handler"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// catalogStub serves a performance list whose available seat count
// drops on every call, the way a live count does while seats sell.
type catalogStub struct {
	listCalls   int
	detailCalls int
	available   int64
}

func (s *catalogStub) List(ctx context.Context, f repository.PerformanceFilter) ([]repository.PerformanceListItem, error) {
	s.listCalls++
	s.available--
	return []repository.PerformanceListItem{{ID: 1, AvailableSeats: s.available}}, nil
}

func (s *catalogStub) GetDetail(ctx context.Context, id uint64) (*repository.PerformanceDetail, error) {
	s.detailCalls++
	s.available--
	return &repository.PerformanceDetail{ID: id, AvailableSeats: s.available, TakenPlaces: []repository.SeatRef{}}, nil
}

func (s *catalogStub) Create(ctx context.Context, p *model.Performance) error { return nil }
func (s *catalogStub) Update(ctx context.Context, p *model.Performance) error { return nil }
func (s *catalogStub) Delete(ctx context.Context, id uint64) error            { return nil }

func availableSeatsFromList(t *testing.T, body []byte) int64 {
	t.Helper()
	var out struct {
		Items []struct {
			AvailableSeats int64 `json:"available_seats"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Items, 1)
	return out.Items[0].AvailableSeats
}

// Every performance read must hit the repository: available_seats is
// derived from sold tickets at read time, and a response cached even
// briefly would hide a committed booking from the next reader.
func TestPerformanceRoutesBypassResponseCache(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	stub := &catalogStub{available: 100}

	e := echo.New()
	RegisterPublic(e, Handlers{Performance: handler.NewPerformanceHandler(stub)}, rdb)

	get := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	first := get("/v1/performances")
	second := get("/v1/performances")

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, 2, stub.listCalls, "every list read must reach the repository")
	assert.Empty(t, first.Header().Get("X-Cache"))
	assert.Empty(t, second.Header().Get("X-Cache"))
	assert.Equal(t, int64(99), availableSeatsFromList(t, first.Body.Bytes()))
	assert.Equal(t, int64(98), availableSeatsFromList(t, second.Body.Bytes()),
		"second read must see the newer seat count, not a cached body")
}

func TestPerformanceDetailBypassesResponseCache(t *testing.T) {
	rdb, _ := redismock.NewClientMock()
	stub := &catalogStub{available: 50}

	e := echo.New()
	RegisterPublic(e, Handlers{Performance: handler.NewPerformanceHandler(stub)}, rdb)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/performances/7", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, stub.detailCalls)
}
