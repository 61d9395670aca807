package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"  // Echo web framework for routing
	"github.com/redis/go-redis/v9" // Redis client shared by cache and rate limit middleware

	"github.com/iliyamo/theatre-reservation/internal/config"     // cache and rate limit configuration
	"github.com/iliyamo/theatre-reservation/internal/handler"    // handlers implementing the endpoints
	"github.com/iliyamo/theatre-reservation/internal/middleware" // JWT, role, cache and rate limit middleware
)

// Handlers bundles every handler the router wires up.  main builds it
// once after constructing repositories and services.
type Handlers struct {
	Auth        *handler.AuthHandler
	Hall        *handler.HallHandler
	Play        *handler.PlayHandler
	Actor       *handler.ActorHandler
	Genre       *handler.GenreHandler
	Performance *handler.PerformanceHandler
	Reservation *handler.ReservationHandler
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes.  Register and login
// live under /v1/auth without middleware; /v1/me requires a valid
// access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	me := e.Group("/v1")
	me.Use(middleware.JWTAuth(jwtSecret))
	me.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated catalogue: halls,
// plays, actors, genres and the performance schedule.  Guests browse
// these before registering, so the group carries the Redis response
// cache and the token bucket rate limiter rather than JWT middleware.
func RegisterPublic(e *echo.Echo, h Handlers, rdb *redis.Client) {
	g := e.Group("/v1")
	if rdb != nil {
		g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}

	// Catalogue entities change only through admin writes, so their
	// responses may be cached.
	cached := g.Group("")
	if rdb != nil {
		cached.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}

	cached.GET("/halls", h.Hall.ListHalls)
	cached.GET("/halls/:id", h.Hall.GetHall)

	cached.GET("/plays", h.Play.ListPlays)
	cached.GET("/plays/:id", h.Play.GetPlay)

	cached.GET("/actors", h.Actor.ListActors)
	cached.GET("/actors/:id", h.Actor.GetActor)

	cached.GET("/genres", h.Genre.ListGenres)

	// Performances accept ?date=YYYY-MM-DD and ?play=<id> filters; the
	// detail view lists every sold seat so clients can draw the grid.
	// available_seats and taken_places are derived from the ticket
	// ledger at read time, so these routes stay outside the cache: a
	// committed booking must be visible on the very next read.
	g.GET("/performances", h.Performance.ListPerformances)
	g.GET("/performances/:id", h.Performance.GetPerformance)
}

// RegisterCustomer registers the booking surface.  Every route
// requires a valid access token; both roles may book.
func RegisterCustomer(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))

	g.POST("/reservations", h.Reservation.CreateReservation)
	g.GET("/my-reservations", h.Reservation.ListReservations)
	g.GET("/reservations/:id", h.Reservation.GetReservation)
}

// RegisterAdmin registers catalogue management under /v1/admin.  Only
// the ADMIN role passes the middleware chain.
func RegisterAdmin(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	g.POST("/halls", h.Hall.CreateHall)
	g.PUT("/halls/:id", h.Hall.UpdateHall)

	g.POST("/plays", h.Play.CreatePlay)
	g.PUT("/plays/:id", h.Play.UpdatePlay)
	g.DELETE("/plays/:id", h.Play.DeletePlay)

	g.POST("/actors", h.Actor.CreateActor)
	g.POST("/genres", h.Genre.CreateGenre)

	g.POST("/performances", h.Performance.CreatePerformance)
	g.PUT("/performances/:id", h.Performance.UpdatePerformance)
	g.DELETE("/performances/:id", h.Performance.DeletePerformance)
}
