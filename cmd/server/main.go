package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/theatre-reservation/internal/booking"
	"github.com/iliyamo/theatre-reservation/internal/config"
	"github.com/iliyamo/theatre-reservation/internal/database"
	"github.com/iliyamo/theatre-reservation/internal/handler"
	"github.com/iliyamo/theatre-reservation/internal/queue"
	"github.com/iliyamo/theatre-reservation/internal/repository"
	"github.com/iliyamo/theatre-reservation/internal/router"
	queue_publisher "github.com/iliyamo/theatre-reservation/internal/service"
)

func main() {
	// A .env file is optional; real deployments set the environment
	// directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	halls := repository.NewHallRepo(db)
	plays := repository.NewPlayRepo(db)
	actors := repository.NewActorRepo(db)
	genres := repository.NewGenreRepo(db)
	performances := repository.NewPerformanceRepo(db)
	reservations := repository.NewReservationRepo(db)

	notifier := queue_publisher.NewReservationNotifier(performances)
	bookings := booking.NewService(performances, reservations, notifier)

	h := router.Handlers{
		Auth:        handler.NewAuthHandler(cfg, users),
		Hall:        handler.NewHallHandler(halls),
		Play:        handler.NewPlayHandler(plays),
		Actor:       handler.NewActorHandler(actors),
		Genre:       handler.NewGenreHandler(genres),
		Performance: handler.NewPerformanceHandler(performances),
		Reservation: handler.NewReservationHandler(bookings, reservations),
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, h.Auth, cfg.JWTSecret)
	router.RegisterPublic(e, h, rdb)
	router.RegisterCustomer(e, h, cfg.JWTSecret)
	router.RegisterAdmin(e, h, cfg.JWTSecret)

	// The confirmation consumer drains reservation.confirmed events and
	// appends them to logs/booking.log.  It reconnects on failure and
	// never takes the API down with it.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
