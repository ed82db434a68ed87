package main

import (
	"database/sql"

	"github.com/jonboulle/clockwork"

	"github.com/dispatchhq/vacdraft/go/internal/draft/gateway"
	"github.com/dispatchhq/vacdraft/go/internal/draft/outbox"
	"github.com/dispatchhq/vacdraft/go/internal/draft/queue"
	"github.com/dispatchhq/vacdraft/go/internal/draft/session"
	"github.com/dispatchhq/vacdraft/go/internal/draft/sweeper"
	"github.com/dispatchhq/vacdraft/go/internal/users"
	"github.com/dispatchhq/vacdraft/go/internal/vacation"
)

type Services struct {
	Users    *users.App
	Vacation *vacation.App
	Queue    *queue.App
	Session  *session.App
	Outbox   *outbox.Repository
	Sweeper  *sweeper.Sweeper
	API      *gateway.API
}

func setupServices(database *sql.DB, cfg *Config) *Services {
	// Database layer → Repository layer → App layer
	clock := clockwork.NewRealClock()

	userRepo := users.NewRepository(database)
	userApp := users.NewApp(userRepo)

	vacationRepo := vacation.NewRepository(database)
	vacationApp := vacation.NewApp(vacationRepo, userRepo)

	queueRepo := queue.NewRepository(database)
	queueApp := queue.NewApp(queueRepo)

	outboxRepo := outbox.NewRepository(database)

	sessionRepo := session.NewRepository(database)
	sessionApp := session.NewApp(sessionRepo, userApp, vacationApp, vacationApp, queueApp, outboxRepo, clock)

	return &Services{
		Users:    userApp,
		Vacation: vacationApp,
		Queue:    queueApp,
		Session:  sessionApp,
		Outbox:   outboxRepo,
		Sweeper:  sweeper.New(sessionApp, clock, cfg.Sweeper.Interval),
		API:      gateway.NewAPI(sessionApp, queueApp, userApp, vacationApp),
	}
}
