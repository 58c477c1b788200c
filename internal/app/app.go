// Package app builds the object graph shared by the server and its tests.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/portfolio/adapters/event"
	"github.com/khoahotran/portfolio/adapters/memstore"
	"github.com/khoahotran/portfolio/adapters/persistence"
	"github.com/khoahotran/portfolio/adapters/postgrest"
	"github.com/khoahotran/portfolio/adapters/sessionstore"
	"github.com/khoahotran/portfolio/internal/application/crud"
	"github.com/khoahotran/portfolio/internal/application/portfolio"
	"github.com/khoahotran/portfolio/internal/application/reveal"
	"github.com/khoahotran/portfolio/internal/application/session"
	"github.com/khoahotran/portfolio/internal/config"
	"github.com/khoahotran/portfolio/internal/datastore"
	"github.com/khoahotran/portfolio/internal/domain/certificate"
	"github.com/khoahotran/portfolio/internal/domain/experience"
	"github.com/khoahotran/portfolio/internal/domain/profile"
	"github.com/khoahotran/portfolio/internal/domain/project"
	"github.com/khoahotran/portfolio/pkg/auth"
	"github.com/khoahotran/portfolio/pkg/logger"
	"github.com/khoahotran/portfolio/pkg/tracing"
)

const ServiceName = "portfolio"

type App struct {
	Config    config.Config
	Logger    logger.Logger
	Backend   datastore.Backend
	Sessions  session.Store
	Repos     portfolio.Repositories
	Gate      *session.Gate
	Portfolio *portfolio.Service
	Reveal    reveal.Counter

	closers []func() error
}

// New validates the configuration and connects every collaborator. Redis,
// Kafka and tracing are optional and only started when configured.
func New(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: log, Reveal: reveal.New()}

	tp, err := tracing.NewTracerProvider(cfg, log, ServiceName)
	if err != nil {
		return nil, err
	}
	if tp != nil {
		a.closers = append(a.closers, func() error { return tp.Shutdown(context.Background()) })
	}

	if a.Backend, err = a.newBackend(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if a.Sessions, err = a.newSessionStore(); err != nil {
		a.Close()
		return nil, err
	}

	var opts []crud.Option
	switch producer, err := event.NewKafkaProducer(cfg, log); {
	case errors.Is(err, event.ErrNoBrokers):
		log.Info("Content events disabled, no Kafka brokers configured")
	case err != nil:
		a.Close()
		return nil, err
	default:
		a.closers = append(a.closers, producer.Close)
		opts = append(opts, crud.WithPublisher(producer))
	}

	a.Repos = portfolio.Repositories{
		Profiles:     crud.NewRepository(a.Backend, profile.Schema, log, opts...),
		Projects:     crud.NewRepository(a.Backend, project.Schema, log, opts...),
		Certificates: crud.NewRepository(a.Backend, certificate.Schema, log, opts...),
		Experiences:  crud.NewRepository(a.Backend, experience.Schema, log, opts...),
	}
	a.Gate = session.NewGate(a.Backend, a.Sessions, log)
	a.Portfolio = portfolio.NewService(a.Repos, log)
	return a, nil
}

func (a *App) newBackend(ctx context.Context) (datastore.Backend, error) {
	cfg := a.Config
	switch cfg.Backend.Driver {
	case config.DriverREST:
		client, err := postgrest.NewClient(cfg, a.Logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.DriverPostgres:
		pool, err := persistence.NewPostgresPool(ctx, cfg, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
		return persistence.NewPostgresStore(pool, jwtSvc, a.Logger), nil
	case config.DriverMemory:
		store := memstore.New(cfg.Auth.TokenLifespan)
		if cfg.Admin.Email != "" {
			if err := store.AddUser(cfg.Admin.Email, cfg.Admin.Password); err != nil {
				return nil, fmt.Errorf("seed memory admin: %w", err)
			}
		} else {
			a.Logger.Warn("Memory backend has no admin account, set ADMIN_EMAIL and ADMIN_PASSWORD")
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown backend driver %q", cfg.Backend.Driver)
	}
}

func (a *App) newSessionStore() (session.Store, error) {
	if a.Config.Redis.Addr == "" {
		a.Logger.Info("Sessions kept in memory, no Redis configured")
		return sessionstore.NewMemoryStore(), nil
	}
	rdb, err := sessionstore.NewRedisClient(a.Config, a.Logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, rdb.Close)
	return sessionstore.NewRedisStore(rdb), nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		a.Logger.Error("Failed to release resources", err, zap.Int("count", len(errs)))
		return err
	}
	return nil
}
