package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"flock/internal/config"
	"flock/internal/constants"
	"flock/internal/fanout"
	"flock/internal/logger"
	"flock/internal/timeline"
	"flock/internal/users"
	"flock/pkg/bootstrap"
	"flock/pkg/health"
	"flock/pkg/metrics"
)

type App struct {
	*bootstrap.Base
	dbConnector *bootstrap.DatabaseConnector
	db          *sqlx.DB
	mongoClient *mongo.Client
	mongoDB     *mongo.Database
	redis       *redis.Client
	worker      *fanout.Worker
	server      *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base:        bootstrap.NewBase(cfg, log, constants.ServiceNameFanout),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.InitTracing(); err != nil {
		return err
	}

	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := a.InitConsumer(ctx); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	metrics.RegisterFanoutMetrics()
	metrics.RegisterBrokerMetrics()
	metrics.RegisterDatabaseMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	a.initWorker()
	a.initHTTPServer()

	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db
	a.Health.Register(health.NewPostgreSQLChecker(db.DB))

	client, mdb, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		return err
	}
	a.mongoClient, a.mongoDB = client, mdb
	a.Health.Register(health.NewMongoDBChecker(client))

	if a.Config.Database.Redis.Host == "" || a.Config.Timeline.InvalidationMode() == constants.InvalidationNone {
		return nil
	}
	rdb, err := a.dbConnector.InitRedis(ctx)
	if err != nil {
		return err
	}
	a.redis = rdb
	a.Health.Register(health.NewRedisChecker(rdb))
	return nil
}

func (a *App) initWorker() {
	var followers fanout.FollowerSource = users.NewRepository(a.db)
	if a.Config.CircuitBreaker.Enabled {
		followers = users.NewCircuitBreakerRepository(users.NewRepository(a.db), a.Config.CircuitBreaker)
	}

	var invalidator fanout.CacheInvalidator
	if a.redis != nil {
		invalidator = timeline.NewRedisCache(a.redis, a.Config.Timeline.InvalidationMode())
	}

	svc := fanout.NewService(
		followers,
		timeline.NewMongoStore(a.mongoDB),
		invalidator,
		a.Config.Timeline,
		a.Config.Fanout,
		a.Logger,
	)

	a.worker = fanout.NewWorker(a.Consumer, svc, a.Config.Broker.Topic(), a.Config.Fanout.UnhealthyAfterFailures, a.Logger)
	a.Health.Register(a.worker)
}

func (a *App) initHTTPServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.Health)
	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler: mux,
	}
}

// Run starts the worker and the health server and blocks until ctx is
// cancelled or either of them fails.
func (a *App) Run(ctx context.Context) error {
	if err := a.worker.Start(ctx); err != nil {
		return errors.Join(err, a.Shutdown(ctx))
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.worker.Wait(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		return a.Shutdown(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Shutdown stops the worker first so the in-flight event can still reach
// MongoDB, then closes the rest.
func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, constants.InFlightDrainTimeout+constants.ShutdownTimeout)
	defer cancel()

	return a.Base.Shutdown(shutdownCtx, func(ctx context.Context) []error {
		var errs []error

		if a.worker != nil {
			if err := a.worker.Stop(ctx); err != nil {
				errs = append(errs, fmt.Errorf("worker stop error: %w", err))
			}
		}

		if a.server != nil {
			if err := a.server.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
			}
		}

		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redis, a.db, a.mongoClient)...)
		return errs
	})
}
