package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"flock/internal/config"
	"flock/internal/constants"
	"flock/internal/logger"
	"flock/internal/messages"
	"flock/internal/timeline"
	"flock/internal/users"
	"flock/pkg/bootstrap"
	"flock/pkg/health"
	"flock/pkg/metrics"
	"flock/pkg/middleware"
	"flock/pkg/ratelimit"
	"flock/pkg/retry"
	"flock/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector *bootstrap.DatabaseConnector
	db          *sqlx.DB
	mongoClient *mongo.Client
	mongoDB     *mongo.Database
	redis       *redis.Client
	router      *gin.Engine
	server      *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base:        bootstrap.NewBase(cfg, log, constants.ServiceNameAPI),
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

	if err := a.InitProducer(ctx); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	metrics.RegisterAPIMetrics()
	metrics.RegisterBrokerMetrics()
	metrics.RegisterDatabaseMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	a.initRouter(ctx)

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  a.Config.Server.ReadTimeout(),
		WriteTimeout: a.Config.Server.WriteTimeout(),
	}

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

	if a.Config.Database.Redis.Host == "" {
		a.Logger.WarnwCtx(ctx, "Redis not configured, timeline pages are not cached")
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

func (a *App) initRouter(ctx context.Context) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if a.Config.Tracing.Enabled {
		router.Use(tracing.GinMiddleware(constants.ServiceNameAPI))
	}

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))

	if a.Config.RateLimit.Enabled {
		rateLimitConfig := ratelimit.RateLimitConfig{
			RPS:             a.Config.RateLimit.RPS,
			Burst:           a.Config.RateLimit.Burst,
			CleanupInterval: time.Duration(a.Config.RateLimit.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(a.Config.RateLimit.MaxAge) * time.Second,
		}
		router.Use(ratelimit.RateLimitMiddleware(ctx, rateLimitConfig))
		a.Logger.InfowCtx(ctx, "Rate limiting enabled", "rps", rateLimitConfig.RPS, "burst", rateLimitConfig.Burst)
	}

	var userRepo users.Repository = users.NewRepository(a.db)
	if a.Config.CircuitBreaker.Enabled {
		userRepo = users.NewCircuitBreakerRepository(userRepo, a.Config.CircuitBreaker)
		a.Logger.InfowCtx(ctx, "Circuit breaker enabled for user repository")
	}
	userService := users.NewService(userRepo, a.Logger)

	publisher := messages.NewEventPublisher(
		a.Producer,
		a.Config.Broker.Topic(),
		a.Config.Publisher.Retry.Policy(retry.PublishPolicy()),
		a.Logger,
	)
	messageService := messages.NewService(messages.NewRepository(a.mongoDB), userService, publisher, a.Logger)

	var cache timeline.Cache
	if a.redis != nil {
		cache = timeline.NewRedisCache(a.redis, a.Config.Timeline.InvalidationMode())
	}
	timelineService := timeline.NewService(
		timeline.NewMongoStore(a.mongoDB),
		cache,
		userRepo,
		timeline.OptionsFromConfig(a.Config.Timeline),
		a.Logger,
	)

	users.NewHandler(userService, a.Logger).RegisterRoutes(router)
	messages.NewHandler(messageService, a.Logger).RegisterRoutes(router)
	timeline.NewHandler(timelineService, a.Logger).RegisterRoutes(router)

	router.GET("/health", a.Health.GinHandler())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.router = router
}

// Run serves HTTP until ctx is cancelled, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		return a.Shutdown(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
	defer cancel()

	return a.Base.Shutdown(shutdownCtx, func(ctx context.Context) []error {
		var errs []error

		if a.server != nil {
			if err := a.server.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
			}
		}

		// No request is in flight once the server is down.
		errs = append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redis, a.db, a.mongoClient)...)

		return errs
	})
}
