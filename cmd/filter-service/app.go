package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"chatfilter/internal/commands"
	"chatfilter/internal/config"
	"chatfilter/internal/constants"
	"chatfilter/internal/filter"
	"chatfilter/internal/logger"
	"chatfilter/internal/registry"
	"chatfilter/pkg/bootstrap"
	"chatfilter/pkg/cel"
	pkgerrors "chatfilter/pkg/errors"
	"chatfilter/pkg/health"
	"chatfilter/pkg/logging"
	"chatfilter/pkg/metrics"
	"chatfilter/pkg/middleware"
	"chatfilter/pkg/migrations"
	"chatfilter/pkg/ratelimit"
	"chatfilter/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	db             *sql.DB
	redis          *redis.Client
	mongoClient    *mongo.Client
	store          *filter.Store
	service        *filter.Service
	reloader       *filter.Reloader
	limiter        *ratelimit.Limiter
	health         *health.CheckerRegistry
	tracerProvider *tracing.TracerProvider
	server         *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
		health:      health.NewCheckerRegistry(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterBanMetrics()
	metrics.RegisterBrokerMetrics()
	metrics.RegisterCircuitBreakerMetrics()
	metrics.RegisterAPIMetrics()

	if err := a.initDatabases(ctx); err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}

	a.Config.Broker.Kafka.GroupID = instanceGroupID(a.Config.Broker.Kafka.GroupID)
	if err := a.InitBroker(constants.ServiceName); err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	if err := a.initService(ctx); err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}

	if err := a.initHTTPServer(); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	return nil
}

func (a *App) initDatabases(ctx context.Context) error {
	db, err := a.dbConnector.InitPostgreSQL(ctx)
	if err != nil {
		return err
	}
	a.db = db
	a.health.Register(health.NewPostgreSQLChecker(db))

	if a.Config.Database.RunMigrations {
		if err := migrations.RunPostgres(db); err != nil {
			return err
		}
		a.Logger.InfowCtx(ctx, "Database migrations applied")
	}

	mongoClient, err := a.dbConnector.InitMongoDB(ctx)
	if err != nil {
		return err
	}
	if mongoClient != nil {
		a.mongoClient = mongoClient
		if err := migrations.EnsureMongoCollection(ctx, a.mongoDatabase()); err != nil {
			return err
		}
		a.health.RegisterOptional(health.NewMongoDBChecker(mongoClient))
	}

	if a.Config.Bans.Lock.Backend == constants.LockBackendRedis {
		rdb, err := a.dbConnector.InitRedis(ctx)
		if err != nil {
			return err
		}
		a.redis = rdb
		a.health.Register(health.NewRedisChecker(rdb))
	}

	return nil
}

func (a *App) mongoDatabase() *mongo.Database {
	return a.mongoClient.Database(a.Config.Database.MongoDB.Database)
}

func (a *App) initService(ctx context.Context) error {
	cfg := a.Config

	commandRegistry := registry.NewCommandRegistry(cfg.Bans.Commands)
	selfCommandID, ok := commandRegistry.ID(constants.BanCommandName)
	if !ok {
		return fmt.Errorf("command %q is not registered", constants.BanCommandName)
	}

	channels := registry.NewBreakerChannelStore(registry.NewPostgresChannelRegistry(a.db), cfg.CircuitBreaker)

	var users registry.UserStore = registry.NewPostgresUserRegistry(a.db)
	if a.mongoClient != nil {
		users = registry.NewMongoUserRegistry(a.mongoDatabase())
	}
	users = registry.NewBreakerUserStore(users, cfg.CircuitBreaker)

	opts := []filter.StoreOption{
		filter.WithLocker(a.newLocker()),
		filter.WithVersioning(filter.NewVersioningRepository(a.db)),
	}
	if a.Producer != nil {
		opts = append(opts, filter.WithEventPublisher(
			filter.NewConfigEventProducer(a.Producer, cfg.Broker.Kafka.ConfigUpdateTopic),
		))
	}

	a.store = filter.NewStore(filter.NewRepository(a.db), a.Logger, opts...)
	if err := a.store.Reload(ctx, "startup"); err != nil {
		return err
	}

	a.service = filter.NewService(
		filter.NewResolver(channels, commandRegistry, users, selfCommandID),
		filter.NewAuthorizer(registry.NewPermissionResolver(users, channels), cfg.Bans.DefaultReason),
		a.store,
		a.Logger,
	)

	interval := time.Duration(cfg.Bans.Reload.IntervalSeconds) * time.Second
	a.reloader = filter.NewReloader(a.store, interval, a.Logger)

	a.Logger.InfowCtx(ctx, "Ban service initialized",
		"lock_backend", cfg.Bans.Lock.Backend,
		"users_backend", usersBackend(a.mongoClient),
		"events", a.Producer != nil,
		"reload_interval", interval,
		"commands", len(cfg.Bans.Commands),
	)
	return nil
}

func (a *App) newLocker() filter.Locker {
	if a.redis == nil {
		return filter.NewLocalLocker()
	}
	return filter.NewRedisLocker(a.redis, a.Config.Bans.Lock.TTL, a.Config.Bans.Lock.WaitTimeout, a.Logger)
}

func (a *App) initHTTPServer() error {
	evaluator, err := cel.NewEvaluator()
	if err != nil {
		return fmt.Errorf("failed to create CEL evaluator: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(a.Logger))
	router.Use(tracing.GinMiddleware(constants.ServiceName), tracing.LogContextMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.Logger))

	api := router.Group("")
	if rl := a.Config.API.RateLimit; rl.Enabled {
		a.limiter = ratelimit.NewLimiter(ratelimit.RateLimitConfig{
			RPS:             rl.RPS,
			Burst:           rl.Burst,
			CleanupInterval: time.Duration(rl.CleanupInterval) * time.Second,
			MaxAge:          time.Duration(rl.MaxAge) * time.Second,
		})
		api.Use(a.limiter.Middleware())
		a.Logger.Infow("Rate limiting enabled", "rps", rl.RPS, "burst", rl.Burst)
	}

	filter.NewHandler(a.service, filter.NewQuery(evaluator), a.Logger).RegisterRoutes(api)

	cmdRouter := commands.NewRouter(a.Config.Bans.CommandPrefix, a.Logger)
	cmdRouter.Register(commands.NewBanCommand(a.service))
	commands.NewHandler(cmdRouter, a.Logger).RegisterRoutes(api)

	router.GET("/health", func(c *gin.Context) {
		h := a.health.Check(c.Request.Context())
		c.JSON(h.HTTPStatus(), h)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      router,
		ReadTimeout:  a.Config.Server.ReadTimeoutSeconds * time.Second,
		WriteTimeout: a.Config.Server.WriteTimeoutSeconds * time.Second,
	}
	return nil
}

// Run blocks until ctx is canceled or one of the components fails.
func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	if a.Consumer != nil {
		topic := a.Config.Broker.Kafka.ConfigUpdateTopic
		g.Go(func() error {
			consumeCtx := logging.WithServiceName(gCtx, constants.ServiceName)
			a.Logger.InfowCtx(consumeCtx, "Starting rule update consumer",
				"topic", topic,
				"group_id", a.Config.Broker.Kafka.GroupID,
			)
			return ignoreCanceled(pkgerrors.Guard(func() error {
				return a.Consumer.Consume(gCtx, topic, a.reloader.HandleRuleEvent)
			}))
		})
	}

	g.Go(func() error {
		return ignoreCanceled(pkgerrors.Guard(func() error {
			return a.reloader.Start(gCtx)
		}))
	})

	if a.limiter != nil {
		g.Go(func() error {
			a.limiter.Run(gCtx)
			return nil
		})
	}

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.Base.Shutdown(ctx, func(ctx context.Context) []error {
		var errs []error

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		return append(errs, a.dbConnector.ShutdownDatabases(ctx, a.redis, a.db, a.mongoClient)...)
	})
}

// instanceGroupID gives every instance its own consumer group so that each
// one sees every rule update.
func instanceGroupID(base string) string {
	if base == "" {
		base = constants.ServiceName
	}
	suffix, err := os.Hostname()
	if err != nil || suffix == "" {
		suffix = uuid.NewString()[:8]
	}
	return base + "-" + suffix
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func usersBackend(mongoClient *mongo.Client) string {
	if mongoClient != nil {
		return "mongodb"
	}
	return "postgres"
}
