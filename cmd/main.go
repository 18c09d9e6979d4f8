package main

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gopher0727/Concord/config"
	"github.com/Gopher0727/Concord/internal/api"
	"github.com/Gopher0727/Concord/internal/cache"
	"github.com/Gopher0727/Concord/internal/db"
	"github.com/Gopher0727/Concord/internal/events"
	"github.com/Gopher0727/Concord/internal/handler"
	"github.com/Gopher0727/Concord/internal/locks"
	"github.com/Gopher0727/Concord/internal/repository"
	"github.com/Gopher0727/Concord/internal/service"
	"github.com/Gopher0727/Concord/internal/utils"
	jwtmw "github.com/Gopher0727/Concord/middleware/jwt"
	logger "github.com/Gopher0727/Concord/middleware/log"
	"github.com/Gopher0727/Concord/utils/ratelimit"
	"github.com/Gopher0727/Concord/utils/snowflake"
)

func main() {
	cfg, err := config.LoadConfig("./config.toml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	dsn := db.BuildDSN(cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName)
	postgres, err := db.InitPostgres(dsn, cfg.Postgres.MaxIdleConns, cfg.Postgres.MaxOpenConns)
	if err != nil {
		appLogger.Fatal("failed to initialize postgres", zap.Error(err))
	}

	ids, err := snowflake.NewGenerator(cfg.Snowflake.WorkerID)
	if err != nil {
		appLogger.Fatal("failed to initialize id generator", zap.Error(err))
	}

	// Redis accelerates invite lookups and backs the rate limiter. The
	// engine runs without it.
	var inviteCache *cache.InviteCache
	var limiter ratelimit.Limiter
	redisClient, err := db.InitRedis(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize, cfg.Redis.MinIdleConns)
	if err != nil {
		appLogger.Warn("redis unavailable, running without invite cache and rate limiting", zap.Error(err))
	} else {
		inviteCache = cache.NewInviteCache(redisClient, time.Duration(cfg.Redis.InviteTTLHours)*time.Hour)
		limiter = ratelimit.NewTokenBucketLimiter(redisClient, appLogger.Logger, cfg.RateLimit.FailOpen)
	}

	// Kafka carries membership change events to downstream consumers. A nil
	// producer means degraded mode: state transitions still commit, events
	// are not emitted.
	producer, err := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, appLogger.Logger)
	if err != nil {
		appLogger.Warn("kafka unavailable, membership events disabled", zap.Error(err))
		producer = nil
	} else {
		defer producer.Close()
	}

	pool := utils.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appLogger.Logger)
	pool.Start()
	defer pool.Stop()

	lockMgr := locks.NewManager(config.LockStripes)

	profileRepo := repository.NewProfileRepository(postgres)
	serverRepo := repository.NewServerRepository(postgres)

	profileService := service.NewProfileService(profileRepo, ids, appLogger.Logger)
	membershipService := service.NewMembershipService(serverRepo, ids, lockMgr, inviteCache, producer, pool, appLogger.Logger)
	searchService := service.NewSearchService(serverRepo)

	serverHandler := handler.NewServerHandler(membershipService)
	channelHandler := handler.NewChannelHandler(membershipService)
	memberHandler := handler.NewMemberHandler(membershipService)
	searchHandler := handler.NewSearchHandler(searchService)

	resolver := jwtmw.NewResolver(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())

	api.RegisterRoutes(r,
		resolver,
		profileService,
		serverHandler,
		channelHandler,
		memberHandler,
		searchHandler,
		limiter,
		cfg.RateLimit.RequestsPerMinute,
	)

	appLogger.Info("starting server", zap.Int("port", cfg.Server.Port))
	if err := r.Run(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
		appLogger.Fatal("server exited", zap.Error(err))
	}
}
