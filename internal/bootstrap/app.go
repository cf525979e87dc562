package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"gopher-classifieds/internal/config"
	"gopher-classifieds/internal/model"
	"gopher-classifieds/internal/platform/database"
	rabbitmqClient "gopher-classifieds/internal/platform/rabbitmq"
	redisClient "gopher-classifieds/internal/platform/redis"
	"gopher-classifieds/internal/ratelimit"
	"gopher-classifieds/internal/repository"
	"gopher-classifieds/internal/worker"
)

// App owns every long-lived client. Redis and MQConn are nil when the
// corresponding section is not configured.
type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	ReviewPublisher  *rabbitmqClient.ReviewPublisher
	ModerationWorker *worker.ModerationWorker
	SubmitLimiter    *ratelimit.Limiter
	LoginThrottle    *ratelimit.Throttle

	StartedAt time.Time

	stopJanitor context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	if err := SetupLogger(cfg.App); err != nil {
		return nil, err
	}

	app := &App{Config: cfg, StartedAt: time.Now()}
	if err := app.connect(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.Config

	db, err := database.New(ctx, cfg.Database.Driver, cfg.DatabaseDSN())
	if err != nil {
		return err
	}
	a.DB = db
	if err := db.AutoMigrate(model.Models()...); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}

	if cfg.Redis.Addr != "" {
		redisCli, err := redisClient.New(ctx, redisClient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		a.Redis = redisCli
	} else {
		logrus.Warn("redis not configured, using in-process rate limit counters and stateless sessions")
	}

	limiter, err := NewSubmitLimiter(cfg.RateLimit, a.Redis)
	if err != nil {
		return err
	}
	a.SubmitLimiter = limiter

	a.LoginThrottle = ratelimit.NewThrottle(cfg.Auth.LoginRPS, cfg.Auth.LoginBurst)
	janitorCtx, cancel := context.WithCancel(context.Background())
	a.stopJanitor = cancel
	a.LoginThrottle.StartJanitor(janitorCtx, 5*time.Minute)

	if cfg.RabbitMQ.URL == "" {
		logrus.Info("rabbitmq not configured, review notices and moderation worker disabled")
		return nil
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.ReviewQueue, cfg.RabbitMQ.ModerationQueue)
	if err != nil {
		return err
	}
	a.MQConn = mqConn
	a.ReviewPublisher = rabbitmqClient.NewReviewPublisher(mqConn, cfg.RabbitMQ.ReviewQueue)

	postingRepo := repository.NewPostingRepository(db)
	a.ModerationWorker = worker.NewModerationWorker(mqConn, postingRepo, cfg.RabbitMQ.ModerationQueue, logrus.StandardLogger())
	if err := a.ModerationWorker.Start(ctx); err != nil {
		return fmt.Errorf("start moderation worker failed: %w", err)
	}
	return nil
}

// NewSubmitLimiter counts in Redis when a client is given so every instance
// shares one quota, and in process memory otherwise.
func NewSubmitLimiter(cfg config.RateLimitConfig, client *redis.Client) (*ratelimit.Limiter, error) {
	rate, err := ratelimit.ParseRate(cfg.SubmitRate)
	if err != nil {
		return nil, fmt.Errorf("parse ratelimit.submit_rate failed: %w", err)
	}

	var counter ratelimit.Counter
	if client != nil {
		counter = ratelimit.NewRedisCounter(client)
	} else {
		counter = ratelimit.NewMemoryCounter()
	}

	opts := []ratelimit.Option{
		ratelimit.WithFailOpen(cfg.FailOpen),
		ratelimit.WithLogger(logrus.StandardLogger()),
	}
	if cfg.KeyPrefix != "" {
		opts = append(opts, ratelimit.WithKeyPrefix(cfg.KeyPrefix))
	}
	return ratelimit.NewLimiter(counter, rate, opts...)
}

func (a *App) Close() error {
	var closeErr error
	if a.stopJanitor != nil {
		a.stopJanitor()
	}
	if a.ModerationWorker != nil {
		a.ModerationWorker.Close()
	}
	if a.ReviewPublisher != nil {
		_ = a.ReviewPublisher.Close()
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
