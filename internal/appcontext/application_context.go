package appcontext

import (
	"context"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/ecommerce/internal/config"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/consumer"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/logger"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/mail"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/producer"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/ratelimit"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/redis_decorator"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/token"
	"github.com/RoyceAzure/lab/ecommerce/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type ApplicationContext struct {
	Cf     *config.Config
	Logger zerolog.Logger

	DbDao       *db.DbDao
	RedisClient *redis.Client

	logWriter     *logger.KafkaLogWriter
	eventProducer producer.Producer
	orderConsumer consumer.IBaseConsumer

	UserRepo     db.IUserRepository
	OTPRepo      db.IOTPRepository
	AddressRepo  db.IAddressRepository
	CategoryRepo db.ICategoryRepository
	ProductRepo  *redis_decorator.CacheAsideProductRepo
	FavoriteRepo db.IFavoriteRepository
	OrderRepo    db.IOrderRepository
	CartRepo     redis_repo.ICartRepository

	TokenMaker     token.Maker
	MailSender     mail.EmailSender
	EventPublisher producer.IOrderEventPublisher
	AuthLimiter    *ratelimit.RsBucketToken

	OTPService      service.IOTPService
	MailService     service.IMailService
	AuthService     service.IAuthService
	UserService     service.IUserService
	CategoryService service.ICategoryService
	ProductService  service.IProductService
	CartService     service.ICartService
	FavoriteService service.IFavoriteService
	OrderService    service.IOrderService
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	if err := app.Init(); err != nil {
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	steps := []func() error{
		app.setUpLogger,
		app.setUpDbConn,
		app.setUpRedis,
		app.setUpRepositories,
		app.setUpTokenMaker,
		app.setUpMailSender,
		app.setUpEventPublisher,
		app.setUpServices,
		app.setUpOrderConsumer,
		app.setUpRateLimiter,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// setUpLogger 有設定 KAFKA_LOG_TOPIC 時 log 會同時送往 kafka
func (app *ApplicationContext) setUpLogger() error {
	brokers := app.Cf.Brokers()
	if len(brokers) > 0 && app.Cf.KafkaLogTopic != "" {
		p, err := producer.New(producer.Config{
			Brokers:       brokers,
			Topic:         app.Cf.KafkaLogTopic,
			BatchTimeout:  50 * time.Millisecond,
			RetryAttempts: 3,
			RetryBackoff:  100 * time.Millisecond,
		})
		if err != nil {
			return fmt.Errorf("create log producer: %w", err)
		}
		app.logWriter = logger.NewKafkaLogWriter(p)
		app.Logger = logger.NewLogger(app.Cf.Environment, app.Cf.ModulerName, app.logWriter)
	} else {
		app.Logger = logger.NewLogger(app.Cf.Environment, app.Cf.ModulerName)
	}
	logger.SetGlobal(app.Logger)
	log.Info().Msg("Finish setup logger")
	return nil
}

func (app *ApplicationContext) setUpDbConn() error {
	log.Info().Msg("Start setup database connection")
	if app.Cf.DbAutoMigrate {
		if err := db.RunDBMigration(app.Cf.DSN()); err != nil {
			return fmt.Errorf("run db migration: %w", err)
		}
	}
	conn, err := db.OpenDSN(app.Cf.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	app.DbDao = db.NewDbDao(conn)
	log.Info().Msg("Finish setup database connection")
	return nil
}

func (app *ApplicationContext) setUpRedis() error {
	log.Info().Msg("Start setup redis")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := redis_repo.GetRedisClient(ctx, app.Cf.RedisAddr,
		redis_repo.WithPassword(app.Cf.RedisPassword),
		redis_repo.WithDB(app.Cf.RedisDB),
	)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	app.RedisClient = client
	log.Info().Msg("Finish setup redis")
	return nil
}

func (app *ApplicationContext) setUpRepositories() error {
	log.Info().Msg("Start setup repositories")
	app.UserRepo = db.NewUserRepo(app.DbDao)
	app.OTPRepo = db.NewOTPRepo(app.DbDao)
	app.AddressRepo = db.NewAddressRepo(app.DbDao)
	app.CategoryRepo = db.NewCategoryRepo(app.DbDao)
	app.ProductRepo = redis_decorator.NewCacheAsideProductRepo(db.NewProductDBRepo(app.DbDao), app.RedisClient)
	app.FavoriteRepo = db.NewFavoriteRepo(app.DbDao)
	app.OrderRepo = db.NewOrderRepo(app.DbDao)
	app.CartRepo = redis_repo.NewCartRepo(app.RedisClient)
	log.Info().Msg("Finish setup repositories")
	return nil
}

func (app *ApplicationContext) setUpTokenMaker() error {
	log.Info().Msg("Start setup token maker")
	tokenMaker, err := token.NewPasetoMaker(app.Cf.AuthTokenKey)
	if err != nil {
		return fmt.Errorf("無法創建 token maker: %w", err)
	}
	app.TokenMaker = tokenMaker
	log.Info().Msg("Finish setup token maker")
	return nil
}

func (app *ApplicationContext) setUpMailSender() error {
	log.Info().Msg("Start setup mail sender")
	if app.Cf.EmailAccount == "" || app.Cf.SmtpAuthKey == "" {
		log.Warn().Msg("smtp account not configured, emails will only be logged")
		app.MailSender = mail.LogSender{}
	} else {
		app.MailSender = mail.NewSMTPSender(app.Cf.EmailFromName, app.Cf.EmailAccount, app.Cf.SmtpAuthKey, app.Cf.SmtpHost, app.Cf.SmtpPort)
	}
	log.Info().Msg("Finish setup mail sender")
	return nil
}

func (app *ApplicationContext) setUpEventPublisher() error {
	log.Info().Msg("Start setup order event publisher")
	brokers := app.Cf.Brokers()
	if len(brokers) == 0 {
		log.Warn().Msg("kafka brokers not configured, order events will only be logged")
		app.EventPublisher = producer.LogEventPublisher{}
		log.Info().Msg("Finish setup order event publisher")
		return nil
	}
	p, err := producer.New(producer.Config{
		Brokers:       brokers,
		Topic:         app.Cf.KafkaOrderTopic,
		RetryAttempts: 3,
		RetryBackoff:  200 * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("create order event producer: %w", err)
	}
	app.eventProducer = p
	app.EventPublisher = producer.NewOrderEventProducer(p)
	log.Info().Msg("Finish setup order event publisher")
	return nil
}

func (app *ApplicationContext) setUpServices() error {
	log.Info().Msg("Start setup services")
	app.OTPService = service.NewOTPService(app.OTPRepo)
	app.MailService = service.NewMailService(app.MailSender, app.Cf.EmailFromName)
	app.AuthService = service.NewAuthService(app.UserRepo, app.OTPService, app.MailService, app.TokenMaker, time.Duration(app.Cf.AccessTokenHours)*time.Hour)
	app.UserService = service.NewUserService(app.UserRepo, app.AddressRepo)
	app.CategoryService = service.NewCategoryService(app.CategoryRepo)
	app.ProductService = service.NewProductService(app.ProductRepo, app.CategoryRepo, app.UserRepo)
	app.CartService = service.NewCartService(app.CartRepo, app.ProductRepo)
	app.FavoriteService = service.NewFavoriteService(app.FavoriteRepo, app.ProductRepo)
	app.OrderService = service.NewOrderService(
		app.OrderRepo,
		app.AddressRepo,
		app.ProductRepo,
		app.CartRepo,
		app.CartService,
		app.EventPublisher,
		app.ProductRepo,
	)
	log.Info().Msg("Finish setup services")
	return nil
}

// setUpOrderConsumer 未設定 kafka 時不寄送訂單通知信
func (app *ApplicationContext) setUpOrderConsumer() error {
	brokers := app.Cf.Brokers()
	if len(brokers) == 0 {
		return nil
	}
	log.Info().Msg("Start setup order event consumer")
	reader := consumer.NewReader(consumer.Config{
		Brokers:       brokers,
		Topic:         app.Cf.KafkaOrderTopic,
		ConsumerGroup: app.Cf.KafkaConsumerGroup,
	})
	c := consumer.NewOrderEventConsumer(reader, service.NewOrderNotificationHandler(app.UserRepo, app.MailService))
	if err := c.Start(context.Background()); err != nil {
		return fmt.Errorf("start order event consumer: %w", err)
	}
	app.orderConsumer = c
	log.Info().Msg("Finish setup order event consumer")
	return nil
}

func (app *ApplicationContext) setUpRateLimiter() error {
	log.Info().Msg("Start setup rate limiter")
	cfg := ratelimit.GetDefaultLimiterConfig()
	if app.Cf.RateLimitCapacity > 0 {
		cfg.Capacity = app.Cf.RateLimitCapacity
	}
	if app.Cf.RateLimitPerSecond > 0 {
		cfg.RatePS = app.Cf.RateLimitPerSecond
	}
	cfg.KeyPrefix = "ratelimit:auth"
	app.AuthLimiter = ratelimit.NewRsBucketToken(app.RedisClient, &cfg)
	log.Info().Msg("Finish setup rate limiter")
	return nil
}

// Shutdown 先停 consumer 與 producer, 最後關閉 logger 讓前面的 log 都能送出
func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	log.Info().Msg("Start application shutdown")

	done := make(chan error, 1)
	go func() {
		if app.orderConsumer != nil {
			log.Info().Msg("Stopping order event consumer...")
			app.orderConsumer.Stop()
		}

		var g errgroup.Group
		if app.eventProducer != nil {
			g.Go(app.eventProducer.Close)
		}
		if app.DbDao != nil {
			g.Go(app.DbDao.Close)
		}
		if app.RedisClient != nil {
			g.Go(app.RedisClient.Close)
		}
		err := g.Wait()
		if err != nil {
			log.Error().Err(err).Msg("application shutdown error")
		}

		log.Info().Msg("Application shutdown complete")
		if app.logWriter != nil {
			logger.SetGlobal(logger.NewLogger(app.Cf.Environment, app.Cf.ModulerName))
			if cerr := app.logWriter.Close(); cerr != nil {
				log.Warn().Err(cerr).Msg("failed to close kafka log writer")
			}
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}
