package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AirTechNEO/coworkconnect/config"
	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/database/memory"
	repository "github.com/AirTechNEO/coworkconnect/internal/database/postgres"
	rediscache "github.com/AirTechNEO/coworkconnect/internal/database/redis"
	"github.com/AirTechNEO/coworkconnect/internal/service"
	"github.com/AirTechNEO/coworkconnect/internal/transport"
	"github.com/AirTechNEO/coworkconnect/internal/transport/middleware"
	"github.com/AirTechNEO/coworkconnect/internal/worker"

	"github.com/AirTechNEO/coworkconnect/pkg/auth"
	"github.com/AirTechNEO/coworkconnect/pkg/kafka"
	"github.com/AirTechNEO/coworkconnect/pkg/postgres"
	"github.com/AirTechNEO/coworkconnect/pkg/rabbitmq"
	"github.com/AirTechNEO/coworkconnect/pkg/redis"
	"github.com/AirTechNEO/coworkconnect/pkg/retry"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// closer collects resources released on shutdown, last opened first closed
type closer []func()

func (c *closer) add(fn func()) {
	*c = append(*c, fn)
}

func (c closer) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Server.Env == "development" {
		logrus.SetLevel(logrus.DebugLevel)
	}

	var resources closer
	defer resources.closeAll()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	store := newStore(ctx, cfg, &resources)

	// Initialize search cache
	var cache service.SearchCache
	if cfg.Cache.Enabled {
		redisClient, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logrus.Warnf("Redis unavailable, search cache disabled: %v", err)
		} else {
			resources.add(func() { _ = redisClient.Close() })
			cache = rediscache.NewSearchCache(redisClient, cfg.Cache.TTL)
			logrus.Info("Search cache initialized")
		}
	}

	events := newEventPublisher(cfg, &resources)

	clock := service.NewBookingClock(time.Now, cfg.Booking.Location(), cfg.Booking.SlotClockOffset)
	retryManager := retry.NewRetryManager(cfg.Booking.MaxRetries, cfg.Booking.RetryBaseDelay, service.IsRetryable)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration)

	// Initialize services
	services := service.NewServices(service.Deps{
		Store:      store,
		Retry:      retryManager,
		Clock:      clock,
		Cache:      cache,
		Events:     events,
		Tokens:     tokens,
		PageSize:   cfg.Cache.PageSize,
		WindowDays: cfg.Booking.WindowDays,
	})

	if _, err := services.Provisioner.EnsureWindow(ctx); err != nil {
		logrus.Errorf("Initial provisioning failed: %v", err)
	}

	// Initialize provision worker
	provisionWorker := worker.NewProvisionWorker(services.Provisioner, cfg.Worker.ProvisionInterval)
	go provisionWorker.Start(ctx)

	// Initialize handlers
	bookingHandler := transport.NewBookingHandler(services.Planner, services.Reconciler, services.Ledger)
	roomHandler := transport.NewRoomHandler(services.Rooms)
	userHandler := transport.NewUserHandler(services.Users)

	// Setup HTTP server
	if cfg.Server.Env == "production" || cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go rateLimiter.StartCleanup(ctx, time.Minute)

	router := transport.InitRoutes(bookingHandler, roomHandler, userHandler, transport.Options{
		Auth:           services.Users,
		RateLimiter:    rateLimiter,
		RequestTimeout: cfg.Server.RequestTimeout,
		Version:        cfg.Server.AppVersion,
	})

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, router); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithField("address", cfg.GetServerAddress()).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}

func newStore(ctx context.Context, cfg *config.Config, resources *closer) *database.Store {
	if strings.EqualFold(cfg.Storage.Driver, "memory") {
		logrus.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewStore()
	}

	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	resources.add(func() { _ = db.Close() })

	// Run database migrations
	if err := postgres.RunMigrations(ctx, db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}
	return repository.NewStore(db)
}

// newEventPublisher picks the broker; any broker sits behind a circuit breaker
func newEventPublisher(cfg *config.Config, resources *closer) service.EventPublisher {
	switch strings.ToLower(cfg.Events.Driver) {
	case "kafka":
		producer := kafka.NewProducer(cfg.Events.Brokers, cfg.Events.Topic)
		resources.add(func() { _ = producer.Close() })
		logrus.WithField("topic", cfg.Events.Topic).Info("Kafka event publisher initialized")
		return service.WithCircuitBreaker(service.NewKafkaEventPublisher(producer), "kafka-events", cfg.Events.Failures)

	case "rabbitmq":
		rmq, err := rabbitmq.NewRabbitMQ(rabbitmq.Config{URL: cfg.Events.AMQPURL, QueueName: cfg.Events.Queue})
		if err != nil {
			logrus.Errorf("Failed to connect to RabbitMQ: %v. Continuing without events...", err)
			return service.NewNoopEventPublisher()
		}
		resources.add(func() { _ = rmq.Close() })
		logrus.WithField("queue", cfg.Events.Queue).Info("RabbitMQ event publisher initialized")
		return service.WithCircuitBreaker(service.NewRabbitEventPublisher(rmq), "rabbitmq-events", cfg.Events.Failures)

	default:
		logrus.Warn("No event broker configured, booking events disabled")
		return service.NewNoopEventPublisher()
	}
}
