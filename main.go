// main.go
package main

import (
	"context"
	"log"

	"quickshow/cmd"
	"quickshow/internal/data/repository"
	"quickshow/internal/queue"
	"quickshow/internal/usecase"
	"quickshow/internal/wire"
	"quickshow/internal/worker"
	"quickshow/pkg/database"
	"quickshow/pkg/gateway"
	"quickshow/pkg/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Connect to redis (seat cache)
	rdb, err := database.InitRedis(config.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	logger.Info("Redis connected successfully")

	// Task queue client (durable booking expiry)
	queueOpt := asynq.RedisClientOpt{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.QueueDB,
	}
	taskClient := asynq.NewClient(queueOpt)
	defer taskClient.Close()

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)
	seatCache := repository.NewSeatCache(rdb, config.Redis.SeatCacheTTL, logger)

	// External collaborators
	paymentGateway := gateway.NewStripeGateway(config.Stripe, config.Booking.SessionExpiry, logger)
	eventVerifier := gateway.NewStripeVerifier(config.Stripe.WebhookSecret)
	scheduler := worker.NewExpiryScheduler(taskClient, logger)
	notifier := queue.NewPublisher(config.Queue.AMQPURL, logger)

	// Services
	service := usecase.NewService(repos, seatCache, paymentGateway, eventVerifier, scheduler, notifier, config, logger)

	// Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expirer := worker.NewExpirer(repos.Booking, seatCache, logger)

	taskWorker := worker.NewServer(queueOpt, expirer, logger)
	taskWorker.Start()
	defer taskWorker.Shutdown()

	sweeper := worker.NewSweeper(expirer, config.Booking.SweepInterval, config.Booking.ExpiryDelay, logger)
	go sweeper.Start(ctx)

	reminder := worker.NewReminderScanner(
		repos.Show,
		repos.SeatLedger,
		notifier,
		config.Reminder.ScanInterval,
		config.Reminder.Lookahead,
		logger,
	)
	go reminder.Start(ctx)

	// Wire all dependencies
	app := wire.Wiring(service, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
