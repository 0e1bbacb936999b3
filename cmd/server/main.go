package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salonsync-service/internal/infrastructure/config"
	"salonsync-service/internal/infrastructure/oauth"
	"salonsync-service/internal/infrastructure/persistence"
	gmailSender "salonsync-service/internal/interface/gmail"
	"salonsync-service/internal/interface/notifier"
	mongoRepo "salonsync-service/internal/interface/repository"
	"salonsync-service/internal/usecase"
	"salonsync-service/pkg/logger"
	"salonsync-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting SalonSync Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Metrics
	appMetrics := metrics.NewMetrics("salonsync")

	// Set up repositories
	appointmentRepo := mongoRepo.NewMongoAppointmentRepository(db, log)
	notificationRepo := mongoRepo.NewMongoNotificationRepository(db)
	pushTokenRepo := mongoRepo.NewMongoPushTokenRepository(db)
	stylistRepo := mongoRepo.NewMongoStylistRepository(db)
	serviceRepo := mongoRepo.NewMongoServiceRepository(db)
	clientRepo := mongoRepo.NewMongoClientRepository(db)
	branchRepo := mongoRepo.NewGormBranchRepository(gormDB)

	pushGateway := mongoRepo.NewExpoPushGateway(cfg.PushGatewayURL, cfg.PushGatewayToken, log)

	// Set up Gmail OAuth and the email transport
	gmailOAuth := oauth.NewGmailOAuth(
		cfg.GmailClientID,
		cfg.GmailClientSecret,
		cfg.GmailRefreshToken,
		log,
	)
	tokenSource := gmailOAuth.GetTokenSource(ctx)

	emailSender, err := gmailSender.NewGmailSender(ctx, tokenSource, cfg.EmailFrom, cfg.EmailFromName, log)
	if err != nil {
		log.Fatal("Failed to create Gmail sender", "error", err)
	}

	// Local notification queue
	localNotifier := notifier.NewQueueNotifier(128, log)
	localNotifier.Subscribe(func(n notifier.LocalNotification) {
		log.Info("Local notification", "title", n.Title, "body", n.Body)
	})
	go localNotifier.Start(ctx)

	// Core pipeline
	resolver := usecase.NewUnionResolver(appointmentRepo, log, appMetrics)
	mapper := usecase.NewCanonicalMapper(stylistRepo, serviceRepo, clientRepo, branchRepo, log, appMetrics)
	liveSync := usecase.NewLiveSyncEngine(appointmentRepo, resolver, mapper, log, appMetrics)
	dispatcher := usecase.NewNotificationDispatcher(pushTokenRepo, pushGateway, emailSender, localNotifier, notificationRepo, log, appMetrics)
	appointmentService := usecase.NewAppointmentService(appointmentRepo, resolver, mapper, liveSync, dispatcher, stylistRepo, clientRepo, log)

	// Start reminder loop in a goroutine
	go func() {
		reminderTicker := time.NewTicker(cfg.ReminderInterval)
		defer reminderTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Reminder loop stopped")
				return
			case <-reminderTicker.C:
				log.Info("Scanning for due reminders")
				if err := appointmentService.SendReminders(ctx, cfg.ReminderLead); err != nil {
					log.Error("Error sending reminders", "error", err)
				}
			}
		}
	}()

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("SalonSync Service stopped")
}
