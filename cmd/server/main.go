package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/seu-repo/sigec-casa/internal/adapter/cache"
	"github.com/seu-repo/sigec-casa/internal/adapter/command"
	"github.com/seu-repo/sigec-casa/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/sigec-casa/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/sigec-casa/internal/adapter/queue"
	"github.com/seu-repo/sigec-casa/internal/adapter/recognition"
	"github.com/seu-repo/sigec-casa/internal/adapter/speech"
	"github.com/seu-repo/sigec-casa/internal/adapter/storage/postgres"
	"github.com/seu-repo/sigec-casa/internal/adapter/vault"
	wsAdapter "github.com/seu-repo/sigec-casa/internal/adapter/websocket"
	"github.com/seu-repo/sigec-casa/internal/observability/telemetry"
	"github.com/seu-repo/sigec-casa/internal/ports"
	"github.com/seu-repo/sigec-casa/internal/service/dialogue"
	"github.com/seu-repo/sigec-casa/internal/service/health"
	"github.com/seu-repo/sigec-casa/internal/service/reminder"
	"github.com/seu-repo/sigec-casa/pkg/config"
)

const (
	serviceName    = "sigec-casa"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	version := cfg.App.Version
	if version == "" {
		version = serviceVersion
	}

	// 2. Initialize Logger
	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting SIGEC-Casa",
		zap.String("service", serviceName),
		zap.String("version", version),
	)

	// 3. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(serviceName, version, cfg.OpenTelemetry.Jaeger.Endpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 4. Load the Room Snapshot
	room, err := config.LoadRoom(cfg.Rooms.Path, cfg.Rooms.Room)
	if err != nil {
		logger.Fatal("Failed to load room configuration", zap.Error(err))
	}
	logger.Info("Room loaded",
		zap.String("room", room.Name),
		zap.Strings("capabilities", room.Capabilities().List()),
	)

	// 5. Initialize Reminder Persistence (optional)
	var reminderStore ports.ReminderStore
	if cfg.Database.URL != "" {
		db, err := postgres.NewConnection(cfg.Database.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer postgres.Close(db)

		if cfg.Database.AutoMigrate {
			if err := postgres.RunMigrations(db); err != nil {
				logger.Fatal("Failed to run migrations", zap.Error(err))
			}
		}
		reminderStore = postgres.NewReminderStore(db, logger)
	}

	// 6. Initialize Cache (Redis with in-memory fallback)
	var kv ports.Cache
	if cfg.Redis.URL != "" {
		kv, err = cache.NewRedisCache(cfg.Redis.URL, logger)
		if err != nil {
			logger.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
			kv = cache.NewLocalCache(time.Minute, logger)
		}
	} else {
		kv = cache.NewLocalCache(time.Minute, logger)
	}
	defer kv.Close()

	// 7. Connect the TTS/command-bus NATS socket
	nc, err := nats.Connect(cfg.NATS.URL,
		nats.Name(serviceName),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer nc.Close()

	// 8. Initialize the Lifecycle Event Queue (RabbitMQ or NATS)
	var messageQueue queue.MessageQueue
	if cfg.RabbitMQ.URL != "" {
		messageQueue, err = queue.NewRabbitMQQueue(cfg.RabbitMQ.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
	} else {
		messageQueue = queue.NewNATSQueueFromConn(nc, logger)
	}
	defer messageQueue.Close()

	// 9. Initialize the Recognizer (NATS bridge or direct stream)
	var recognizer ports.Recognizer
	switch cfg.Recognition.Transport {
	case "stream":
		recognizer, err = recognition.NewStreamRecognizer(context.Background(), cfg.Recognition.StreamURL, logger)
	default:
		recognizer, err = recognition.NewNATSRecognizer(cfg.NATS.URL, logger)
	}
	if err != nil {
		logger.Fatal("Failed to connect to speech engine", zap.Error(err))
	}
	defer recognizer.Close()

	// 10. Initialize the Display Hub and Speaker
	replyHub := wsAdapter.NewHub(logger)
	go replyHub.Run()

	speaker := speech.NewSpeaker(nc, recognizer, []ports.VisualSink{replyHub}, cfg.Speech.SpeakTimeout, logger)

	// 11. Initialize the Automation Bus Executor
	executor := command.NewExecutor(nc, cfg.CircuitBreaker, logger)

	// 12. Initialize Vault Secrets (optional)
	var secrets ports.SecretProvider
	if cfg.Vault.Address != "" {
		secrets, err = vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token)
		if err != nil {
			logger.Fatal("Failed to connect to Vault", zap.Error(err))
		}
	}

	// 13. Initialize the Reminder Scheduler
	scheduler := reminder.NewScheduler(reminderStore, logger)
	if reminderStore != nil {
		if err := scheduler.Restore(context.Background()); err != nil {
			logger.Warn("Failed to restore persisted reminders", zap.Error(err))
		}
	}

	// 14. Initialize the Dialogue Controller
	grammar := loadGrammar(cfg.Recognition.GrammarPath, logger)
	if grammar != nil {
		if err := recognizer.ReloadGrammar(grammar); err != nil {
			logger.Warn("Failed to push grammar to engine", zap.Error(err))
		}
	}

	controller := dialogue.NewController(dialogue.Config{
		PollSlice: cfg.Dialogue.PollSlice,
		IdleSlice: cfg.Dialogue.IdleSlice,
		ReplyWait: cfg.Dialogue.ReplyWait,
		ConvoWait: cfg.Dialogue.ConvoWait,
		Version:   version,
	}, dialogue.Deps{
		Recognizer: recognizer,
		Speaker:    speaker,
		Executor:   executor,
		Reminders:  scheduler,
		Queue:      messageQueue,
		Cache:      kv,
		Secrets:    secrets,
		Room:       room,
		Logger:     logger,
	})

	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := controller.Run(runCtx); err != nil {
			logger.Error("Dialogue worker stopped", zap.Error(err))
		}
	}()

	// 15. Initialize the Health Service
	healthService := health.NewService(&health.Config{
		Version: version,
		NATS:    nc,
		Cache:   kv,
	}, logger)

	// 16. Initialize the Fiber Ops Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	}

	health.NewFiberHandler(healthService).RegisterRoutes(app)

	if cfg.Prometheus.Enabled {
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
			handler(c.Context())
			return nil
		})
	}

	v1 := app.Group("/api/v1")
	reload := func() (string, error) {
		newRoom, err := config.LoadRoom(cfg.Rooms.Path, cfg.Rooms.Room)
		if err != nil {
			return "", err
		}
		controller.RequestReload(newRoom, loadGrammar(cfg.Recognition.GrammarPath, logger))
		return newRoom.Name, nil
	}
	statusHandler := handlers.NewStatusHandler(
		controller, scheduler, reload,
		room.Name, room.Capabilities().List(), version, logger,
	)
	statusHandler.SetBreakerState(executor.BreakerState)
	statusHandler.RegisterRoutes(v1)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/replies", websocket.New(func(c *websocket.Conn) {
		replyHub.AddClient(c)
	}))

	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 17. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	controller.Stop()
	cancelRun()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		logger.Warn("Dialogue worker did not stop in time")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// loadGrammar reads the grammar file, or returns nil when none is
// configured.
func loadGrammar(path string, logger *zap.Logger) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read grammar file", zap.String("path", path), zap.Error(err))
		return nil
	}
	return data
}

// buildLogger applies the logging section: level, console vs json
// encoding, output path, and sampling.
func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()

	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("bad logging level %q: %w", cfg.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	if cfg.Format == "console" {
		zc.Encoding = "console"
	}
	if cfg.Output != "" {
		zc.OutputPaths = []string{cfg.Output}
	}
	if cfg.Sampling.Enabled {
		if cfg.Sampling.Initial > 0 {
			zc.Sampling.Initial = cfg.Sampling.Initial
		}
		if cfg.Sampling.Thereafter > 0 {
			zc.Sampling.Thereafter = cfg.Sampling.Thereafter
		}
	} else {
		zc.Sampling = nil
	}

	return zc.Build()
}
