package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/daaqui-joyas/salesbot/database"
	"github.com/daaqui-joyas/salesbot/internal/catalog"
	"github.com/daaqui-joyas/salesbot/internal/config"
	"github.com/daaqui-joyas/salesbot/internal/handlers"
	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/middleware"
	"github.com/daaqui-joyas/salesbot/internal/queue"
	"github.com/daaqui-joyas/salesbot/internal/routes"
	"github.com/daaqui-joyas/salesbot/internal/services"
	"github.com/daaqui-joyas/salesbot/internal/storage"
)

const version = "1.0.0"

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			slog.Info("no .env file found, using environment variables")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	// Initialize storage
	var store storage.Store
	if cfg.UseMemoryStore {
		logger.Store.Warn("using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		db, err := database.Connect(cfg.DB)
		if err != nil {
			logger.Store.Error("database unavailable", slog.Any("error", err))
			os.Exit(1)
		}
		dbStore := storage.NewDatabaseStore(db)
		if err := dbStore.Migrate(); err != nil {
			logger.Store.Error("failed to migrate database", slog.Any("error", err))
			os.Exit(1)
		}
		store = dbStore
	}

	provider := catalog.NewProvider(ctx, &catalog.Loader{Path: cfg.CatalogFile, Docs: store})
	if err := catalog.SeedProducts(ctx, store, provider.Current()); err != nil {
		logger.Config.Error("failed to seed products", slog.Any("error", err))
	}

	sender, err := newSender(cfg)
	if err != nil {
		logger.Msg.Error("failed to initialize WhatsApp provider", slog.Any("error", err))
		os.Exit(1)
	}

	var admin services.AdminNotifier
	if multi := services.NewMultiNotifier(
		services.NewWhatsAppNotifier(sender, cfg.AdminWhatsAppNumber),
		services.NewEmailNotifier(cfg.SMTP, cfg.AdminEmail),
	); multi != nil {
		admin = multi
	} else {
		logger.Sale.Warn("no admin channel configured, sale alerts disabled")
	}

	var events services.SaleEvents
	var broker *queue.RabbitMQ
	if cfg.AMQPURL != "" {
		broker, err = queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			logger.Sale.Warn("sale events disabled", slog.Any("error", err))
		} else {
			events = queue.NewProducer(broker.Ch)
		}
	}

	finalizer := services.NewFinalizer(store, store, events, admin)
	machine := services.NewMachine(store, finalizer, cfg.Location)
	conversation := services.NewConversation(store, provider, machine, sender, admin, services.ConversationConfig{
		SessionTTL:  cfg.SessionTTL,
		PauseMax:    cfg.MessagePauseMax,
		AdminNumber: cfg.AdminWhatsAppNumber,
	})

	app := fiber.New(fiber.Config{
		AppName: "Daaqui Joyas Sales Bot v" + version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(middleware.Metrics())

	routes.SetupRoutes(app, cfg, routes.Handlers{
		WhatsApp: handlers.NewWhatsAppHandler(conversation, cfg.WhatsApp.VerifyToken),
		Tracking: handlers.NewTrackingHandler(conversation),
		Admin:    handlers.NewAdminHandler(conversation, provider, store, cfg.Location),
		Health:   handlers.NewHealthHandler(version, store, provider, sender.Name()),
	})

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		logger.L.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.L.Error("server shutdown failed", slog.Any("error", err))
		}
		if broker != nil {
			if err := broker.Close(); err != nil {
				logger.L.Warn("failed to close RabbitMQ", slog.Any("error", err))
			}
		}
	}()

	logger.L.Info("sales bot starting",
		slog.String("port", cfg.Port),
		slog.String("environment", cfg.Environment),
		slog.String("storage", store.Kind()),
		slog.String("whatsapp", sender.Name()),
		slog.Bool("webhook_validation", cfg.WebhookValidation()),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.L.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func newSender(cfg *config.Config) (services.MessageSender, error) {
	switch cfg.WhatsApp.Provider {
	case config.ProviderCloud:
		return services.NewCloudAPISender(cfg.WhatsApp), nil
	case config.ProviderTwilio:
		return services.NewTwilioSender(cfg.Twilio)
	default:
		logger.Msg.Warn("WhatsApp provider is 'log', messages are only logged")
		return services.NewLogSender(), nil
	}
}
