package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"grosir/internal/cache"
	"grosir/internal/clock"
	"grosir/internal/config"
	"grosir/internal/database"
	"grosir/internal/handlers"
	"grosir/internal/logger"
	"grosir/internal/middleware"
	"grosir/internal/models"
	"grosir/internal/pricing"
	"grosir/internal/repositories"
	"grosir/internal/services"
	"grosir/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zlog, err := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	app, cleanup, err := NewApp(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize application", zap.Error(err))
	}
	defer cleanup()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zlog.Info("starting server", zap.String("port", cfg.AppPort))
		if err := app.Listen(cfg.AppPort); err != nil {
			zlog.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	zlog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("error during fiber shutdown", zap.Error(err))
	}
	zlog.Info("server gracefully stopped")
}

// NewApp wires storage, pricing, messaging and HTTP routes. The returned
// cleanup func releases every connection that was opened.
func NewApp(cfg config.Config, zlog *zap.Logger) (*fiber.App, func(), error) {
	if zlog == nil {
		zlog = zap.NewNop()
	}
	ctx := context.Background()
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Repositories ---
	db, err := database.Open(cfg, zlog)
	if err != nil {
		return nil, nil, err
	}
	var (
		ruleRepo     repositories.MarkupRuleRepository
		materialRepo repositories.MaterialRepository
		orderRepo    repositories.OrderRepository
	)
	if db == nil {
		ruleRepo = repositories.NewMockMarkupRuleRepository()
		materialRepo = repositories.NewMockMaterialRepository()
		orderRepo = repositories.NewMockOrderRepository()
	} else {
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { sqlDB.Close() })
		}
		ruleRepo = repositories.NewGORMMarkupRuleRepository(db)
		materialRepo = repositories.NewGORMMaterialRepository(db)
		orderRepo = repositories.NewGORMOrderRepository(db)
	}

	// --- Pricing engine, optionally over a shared rule cache ---
	var (
		ruleStore   pricing.RuleStore = ruleRepo
		invalidator services.RuleCacheInvalidator
		ruleCache   *cache.RuleCache
	)
	if cfg.RuleCacheEnabled {
		var gen cache.Generation = cache.NewLocalGeneration()
		if cfg.RedisAddr != "" {
			client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			closers = append(closers, func() { client.Close() })
			gen = cache.NewRedisGeneration(client, cache.DefaultGenerationKey)
		}
		ruleCache = cache.NewRuleCache(ruleRepo, gen, zlog)
		ruleStore = ruleCache
		invalidator = ruleCache
	}
	engine := pricing.NewEngine(ruleStore, zlog)

	// --- Events ---
	var events services.EventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, zlog)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := mqClient.Close(); err != nil {
				zlog.Warn("error closing RabbitMQ client", zap.Error(err))
			}
		})
		events = mqClient
	}

	// --- Services ---
	clk := clock.New()
	ruleService := services.NewMarkupRuleService(ruleRepo, engine, invalidator, events, clk, zlog)
	materialService := services.NewMaterialService(materialRepo)
	cartService := services.NewCartService(materialRepo, engine, clk)
	orderService := services.NewOrderService(orderRepo, materialRepo, engine, events, clk, zlog)

	if cfg.SeedData {
		if err := seedData(ctx, materialRepo, ruleService); err != nil {
			cleanup()
			return nil, nil, err
		}
		zlog.Info("seed data loaded")
	}

	if mqClient != nil {
		if err := startConsumers(mqClient, ruleCache, zlog); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	// --- Fiber app ---
	app := fiber.New(fiber.Config{AppName: "grosir"})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(zlog))

	apiV1 := app.Group("/api/v1")
	handlers.NewMarkupRuleHandler(ruleService, zlog).RegisterRoutes(apiV1)
	handlers.NewMaterialHandler(materialService, zlog).RegisterRoutes(apiV1)
	handlers.NewCartHandler(cartService, zlog).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(orderService, zlog).RegisterRoutes(apiV1)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":     "healthy",
			"time":       clk.Now().Format(time.RFC3339),
			"database":   cfg.DBDriver,
			"events":     mqClient != nil,
			"rule_cache": ruleCache != nil,
		})
	})

	return app, cleanup, nil
}

// startConsumers subscribes to the application's own events. Rule change
// events from any instance drop this instance's cached rule snapshot.
func startConsumers(mq *rabbitmq.Client, ruleCache *cache.RuleCache, zlog *zap.Logger) error {
	consumerLog := zlog.Named("consumer")

	err := mq.Consume(rabbitmq.Subscription{Queue: "grosir.orders", BindingKey: rabbitmq.RoutingOrderCreated}, func(msg amqp.Delivery) error {
		consumerLog.Info("order event received",
			zap.Uint64("delivery_tag", msg.DeliveryTag),
			zap.ByteString("body", msg.Body),
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to start order consumer: %w", err)
	}

	if ruleCache == nil {
		return nil
	}
	err = mq.Consume(rabbitmq.Subscription{BindingKey: rabbitmq.RoutingMarkupRulePattern}, func(msg amqp.Delivery) error {
		ruleCache.Purge()
		consumerLog.Debug("rule cache purged", zap.String("routing_key", msg.RoutingKey))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to start markup rule consumer: %w", err)
	}
	return nil
}

// seedData loads a small catalogue and a baseline rule set for local use.
// Materials already present are skipped, and rules are only seeded into an empty rule set.
func seedData(ctx context.Context, materials repositories.MaterialRepository, rules *services.MarkupRuleService) error {
	bulk := "bulk"
	catalogue := []models.Material{
		{ID: "mat-cement", Name: "Portland Cement 50kg", SupplierID: "sup-1", CategoryID: &bulk, Price: decimal.RequireFromString("65000"), Stock: 500},
		{ID: "mat-sand", Name: "River Sand 1m3", SupplierID: "sup-2", CategoryID: &bulk, Price: decimal.RequireFromString("250000"), Stock: 40},
		{ID: "mat-rebar", Name: "Rebar 10mm 12m", SupplierID: "sup-1", Price: decimal.RequireFromString("82000"), Stock: 300},
	}
	for i := range catalogue {
		_, err := materials.GetByID(ctx, catalogue[i].ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to check seeded material %s: %w", catalogue[i].ID, err)
		}
		if err := materials.Create(ctx, &catalogue[i]); err != nil {
			return fmt.Errorf("failed to seed material %s: %w", catalogue[i].ID, err)
		}
	}

	// rule IDs are assigned on creation; only an empty rule set is seeded
	existing, err := rules.ListRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to check seeded markup rules: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	supplier := "sup-1"
	minMarkup := decimal.RequireFromString("1000")
	baseline := []models.MarkupRule{
		{Name: "Platform default", MarkupType: models.MarkupTypePercent, MarkupValue: decimal.RequireFromString("0.05"), MinMarkup: &minMarkup, Priority: 0, IsActive: true, CreatedBy: "seed"},
		{Name: "Supplier 1 handling", SupplierID: &supplier, MarkupType: models.MarkupTypeFixed, MarkupValue: decimal.RequireFromString("2500"), Priority: 10, IsActive: true, CreatedBy: "seed"},
	}
	for i := range baseline {
		if err := rules.CreateRule(ctx, &baseline[i]); err != nil {
			return fmt.Errorf("failed to seed markup rule %q: %w", baseline[i].Name, err)
		}
	}
	return nil
}
