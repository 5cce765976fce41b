package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"novemberapples/commerce-service/internal/app/commerce/config"
	"novemberapples/commerce-service/internal/app/commerce/handler"
	"novemberapples/commerce-service/internal/app/commerce/infrastructure/messaging"
	"novemberapples/commerce-service/internal/app/commerce/processor"
	"novemberapples/commerce-service/internal/app/commerce/repository"
	"novemberapples/commerce-service/internal/app/commerce/service"
	"novemberapples/commerce-service/internal/app/commerce/util"
	"novemberapples/commerce-service/migrations"
	"novemberapples/pkg/logger"
)

func main() {
	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	// Загружаем конфигурацию из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		logger.Init("commerce-service", "info")
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	// === ИНИЦИАЛИЗАЦИЯ ЛОГГЕРА ===
	logger.Init("commerce-service", os.Getenv("LOG_LEVEL"))
	if cfg.Logstash.Addr != "" {
		if err := logger.InitLogstash(cfg.Logstash.Addr, "commerce-service", os.Getenv("LOG_LEVEL")); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Logstash.Addr).Msg("Logstash unavailable, logging to stdout only")
		}
	}

	ctx := context.Background()

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL ===
	// Пул pgx для репозиториев с блокировками и сырым SQL
	pool, err := connectDB(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("Successfully connected to PostgreSQL")

	// === ПРИМЕНЕНИЕ СХЕМЫ БД ===
	if err := migrations.Apply(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("Failed to apply database schema")
	}
	logger.Info().Msg("Database schema applied")

	// === ПОДКЛЮЧЕНИЕ GORM ===
	// GORM используется для простого CRUD клиентов
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open GORM connection")
	}

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	// Redis кеширует дерево категорий
	redisClient, err := util.NewRedisClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Msg("Successfully connected to Redis")

	// === ИНИЦИАЛИЗАЦИЯ KAFKA PRODUCER ===
	// Producer отправляет события заказов и товаров в общий топик
	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Successfully initialized Kafka producer")

	// === ИНИЦИАЛИЗАЦИЯ СЛОЯ РЕПОЗИТОРИЕВ ===
	clientRepo := repository.NewClientRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	inventoryRepo := repository.NewInventoryRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	// === ИНИЦИАЛИЗАЦИЯ БИЗНЕС-ЛОГИКИ ===
	clientService := service.NewClientService(clientRepo)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, redisClient, kafkaProducer)
	inventoryService := service.NewInventoryService(inventoryRepo)
	orderService := service.NewOrderService(orderRepo, kafkaProducer)

	// === ИНИЦИАЛИЗАЦИЯ HTTP HANDLERS ===
	clientHandler := handler.NewClientHandler(clientService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	orderHandler := handler.NewOrderHandler(orderService)

	// === НАСТРОЙКА МАРШРУТОВ ===
	router := handler.SetupRoutes(clientHandler, catalogHandler, inventoryHandler, orderHandler)

	// === ЗАПУСК МОНИТОРА ОСТАТКОВ ===
	stockMonitor := processor.NewStockMonitor(inventoryRepo, cfg.Monitor.LowStockThreshold)
	if err := stockMonitor.Start(ctx, cfg.Monitor.Schedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start stock monitor")
	}
	defer stockMonitor.Stop()

	// === НАСТРОЙКА HTTP СЕРВЕРА ===
	// Production-ready настройки с таймаутами
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second, // Таймаут чтения запроса
		WriteTimeout: 15 * time.Second, // Таймаут записи ответа
		IdleTimeout:  60 * time.Second, // Таймаут idle соединений
	}

	// === ЗАПУСК HTTP СЕРВЕРА ===
	// Запускаем сервер в отдельной горутине для graceful shutdown
	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("Starting Commerce Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	// Ожидаем сигнала завершения (SIGINT или SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Commerce Service...")

	// Даем серверу 30 секунд на завершение текущих запросов
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Commerce Service stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL используя pgx connection pool
// Использует retry logic с 10 попытками для устойчивости при запуске в Docker
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.PoolURL())
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConnLifetime = 5 * time.Minute   // Время жизни соединения
	poolConfig.MaxConnIdleTime = 1 * time.Minute   // Время простоя перед закрытием
	poolConfig.HealthCheckPeriod = 1 * time.Minute // Периодичность health checks

	// Пробуем подключиться с повторными попытками
	// При запуске в Docker PostgreSQL может быть еще не готов
	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}
