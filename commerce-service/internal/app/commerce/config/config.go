package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Monitor  MonitorConfig
	Logstash LogstashConfig
}

type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8080)
}

type DatabaseConfig struct {
	Host         string // Хост PostgreSQL
	Port         string // Порт PostgreSQL
	User         string // Имя пользователя БД
	Password     string // Пароль БД
	DBName       string // Имя базы данных
	SSLMode      string // Режим SSL (disable/require/verify-full)
	PoolMinConns int    // Минимум соединений в пуле pgx
	PoolMaxConns int    // Максимум соединений в пуле pgx
}

type RedisConfig struct {
	Host     string // Хост Redis
	Port     string // Порт Redis
	Password string // Пароль Redis (пустой если не требуется)
	DB       int    // Номер базы Redis
}

type KafkaConfig struct {
	Brokers []string // Список брокеров Kafka (формат: host:port)
	Topic   string   // Топик для событий заказов и товаров
}

type MonitorConfig struct {
	// Cron-расписание проверки низких остатков
	Schedule string
	// Порог, ниже которого остаток считается низким
	LowStockThreshold int
}

type LogstashConfig struct {
	Addr string // Адрес Logstash (host:port), пустой - логи только в stdout
}

func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			DBName:       getEnv("DB_NAME", "commerce_service"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			PoolMinConns: getEnvInt("DB_POOL_MIN_CONNS", 1),
			PoolMaxConns: getEnvInt("DB_POOL_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "commerce_events"),
		},
		Monitor: MonitorConfig{
			Schedule:          getEnv("MONITOR_SCHEDULE", "*/5 * * * *"),
			LowStockThreshold: getEnvInt("MONITOR_LOW_STOCK_THRESHOLD", 10),
		},
		Logstash: LogstashConfig{
			Addr: getEnv("LOGSTASH_ADDR", ""),
		},
	}, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// PoolURL возвращает строку подключения для pgxpool с настройками пула
func (c *DatabaseConfig) PoolURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_min_conns=%d&pool_max_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
		c.PoolMinConns, c.PoolMaxConns,
	)
}

func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
