package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Security SecurityConfig
	Bot      BotConfig
	Logging  LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port     int
	Host     string
	UseHTTPS bool
	CertFile string
	KeyFile  string
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// SecurityConfig - настройки безопасности.
// EncryptionKey используется для расшифровки API ключей биржи,
// APIPasswordHash (bcrypt) защищает управляющие endpoints.
type SecurityConfig struct {
	EncryptionKey   string
	APIPasswordHash string
}

// BotConfig - настройки торгового цикла
type BotConfig struct {
	// Биржа и ключи (секрет хранится зашифрованным AES-256-GCM)
	Exchange           string
	APIKey             string
	APISecretEncrypted string

	// Параметры цикла
	CycleInterval   time.Duration // период переоценки
	CandleInterval  string        // интервал свечей для анализа
	CandleCount     int           // глубина истории свечей
	AnalysisTimeout time.Duration // таймаут анализа одного инструмента
	OrderTimeout    time.Duration // таймаут исполнения ордера

	// Восстановление при старте
	RecoveryTimeout time.Duration

	// Режим симуляции: ордера исполняются на бумажной бирже
	DryRun bool
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnvAsInt("SERVER_PORT", 8080),
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			UseHTTPS: getEnvAsBool("USE_HTTPS", false),
			CertFile: getEnv("CERT_FILE", ""),
			KeyFile:  getEnv("KEY_FILE", ""),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "coinbot"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Security: SecurityConfig{
			EncryptionKey:   getEnv("ENCRYPTION_KEY", ""),
			APIPasswordHash: getEnv("API_PASSWORD_HASH", ""),
		},
		Bot: BotConfig{
			Exchange:           getEnv("EXCHANGE", "binance"),
			APIKey:             getEnv("EXCHANGE_API_KEY", ""),
			APISecretEncrypted: getEnv("EXCHANGE_API_SECRET", ""),

			CycleInterval:   getEnvAsDuration("CYCLE_INTERVAL", 1*time.Minute),
			CandleInterval:  getEnv("CANDLE_INTERVAL", "1h"),
			CandleCount:     getEnvAsInt("CANDLE_COUNT", 120),
			AnalysisTimeout: getEnvAsDuration("ANALYSIS_TIMEOUT", 10*time.Second),
			OrderTimeout:    getEnvAsDuration("ORDER_TIMEOUT", 10*time.Second),

			RecoveryTimeout: getEnvAsDuration("RECOVERY_TIMEOUT", 30*time.Second),

			DryRun: getEnvAsBool("DRY_RUN", false),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if err := cfg.validateSecurity(); err != nil {
		return nil, err
	}
	if err := cfg.validateRanges(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateSecurity проверяет параметры безопасности
func (c *Config) validateSecurity() error {
	// Зашифрованный секрет без ключа расшифровать нечем
	if c.Bot.APISecretEncrypted != "" && c.Security.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required when EXCHANGE_API_SECRET is set")
	}
	if c.Security.EncryptionKey != "" && len(c.Security.EncryptionKey) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}
	return nil
}

// validateRanges проверяет числовые диапазоны параметров
func (c *Config) validateRanges() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
	}

	if c.Bot.CycleInterval < time.Second {
		return fmt.Errorf("CYCLE_INTERVAL must be at least 1s, got %v", c.Bot.CycleInterval)
	}
	if c.Bot.AnalysisTimeout <= 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT must be positive, got %v", c.Bot.AnalysisTimeout)
	}
	if c.Bot.OrderTimeout <= 0 {
		return fmt.Errorf("ORDER_TIMEOUT must be positive, got %v", c.Bot.OrderTimeout)
	}
	if c.Bot.CandleCount < 1 {
		return fmt.Errorf("CANDLE_COUNT must be positive, got %d", c.Bot.CandleCount)
	}

	// Таймаут анализа обязан умещаться в цикл, иначе барьер
	// не успевает собраться до следующего тика
	if c.Bot.AnalysisTimeout >= c.Bot.CycleInterval {
		return fmt.Errorf("ANALYSIS_TIMEOUT %v must be below CYCLE_INTERVAL %v", c.Bot.AnalysisTimeout, c.Bot.CycleInterval)
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
