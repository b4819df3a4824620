package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultLogLevel      = "warn"
	defaultEnv           = "local"
	defaultConfigDir     = ".stepsync"
)

type Config struct {
	Env            string `mapstructure:"app_env"`
	ServerAddress  string `mapstructure:"server_address"`
	LogLevel       string `mapstructure:"log_level"`
	ConfigDir      string `mapstructure:"config_dir"`
	TokenPath      string `mapstructure:"token_path"`
	QueuePath      string `mapstructure:"queue_path"`
	EnableTLS      bool   `mapstructure:"enable_tls"`
	RequestTimeout int    `mapstructure:"request_timeout_seconds"`
	// HealthInterval период опроса /health в режиме демона, секунды
	HealthInterval int `mapstructure:"health_interval_seconds"`
	DebounceMillis int `mapstructure:"debounce_millis"`
	RetentionDays  int `mapstructure:"queue_retention_days"`
}

// MustLoad загружает конфигурацию клиента
func MustLoad() *Config {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	cfg, err := Load(viper.GetViper())
	if err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}
	return cfg
}

// Load читает настройки из v (переменные окружения и файл, если он подключен).
func Load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", defaultEnv)
	v.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("CONFIG_DIR", defaultConfigDir)
	v.SetDefault("ENABLE_TLS", false)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	v.SetDefault("HEALTH_INTERVAL_SECONDS", 30)
	v.SetDefault("DEBOUNCE_MILLIS", 500)
	v.SetDefault("QUEUE_RETENTION_DAYS", 7)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := v.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории конфигурации: %w", err)
	}

	tokenPath := v.GetString("TOKEN_PATH")
	if tokenPath == "" {
		tokenPath = filepath.Join(configDir, "token")
	}
	queuePath := v.GetString("QUEUE_PATH")
	if queuePath == "" {
		queuePath = filepath.Join(configDir, "queue.db")
	}

	cfg := &Config{
		Env:            v.GetString("APP_ENV"),
		ServerAddress:  v.GetString("SERVER_ADDRESS"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		ConfigDir:      configDir,
		TokenPath:      tokenPath,
		QueuePath:      queuePath,
		EnableTLS:      v.GetBool("ENABLE_TLS"),
		RequestTimeout: v.GetInt("REQUEST_TIMEOUT_SECONDS"),
		HealthInterval: v.GetInt("HEALTH_INTERVAL_SECONDS"),
		DebounceMillis: v.GetInt("DEBOUNCE_MILLIS"),
		RetentionDays:  v.GetInt("QUEUE_RETENTION_DAYS"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("server_address не может быть пустым")
	}
	if c.HealthInterval <= 0 {
		return fmt.Errorf("health_interval_seconds должен быть больше нуля")
	}
	if c.DebounceMillis < 0 {
		return fmt.Errorf("debounce_millis не может быть отрицательным")
	}
	return nil
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMillis) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.HealthInterval) * time.Second
}

func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}
