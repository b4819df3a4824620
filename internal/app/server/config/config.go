package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env      string
	DB       db
	Server   server
	Logger   logger
	Verifier verifier
	S3       s3
	Notify   notify
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress     string   `env:"RUN_ADDRESS"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type verifier struct {
	URL     string        `env:"VERIFIER_URL"`
	APIKey  string        `env:"VERIFIER_API_KEY"`
	Timeout time.Duration `env:"VERIFIER_TIMEOUT_SECONDS"`
}

type s3 struct {
	Endpoint  string `env:"S3_ENDPOINT"`
	Region    string `env:"S3_REGION"`
	Bucket    string `env:"S3_BUCKET"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
}

type notify struct {
	WebhookURL string `env:"NOTIFY_WEBHOOK_URL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", EnvLocal)
	v.SetDefault("run_address", ":8080")
	v.SetDefault("migrations_path", "migrations")
	v.SetDefault("verifier_url", "http://localhost:8090")
	v.SetDefault("verifier_timeout_seconds", 15)
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_bucket", "proofs")
	v.SetDefault("cors_allowed_origins", "*")
}

func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := Load(viper.New())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return cfg
}

// Load читает конфигурацию из переменных окружения через переданный viper.
func Load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		Env: v.GetString("app_env"),
		DB: db{
			DatabaseURI: v.GetString("database_uri"),
			Migrations:  v.GetString("migrations_path"),
		},
		Server: server{
			RunAddress:     v.GetString("run_address"),
			AllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		},
		Logger: logger{LogLevel: v.GetString("log_level")},
		Verifier: verifier{
			URL:     strings.TrimRight(v.GetString("verifier_url"), "/"),
			APIKey:  v.GetString("verifier_api_key"),
			Timeout: time.Duration(v.GetInt("verifier_timeout_seconds")) * time.Second,
		},
		S3: s3{
			Endpoint:  v.GetString("s3_endpoint"),
			Region:    v.GetString("s3_region"),
			Bucket:    v.GetString("s3_bucket"),
			AccessKey: v.GetString("s3_access_key"),
			SecretKey: v.GetString("s3_secret_key"),
		},
		Notify: notify{WebhookURL: v.GetString("notify_webhook_url")},
	}

	return &cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
