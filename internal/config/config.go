package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort  string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DbHost     string `envconfig:"DB_HOST" default:"localhost"`
	DbPort     string `envconfig:"DB_PORT" default:"5432"`
	DbUser     string `envconfig:"DB_USER" default:"postgres"`
	DbPassword string `envconfig:"DB_PASSWORD" default:"password"`
	DbName     string `envconfig:"DB_NAME" default:"surveys"`
	DbSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	JwtSecret string        `envconfig:"JWT_SECRET" default:"defaultsecret"`
	Issuer    string        `envconfig:"ISSUER" default:"survey-platform"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	CorsOrigins []string `envconfig:"CORS_ORIGINS"`

	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	MinioBucket    string `envconfig:"MINIO_BUCKET" default:"survey-attachments"`
	// MaxAttachmentBytes caps uploads to /forms/:id/attachments.
	MaxAttachmentBytes int64 `envconfig:"MAX_ATTACHMENT_BYTES" default:"10485760"`

	// AllowReopen lets callers with edit rights move approved or rejected submissions back to submitted.
	AllowReopen      bool   `envconfig:"ALLOW_REOPEN" default:"false"`
	CapRetryAttempts int    `envconfig:"CAP_RETRY_ATTEMPTS" default:"3"`
	OfficeSeedFile   string `envconfig:"OFFICE_SEED_FILE"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using environment variables")
	}

	c := new(Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	if c.CapRetryAttempts < 1 {
		c.CapRetryAttempts = 1
	}
	return c, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DbHost,
		c.DbPort,
		c.DbUser,
		c.DbPassword,
		c.DbName,
		c.DbSSLMode,
	)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ConfigureLogger applies the configured level and switches to JSON output in production.
func (c *Config) ConfigureLogger(logger *logrus.Logger) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if c.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
}
