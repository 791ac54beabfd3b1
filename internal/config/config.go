package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// ----------------------------
	// HTTP
	// ----------------------------
	Port        string `envconfig:"PORT" default:"8080"`
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`

	// BaseURL is the public address embedded in open-tracking beacon links.
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	// ----------------------------
	// Database
	// ----------------------------
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// ----------------------------
	// Mail provider
	// ----------------------------
	MailProvider string `envconfig:"MAIL_PROVIDER" default:"api"` // api or smtp
	MailAPIURL   string `envconfig:"MAIL_API_URL" default:"http://localhost:9492"`
	NotifyAPIURL string `envconfig:"NOTIFY_API_URL" default:"http://localhost:9493"`
	ReplyTo      string `envconfig:"REPLY_TO" default:"replies@blackleoventure.com"`

	SMTPHost     string `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"1025"`
	SMTPUser     string `envconfig:"SMTP_USER" default:""`
	SMTPPassword string `envconfig:"SMTP_PASSWORD" default:""`

	// ----------------------------
	// Send throttling
	// ----------------------------
	BatchSize    int `envconfig:"SEND_BATCH_SIZE" default:"10"`
	BatchDelayMS int `envconfig:"SEND_BATCH_DELAY_MS" default:"1000"`

	// ----------------------------
	// Event feed (optional)
	// ----------------------------
	AMQPURL string `envconfig:"AMQP_URL" default:""`
}

// Load reads .env when present, then processes the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	err := envconfig.Process("", &cfg)
	return &cfg, err
}
