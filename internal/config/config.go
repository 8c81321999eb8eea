package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port           string `envconfig:"PORT" default:"3000"`
	DatabaseURL    string `envconfig:"DATABASE_URL"` // empty keeps everything in memory
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding    string `envconfig:"LOG_ENCODING" default:"json"` // json|console
	JWTSecret      string `envconfig:"JWT_SECRET"`
	ClientURL      string `envconfig:"CLIENT_URL"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS"`

	DefaultUserID uint   `envconfig:"DEFAULT_USER_ID" default:"1"`
	DemoUsername  string `envconfig:"DEMO_USERNAME" default:"demo"`
	DemoPassword  string `envconfig:"DEMO_PASSWORD" default:"demo"`

	Probe    ProbeConfig
	Email    EmailConfig
	Telegram TelegramConfig
}

type ProbeConfig struct {
	Mode             string        `envconfig:"PROBE_MODE" default:"random"` // random|page
	URL              string        `envconfig:"PROBE_URL" default:"https://ais.usvisa-info.com/en-ke/niv"`
	Selector         string        `envconfig:"PROBE_SELECTOR" default:"#main"`
	Timeout          time.Duration `envconfig:"PROBE_TIMEOUT" default:"30s"`
	AvailabilityRate float64       `envconfig:"PROBE_AVAILABILITY_RATE" default:"0.1"`
}

type EmailConfig struct {
	User       string `envconfig:"EMAIL_USER"`
	Password   string `envconfig:"EMAIL_PASS"`
	SMTPHost   string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort   int    `envconfig:"SMTP_PORT" default:"587"`
	Embassy    string `envconfig:"EMBASSY_NAME" default:"Nairobi Embassy"`
	BookingURL string `envconfig:"BOOKING_URL" default:"https://ais.usvisa-info.com/en-ke/niv"`
}

type TelegramConfig struct {
	APIURL string `envconfig:"TELEGRAM_API_URL" default:"https://api.telegram.org"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
