package types

import "time"

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"3000"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"charity"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`

	// Bearer tokens
	// openssl rand -base64 48
	// to generate a secret
	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"168h"` // 7 days

	AllowAdminRegistration bool `envconfig:"ALLOW_ADMIN_REGISTRATION" default:"false"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:4200"`

	// Donation images (S3). Uploads are disabled when the bucket is empty.
	ImageBucket   string `envconfig:"IMAGE_BUCKET"`
	ImageMaxBytes int64  `envconfig:"IMAGE_MAX_BYTES" default:"5242880"`
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
