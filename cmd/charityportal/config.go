package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charityportal/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// minSecretBytes is the shortest JWT secret accepted outside development.
const minSecretBytes = 32

// loadConfig reads PREFIX_KEY variables, falling back to the bare KEY.
func loadConfig(prefix string) (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if err := validateConfig(c); err != nil {
		return nil, err
	}

	return c, nil
}

func validateConfig(c *types.Config) error {
	if c.DatabaseURL == "" {
		return errors.New("set DATABASE_URL")
	}

	if c.JWTSecret == "" {
		return errors.New("set JWT_SECRET")
	}

	if !c.IsDevelopment() && len(c.JWTSecret) < minSecretBytes {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes outside development", minSecretBytes)
	}

	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}

	if c.ServerPort == 0 {
		c.ServerPort = 3000
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 15
	}

	if c.ImageMaxBytes <= 0 {
		return errors.New("IMAGE_MAX_BYTES must be positive")
	}

	c.ImageBucket = strings.TrimSpace(c.ImageBucket)

	return nil
}

func newLogger(c *types.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.WithField("log_level", c.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}
