package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"charityportal/internal/auth"
	"charityportal/internal/db"
	"charityportal/internal/server"
	"charityportal/internal/storage"
	"charityportal/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "migrate",
			Usage: "Apply the schema before serving",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx.String("env-prefix"))
	if err != nil {
		return err
	}

	logger := newLogger(config)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cCtx.Bool("migrate") {
		if err := db.Migrate(ctx, pool, config.DatabaseSchema); err != nil {
			return err
		}
		logger.WithField("schema", config.DatabaseSchema).Info("schema applied")
	}

	deps := server.Dependencies{
		Tokens:        auth.NewTokenIssuer(config.JWTSecret, config.TokenTTL),
		Users:         store.NewUserRepository(pool),
		Donations:     store.NewDonationRepository(pool),
		Contributions: store.NewContributionRepository(pool),
		Notifications: store.NewNotificationRepository(pool),
		Stats:         store.NewStatsRepository(pool),
		DB:            pool,
	}

	if config.ImageBucket != "" {
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}
		deps.Images = storage.NewS3Storage(s3.NewFromConfig(awsConfig), config.ImageBucket)
	} else {
		logger.Info("IMAGE_BUCKET not set, image uploads disabled")
	}

	srv := server.New(config, logger, deps)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
