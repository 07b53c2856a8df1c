package main

import (
	"context"
	"fmt"
	"time"

	"charityportal/internal/db"
	"charityportal/internal/seed"
	"charityportal/internal/store"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo users and donations",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "donations",
			Aliases: []string{"n"},
			Usage:   "Donations to create per seeded NGO",
			Value:   5,
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c.String("env-prefix"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger := newLogger(cfg)
		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logger.Info("Connected to database")

		users, err := seed.SeedUsers(ctx, logger, store.NewUserRepository(pool))
		if err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}

		err = seed.SeedDonations(
			ctx,
			logger,
			store.NewDonationRepository(pool),
			store.NewContributionRepository(pool),
			users,
			c.Int("donations"),
			time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to seed donations: %w", err)
		}

		logger.WithField("password", seed.DefaultPassword).Info("seed complete")
		return nil
	},
}
