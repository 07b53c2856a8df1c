package main

import (
	"context"
	"fmt"

	"charityportal/internal/auth"
	"charityportal/internal/db"
	"charityportal/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var tokenCommand = &cli.Command{
	Name:  "token",
	Usage: "Issue a bearer token for an existing user",
	Flags: []cli.Flag{
		&cli.Int64Flag{
			Name:    "user-id",
			Aliases: []string{"u"},
			Usage:   "ID of the user to issue the token for",
		},
	},
	Action: func(c *cli.Context) error {
		userID := c.Int64("user-id")
		if userID <= 0 {
			return cli.Exit("set --user-id", 1)
		}

		cfg, err := loadConfig(c.String("env-prefix"))
		if err != nil {
			return err
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		user, err := store.NewUserRepository(pool).User(ctx, userID)
		if err != nil {
			return err
		}

		token, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL).Issue(user)
		if err != nil {
			return err
		}

		fmt.Println(token)
		return nil
	},
	Subcommands: []*cli.Command{
		{
			Name:      "inspect",
			Usage:     "Verify a token and print its claims",
			ArgsUsage: "<token>",
			Action: func(c *cli.Context) error {
				if c.NArg() != 1 {
					return cli.Exit("expected exactly one token", 1)
				}

				cfg, err := loadConfig(c.String("env-prefix"))
				if err != nil {
					return err
				}

				claims, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL).Verify(c.Args().First())
				if err != nil {
					return err
				}

				pp.Println(claims)
				return nil
			},
		},
	},
}
