package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/venuevibe/vibecheck/internal/config"
	"github.com/venuevibe/vibecheck/internal/database"
	"github.com/venuevibe/vibecheck/internal/utils"
)

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "Apply the database schema",
	Action: func(ctx context.Context, c *cli.Command) error {
		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := database.Migrate(ctx, a.db); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "schema is up to date")
		return nil
	},
}

var syncCmd = &cli.Command{
	Name:  "sync",
	Usage: "Fetch the listings page once and upsert matched events",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "no-color", Usage: "disable colored output"},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.syncer.Sync(ctx)
		if err != nil {
			return err
		}
		return writeSyncReport(os.Stdout, res, !c.Bool("no-color"))
	},
}

var tokenCmd = &cli.Command{
	Name:  "token",
	Usage: "Mint an admin access token signed with JWT_SECRET",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "ttl", Usage: "token lifetime in minutes (default ACCESS_TOKEN_TTL_MIN)"},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		secret, ttl := config.LoadAdmin()
		if secret == "" {
			return errors.New("JWT_SECRET is not set")
		}
		if v := c.Int("ttl"); v > 0 {
			ttl = int(v)
		}
		tok, err := utils.NewAccessToken(secret, "admin", utils.RoleAdmin, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, tok.Token)
		return nil
	},
}

var hashPasswordCmd = &cli.Command{
	Name:      "hash-password",
	Usage:     "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	ArgsUsage: "<password>",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "cost", Value: utils.DefaultBcryptCost, Usage: "bcrypt cost"},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		plain := c.Args().First()
		if plain == "" {
			return errors.New("usage: hash-password <password>")
		}
		hash, err := utils.HashPassword(plain, int(c.Int("cost")))
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, hash)
		return nil
	},
}
