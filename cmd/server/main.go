package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/venuevibe/vibecheck/internal/logging"
)

func main() {
	cmd := &cli.Command{
		Name:   "vibecheck",
		Usage:  "Venue vibe check API server and maintenance commands",
		Flags:  serveFlags(),
		Action: serveAction,
		Commands: []*cli.Command{
			serveCmd,
			migrateCmd,
			syncCmd,
			tokenCmd,
			hashPasswordCmd,
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logging.Fatalf("%v", err)
	}
}
