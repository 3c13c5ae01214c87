package main

import (
	"context"
	"fmt"

	"rtoassist/internal/db"
	"rtoassist/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var showCommand = &cli.Command{
	Name:      "show",
	Usage:     "Print a stored request",
	ArgsUsage: "<request-id>",
	Action: func(c *cli.Context) error {
		id := c.Args().First()
		if id == "" {
			return fmt.Errorf("request id is required")
		}

		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := requireDatabase(cfg); err != nil {
			return err
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		req, err := store.NewRequestRepository(pool).Request(ctx, id)
		if err != nil {
			return err
		}

		pp.Println(req)
		return nil
	},
}
