package main

import (
	"context"
	"fmt"
	"time"

	"rtoassist/internal/db"
	"rtoassist/internal/seed"
	"rtoassist/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo RTO assistance requests",
	Action: func(c *cli.Context) error {
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

		logrus.Info("Connected to database")

		requestRepo := store.NewRequestRepository(pool)

		logrus.Info("Seeding requests...")
		n, err := seed.SeedRequests(ctx, requestRepo, time.Now())
		if err != nil {
			return fmt.Errorf("failed to seed requests: %w", err)
		}

		logrus.WithField("count", n).Info("Requests seeded successfully")

		return nil
	},
}
