package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/partsroom/internal/inventory"
	"github.com/saltyorg/partsroom/internal/notification"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and default settings, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, _, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			log.Info().Str("database", cfg.Database.Path).Msg("Database is up to date")
			return nil
		},
	}
}

func notifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify <username>",
		Short: "Text the current low-stock list to one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Till.URL == "" {
				return notification.ErrNoGatewayURL
			}

			db, _, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := inventory.NewService(db, nil, notification.NewSMSProvider(cfg.Till.URL, cfg.Till.Timeout))
			delivered, err := svc.SendLowStockText(context.Background(), args[0])
			if err != nil {
				return err
			}
			if !delivered {
				return errors.New("low-stock text was not delivered")
			}

			fmt.Printf("Low-stock text sent to %s\n", args[0])
			return nil
		},
	}
}

func vacuumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vacuum",
		Short: "Optimize and compact the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, _, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Optimize(); err != nil {
				return err
			}
			if err := db.Vacuum(); err != nil {
				return err
			}

			log.Info().Str("database", cfg.Database.Path).Msg("Database optimized")
			return nil
		},
	}
}
