package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/partsroom/internal/auth"
	"github.com/saltyorg/partsroom/internal/config"
	"github.com/saltyorg/partsroom/internal/icons"
	"github.com/saltyorg/partsroom/internal/inventory"
	"github.com/saltyorg/partsroom/internal/notification"
	"github.com/saltyorg/partsroom/internal/web"
	"github.com/saltyorg/partsroom/internal/web/middleware"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	nets, err := middleware.ParseNetworks(cfg.Server.AllowedNetworks)
	if err != nil {
		return err
	}

	db, loader, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if (cfg.Server.Host == "" || cfg.Server.Host == "0.0.0.0" || cfg.Server.Host == "::") && len(nets) == 0 {
		log.Warn().Msg("Server is accessible from all interfaces without subnet restrictions. Consider using --bind or --allow-subnet for security.")
	}

	catalog, err := icons.New(cfg.Icons.Dir)
	if err != nil {
		return err
	}

	log.Info().
		Str("version", version).
		Str("addr", cfg.Addr()).
		Strs("allowed_networks", cfg.Server.AllowedNetworks).
		Str("database", db.Path()).
		Str("icons", catalog.Dir()).
		Int("icon_count", len(catalog.Names())).
		Msg("Starting Partsroom")

	if cfg.Icons.Watch {
		if err := catalog.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to watch icon directory, icons load once")
		}
		defer catalog.Stop()
	}

	var texter inventory.Texter
	if cfg.Till.URL != "" {
		sms := notification.NewSMSProvider(cfg.Till.URL, cfg.Till.Timeout)
		texter = sms
		log.Info().Str("provider", sms.Name()).Msg("Low-stock texting enabled")
	} else {
		log.Warn().Msg("TILL_URL not set, low-stock texting disabled")
	}

	svc := inventory.NewService(db, catalog, texter)

	scheduler := notification.NewScheduler(svc, db, loader)
	if texter != nil {
		if err := scheduler.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start low-stock scheduler")
		}
		defer scheduler.Stop()
	}

	server := web.NewServer(web.Options{
		Addr:            cfg.Addr(),
		AllowedNetworks: nets,
		SecureCookies:   cfg.Server.SecureCookies,
	}, db, svc, scheduler, catalog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go cleanupSessions(ctx, server.Sessions(), loader)

	if err := server.Start(ctx); err != nil {
		return err
	}

	log.Info().Msg("Partsroom stopped")
	return nil
}

// cleanupSessions removes expired sessions on the configured interval
func cleanupSessions(ctx context.Context, sessions *auth.SessionService, loader *config.Loader) {
	interval := loader.DurationMinutes("sessions.cleanup_interval_minutes", 60)
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.CleanupExpired()
			if err != nil {
				log.Error().Err(err).Msg("Failed to clean up expired sessions")
				continue
			}
			if n > 0 {
				log.Debug().Int64("removed", n).Msg("Expired sessions removed")
			}
		}
	}
}
