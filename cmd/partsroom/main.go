package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saltyorg/partsroom/internal/config"
	"github.com/saltyorg/partsroom/internal/database"
	"github.com/saltyorg/partsroom/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI flags. Anything set here wins over the environment.
var (
	port          int
	bind          string
	allowNetworks []string
	dbPath        string
	iconsDir      string
	tillURL       string
	secureCookies bool
	verbosity     int

	// Timeout flags (advanced)
	httpTimeout     time.Duration
	websocketPing   time.Duration
	shutdownTimeout time.Duration
)

func main() {
	defaults := config.DefaultTimeouts()

	rootCmd := &cobra.Command{
		Use:          "partsroom",
		Short:        "Partsroom - parts inventory server",
		Long:         `Partsroom tracks parts, part stores and jobs, and texts staff when stock runs low.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database path (or set PARTSROOM_DATABASE_PATH)")
	rootCmd.PersistentFlags().StringVar(&tillURL, "till-url", "", "SMS gateway URL (or set TILL_URL)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")
	rootCmd.PersistentFlags().DurationVar(&httpTimeout, "http-timeout", defaults.Gateway, "Timeout for requests to the SMS gateway")

	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (or set PARTSROOM_SERVER_PORT)")
	rootCmd.Flags().StringVarP(&bind, "bind", "b", "", "IP address to bind to (e.g., 127.0.0.1, 0.0.0.0)")
	rootCmd.Flags().StringSliceVarP(&allowNetworks, "allow-subnet", "a", nil, "CIDR subnets allowed to connect (e.g., 192.168.1.0/24)")
	rootCmd.Flags().StringVar(&iconsDir, "icons", "", "Directory of store icon .svg files (or set PARTSROOM_ICONS_DIR)")
	rootCmd.Flags().BoolVar(&secureCookies, "secure-cookies", false, "Mark session cookies Secure (serve behind HTTPS)")

	rootCmd.Flags().DurationVar(&websocketPing, "websocket-ping", defaults.WebSocketPing, "Interval between WebSocket keepalive pings")
	rootCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", defaults.Shutdown, "Time allowed for graceful HTTP shutdown")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("partsroom %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})
	rootCmd.AddCommand(migrateCmd(), notifyCmd(), vacuumCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies flags the user set
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = port
	}
	if flags.Changed("bind") {
		cfg.Server.Host = bind
	}
	if flags.Changed("allow-subnet") {
		cfg.Server.AllowedNetworks = allowNetworks
	}
	if flags.Changed("secure-cookies") {
		cfg.Server.SecureCookies = secureCookies
	}
	if flags.Changed("db") {
		cfg.Database.Path = dbPath
	}
	if flags.Changed("icons") {
		cfg.Icons.Dir = iconsDir
	}
	if flags.Changed("till-url") {
		cfg.Till.URL = tillURL
	}
	if flags.Changed("http-timeout") {
		cfg.Till.Timeout = httpTimeout
	}
	if level := logging.LevelFromVerbosity(verbosity); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	config.SetTimeouts(config.Timeouts{
		Gateway:       cfg.Till.Timeout,
		WebSocketPing: websocketPing,
		Shutdown:      shutdownTimeout,
	})
	return cfg, nil
}

// openDatabase opens and migrates the database, then switches logging to
// the level and rotating file the settings describe
func openDatabase(cfg *config.Config) (*database.DB, *config.Loader, error) {
	// Console only until settings are readable
	zerolog.SetGlobalLevel(logging.ParseLevel(cfg.Log.Level))
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}).With().Timestamp().Logger()

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	if err := db.InitializeDefaults(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize settings: %w", err)
	}

	loader := config.NewLoader(db)
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = logging.FilePathForDB(cfg.Database.Path)
	}
	logging.Apply(cfg.Log.Level, loader, logFile)

	return db, loader, nil
}
