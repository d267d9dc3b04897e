package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/susu3304/pointbot/internal/api"
	"github.com/susu3304/pointbot/internal/bot"
	"github.com/susu3304/pointbot/internal/commands"
	"github.com/susu3304/pointbot/internal/config"
	"github.com/susu3304/pointbot/internal/db"
	"github.com/susu3304/pointbot/internal/ledger"
	"github.com/susu3304/pointbot/internal/logging"
	"github.com/susu3304/pointbot/internal/templates"
)

type flags struct {
	channel string
	record  string
	prefix  string
	backend string
	webBind string
	verbose bool
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "pointbot [channel] [record]",
		Short: "Chat bot for keeping score",
		Long: `pointbot watches one Discord channel for "!points" commands and keeps a
per-user score ledger.

  !points <nick> <value>   give (or take) points
  !points stats [<nick>]   show the leaderboard
  !points remove <nick>    forget someone's points

Settings come from the environment (and .env); flags and arguments override them.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			applyOverrides(cmd, cfg, f, args)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, f.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&f.channel, "channel", "", "Discord channel ID to keep score in (env CHANNEL)")
	cmd.Flags().StringVar(&f.record, "record", "", "ledger file or SQLite database path (env RECORD)")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "command prefix (env POINTS_PREFIX, default !points)")
	cmd.Flags().StringVar(&f.backend, "backend", "", "ledger backend: file, sqlite, postgres or memory (env LEDGER_BACKEND)")
	cmd.Flags().StringVar(&f.webBind, "web-bind", "", "serve the leaderboard API on this address (env WEB_BIND)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")

	return cmd
}

// applyOverrides lets positional arguments and set flags win over the environment.
func applyOverrides(cmd *cobra.Command, cfg *config.Config, f flags, args []string) {
	if len(args) > 0 {
		cfg.DiscordChannelID = args[0]
	}
	if len(args) > 1 {
		cfg.RecordPath = args[1]
	}
	if cmd.Flags().Changed("channel") {
		cfg.DiscordChannelID = f.channel
	}
	if cmd.Flags().Changed("record") {
		cfg.RecordPath = f.record
	}
	if cmd.Flags().Changed("prefix") {
		cfg.Prefix = f.prefix
	}
	if cmd.Flags().Changed("backend") {
		cfg.LedgerBackend = f.backend
	}
	if cmd.Flags().Changed("web-bind") {
		cfg.WebBind = f.webBind
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	points := ledger.Open(ctx, store, logger.Named("ledger"), ledger.WithSaveRetries(cfg.SaveRetries))
	selector := templates.NewSelector(templates.DefaultCatalog())
	dispatcher := commands.NewDispatcher(cfg.Prefix, points, selector, logger.Named("commands"))

	discordBot, err := bot.New(cfg.DiscordToken, cfg.DiscordChannelID, dispatcher, logger.Named("bot"))
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return discordBot.Run(ctx)
	})
	if cfg.WebBind != "" {
		apiServer := api.New(points, cfg.Prefix, logger.Named("api"))
		g.Go(func() error {
			return apiServer.Run(ctx, cfg.WebBind)
		})
	}

	err = g.Wait()
	logger.Info("Shutting down")
	return err
}

func openStore(ctx context.Context, cfg *config.Config) (ledger.Store, func(), error) {
	switch cfg.LedgerBackend {
	case config.BackendPostgres:
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(ctx); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return database, database.Close, nil

	case config.BackendSQLite:
		s, err := db.NewSQLiteStore(cfg.RecordPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case config.BackendMemory:
		return ledger.NewMemoryStore(nil), func() {}, nil

	default:
		return ledger.NewFileStore(cfg.RecordPath), func() {}, nil
	}
}
