// Package cli implements the flavrctl command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/pageza/flavr/backend/config"
	"github.com/pageza/flavr/backend/internal/accountsync"
	"github.com/pageza/flavr/backend/internal/collector"
	"github.com/pageza/flavr/backend/internal/database"
	"github.com/pageza/flavr/backend/internal/logging"
	"github.com/pageza/flavr/backend/internal/service"
	"github.com/pageza/flavr/backend/internal/session"
	"github.com/pageza/flavr/backend/internal/storage"
)

// app is the state shared by every command.
type app struct {
	out     io.Writer
	cfg     *config.Config
	logger  *slog.Logger
	now     func() time.Time
	verbose bool
	email   string
}

// NewRootCommand builds the flavrctl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:   "flavrctl",
		Short: "Flavr meal planner CLI",
		Long: `flavrctl reads and edits Flavr accounts from the command line.

Example usage:
  flavrctl week --date 2024-01-01 --weeks 2       # Empty planner grid
  flavrctl month --email ada@example.com          # Ada's month plan
  flavrctl import https://example.com/pad-thai    # Preview an import
  flavrctl discover curry --limit 5 --email ada@example.com
  flavrctl plan 2024-01-01 dinner r1 --email ada@example.com
  flavrctl migrate                                # Apply database migrations
  flavrctl seed-users                             # Create demo accounts`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVar(&a.email, "email", "", "account to read and write")

	root.AddCommand(
		newWeekCmd(a),
		newMonthCmd(a),
		newPlanCmd(a),
		newImportCmd(a),
		newDiscoverCmd(a),
		newMigrateCmd(a),
		newSeedUsersCmd(a),
	)
	return root
}

// Execute runs flavrctl with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) init(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), level, cfg.LogFormat)
	a.logger.Debug("configuration loaded",
		slog.String("storage", cfg.StorageBackend),
		slog.String("sync", cfg.SyncBackend),
		slog.String("collector", cfg.CollectorURL),
	)
	return nil
}

func (a *app) collector() *collector.Client {
	return collector.NewClient(a.cfg.CollectorURL, a.cfg.CollectorTimeout, a.logger)
}

// openSession opens the session of the --email account. The returned func
// releases everything it opened.
func (a *app) openSession(ctx context.Context) (*session.Session, func(), error) {
	if a.email == "" {
		return nil, nil, fmt.Errorf("--email is required")
	}

	db, err := database.New(a.cfg, a.logger)
	if err != nil {
		return nil, nil, err
	}
	var closers []func()
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		closers = append(closers, func() { _ = sqlDB.Close() })
	}

	user, err := service.NewAuthService(db, a.cfg.JWTSecret, a.cfg.TokenTTL).FindByEmail(ctx, a.email)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("%s: %w", a.email, err)
	}

	var redisClient *redis.Client
	if a.cfg.StorageBackend == config.StorageRedis {
		redisClient, err = database.NewRedisClient(ctx, a.cfg, a.logger)
		if err != nil {
			release()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = redisClient.Close() })
	}

	kv, err := storage.FromConfig(a.cfg, db, redisClient)
	if err != nil {
		release()
		return nil, nil, err
	}
	remote, err := accountsync.FromConfig(ctx, a.cfg, db)
	if err != nil {
		release()
		return nil, nil, err
	}

	s, err := session.Open(ctx, user.Account(), session.Options{
		KV:            kv,
		Remote:        remote,
		Source:        a.collector(),
		Logger:        a.logger,
		Debounce:      a.cfg.SearchDebounce,
		DiscoverLimit: a.cfg.DiscoverLimit,
		Now:           a.now,
	})
	if err != nil {
		release()
		return nil, nil, err
	}
	closers = append(closers, s.Close)

	if s.SyncEnabled() {
		if _, err := s.Pull(ctx); err != nil {
			a.logger.Warn("remote pull failed", slog.String("error", err.Error()))
		}
	}
	return s, release, nil
}
