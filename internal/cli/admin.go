package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pageza/flavr/backend/internal/database"
	"github.com/pageza/flavr/backend/internal/service"
)

// demoUsers are the accounts created by seed-users.
var demoUsers = []struct {
	name  string
	email string
}{
	{"John Doe", "john.doe@example.com"},
	{"Jane Smith", "jane.smith@example.com"},
	{"Bob Wilson", "bob.wilson@example.com"},
	{"Alice Cooper", "alice.cooper@example.com"},
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := database.New(a.cfg, a.logger)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			fmt.Fprintf(a.out, "migrations applied (%s)\n", a.cfg.DBDriver)
			return nil
		},
	}
}

func newSeedUsersCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "seed-users",
		Short: "Create demo accounts",
		Long:  `Create a fixed set of demo accounts. Accounts that already exist are skipped.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := database.New(a.cfg, a.logger)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			auth := service.NewAuthService(db, a.cfg.JWTSecret, a.cfg.TokenTTL)

			rows := make([][]string, 0, len(demoUsers))
			for _, u := range demoUsers {
				status := "created"
				if _, _, err := auth.Register(cmd.Context(), u.name, u.email, password); err != nil {
					if !errors.Is(err, service.ErrUserExists) {
						return fmt.Errorf("%s: %w", u.email, err)
					}
					status = "exists"
				}
				rows = append(rows, []string{u.email, u.name, status})
			}
			return render(a.out, []string{"Email", "Name", "Status"}, rows)
		},
	}
	cmd.Flags().StringVar(&password, "password", "testpassword123", "password for every demo account")
	return cmd
}
