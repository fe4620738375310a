package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/userpanel/internal/platform/db"
)

func newMigrateCommand(defaultDSN string) *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", defaultDSN, "postgres connection string")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all up migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(dsn, func(m *db.Migrator) error {
				if err := m.Up(); err != nil {
					return fmt.Errorf("migrate up failed: %w", err)
				}
				return reportVersion(cmd, m)
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return fmt.Errorf("steps must be positive, got %d", steps)
			}
			return withMigrator(dsn, func(m *db.Migrator) error {
				if err := m.Down(steps); err != nil {
					return fmt.Errorf("migrate down failed: %w", err)
				}
				return reportVersion(cmd, m)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

func withMigrator(dsn string, fn func(*db.Migrator) error) error {
	m, err := db.NewMigrator(dsn)
	if err != nil {
		return fmt.Errorf("init migrator failed: %w", err)
	}
	defer func() {
		_ = m.Close()
	}()
	return fn(m)
}

func reportVersion(cmd *cobra.Command, m *db.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if dirty {
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty)\n", version)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
	return nil
}
