package main

import (
	"fmt"
	"log"
	"os"

	"sheetcharts/internal/config"
	"sheetcharts/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func main() {
	var databaseURL string

	rootCmd := &cobra.Command{
		Use:   "sheetcharts-migrate",
		Short: "Manage the sheetcharts database schema",
	}
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string (default: DATABASE_URL)")

	rootCmd.AddCommand(
		newUpCmd(&databaseURL),
		newResetCmd(&databaseURL),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newUpCmd(databaseURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Create missing tables and indexes and insert the default user",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect(*databaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			runner := migration.NewRunner()
			if err := runner.Run(cmd.Context(), db); err != nil {
				return err
			}
			log.Printf("Schema is at version %s", runner.Version())
			return nil
		},
	}
}

func newResetCmd(databaseURL *string) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop every sheetcharts table, then migrate up again",
		Long: `Drop every sheetcharts table and recreate the schema. All uploaded
files and saved charts are lost.

Example: sheetcharts-migrate reset --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("reset deletes all data; pass --yes to confirm")
			}
			db, err := connect(*databaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			runner := migration.NewRunner()
			if err := runner.Reset(cmd.Context(), db); err != nil {
				return err
			}
			return runner.Run(cmd.Context(), db)
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm that all data may be dropped")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the schema version this binary migrates to",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), migration.NewRunner().Version())
		},
	}
}

// connect resolves the database URL from the flag, then the environment
func connect(databaseURL string) (*sqlx.DB, error) {
	if databaseURL == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		databaseURL = cfg.Database.URL
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
