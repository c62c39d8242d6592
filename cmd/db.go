package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/markb/sareeone/internal/config"
	"github.com/markb/sareeone/internal/db"
	"github.com/markb/sareeone/internal/seed"
	"github.com/markb/sareeone/internal/store"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management commands",
	Long:  `Commands for creating the schema and loading the default data.`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables",
	Long: `Create every table the server needs. Existing tables are left as they are.

Examples:
  sareeone db migrate
  DATABASE_URL=postgres://saree@localhost/saree sareeone db migrate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, database, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		fmt.Printf("Schema ready (%s)\n", database.Dialect())
		return nil
	},
}

var dbSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert default data into empty tables",
	Long: `Insert the default admin and driver accounts, categories, sections,
settings, restaurants, menu items and the welcome offer. Tables that already
hold rows are skipped, so running it twice changes nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, database, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		res, err := seed.New(store.New(database)).Run(cmd.Context())
		if err != nil {
			return err
		}
		if res.Empty() {
			fmt.Println("Nothing to seed")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FIXTURE\tSTATUS")
		for _, name := range res.Inserted {
			fmt.Fprintf(w, "%s\tinserted\n", name)
		}
		return w.Flush()
	},
}

// openDatabase loads the configuration and checks the database is reachable.
func openDatabase(cmd *cobra.Command) (*config.Config, *db.DB, error) {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return nil, nil, err
	}
	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.CheckConnection(cmd.Context()); err != nil {
		database.Close()
		return nil, nil, err
	}
	return cfg, database, nil
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbSeedCmd)
}
