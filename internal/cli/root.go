// Package cli holds the freshbuy command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/fjod/freshbuy/internal/config"
	"github.com/fjod/freshbuy/internal/repository"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel string
}

// NewRootCommand creates the root command for the freshbuy backend.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "freshbuy",
		Short:         "FreshBuy marketplace backend",
		Long:          "FreshBuy serves the farmer marketplace API: catalog, carts, checkout, orders and analytics.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error); overrides LOG_LEVEL")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCreateSuperuserCommand(opts))

	return cmd
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	return cfg, nil
}

func credentials(db config.Database) *repository.Credentials {
	return &repository.Credentials{
		Host:              db.Host,
		Port:              db.Port,
		User:              db.User,
		Password:          db.Password,
		DBName:            db.Name,
		MigrationsDirPath: db.MigrationsPath,
	}
}

// openRepository connects to Postgres and brings the schema up to date.
func openRepository(db config.Database) (*repository.Repository, error) {
	cred := credentials(db)
	repo, err := repository.NewRepository(cred)
	if err != nil {
		return nil, err
	}
	if err := repo.RunMigrations(cred); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}
