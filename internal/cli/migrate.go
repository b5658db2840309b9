package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fjod/freshbuy/internal/telemetry"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			telemetry.InitLogger(os.Stderr, cfg.LogLevel)

			repo, err := openRepository(cfg.DB)
			if err != nil {
				return err
			}
			defer repo.Close()

			slog.InfoContext(cmd.Context(), "migrations applied", "path", cfg.DB.MigrationsPath)
			return nil
		},
	}
}
