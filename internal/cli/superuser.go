package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fjod/freshbuy/internal/auth"
	"github.com/fjod/freshbuy/internal/service"
	"github.com/fjod/freshbuy/internal/telemetry"
)

type superuserOptions struct {
	email    string
	password string
}

// NewCreateSuperuserCommand creates an admin account. Running it again for the same email is a no-op.
func NewCreateSuperuserCommand(opts *RootOptions) *cobra.Command {
	su := &superuserOptions{}

	cmd := &cobra.Command{
		Use:   "create-superuser",
		Short: "Create an admin account if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if su.password == "" {
				su.password = os.Getenv("SUPERUSER_PASSWORD")
			}

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

			svc := service.NewAuthService(repo, auth.NewTokens(cfg.JWTSecret))
			created, err := svc.EnsureSuperuser(cmd.Context(), su.email, su.password)
			if err != nil {
				return err
			}

			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "superuser %s created\n", su.email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "superuser %s already exists\n", su.email)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&su.email, "email", "e", os.Getenv("SUPERUSER_EMAIL"), "admin email (default $SUPERUSER_EMAIL)")
	cmd.Flags().StringVarP(&su.password, "password", "p", "", "admin password (default $SUPERUSER_PASSWORD)")

	return cmd
}
