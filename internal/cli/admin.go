package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/clubhouse/internal/storage"
)

// NewAdminCommand creates the admin command group.
func NewAdminCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}
	cmd.AddCommand(newAdminSetCommand(rootOpts, "grant", true))
	cmd.AddCommand(newAdminSetCommand(rootOpts, "revoke", false))
	return cmd
}

func newAdminSetCommand(rootOpts *RootOptions, name string, admin bool) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   name,
		Short: strings.ToUpper(name[:1]) + name[1:] + " the admin flag for a registered user",
		Long: `Set or clear the admin flag on a registered user.

The flag is read at login, so the user must log in again for it to apply.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := rootOpts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			email = strings.ToLower(strings.TrimSpace(email))
			if err := store.SetAdmin(cmd.Context(), email, admin); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("no user registered with email %s", email)
				}
				return err
			}

			logger.Info("Admin flag updated", "email", email, "admin", admin)
			return writeOutput(cmd.OutOrStdout(), rootOpts.Format,
				map[string]any{"email": email, "admin": admin},
				fmt.Sprintf("%s admin=%t\n", email, admin),
			)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the registered user")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
