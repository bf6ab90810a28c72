package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/article-hub/internal/auth"
	"github.com/sakif/article-hub/internal/config"
	"github.com/sakif/article-hub/internal/database"
	"github.com/sakif/article-hub/internal/logging"
	"github.com/sakif/article-hub/internal/repository"
	"github.com/sakif/article-hub/internal/service"
)

// openStore is swapped in tests for an in-memory database.
var openStore = func(logger *slog.Logger) (repository.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return database.Open(cfg, logger)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "articlectl",
		Short:        "Admin tasks for the article server",
		SilenceUsage: true,
	}

	root.AddCommand(
		newCreateAdminCommand(),
		newPromoteCommand(),
		newGenAdminTokenCommand(),
	)
	return root
}

func newCreateAdminCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-admin <name> <phone> <password>",
		Short: "Create an account with the admin role",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmins(cmd, func(admins *service.AdminService) error {
				user, err := admins.ProvisionAdmin(cmd.Context(), args[0], args[1], args[2])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Name, user.ID)
				return nil
			})
		},
	}
}

func newPromoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <phone>",
		Short: "Grant the admin role to an existing account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmins(cmd, func(admins *service.AdminService) error {
				user, changed, err := admins.PromoteByPhone(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !changed {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is already admin\n", user.Phone)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "promoted %s (%s)\n", user.Phone, user.ID)
				return nil
			})
		},
	}
}

func newGenAdminTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-admin-token",
		Short: "Print a random value for ADMIN_TOKEN",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), auth.NewSecret())
		},
	}
}

// withAdmins opens the store, builds an AdminService on it and closes the
// store when fn returns.
func withAdmins(cmd *cobra.Command, fn func(*service.AdminService) error) error {
	logger := logging.New(os.Stderr, "warn", "text")

	store, err := openStore(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	users := service.NewAuthService(store, auth.NewPasswordService(), "", logger)
	return fn(service.NewAdminService(store, users, logger))
}
