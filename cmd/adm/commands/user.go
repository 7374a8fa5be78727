package commands

import (
	"context"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"gearreport/internal/observability"
	"gearreport/internal/services"
	contextutils "gearreport/internal/utils"

	"github.com/spf13/cobra"
)

// UserCommands returns the moderator account management commands
func UserCommands(adminUserService services.AdminUserServiceInterface, logger *observability.Logger) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Moderator account management commands",
		Long: `Moderator account management commands for the gear report service.

Available commands:
  create         - Create a new moderator account
  reset-password - Reset password for a moderator account`,
	}

	userCmd.AddCommand(createCmd(adminUserService, logger))
	userCmd.AddCommand(resetPasswordCmd(adminUserService, logger))

	return userCmd
}

func createCmd(adminUserService services.AdminUserServiceInterface, logger *observability.Logger) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "create [username]",
		Short: "Create a moderator account",
		Long:  `Create a new moderator account. The password is prompted for securely.`,
		RunE:  runCreateUser(adminUserService, logger, &email),
	}
	cmd.Flags().StringVar(&email, "email", "", "Contact email for the account")

	return cmd
}

func resetPasswordCmd(adminUserService services.AdminUserServiceInterface, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password [username]",
		Short: "Reset password for a moderator account",
		Long:  `Reset the password for a moderator account. If username is not provided, you will be prompted for it.`,
		RunE:  runResetPassword(adminUserService, logger),
	}
}

func runCreateUser(adminUserService services.AdminUserServiceInterface, logger *observability.Logger, email *string) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		username, err := usernameFromArgsOrPrompt(args)
		if err != nil {
			return err
		}

		password, err := promptPasswordTwice()
		if err != nil {
			return err
		}

		user, err := adminUserService.CreateUser(ctx, username, password, *email)
		if err != nil {
			logger.Error(ctx, "Failed to create moderator account", err, map[string]interface{}{"username": username})
			return contextutils.WrapErrorf(err, "failed to create account '%s'", username)
		}

		fmt.Printf("Moderator account '%s' created (ID: %d)\n", user.Username, user.ID)
		return nil
	}
}

func runResetPassword(adminUserService services.AdminUserServiceInterface, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		username, err := usernameFromArgsOrPrompt(args)
		if err != nil {
			return err
		}

		password, err := promptPasswordTwice()
		if err != nil {
			return err
		}

		if err := adminUserService.ResetPassword(ctx, username, password); err != nil {
			logger.Error(ctx, "Failed to reset password", err, map[string]interface{}{"username": username})
			return contextutils.WrapErrorf(err, "failed to reset password for '%s'", username)
		}

		fmt.Printf("Password successfully reset for '%s'\n", username)
		return nil
	}
}

func usernameFromArgsOrPrompt(args []string) (string, error) {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		fmt.Print("Enter username: ")
		if _, err := fmt.Scanln(&username); err != nil {
			return "", contextutils.WrapError(err, "failed to read username")
		}
	}
	if username == "" {
		return "", contextutils.ErrorWithContextf("username is required")
	}
	return username, nil
}

func promptPasswordTwice() (string, error) {
	fmt.Print("Enter new password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", contextutils.WrapError(err, "failed to read password")
	}
	fmt.Println()
	password := string(passwordBytes)

	if password == "" {
		return "", contextutils.ErrorWithContextf("password cannot be empty")
	}

	fmt.Print("Confirm new password: ")
	confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", contextutils.WrapError(err, "failed to read password confirmation")
	}
	fmt.Println()

	if password != string(confirmBytes) {
		return "", contextutils.ErrorWithContextf("passwords do not match")
	}
	return password, nil
}
