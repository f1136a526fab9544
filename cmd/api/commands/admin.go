package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/powervate/admin-api/internal/services"
	"github.com/powervate/admin-api/internal/store"
	"github.com/powervate/admin-api/internal/utils"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errPasswordMismatch = errors.New("passwords do not match")
)

// promptPassword reads a new password twice without echoing it.
func promptPassword(w io.Writer, fd int) (string, error) {
	fmt.Fprint(w, "Enter password: ")
	pwd, err := readPasswordFunc(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	if len(pwd) < services.MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", services.MinPasswordLength)
	}

	fmt.Fprint(w, "Confirm password: ")
	confirm, err := readPasswordFunc(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	if string(pwd) != string(confirm) {
		return "", errPasswordMismatch
	}
	return string(pwd), nil
}

// adminService is the part of the auth service the account commands use.
type adminService interface {
	CreateAdmin(ctx context.Context, fullName, email, password string) (string, error)
	ResetPassword(ctx context.Context, email, password string) error
}

// withAuthService opens MongoDB and runs fn with an auth service over it.
// Sessions are never created here so they stay in memory.
func withAuthService(ctx context.Context, fn func(adminService) error) error {
	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}
	client, db, err := openMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	svc := services.NewAuthService(
		store.NewCredentialStore(db),
		store.NewUserStore(db),
		services.NewMemorySessionStore(),
		utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()),
		services.AuthOptions{BcryptCost: cfg.Auth.BcryptCost, Logger: logger},
	)
	return fn(svc)
}

func createAdmin(ctx context.Context, svc adminService, out io.Writer, name, email, password string) error {
	uid, err := svc.CreateAdmin(ctx, name, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Admin %s ready.\nUID: %s\n", email, uid)
	return nil
}

func resetPassword(ctx context.Context, svc adminService, out io.Writer, email, password string) error {
	if err := svc.ResetPassword(ctx, email, password); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no account for %s", email)
		}
		return err
	}
	fmt.Fprintf(out, "Password updated for %s.\n", email)
	return nil
}

func createAdminCmd() *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or promote the account or app user with this email",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd.OutOrStdout(), int(os.Stdin.Fd()))
			if err != nil {
				return err
			}
			return withAuthService(cmd.Context(), func(svc adminService) error {
				return createAdmin(cmd.Context(), svc, cmd.OutOrStdout(), name, email, password)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name shown in the dashboard")
	cmd.Flags().StringVar(&email, "email", "", "sign-in email (the password is prompted next)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func resetPasswordCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd.OutOrStdout(), int(os.Stdin.Fd()))
			if err != nil {
				return err
			}
			return withAuthService(cmd.Context(), func(svc adminService) error {
				return resetPassword(cmd.Context(), svc, cmd.OutOrStdout(), email, password)
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (the password is prompted next)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
