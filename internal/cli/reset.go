package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/terraincognita07/ereceipt/internal/db"
	"github.com/terraincognita07/ereceipt/internal/services"
	"gorm.io/gorm"
)

// RunResetPasswordCommand assigns a temporary password to username and prints
// it once. Every session of the user is revoked.
func RunResetPasswordCommand(database *gorm.DB, username string, out io.Writer) error {
	accounts := services.NewAdminAccountService(db.NewUserRepository(database))

	temporaryPassword, err := accounts.ResetToTemporaryPassword(username)
	if errors.Is(err, services.ErrUserNotFound) {
		return fmt.Errorf("user %s not found", username)
	}
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	fmt.Fprintln(out, "Password reset successful")
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	fmt.Fprintln(out, "Share it over a trusted channel; existing sessions were signed out.")
	return nil
}
