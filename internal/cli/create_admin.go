package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/terraincognita07/ereceipt/internal/db"
	"github.com/terraincognita07/ereceipt/internal/services"
	"gorm.io/gorm"
)

const adminPasswordEnv = "ADMIN_PASSWORD"

// PasswordSource yields the password for a new or promoted admin.
type PasswordSource func() (string, error)

func RunCreateAdminCommand(database *gorm.DB, username string, password PasswordSource, out io.Writer) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("username is required")
	}
	secret, err := password()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	accounts := services.NewAdminAccountService(db.NewUserRepository(database))
	created, err := accounts.EnsureAdmin(username, secret)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	if created {
		fmt.Fprintf(out, "Admin %s created\n", services.NormalizeUsername(username))
	} else {
		fmt.Fprintf(out, "Existing user %s promoted to admin; password replaced\n", services.NormalizeUsername(username))
	}
	return nil
}

// EnvOrPromptPassword reads ADMIN_PASSWORD, or asks twice on the terminal
// without echo.
func EnvOrPromptPassword(stdin *os.File, out io.Writer) PasswordSource {
	return func() (string, error) {
		if value := os.Getenv(adminPasswordEnv); value != "" {
			return value, nil
		}

		fmt.Fprint(out, "Password: ")
		first, err := readPasswordNoEcho(stdin)
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		fmt.Fprint(out, "Repeat password: ")
		second, err := readPasswordNoEcho(stdin)
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		if string(first) != string(second) {
			return "", errors.New("passwords do not match")
		}
		return string(first), nil
	}
}
