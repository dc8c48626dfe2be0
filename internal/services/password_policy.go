package services

const (
	MinPasswordLength = 6
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordLength = 72
)

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return invalidInput("Password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return invalidInput("Password must be at most %d bytes long", MaxPasswordLength)
	}
	return nil
}
