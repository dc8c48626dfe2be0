package security

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrHashMismatch = errors.New("hash mismatch")

// dummyHash is compared against when no stored hash exists so that unknown
// accounts cost the same bcrypt work as known ones.
var dummyHash = mustHash("ereceipt-timing-equalizer")

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(hash string, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrHashMismatch
	}
	return nil
}

// BurnPasswordCheck runs a comparison against a fixed hash and discards the result.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// NormalizeSecretAnswer trims and lower-cases an answer so that "Jakarta " and
// "jakarta" verify the same.
func NormalizeSecretAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

func HashSecretAnswer(answer string) (string, error) {
	return HashPassword(NormalizeSecretAnswer(answer))
}

func VerifySecretAnswer(hash string, answer string) error {
	return VerifyPassword(hash, NormalizeSecretAnswer(answer))
}

func mustHash(value string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(value), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
}
