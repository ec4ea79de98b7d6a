package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor of hashed passwords.
var bcryptCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of |password|.
func HashPassword(password string) (string, error) {
	var hash, err = bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword returns true if |password| matches the bcrypt |hash|.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
