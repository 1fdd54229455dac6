package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// CheckPassword reports whether password matches the stored bcrypt hash
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
