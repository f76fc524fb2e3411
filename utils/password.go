package utils

import "golang.org/x/crypto/bcrypt"

// PasswordCost matches the cost existing accounts were hashed with.
var PasswordCost = 12

func HashPassword(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), PasswordCost)
	return string(hash), err
}

func CheckPassword(password string, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
