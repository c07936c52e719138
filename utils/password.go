package utils

import (
	"golang.org/x/crypto/bcrypt"
	"uptask/config"
)

// HashPassword hashes a plaintext password with the configured bcrypt cost.
func HashPassword(password string) (string, error) {
	cost := config.AppConfig.BcryptCost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
