package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func Issue(secret string, userID int64, email, role string, ttlHours int) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   time.Now().Add(time.Duration(ttlHours) * time.Hour).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}
