package utils

import (
	"errors"
	"os"
	"time"

	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by every session token.
type Claims struct {
	Correo string `json:"correo"`
	Rol    string `json:"rol"`
	UserID uint   `json:"userId"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	s := os.Getenv("JWT_SECRET")
	if s == "" {
		s = "your-secret-key" // Replace with a strong secret key
	}
	return []byte(s)
}

// GenerateToken issues an HS256 token for the user with claims
// correo, rol and userId. Expires in 24 hours.
func GenerateToken(user models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Correo: user.Correo,
		Rol:    user.Rol,
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// ParseToken validates a token string and returns its claims.
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return jwtSecret(), nil
		})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
