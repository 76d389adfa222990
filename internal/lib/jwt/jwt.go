package jwt

import (
	"time"

	"edu_gallery/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// NewSessionToken mints the opaque session token the identity backend hands
// out on login.
func NewSessionToken(user models.User, fingerprint, secret string, duration time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["uid"] = user.ID.String()
	claims["name"] = user.FullName
	claims["fp"] = fingerprint
	claims["iat"] = time.Now().Unix()
	claims["exp"] = time.Now().Add(duration).Unix()

	return token.SignedString([]byte(secret))
}

// ParseSessionToken verifies the signature and expiry and returns the uid
// claim.
func ParseSessionToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}

	uid, ok := claims["uid"].(string)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}

	return uid, nil
}
