package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token payload is malformed")
)

// Claims represents the identity token claims. Role is a snapshot taken at
// issuance; callers must re-resolve it against current account state on
// every use (see AuthService.ValidateToken).
type Claims struct {
	UUID string `json:"uuid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed identity token for the given subject.
// Expiry is deliberately short (minutes) since no revocation list exists.
func GenerateToken(uuid, role, secret string, expiryMinutes int) (string, error) {
	claims := Claims{
		UUID: uuid,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expiryMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "outsized-identity",
			Subject:   uuid,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken verifies the signature and expiry of a token and returns
// its claims. A token whose payload lacks a subject is rejected as
// malformed even when signature and expiry are valid.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.UUID == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// DecodeEmail extracts the email claim from a provider-issued access token
// without verifying its signature. The token is only trusted after the
// provider accepts it via establish-session; this decode just tells us
// which account the session belongs to.
func DecodeEmail(tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return "", ErrTokenInvalid
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrTokenMalformed
	}
	return email, nil
}
