package jwt

import (
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	cases := []struct {
		name string
		uuid string
		role string
	}{
		{"customer token", "9b2f6a3c-1111-4f6e-9a2b-000000000001", "CUSTOMER"},
		{"admin token", "9b2f6a3c-2222-4f6e-9a2b-000000000002", "ADMIN"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := GenerateToken(tc.uuid, tc.role, testSecret, 3)
			if err != nil {
				t.Fatalf("GenerateToken: %v", err)
			}

			claims, err := ValidateToken(token, testSecret)
			if err != nil {
				t.Fatalf("ValidateToken: %v", err)
			}
			if claims.UUID != tc.uuid {
				t.Errorf("uuid: expected %q, got %q", tc.uuid, claims.UUID)
			}
			if claims.Role != tc.role {
				t.Errorf("role: expected %q, got %q", tc.role, claims.Role)
			}
		})
	}
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken("some-uuid", "CUSTOMER", testSecret, -1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	_, err = ValidateToken(token, testSecret)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("some-uuid", "CUSTOMER", testSecret, 3)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	_, err = ValidateToken(token, "other-secret")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", testSecret)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestValidateTokenMissingSubject(t *testing.T) {
	// A signed, unexpired token whose payload lacks the uuid claim
	claims := gojwt.MapClaims{
		"role": "CUSTOMER",
		"exp":  time.Now().Add(3 * time.Minute).Unix(),
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	_, err = ValidateToken(token, testSecret)
	if !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestDecodeEmail(t *testing.T) {
	t.Run("extracts email claim", func(t *testing.T) {
		claims := gojwt.MapClaims{"email": "user@example.com"}
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("provider-secret"))
		if err != nil {
			t.Fatalf("signing: %v", err)
		}

		email, err := DecodeEmail(token)
		if err != nil {
			t.Fatalf("DecodeEmail: %v", err)
		}
		if email != "user@example.com" {
			t.Errorf("expected user@example.com, got %q", email)
		}
	})

	t.Run("missing email claim", func(t *testing.T) {
		claims := gojwt.MapClaims{"sub": "abc"}
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("provider-secret"))
		if err != nil {
			t.Fatalf("signing: %v", err)
		}

		if _, err := DecodeEmail(token); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("expected ErrTokenMalformed, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := DecodeEmail("garbage"); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("expected ErrTokenInvalid, got %v", err)
		}
	})
}
