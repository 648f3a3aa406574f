package auth

import (
	"testing"
)

func TestGenerateAndValidateClientToken(t *testing.T) {
	token, err := GenerateClientToken("client-abc")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims.ClientID != "client-abc" {
		t.Errorf("Expected client ID client-abc, got %s", claims.ClientID)
	}
	if claims.Role != "client" {
		t.Errorf("Expected role client, got %s", claims.Role)
	}
	if claims.ExpiresAt == nil {
		t.Error("Expected expiration to be set")
	}
}

func TestValidateToken_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"tampered", func() string {
			token, _ := GenerateClientToken("client-abc")
			return token + "x"
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateToken(tt.token); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
