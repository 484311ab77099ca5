package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/seu-repo/sigec-posto/pkg/config"
)

func sign(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestParseToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "s3cret", Issuer: "sigec-auth"}
	valid := jwt.RegisteredClaims{
		Subject:   "manager-1",
		Issuer:    "sigec-auth",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid access token", sign(t, "s3cret", Claims{RegisteredClaims: valid, Type: "access"}), false},
		{"untyped token", sign(t, "s3cret", Claims{RegisteredClaims: valid}), false},
		{"refresh token", sign(t, "s3cret", Claims{RegisteredClaims: valid, Type: "refresh"}), true},
		{"wrong secret", sign(t, "other", Claims{RegisteredClaims: valid}), true},
		{"wrong issuer", sign(t, "s3cret", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: "evil"}}), true},
		{"expired", sign(t, "s3cret", Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject: "x", Issuer: "sigec-auth", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}), true},
		{"no subject", sign(t, "s3cret", Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "sigec-auth"}}), true},
		{"garbage", "not-a-token", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(tt.token, cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && claims.Subject != "manager-1" {
				t.Errorf("expected subject manager-1, got %s", claims.Subject)
			}
		})
	}
}
