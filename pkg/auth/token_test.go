package auth

import (
	"testing"
	"time"

	"github.com/otka-dev/otka-backend/pkg/config"
	"github.com/otka-dev/otka-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "otka-test",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		Email: "partner@example.ro",
		Role:  enums.UserRolePartner,
		JTI:   "jti-123",
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Email != "partner@example.ro" {
		t.Fatalf("unexpected email: %s", claims.Email)
	}
	if claims.Role != enums.UserRolePartner {
		t.Fatalf("unexpected role: %s", claims.Role)
	}
	if claims.ID != "jti-123" {
		t.Fatalf("unexpected jti: %s", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer: %s", claims.Issuer)
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name    string
		cfg     config.JWTConfig
		payload AccessTokenPayload
	}{
		{
			name:    "missing secret",
			cfg:     config.JWTConfig{Issuer: "otka-test", ExpirationMinutes: 30},
			payload: AccessTokenPayload{Email: "a@b.ro", Role: enums.UserRoleAdmin},
		},
		{
			name:    "missing issuer",
			cfg:     config.JWTConfig{Secret: "s", ExpirationMinutes: 30},
			payload: AccessTokenPayload{Email: "a@b.ro", Role: enums.UserRoleAdmin},
		},
		{
			name:    "zero expiration",
			cfg:     config.JWTConfig{Secret: "s", Issuer: "otka-test"},
			payload: AccessTokenPayload{Email: "a@b.ro", Role: enums.UserRoleAdmin},
		},
		{
			name:    "blank email",
			cfg:     testJWTConfig(),
			payload: AccessTokenPayload{Email: "   ", Role: enums.UserRoleAdmin},
		},
		{
			name:    "invalid role",
			cfg:     testJWTConfig(),
			payload: AccessTokenPayload{Email: "a@b.ro", Role: enums.UserRole("superuser")},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := MintAccessToken(tc.cfg, now, tc.payload); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		Email: "admin@otka.ro",
		Role:  enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	badCfg := cfg
	badCfg.Secret = "other-secret"
	if _, err := ParseAccessToken(badCfg, token); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		Email: "admin@otka.ro",
		Role:  enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	otherIssuer := cfg
	otherIssuer.Issuer = "someone-else"
	if _, err := ParseAccessToken(otherIssuer, token); err == nil {
		t.Fatalf("expected issuer mismatch failure")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), AccessTokenPayload{
		Email: "admin@otka.ro",
		Role:  enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected expiry failure")
	}
}
