package config

import (
	"testing"
)

func TestValidateRequiresPortAndSecret(t *testing.T) {
	c := &Config{}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for missing PORT")
	}

	c.Port = "8480"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for missing JWT_SECRET")
	}

	c.JWTSecret = "test-secret"
	if err := c.Validate(); err != nil {
		t.Fatalf("expected development config to validate, got %v", err)
	}
}

func TestValidateProductionRejectsDefaults(t *testing.T) {
	c := &Config{
		Port:      "8480",
		Env:       "production",
		JWTSecret: "your-secret-key-change-in-production",
	}
	if err := c.Validate(); err == nil {
		t.Fatal("expected default JWT secret to be rejected in production")
	}

	c.JWTSecret = "0123456789abcdef0123456789abcdef"
	c.DBPassword = "password"
	if err := c.Validate(); err == nil {
		t.Fatal("expected default DB password to be rejected in production")
	}

	c.DBPassword = "s0mething-strong"
	c.DBSSLMode = "require"
	if err := c.Validate(); err != nil {
		t.Fatalf("expected hardened production config to validate, got %v", err)
	}
}
