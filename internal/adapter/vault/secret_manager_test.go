package vault

import (
	"testing"

	"github.com/seu-repo/sigec-posto/pkg/config"
)

func TestApply(t *testing.T) {
	// Arrange
	cfg := &config.Config{}
	cfg.Database.URL = "postgres://from-file"
	cfg.JWT.Secret = "file-secret"

	// Act
	applied := Apply(cfg, map[string]string{
		KeyDatabaseURL:    "postgres://from-vault",
		KeySendGridAPIKey: "SG.key",
		KeyJWTSecret:      "",
		"unrelated":       "x",
	})

	// Assert
	if cfg.Database.URL != "postgres://from-vault" {
		t.Errorf("expected vault database url, got %s", cfg.Database.URL)
	}
	if cfg.Notification.Email.APIKey != "SG.key" {
		t.Errorf("expected sendgrid key, got %s", cfg.Notification.Email.APIKey)
	}
	if cfg.JWT.Secret != "file-secret" {
		t.Errorf("empty vault value must not override, got %s", cfg.JWT.Secret)
	}
	if len(applied) != 2 {
		t.Errorf("expected 2 applied keys, got %v", applied)
	}
}
