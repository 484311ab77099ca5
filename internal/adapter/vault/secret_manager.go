package vault

import (
	"context"
	"fmt"

	"github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/pkg/config"
)

// Secret keys read from the KV v2 entry.
const (
	KeyDatabaseURL    = "database_url"
	KeyJWTSecret      = "jwt_secret"
	KeySendGridAPIKey = "sendgrid_api_key"
	KeySMTPPassword   = "smtp_password"
)

type SecretManager struct {
	client    *api.Client
	mountPath string
	log       *zap.Logger
}

func NewSecretManager(address, token, mountPath string, log *zap.Logger) (*SecretManager, error) {
	cfg := api.DefaultConfig()
	cfg.Address = address

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault client: %w", err)
	}
	client.SetToken(token)

	if mountPath == "" {
		mountPath = "secret"
	}
	return &SecretManager{client: client, mountPath: mountPath, log: log}, nil
}

// Read returns the string fields of a KV v2 secret.
func (sm *SecretManager) Read(ctx context.Context, path string) (map[string]string, error) {
	secret, err := sm.client.KVv2(sm.mountPath).Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read secret %s/%s: %w", sm.mountPath, path, err)
	}

	out := make(map[string]string, len(secret.Data))
	for k, v := range secret.Data {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out, nil
}

// Resolve overwrites the secret-bearing config fields with the values held
// in Vault. Fields missing from the secret keep their configured value.
func (sm *SecretManager) Resolve(ctx context.Context, cfg *config.Config) error {
	values, err := sm.Read(ctx, cfg.Vault.SecretPath)
	if err != nil {
		return err
	}
	applied := Apply(cfg, values)
	sm.log.Info("Secrets resolved from Vault",
		zap.String("path", cfg.Vault.SecretPath),
		zap.Strings("keys", applied),
	)
	return nil
}

// Apply copies known secret keys into cfg and returns the keys it used.
func Apply(cfg *config.Config, values map[string]string) []string {
	targets := map[string]*string{
		KeyDatabaseURL:    &cfg.Database.URL,
		KeyJWTSecret:      &cfg.JWT.Secret,
		KeySendGridAPIKey: &cfg.Notification.Email.APIKey,
		KeySMTPPassword:   &cfg.Notification.Email.SMTP.Password,
	}

	var applied []string
	for _, key := range []string{KeyDatabaseURL, KeyJWTSecret, KeySendGridAPIKey, KeySMTPPassword} {
		if v, ok := values[key]; ok && v != "" {
			*targets[key] = v
			applied = append(applied, key)
		}
	}
	return applied
}
