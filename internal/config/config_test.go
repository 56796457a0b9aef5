package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_VALIDATE_WEBHOOKS", "")
	t.Setenv("HTTP_CSRF_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.App.CSRFEnabled)
	assert.False(t, cfg.Twilio.ValidateWebhooks)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Contains(t, cfg.Twilio.MissingTokenKeys(), "TWILIO_ACCOUNT_SID")
}

func TestLoadTwilio(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "AC1")
	t.Setenv("TWILIO_AUTH_TOKEN", "secret")
	t.Setenv("TWIML_APPLICATION_SID", "AP1")
	t.Setenv("TWILIO_NUMBER", "+15550009999")
	t.Setenv("TWILIO_VALIDATE_WEBHOOKS", "true")
	t.Setenv("APP_PUBLIC_BASE_URL", "https://calls.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Twilio.MissingKeys())
	assert.True(t, cfg.Twilio.ValidateWebhooks)
	assert.Equal(t, "https://calls.example.com", cfg.App.PublicBaseURL)
}

func TestTwilioMissingKeys(t *testing.T) {
	assert.Equal(t,
		[]string{"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWIML_APPLICATION_SID", "TWILIO_NUMBER"},
		TwilioConfig{}.MissingKeys())
	assert.Equal(t, []string{"TWILIO_NUMBER"},
		TwilioConfig{AccountSID: "AC", AuthToken: "t", ApplicationSID: "AP"}.MissingKeys())
}

func TestAuthConfigHelpers(t *testing.T) {
	assert.Equal(t, 8*time.Hour, AuthConfig{}.SessionTTL())
	assert.Equal(t, 15*time.Minute, AuthConfig{SessionTTLMinutes: 15}.SessionTTL())
	assert.False(t, AuthConfig{BootstrapAgentEmail: "a@b.c"}.HasBootstrapAgent())
	assert.True(t, AuthConfig{BootstrapAgentEmail: "a@b.c", BootstrapAgentPassword: "pw"}.HasBootstrapAgent())
}

func TestRequestTimeoutDisabled(t *testing.T) {
	assert.Zero(t, AppConfig{}.RequestTimeout())
}

func TestNotificationWebhookTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, NotificationConfig{}.WebhookTimeout())
	assert.Equal(t, 2*time.Second, NotificationConfig{WebhookTimeoutSeconds: 2}.WebhookTimeout())
}
