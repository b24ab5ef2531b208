package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"DB_HOST", "SERVER_PORT", "REMINDER_SEND_TIME", "OTP_TTL", "PUBLISH_TIMEOUT", "MAIL_DRIVER", "MAIL_CONCURRENCY", "STREAM_BLOCK", "TOKEN_SECRET_KEY"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()

	assert.Error(t, err, ".env is absent")
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "07:00", cfg.ReminderSendTime)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 3*time.Second, cfg.PublishTimeout)
	assert.Equal(t, MailDriverLog, cfg.MailDriver)
	assert.Empty(t, cfg.TokenSecretKey)
	assert.ErrorContains(t, cfg.Validate(), "TOKEN_SECRET_KEY", "the signing key has no default")

	cfg.TokenSecretKey = strings.Repeat("k", 32)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_HOST", "db")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("STREAM_BLOCK", "250ms")
	t.Setenv("MAIL_DRIVER", "SMTP")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg, _ := LoadConfig()

	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 250*time.Millisecond, cfg.StreamBlock)
	assert.Equal(t, MailDriverSMTP, cfg.MailDriver)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 587, cfg.SMTPPort, "malformed values fall back to defaults")
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(".env", []byte("REMINDER_SEND_TIME=08:30\nOTP_TTL=5m\n"), 0o600))
	t.Setenv("REMINDER_SEND_TIME", "")
	t.Setenv("OTP_TTL", "")
	os.Unsetenv("REMINDER_SEND_TIME")
	os.Unsetenv("OTP_TTL")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "08:30", cfg.ReminderSendTime)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
}

func TestReload_OverridesEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".env", []byte("REMINDER_SEND_TIME=09:15\n"), 0o600))
	t.Setenv("REMINDER_SEND_TIME", "07:00")

	cfg, err := Reload()

	require.NoError(t, err)
	assert.Equal(t, "09:15", cfg.ReminderSendTime)
}

func TestValidate(t *testing.T) {
	cfg := fromEnv()
	cfg.ReminderSendTime = "7am"
	cfg.MailConcurrency = 0
	cfg.MailDriver = "pigeon"

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "REMINDER_SEND_TIME")
	assert.Contains(t, err.Error(), "MAIL_CONCURRENCY")
	assert.Contains(t, err.Error(), "MAIL_DRIVER")
}

func TestValidate_TokenSecretLength(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		ok     bool
	}{
		{"empty", "", false},
		{"short", "secret", false},
		{"one byte short", strings.Repeat("k", 31), false},
		{"exact", strings.Repeat("k", 32), true},
		{"long", strings.Repeat("k", 64), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fromEnv()
			cfg.TokenSecretKey = tt.secret

			err := cfg.Validate()

			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, "TOKEN_SECRET_KEY")
		})
	}
}
