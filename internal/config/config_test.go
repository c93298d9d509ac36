package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chesspost/chesspost/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:              ":8080",
		DBPath:            "test.db",
		LogLevel:          "INFO",
		SweepInterval:     30,
		NotifyWorkerCount: 2,
		NotifyQueueSize:   64,
		SMTPPort:          587,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		ok    bool
	}{
		{name: "invalid level", level: "INVALID", ok: false},
		{name: "empty level", level: "", ok: false},
		{name: "lowercase valid level", level: "debug", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = tt.level

			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "LOG_LEVEL")
			}
		})
	}
}

func TestValidate_InvalidSweepInterval(t *testing.T) {
	for _, interval := range []int{0, -5} {
		cfg := validConfig()
		cfg.SweepInterval = interval

		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "SWEEP_INTERVAL_SECONDS")
	}
}

func TestValidate_InvalidNotifySettings(t *testing.T) {
	cfg := validConfig()
	cfg.NotifyWorkerCount = 0

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NOTIFY_WORKER_COUNT")

	cfg = validConfig()
	cfg.NotifyQueueSize = 0

	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NOTIFY_QUEUE_SIZE")
}

func TestValidate_SMTPRequiresFrom(t *testing.T) {
	cfg := validConfig()
	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPFrom = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_FROM")

	cfg.SMTPFrom = "games@example.com"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "ADDR cannot be empty")
	assert.Contains(t, errStr, "DB_PATH cannot be empty")
	assert.Contains(t, errStr, "SWEEP_INTERVAL_SECONDS")
	assert.Contains(t, errStr, "NOTIFY_WORKER_COUNT")
	assert.Contains(t, errStr, "NOTIFY_QUEUE_SIZE")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("SWEEP_INTERVAL_SECONDS", "10")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, 10, cfg.SweepInterval)
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("ADDR")
	os.Unsetenv("DB_PATH")
	os.Unsetenv("SWEEP_INTERVAL_SECONDS")

	cfg := config.Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "chesspost.db", cfg.DBPath)
	assert.Equal(t, 30, cfg.SweepInterval)
}
