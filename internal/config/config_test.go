package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/retail")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, time.Saturday, cfg.OffDay)
	assert.Equal(t, int32(20), cfg.DBMaxConns)
	assert.Equal(t, int32(2), cfg.DBMinConns)
	assert.Equal(t, 5*time.Minute, cfg.DBConnIdleTime)
}

func TestLoadPoolSizing(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("DB_MIN_CONNS", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int32(50), cfg.DBMaxConns)
	assert.Equal(t, int32(10), cfg.DBMinConns)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric max conns", "DB_MAX_CONNS", "lots"},
		{"zero max conns", "DB_MAX_CONNS", "0"},
		{"negative min conns", "DB_MIN_CONNS", "-1"},
		{"bad port", "PORT", "http"},
		{"bad off day", "OFF_DAY", "Someday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMinAboveMax(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_MAX_CONNS", "5")
	t.Setenv("DB_MIN_CONNS", "6")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	assert.Error(t, err)
}
