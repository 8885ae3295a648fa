package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GldzzPro/graph-sync/internal/config"
	"github.com/GldzzPro/graph-sync/internal/types"
)

func validStoreConfig() Config {
	return Config{
		URI:                     "bolt://localhost:7687",
		Username:                "neo4j",
		Password:                "password",
		ConnectionTimeout:       30 * time.Second,
		MaxTransactionRetryTime: 30 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty URI", func(c *Config) { c.URI = "" }, true},
		{"empty username", func(c *Config) { c.Username = "" }, true},
		{"empty password", func(c *Config) { c.Password = "" }, true},
		{"zero connection timeout", func(c *Config) { c.ConnectionTimeout = 0 }, true},
		{"zero retry time", func(c *Config) { c.MaxTransactionRetryTime = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validStoreConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ErrCodeStoreInvalidConfig, types.CodeOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigFrom(t *testing.T) {
	sc := config.StoreConfig{
		URI:                     "neo4j://db.internal:7687",
		Username:                "svc",
		Password:                "secret",
		Database:                "modules",
		MaxConnectionPoolSize:   25,
		ConnectionTimeout:       10 * time.Second,
		MaxTransactionRetryTime: 15 * time.Second,
	}

	cfg := ConfigFrom(sc)

	assert.Equal(t, sc.URI, cfg.URI)
	assert.Equal(t, sc.Username, cfg.Username)
	assert.Equal(t, sc.Password, cfg.Password)
	assert.Equal(t, sc.Database, cfg.Database)
	assert.Equal(t, sc.MaxConnectionPoolSize, cfg.MaxConnectionPoolSize)
	assert.Equal(t, sc.ConnectionTimeout, cfg.ConnectionTimeout)
	assert.Equal(t, sc.MaxTransactionRetryTime, cfg.MaxTransactionRetryTime)
	assert.NoError(t, cfg.Validate())
}

func TestNewNeo4jStore_RejectsInvalidConfig(t *testing.T) {
	_, err := NewNeo4jStore(Config{})
	require.Error(t, err)
	assert.Equal(t, ErrCodeStoreInvalidConfig, types.CodeOf(err))
}
