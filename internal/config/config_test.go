package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	tmpDir := t.TempDir()
	if content == "" {
		return filepath.Join(tmpDir, "nonexistent.yaml")
	}

	configFile := filepath.Join(tmpDir, "config.yaml")
	err := os.WriteFile(configFile, []byte(content), 0600)
	require.NoError(t, err)
	return configFile
}

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
server:
  host: 127.0.0.1
  port: 9090
  read_timeout: 30
database:
  host: localhost
  port: 5432
  user: testuser
  password: testpass
  dbname: testdb
  sslmode: require
ethereum:
  rpc_url: "http://localhost:8545"
  registry_address: "0x1111111111111111111111111111111111111111"
  start_block: 1000
messaging:
  endpoint: "http://localhost:9999"
  env: "dev"
sync:
  fallback_concurrency: 8
  dedup_window: 2048
auth:
  jwt_public_key: "-----BEGIN PUBLIC KEY-----"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30, cfg.Server.ReadTimeout)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, "http://localhost:8545", cfg.Ethereum.RPCURL)
				assert.Equal(t, "0x1111111111111111111111111111111111111111", cfg.Ethereum.RegistryAddress)
				assert.Equal(t, uint64(1000), cfg.Ethereum.StartBlock)
				assert.Equal(t, "http://localhost:9999", cfg.Messaging.Endpoint)
				assert.Equal(t, "dev", cfg.Messaging.Env)
				assert.Equal(t, 8, cfg.Sync.FallbackConcurrency)
				assert.Equal(t, 2048, cfg.Sync.DedupWindow)
				assert.Equal(t, "-----BEGIN PUBLIC KEY-----", cfg.Auth.JWTPublicKey)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
ethereum:
  rpc_url: "http://localhost:8545"
messaging:
  endpoint: "http://localhost:9999"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *APIConfig) {
				// Check defaults
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15, cfg.Server.ReadTimeout)
				assert.Equal(t, 60, cfg.Server.IdleTimeout)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, "production", cfg.Messaging.Env)
				assert.Equal(t, 4, cfg.Sync.FallbackConcurrency)
				assert.Equal(t, 1024, cfg.Sync.DedupWindow)
				assert.Equal(t, 64, cfg.Sync.SubscriberBuffer)
			},
		},
		{
			name:        "missing config file",
			configFile:  "",
			expectError: false,
			validate:    nil,
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: true, // Invalid port should cause unmarshal error
			validate:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := writeConfigFile(t, tt.configFile)

			cfg, err := LoadAPIConfig(configFile, "")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				if tt.validate != nil {
					require.NoError(t, err)
					require.NotNil(t, cfg)
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestLoadAttendanceEmitterConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *AttendanceEmitterConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
nats:
  url: "nats://localhost:4222"
  stream_name: "TEST_STREAM"
  max_reconnects: 5
  reconnect_wait: "5s"
  connection_name: "test-connection"
ethereum:
  websocket_url: "ws://localhost:8545"
  registry_address: "0x1111111111111111111111111111111111111111"
  start_block: 1000
emitter:
  cursor_save_freq: 20
  cursor_save_delay: "10s"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *AttendanceEmitterConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
				assert.Equal(t, "TEST_STREAM", cfg.NATS.StreamName)
				assert.Equal(t, 5, cfg.NATS.MaxReconnects)
				assert.Equal(t, "5s", cfg.NATS.ReconnectWait.String())
				assert.Equal(t, "ws://localhost:8545", cfg.Ethereum.WebSocketURL)
				assert.Equal(t, uint64(1000), cfg.Ethereum.StartBlock)
				assert.Equal(t, uint64(20), cfg.Emitter.CursorSaveFreq)
				assert.Equal(t, "10s", cfg.Emitter.CursorSaveDelay.String())
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
nats:
  url: "nats://localhost:4222"
ethereum:
  websocket_url: "ws://localhost:8545"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *AttendanceEmitterConfig) {
				// Check defaults
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, 10, cfg.NATS.MaxReconnects)
				assert.Equal(t, "2s", cfg.NATS.ReconnectWait.String())
				assert.Equal(t, "ATTENDANCE_EVENTS", cfg.NATS.StreamName)
				assert.Equal(t, uint64(10), cfg.Emitter.CursorSaveFreq)
				assert.Equal(t, "5s", cfg.Emitter.CursorSaveDelay.String())
			},
		},
		{
			name:        "missing config file",
			configFile:  "",
			expectError: false,
			validate:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := writeConfigFile(t, tt.configFile)

			cfg, err := LoadAttendanceEmitterConfig(configFile, "")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				if tt.validate != nil {
					require.NoError(t, err)
					require.NotNil(t, cfg)
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestLoadSyncBridgeConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *SyncBridgeConfig)
	}{
		{
			name: "valid config file",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
nats:
  url: "nats://localhost:4222"
  consumer_name: "custom-bridge"
  ack_wait: "60s"
  max_deliver: 5
ethereum:
  rpc_url: "http://localhost:8545"
  registry_address: "0x1111111111111111111111111111111111111111"
messaging:
  endpoint: "http://localhost:9999"
sync:
  fallback_concurrency: 8
`,
			expectError: false,
			validate: func(t *testing.T, cfg *SyncBridgeConfig) {
				assert.Equal(t, "custom-bridge", cfg.NATS.ConsumerName)
				assert.Equal(t, "60s", cfg.NATS.AckWait.String())
				assert.Equal(t, 5, cfg.NATS.MaxDeliver)
				assert.Equal(t, "http://localhost:9999", cfg.Messaging.Endpoint)
				assert.Equal(t, 8, cfg.Sync.FallbackConcurrency)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
nats:
  url: "nats://localhost:4222"
ethereum:
  rpc_url: "http://localhost:8545"
messaging:
  endpoint: "http://localhost:9999"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *SyncBridgeConfig) {
				// Check defaults
				assert.Equal(t, "ATTENDANCE_EVENTS", cfg.NATS.StreamName)
				assert.Equal(t, "sync-bridge", cfg.NATS.ConsumerName)
				assert.Equal(t, "30s", cfg.NATS.AckWait.String())
				assert.Equal(t, 3, cfg.NATS.MaxDeliver)
				assert.Equal(t, "production", cfg.Messaging.Env)
				assert.Equal(t, 4, cfg.Sync.FallbackConcurrency)
			},
		},
		{
			name:        "missing config file",
			configFile:  "",
			expectError: false,
			validate:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := writeConfigFile(t, tt.configFile)

			cfg, err := LoadSyncBridgeConfig(configFile, "")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				if tt.validate != nil {
					require.NoError(t, err)
					require.NotNil(t, cfg)
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()

	assert.Equal(t, "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable", dsn)
}
