package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
platform:
  id: "test-platform"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
auth:
  session_ttl: 24
  remember_me_ttl: 720
  reset_token_ttl: 60
  monitor_interval: 60
api:
  host: "0.0.0.0"
  port: 8080
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Platform.ID != "test-platform" {
		t.Errorf("Platform.ID = %q, want %q", cfg.Platform.ID, "test-platform")
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}

	if cfg.Auth.SessionTTL != 24 {
		t.Errorf("Auth.SessionTTL = %d, want 24", cfg.Auth.SessionTTL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
platform:
  id: ""
database:
  path: "/tmp/test.db"
api:
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty platform.id, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	validAuth := AuthConfig{
		SessionTTL:        24,
		RememberMeTTL:     720,
		ResetTokenTTL:     60,
		MonitorInterval:   60,
		MinPasswordLength: 6,
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Platform: PlatformConfig{ID: "sbstravel-001"},
				Database: DatabaseConfig{Path: "/data/sbstravel.db"},
				Auth:     validAuth,
				MQTT:     MQTTConfig{QoS: 1},
				API:      APIConfig{Port: 8080},
			},
			wantErr: false,
		},
		{
			name: "missing platform ID",
			config: &Config{
				Platform: PlatformConfig{ID: ""},
				Database: DatabaseConfig{Path: "/data/sbstravel.db"},
				Auth:     validAuth,
				MQTT:     MQTTConfig{QoS: 1},
				API:      APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "missing database path",
			config: &Config{
				Platform: PlatformConfig{ID: "sbstravel-001"},
				Database: DatabaseConfig{Path: ""},
				Auth:     validAuth,
				MQTT:     MQTTConfig{QoS: 1},
				API:      APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "remember-me shorter than session",
			config: &Config{
				Platform: PlatformConfig{ID: "sbstravel-001"},
				Database: DatabaseConfig{Path: "/data/sbstravel.db"},
				Auth: AuthConfig{
					SessionTTL:        24,
					RememberMeTTL:     12,
					ResetTokenTTL:     60,
					MonitorInterval:   60,
					MinPasswordLength: 6,
				},
				MQTT: MQTTConfig{QoS: 1},
				API:  APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "invalid QoS",
			config: &Config{
				Platform: PlatformConfig{ID: "sbstravel-001"},
				Database: DatabaseConfig{Path: "/data/sbstravel.db"},
				Auth:     validAuth,
				MQTT:     MQTTConfig{QoS: 3},
				API:      APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "invalid port low",
			config: &Config{
				Platform: PlatformConfig{ID: "sbstravel-001"},
				Database: DatabaseConfig{Path: "/data/sbstravel.db"},
				Auth:     validAuth,
				MQTT:     MQTTConfig{QoS: 1},
				API:      APIConfig{Port: 0},
			},
			wantErr: true,
		},
		{
			name: "invalid port high",
			config: &Config{
				Platform: PlatformConfig{ID: "sbstravel-001"},
				Database: DatabaseConfig{Path: "/data/sbstravel.db"},
				Auth:     validAuth,
				MQTT:     MQTTConfig{QoS: 1},
				API:      APIConfig{Port: 70000},
			},
			wantErr: true,
		},
		{
			name: "password minimum too low",
			config: &Config{
				Platform: PlatformConfig{ID: "sbstravel-001"},
				Database: DatabaseConfig{Path: "/data/sbstravel.db"},
				Auth: AuthConfig{
					SessionTTL:        24,
					RememberMeTTL:     720,
					ResetTokenTTL:     60,
					MonitorInterval:   60,
					MinPasswordLength: 4,
				},
				MQTT: MQTTConfig{QoS: 1},
				API:  APIConfig{Port: 8080},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestConfig_GetAuthDurations(t *testing.T) {
	cfg := &Config{
		Auth: AuthConfig{
			SessionTTL:      24,
			RememberMeTTL:   720,
			ResetTokenTTL:   60,
			MonitorInterval: 60,
		},
	}

	if got := cfg.GetSessionTTL().Hours(); got != 24 {
		t.Errorf("GetSessionTTL() = %v hours, want 24", got)
	}

	if got := cfg.GetRememberMeTTL().Hours(); got != 720 {
		t.Errorf("GetRememberMeTTL() = %v hours, want 720", got)
	}

	if got := cfg.GetResetTokenTTL().Minutes(); got != 60 {
		t.Errorf("GetResetTokenTTL() = %v minutes, want 60", got)
	}

	if got := cfg.GetMonitorInterval().Seconds(); got != 60 {
		t.Errorf("GetMonitorInterval() = %v seconds, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	// Set environment variables
	t.Setenv("SBSTRAVEL_DATABASE_PATH", "/custom/path.db")
	t.Setenv("SBSTRAVEL_MQTT_HOST", "mqtt.example.com")
	t.Setenv("SBSTRAVEL_MQTT_USERNAME", "testuser")
	t.Setenv("SBSTRAVEL_MQTT_PASSWORD", "testpass")
	t.Setenv("SBSTRAVEL_API_HOST", "192.168.1.1")
	t.Setenv("SBSTRAVEL_API_PORT", "9090")
	t.Setenv("SBSTRAVEL_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("SBSTRAVEL_AUTH_SEED_ADMIN_EMAIL", "ops@example.com")

	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}

	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}

	if cfg.Auth.SeedAdminEmail != "ops@example.com" {
		t.Errorf("Auth.SeedAdminEmail = %q, want %q", cfg.Auth.SeedAdminEmail, "ops@example.com")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Platform.ID == "" {
		t.Error("defaultConfig should have non-empty Platform.ID")
	}

	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig should validate cleanly, got %v", err)
	}
}
