package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:           "8080",
		DataBackend:    "sqlite",
		SQLiteDBPath:   "./test.db",
		DataFilePath:   "./test.json",
		ExportInterval: 5 * time.Minute,
		LogFormat:      "text",
		LogLevel:       "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid sqlite backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "valid file backend config",
			mutate: func(c *Config) {
				c.DataBackend = "file"
			},
			wantErr: false,
		},
		{
			name: "invalid port - non-numeric",
			mutate: func(c *Config) {
				c.Port = "abc"
			},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name: "invalid port - out of range low",
			mutate: func(c *Config) {
				c.Port = "0"
			},
			wantErr:     true,
			errorString: "invalid port 0: must be between 1 and 65535",
		},
		{
			name: "invalid port - out of range high",
			mutate: func(c *Config) {
				c.Port = "70000"
			},
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name: "invalid data backend",
			mutate: func(c *Config) {
				c.DataBackend = "redis"
			},
			wantErr:     true,
			errorString: "invalid data backend 'redis': must be one of [sqlite file]",
		},
		{
			name: "sqlite backend missing database path",
			mutate: func(c *Config) {
				c.SQLiteDBPath = ""
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name: "file backend missing data path",
			mutate: func(c *Config) {
				c.DataBackend = "file"
				c.DataFilePath = ""
			},
			wantErr:     true,
			errorString: "data file path cannot be empty when using file backend",
		},
		{
			name: "invalid AMQP URL scheme",
			mutate: func(c *Config) {
				c.AMQPURL = "http://localhost:5672/"
				c.AMQPExchange = "fairshare"
				c.AMQPQueue = "ledger_changes"
			},
			wantErr:     true,
			errorString: "invalid AMQP URL scheme 'http': must be 'amqp' or 'amqps'",
		},
		{
			name: "AMQP URL without exchange",
			mutate: func(c *Config) {
				c.AMQPURL = "amqp://localhost:5672/"
				c.AMQPExchange = ""
				c.AMQPQueue = "ledger_changes"
			},
			wantErr:     true,
			errorString: "AMQP exchange name cannot be empty when AMQP URL is provided",
		},
		{
			name: "AMQP URL without queue",
			mutate: func(c *Config) {
				c.AMQPURL = "amqp://localhost:5672/"
				c.AMQPExchange = "fairshare"
				c.AMQPQueue = ""
			},
			wantErr:     true,
			errorString: "AMQP queue name cannot be empty when AMQP URL is provided",
		},
		{
			name: "sheets export missing sheet name",
			mutate: func(c *Config) {
				c.GoogleSpreadsheetID = "123456789"
				c.GoogleCredentialsJSON = "{}"
			},
			wantErr:     true,
			errorString: "Google Sheet name is required when a spreadsheet ID is provided",
		},
		{
			name: "sheets export missing credentials",
			mutate: func(c *Config) {
				c.GoogleSpreadsheetID = "123456789"
				c.GoogleSheetName = "Summary"
			},
			wantErr:     true,
			errorString: "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided for sheets export",
		},
		{
			name: "invalid export interval - too small",
			mutate: func(c *Config) {
				c.ExportInterval = 100 * time.Millisecond
			},
			wantErr:     true,
			errorString: "invalid export interval 100ms: must be at least 1 second",
		},
		{
			name: "invalid export interval - too large",
			mutate: func(c *Config) {
				c.ExportInterval = 25 * time.Hour
			},
			wantErr:     true,
			errorString: "invalid export interval 25h0m0s: must be at most 24 hours",
		},
		{
			name: "invalid log format",
			mutate: func(c *Config) {
				c.LogFormat = "xml"
			},
			wantErr:     true,
			errorString: "invalid log format 'xml': must be one of [text tint json]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATA_BACKEND", "SQLITE_DB_PATH", "DATA_FILE_PATH",
		"AMQP_URL", "AMQP_EXCHANGE", "AMQP_QUEUE",
		"EXPORT_DIR", "EXPORT_INTERVAL", "LOG_FORMAT", "LOG_LEVEL",
	} {
		os.Unsetenv(key)
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DataBackend != "sqlite" {
		t.Errorf("DataBackend = %q, want sqlite", cfg.DataBackend)
	}
	if cfg.AMQPURL != "" {
		t.Errorf("AMQPURL = %q, want empty", cfg.AMQPURL)
	}
	if cfg.ExportInterval != 5*time.Minute {
		t.Errorf("ExportInterval = %v, want 5m", cfg.ExportInterval)
	}
	if cfg.SheetsExportEnabled() {
		t.Error("SheetsExportEnabled = true, want false")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "file")
	t.Setenv("EXPORT_INTERVAL", "90s")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.DataBackend != "file" {
		t.Errorf("DataBackend = %q, want file", cfg.DataBackend)
	}
	if cfg.ExportInterval != 90*time.Second {
		t.Errorf("ExportInterval = %v, want 90s", cfg.ExportInterval)
	}
}
