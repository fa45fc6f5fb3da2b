package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func mapLookup(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoaderDefaults(t *testing.T) {
	cfg, err := Loader{Lookup: mapLookup(nil)}.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Translator.ListenAddr != ":8506" {
		t.Errorf("Expected translator listen addr :8506, got %s", cfg.Translator.ListenAddr)
	}
	if cfg.Relay.TranslatorURL != "http://localhost:8506/translate" {
		t.Errorf("Unexpected translator URL %s", cfg.Relay.TranslatorURL)
	}
	if cfg.Relay.RequestTimeout.Duration != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %s", cfg.Relay.RequestTimeout)
	}
	if cfg.Relay.SampleRate != 48000 {
		t.Errorf("Expected sample rate 48000, got %d", cfg.Relay.SampleRate)
	}
	if cfg.Relay.LogHistory != 20 {
		t.Errorf("Expected log history 20, got %d", cfg.Relay.LogHistory)
	}
	if cfg.Auth.JWTSecret != "" {
		t.Error("Expected auth to be disabled by default")
	}
}

func TestLoaderEnvOverrides(t *testing.T) {
	cfg, err := Loader{Lookup: mapLookup(map[string]string{
		"TRANSLATOR_LISTEN_ADDR": " :9000 ",
		"RELAY_TRANSLATOR_URL":   "http://backend:9000/translate",
		"RELAY_REQUEST_TIMEOUT":  "5s",
		"RELAY_SAMPLE_RATE":      "16000",
		"RELAY_MAX_RECORDING":    "1m",
		"AUTH_JWT_SECRET":        "s3cret",
		"LOG_DEVELOPMENT":        "true",
	})}.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Translator.ListenAddr != ":9000" {
		t.Errorf("Expected trimmed :9000, got %q", cfg.Translator.ListenAddr)
	}
	if cfg.Relay.TranslatorURL != "http://backend:9000/translate" {
		t.Errorf("Unexpected translator URL %s", cfg.Relay.TranslatorURL)
	}
	if cfg.Relay.RequestTimeout.Duration != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %s", cfg.Relay.RequestTimeout)
	}
	if cfg.Relay.SampleRate != 16000 {
		t.Errorf("Expected 16000, got %d", cfg.Relay.SampleRate)
	}
	if cfg.Relay.MaxRecording.Duration != time.Minute {
		t.Errorf("Expected 1m, got %s", cfg.Relay.MaxRecording)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("Expected secret override, got %q", cfg.Auth.JWTSecret)
	}
	if !cfg.Log.Development {
		t.Error("Expected development logging")
	}
}

func TestLoaderTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[translator]
translation = "Your cat says: 'more treats'"

[relay]
request_timeout = "10s"
log_history = 50

[mongo]
uri = "mongodb://localhost:27017"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Loader{Lookup: mapLookup(map[string]string{
		ConfigPathEnv:       path,
		"RELAY_LOG_HISTORY": "30",
	})}.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Translator.Translation != "Your cat says: 'more treats'" {
		t.Errorf("Unexpected translation %q", cfg.Translator.Translation)
	}
	if cfg.Relay.RequestTimeout.Duration != 10*time.Second {
		t.Errorf("Expected 10s from file, got %s", cfg.Relay.RequestTimeout)
	}
	if cfg.Relay.LogHistory != 30 {
		t.Errorf("Expected env to win over file, got %d", cfg.Relay.LogHistory)
	}
	if cfg.Mongo.URI != "mongodb://localhost:27017" {
		t.Errorf("Unexpected mongo URI %q", cfg.Mongo.URI)
	}
	if cfg.Mongo.Database != DefaultMongoDatabase {
		t.Errorf("Expected default database to survive, got %q", cfg.Mongo.Database)
	}
}

func TestLoaderDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("RELAY_LISTEN_ADDR=:7000\nLOG_LEVEL=debug\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Loader{
		Lookup:   mapLookup(map[string]string{"LOG_LEVEL": "warn"}),
		EnvFiles: []string{envPath, filepath.Join(dir, "missing.env")},
	}.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Relay.ListenAddr != ":7000" {
		t.Errorf("Expected .env value :7000, got %s", cfg.Relay.ListenAddr)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Expected environment to win over .env, got %s", cfg.Log.Level)
	}
}

func TestLoaderInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		want   string
	}{
		{name: "bad duration", values: map[string]string{"RELAY_REQUEST_TIMEOUT": "soon"}, want: "RELAY_REQUEST_TIMEOUT"},
		{name: "bad int", values: map[string]string{"RELAY_SAMPLE_RATE": "fast"}, want: "RELAY_SAMPLE_RATE"},
		{name: "bad bool", values: map[string]string{"LOG_DEVELOPMENT": "maybe"}, want: "LOG_DEVELOPMENT"},
		{name: "zero sample rate", values: map[string]string{"RELAY_SAMPLE_RATE": "0"}, want: "sample rate"},
		{name: "negative timeout", values: map[string]string{"RELAY_REQUEST_TIMEOUT": "-1s"}, want: "request timeout"},
		{name: "bad url", values: map[string]string{"RELAY_TRANSLATOR_URL": "localhost"}, want: "translator URL"},
		{name: "bad scheme", values: map[string]string{"RELAY_TRANSLATOR_URL": "ftp://host/x"}, want: "http or https"},
		{name: "missing file", values: map[string]string{ConfigPathEnv: "/does/not/exist.toml"}, want: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Loader{Lookup: mapLookup(tt.values)}.Load()
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error to mention %q, got %v", tt.want, err)
			}
		})
	}
}
