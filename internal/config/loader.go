package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ConfigPathEnv names the environment variable holding the optional TOML file path
const ConfigPathEnv = "CAT_TRANSLATOR_CONFIG"

// Loader builds a Config from defaults, an optional TOML file, .env files and
// the environment, in increasing order of precedence. Tests can override
// Lookup and EnvFiles.
type Loader struct {
	Lookup   func(string) (string, bool)
	EnvFiles []string
}

// Load loads the configuration using the process environment and ./.env
func Load() (Config, error) {
	return Loader{EnvFiles: []string{".env"}}.Load()
}

// Load retrieves the configuration and validates it
func (l Loader) Load() (Config, error) {
	lookup, err := l.lookupChain()
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	if path, ok := lookup(ConfigPathEnv); ok && strings.TrimSpace(path) != "" {
		if _, err := toml.DecodeFile(strings.TrimSpace(path), &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	overrideString(lookup, "TRANSLATOR_LISTEN_ADDR", &cfg.Translator.ListenAddr)
	overrideString(lookup, "TRANSLATOR_FIXED_TEXT", &cfg.Translator.Translation)

	overrideString(lookup, "RELAY_LISTEN_ADDR", &cfg.Relay.ListenAddr)
	overrideString(lookup, "RELAY_TRANSLATOR_URL", &cfg.Relay.TranslatorURL)
	overrideString(lookup, "RELAY_TEMP_DIR", &cfg.Relay.TempDir)
	if err := overrideDuration(lookup, "RELAY_REQUEST_TIMEOUT", &cfg.Relay.RequestTimeout); err != nil {
		return Config{}, err
	}
	if err := overrideDuration(lookup, "RELAY_MAX_RECORDING", &cfg.Relay.MaxRecording); err != nil {
		return Config{}, err
	}
	if err := overrideDuration(lookup, "RELAY_ARTIFACT_RETENTION", &cfg.Relay.ArtifactRetention); err != nil {
		return Config{}, err
	}
	if err := overrideInt(lookup, "RELAY_SAMPLE_RATE", &cfg.Relay.SampleRate); err != nil {
		return Config{}, err
	}
	if err := overrideInt(lookup, "RELAY_LOG_HISTORY", &cfg.Relay.LogHistory); err != nil {
		return Config{}, err
	}

	overrideString(lookup, "AUTH_JWT_SECRET", &cfg.Auth.JWTSecret)
	overrideString(lookup, "MONGODB_URI", &cfg.Mongo.URI)
	overrideString(lookup, "MONGODB_DATABASE", &cfg.Mongo.Database)

	overrideString(lookup, "LOG_LEVEL", &cfg.Log.Level)
	if err := overrideBool(lookup, "LOG_DEVELOPMENT", &cfg.Log.Development); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// lookupChain prefers the real lookup and falls back to values read from the
// .env files. Missing .env files are ignored.
func (l Loader) lookupChain() (func(string) (string, bool), error) {
	primary := l.Lookup
	if primary == nil {
		primary = os.LookupEnv
	}

	fileValues := make(map[string]string)
	for _, path := range l.EnvFiles {
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("config: failed to load %s: %w", path, err)
		}
		for k, v := range values {
			if _, exists := fileValues[k]; !exists {
				fileValues[k] = v
			}
		}
	}

	return func(key string) (string, bool) {
		if value, ok := primary(key); ok {
			return value, true
		}
		value, ok := fileValues[key]
		return value, ok
	}, nil
}

func overrideString(lookup func(string) (string, bool), key string, target *string) {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func overrideInt(lookup func(string) (string, bool), key string, target *int) error {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("config: invalid %s: %w", key, err)
	}
	*target = n
	return nil
}

func overrideDuration(lookup func(string) (string, bool), key string, target *Duration) error {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("config: invalid %s: %w", key, err)
	}
	target.Duration = d
	return nil
}

func overrideBool(lookup func(string) (string, bool), key string, target *bool) error {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("config: invalid %s: %w", key, err)
	}
	*target = b
	return nil
}
