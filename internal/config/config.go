package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	DefaultTranslatorListenAddr = ":8506"
	DefaultTranslation          = "Your cat says: 'I am the boss of this house!'"
	DefaultRelayListenAddr      = ":8501"
	DefaultTranslatorURL        = "http://localhost:8506/translate"
	DefaultRequestTimeout       = 30 * time.Second
	DefaultSampleRate           = 48000
	DefaultMaxRecording         = 5 * time.Minute
	DefaultLogHistory           = 20
	DefaultMongoDatabase        = "cat_translator"
	DefaultLogLevel             = "info"
)

// Config holds the configuration of both processes
type Config struct {
	Translator TranslatorConfig `toml:"translator"`
	Relay      RelayConfig      `toml:"relay"`
	Auth       AuthConfig       `toml:"auth"`
	Mongo      MongoConfig      `toml:"mongo"`
	Log        LogConfig        `toml:"log"`
}

// TranslatorConfig configures the translation endpoint
type TranslatorConfig struct {
	ListenAddr  string `toml:"listen_addr"`
	Translation string `toml:"translation"`
}

// RelayConfig configures the capture-and-relay UI
type RelayConfig struct {
	ListenAddr        string   `toml:"listen_addr"`
	TranslatorURL     string   `toml:"translator_url"`
	RequestTimeout    Duration `toml:"request_timeout"`
	SampleRate        int      `toml:"sample_rate"`
	MaxRecording      Duration `toml:"max_recording"`
	LogHistory        int      `toml:"log_history"`
	TempDir           string   `toml:"temp_dir"`
	ArtifactRetention Duration `toml:"artifact_retention"`
}

// AuthConfig configures the optional relay to translator token
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// MongoConfig configures the optional recording history store
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// LogConfig configures zap
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Duration is a time.Duration that decodes from strings such as "30s"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		Translator: TranslatorConfig{
			ListenAddr:  DefaultTranslatorListenAddr,
			Translation: DefaultTranslation,
		},
		Relay: RelayConfig{
			ListenAddr:     DefaultRelayListenAddr,
			TranslatorURL:  DefaultTranslatorURL,
			RequestTimeout: Duration{DefaultRequestTimeout},
			SampleRate:     DefaultSampleRate,
			MaxRecording:   Duration{DefaultMaxRecording},
			LogHistory:     DefaultLogHistory,
		},
		Mongo: MongoConfig{
			Database: DefaultMongoDatabase,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Validate checks the values both processes depend on
func (c Config) Validate() error {
	if c.Translator.ListenAddr == "" {
		return errors.New("config: translator listen address is required")
	}
	if c.Relay.ListenAddr == "" {
		return errors.New("config: relay listen address is required")
	}

	u, err := url.Parse(c.Relay.TranslatorURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: invalid translator URL %q", c.Relay.TranslatorURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: translator URL must be http or https, got %q", u.Scheme)
	}

	if c.Relay.RequestTimeout.Duration <= 0 {
		return fmt.Errorf("config: request timeout must be positive, got %s", c.Relay.RequestTimeout)
	}
	if c.Relay.SampleRate <= 0 {
		return fmt.Errorf("config: sample rate must be positive, got %d", c.Relay.SampleRate)
	}
	if c.Relay.MaxRecording.Duration <= 0 {
		return fmt.Errorf("config: max recording must be positive, got %s", c.Relay.MaxRecording)
	}
	if c.Relay.LogHistory <= 0 {
		return fmt.Errorf("config: log history must be positive, got %d", c.Relay.LogHistory)
	}
	if c.Relay.ArtifactRetention.Duration < 0 {
		return fmt.Errorf("config: artifact retention cannot be negative, got %s", c.Relay.ArtifactRetention)
	}

	return nil
}
