// Package config loads the application configuration from a YAML file
// with environment fallbacks for service credentials.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIConfig holds the language-understanding service settings.
// Credentials come from the environment when the file leaves them empty.
type OpenAIConfig struct {
	APIKey       string `yaml:"api_key" json:"-"`
	Organization string `yaml:"organization" json:"-"`
	Model        string `yaml:"model" json:"model"`
}

// SpeechConfig holds credentials for one speech service endpoint.
type SpeechConfig struct {
	APIKey string `yaml:"api_key" json:"-"`
	URL    string `yaml:"url" json:"url"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// DataDir is where the CSV tables (or the SQLite database) live.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// StorageBackend selects the store implementation: "csv" or "sqlite".
	StorageBackend string `yaml:"storage_backend" json:"storage_backend"`

	// ReminderLeadMin is how many minutes before its start an event
	// triggers a reminder.
	ReminderLeadMin int `yaml:"reminder_lead_min" json:"reminder_lead_min"`

	// VoiceEnabled toggles the speech capture/playback adapter.
	VoiceEnabled bool `yaml:"voice_enabled" json:"voice_enabled"`

	// TTSVoice is the synthesis voice name.
	TTSVoice string `yaml:"tts_voice" json:"tts_voice"`

	OpenAI OpenAIConfig `yaml:"openai" json:"openai"`
	STT    SpeechConfig `yaml:"stt" json:"stt"`
	TTS    SpeechConfig `yaml:"tts" json:"tts"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          ":8091",
		DataDir:         "./data",
		StorageBackend:  "csv",
		ReminderLeadMin: 15,
		VoiceEnabled:    true,
	}
}

// Normalize fills missing values with defaults and pulls credentials
// from the environment when the file leaves them empty.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = ":8091"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	switch c.StorageBackend {
	case "csv", "sqlite":
	default:
		c.StorageBackend = "csv"
	}
	if c.ReminderLeadMin <= 0 {
		c.ReminderLeadMin = 15
	}

	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.OpenAI.Organization == "" {
		c.OpenAI.Organization = os.Getenv("OPENAI_ORG_ID")
	}
	if c.STT.APIKey == "" {
		c.STT.APIKey = os.Getenv("SPEECH_TO_TEXT_IAM_APIKEY")
	}
	if c.STT.URL == "" {
		c.STT.URL = os.Getenv("SPEECH_TO_TEXT_URL")
	}
	if c.TTS.APIKey == "" {
		c.TTS.APIKey = os.Getenv("TEXT_TO_SPEECH_IAM_APIKEY")
	}
	if c.TTS.URL == "" {
		c.TTS.URL = os.Getenv("TEXT_TO_SPEECH_URL")
	}
}

// Load loads configuration from the given YAML path. A missing file is
// a first run: the defaults are written there and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			cfg.Normalize()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the configuration with 0600 permissions, atomically via a
// temp file and rename. Credentials land in the file, hence the mode.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calendar-mentor-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
