package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// MaxPageSize is the largest page the remote playlist APIs hand out per request.
const MaxPageSize = 50

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Shuffle     ShuffleConfig     `toml:"shuffle"`
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
}

// ShuffleConfig contains the defaults for a reshuffle run.
type ShuffleConfig struct {
	SourcePlaylist string `toml:"source_playlist"`
	Service        string `toml:"service"`
	TitlePrefix    string `toml:"title_prefix"`
	Description    string `toml:"description"`
	Visibility     string `toml:"visibility"`
	Passes         int    `toml:"passes"`
	PageSize       int    `toml:"page_size"`
	Seed           uint64 `toml:"seed"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	YouTube YouTubeConfig `toml:"youtube"`
	Spotify SpotifyConfig `toml:"spotify"`
}

// YouTubeConfig contains YouTube Data API credentials.
type YouTubeConfig struct {
	ClientID          string  `toml:"client_id"`
	ClientSecret      string  `toml:"client_secret"`
	TokenFile         string  `toml:"token_file"`
	Endpoint          string  `toml:"endpoint"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// SpotifyConfig contains Spotify Web API credentials.
type SpotifyConfig struct {
	ClientID          string  `toml:"client_id"`
	ClientSecret      string  `toml:"client_secret"`
	TokenFile         string  `toml:"token_file"`
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the shuffle settings for values the pipeline cannot run with.
func (c *Config) Validate() error {
	s := c.Shuffle
	if s.Passes < 1 {
		return fmt.Errorf("%w: shuffle.passes must be at least 1, got %d", ErrInvalidConfig, s.Passes)
	}
	if s.PageSize < 1 || s.PageSize > MaxPageSize {
		return fmt.Errorf("%w: shuffle.page_size must be between 1 and %d, got %d", ErrInvalidConfig, MaxPageSize, s.PageSize)
	}
	if strings.TrimSpace(s.TitlePrefix) == "" {
		return fmt.Errorf("%w: shuffle.title_prefix is empty", ErrInvalidConfig)
	}
	switch s.Visibility {
	case "public", "unlisted", "private":
	default:
		return fmt.Errorf("%w: unknown shuffle.visibility %q", ErrInvalidConfig, s.Visibility)
	}
	switch s.Service {
	case "youtube", "spotify":
	default:
		return fmt.Errorf("%w: unknown shuffle.service %q", ErrInvalidConfig, s.Service)
	}
	return nil
}

// ExpandPath replaces a leading "~" with the current user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
