package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for gbadb.
type Config struct {
	BaseDir     string            `toml:"base_dir"`
	LogDir      string            `toml:"log_dir"`
	Log         LogConfig         `toml:"log"`
	Database    DatabaseConfig    `toml:"database"`
	Assets      AssetsConfig      `toml:"assets"`
	Encryption  EncryptionConfig  `toml:"encryption"`
	Preferences PreferencesConfig `toml:"preferences"`
	Skins       SkinsConfig       `toml:"skins"`
	Import      ImportConfig      `toml:"import"`
}

// LogConfig controls the log file and its rotation.
type LogConfig struct {
	Level      string `toml:"level"`        // "debug", "info", "warn" or "error"
	MaxSizeMB  int    `toml:"max_size_mb"`  // rotate after this many megabytes
	MaxBackups int    `toml:"max_backups"`  // rotated files to keep
	MaxAgeDays int    `toml:"max_age_days"` // days to keep rotated files
	Compress   bool   `toml:"compress"`     // gzip rotated files
}

// EncryptionConfig holds paths to the age key pair used to seal save-state payloads.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age" or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// DatabaseConfig represents configuration for the metadata database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// AssetsConfig represents configuration for managed storage.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type AssetsConfig struct {
	Type string `toml:"type"`           // "filesystem" or "memory"
	Root string `toml:"root,omitempty"` // only used for type=filesystem; holds the Database directory
}

// PreferencesConfig represents configuration for remembered preferences.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type PreferencesConfig struct {
	Type string `toml:"type"`           // "file" or "memory"
	Path string `toml:"path,omitempty"` // only used for type=file
}

// SkinsConfig holds skin catalog settings.
type SkinsConfig struct {
	InboxDir string `toml:"inbox_dir"` // directory watched by `gbadb skin watch`
}

// ImportConfig holds import limits.
type ImportConfig struct {
	MaxSize int64 `toml:"max_size"` // max bytes read from an import source; defaults to 64MB
}

// NewConfig creates a new Config rooted at baseDir with default settings.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: filepath.Join(baseDir, "db")},
		Assets:   AssetsConfig{Type: "filesystem", Root: baseDir},
		Encryption: EncryptionConfig{
			Type:           "none",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "gbadb.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "gbadb.key"),
		},
		Preferences: PreferencesConfig{Type: "file", Path: filepath.Join(baseDir, "preferences.toml")},
		Skins:       SkinsConfig{InboxDir: filepath.Join(baseDir, "inbox")},
		Import:      ImportConfig{MaxSize: 64 * 1024 * 1024},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to a new config file at path. An existing file is never overwritten.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
