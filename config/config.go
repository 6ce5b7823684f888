// Package config loads and saves the rcrd configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds persistent defaults; CLI flags override every field.
type Config struct {
	// FilePrefix is prepended to generated output filenames (datetime appended).
	FilePrefix string `toml:"file_prefix"`
	// WhisperModel is the ggml/gguf model path enabling live transcription.
	WhisperModel string `toml:"whisper_model"`
	// RecognizerCommand is the whisper.cpp stream binary to spawn.
	RecognizerCommand string `toml:"recognizer_command"`
	// Language is the initial transcription language tag.
	Language string `toml:"language"`
	// Backend selects the recognizer compute backend: "vulkan" or "openblas".
	Backend string `toml:"backend"`
	// Journal toggles the sqlite history of finished recordings.
	Journal bool `toml:"journal"`
}

func Default() Config {
	return Config{
		FilePrefix:        "rcrd-call-",
		RecognizerCommand: "whisper-stream",
		Language:          "en",
		Backend:           "vulkan",
		Journal:           true,
	}
}

// Path is $XDG_CONFIG_HOME/rcrd/config.toml (or the OS equivalent).
func Path() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "rcrd", "config.toml")
}

// Load reads the config at the default path, returning defaults when the
// file does not exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

func LoadFrom(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config, creating the directory if needed.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
