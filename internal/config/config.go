package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional shacopy configuration file. Every field
// is a pointer so an absent key leaves the flag default untouched.
type Config struct {
	Copy   CopyConfig   `toml:"copy"`
	Verify VerifyConfig `toml:"verify"`
	Theme  ThemeConfig  `toml:"theme"`
}

// CopyConfig holds defaults for the copy command.
type CopyConfig struct {
	BlockSize       *string `toml:"block_size"`
	QueueDepth      *int    `toml:"queue_depth"`
	OverwritePolicy *string `toml:"overwrite_policy"`
	BWLimit         *string `toml:"bwlimit"`
}

// VerifyConfig holds defaults for the verify command.
type VerifyConfig struct {
	BlockSize         *string `toml:"block_size"`
	QueueDepth        *int    `toml:"queue_depth"`
	Threaded          *bool   `toml:"threaded"`
	Parallel          *bool   `toml:"parallel"`
	ConvertSeparators *bool   `toml:"convert_separators"`
}

// ThemeConfig holds optional color overrides.
type ThemeConfig struct {
	Green *string `toml:"green"`
	Red   *string `toml:"red"`
	Muted *string `toml:"muted"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "shacopy", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, &UnknownKeyError{Path: path, Key: undecoded[0].String()}
	}
	return cfg, nil
}

// UnknownKeyError reports a key the config file should not contain.
type UnknownKeyError struct {
	Path string
	Key  string
}

func (e *UnknownKeyError) Error() string {
	return e.Path + ": unknown key " + e.Key
}
