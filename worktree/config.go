package worktree

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultBaseBranch   = "main"
	DefaultRootTemplate = "~/.workty/{repo}-{id}/{branch}"

	configFileName = "workty.toml"
	configEnvVar   = "WORKTY_CONFIG"
)

// Config is loaded once per invocation and never mutated afterwards.
type Config struct {
	BaseBranch   string `toml:"base_branch" json:"base_branch"`
	RootTemplate string `toml:"root_template" json:"root_template"`
	OpenCmd      string `toml:"open_cmd,omitempty" json:"open_cmd,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		BaseBranch:   DefaultBaseBranch,
		RootTemplate: DefaultRootTemplate,
	}
}

// ConfigPath is $WORKTY_CONFIG when set, else workty.toml in the common git dir.
func ConfigPath(repo *Repo) string {
	if p := strings.TrimSpace(os.Getenv(configEnvVar)); p != "" {
		return p
	}
	return filepath.Join(repo.CommonDir, configFileName)
}

func ConfigExists(repo *Repo) (bool, error) {
	return pathExists(ConfigPath(repo))
}

// LoadConfig reads the repository config. A missing file yields defaults;
// a malformed one is a ConfigParseError.
func LoadConfig(repo *Repo) (Config, error) {
	return LoadConfigFile(ConfigPath(repo))
}

func LoadConfigFile(path string) (Config, error) {
	cfg, err := decodeConfigFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := ValidateTemplate(cfg.RootTemplate); err != nil {
		return Config{}, &ConfigParseError{Path: path, Err: err}
	}
	return cfg, nil
}

// decodeConfigFile applies defaults but skips template validation, so
// diagnostics can report a bad template separately.
func decodeConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, &ConfigParseError{Path: path, Err: err}
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, &ConfigParseError{Path: path, Err: err}
	}
	cfg.BaseBranch = strings.TrimSpace(cfg.BaseBranch)
	if cfg.BaseBranch == "" {
		cfg.BaseBranch = DefaultBaseBranch
	}
	cfg.RootTemplate = strings.TrimSpace(cfg.RootTemplate)
	if cfg.RootTemplate == "" {
		cfg.RootTemplate = DefaultRootTemplate
	}
	cfg.OpenCmd = strings.TrimSpace(cfg.OpenCmd)
	return cfg, nil
}

func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
