package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config.yaml"

// Load builds the client configuration.
//
// Values come from env-default tags, then the YAML file, then ENV. The file
// is CONFIG_PATH, which the -config flag of cmd/studybuddy sets; a missing
// explicit file is an error. Without CONFIG_PATH, ./config.yaml is read when
// present and ENV plus defaults are used otherwise.
//
// Local paths (session dir, downloads dir, log file, camera source) may start
// with "~/" and are expanded against the user's home directory.
func Load() (*Config, error) {
	var cfg Config

	path, explicit := configPath()
	switch _, err := os.Stat(path); {
	case err == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func configPath() (path string, explicit bool) {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p, true
	}
	return defaultConfigPath, false
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Session.Dir, &c.Downloads.Dir, &c.Log.File, &c.Camera.SourcePath} {
		expanded, err := expandHome(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", p, err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
