package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound reports a missing project file; the command should suggest
// `ngxer init`.
var ErrNotFound = errors.New("config file not found")

// ResolvePath resolves the config path from explicit input, env var, or default.
func ResolvePath(explicit string) string {
	if path := strings.TrimSpace(explicit); path != "" {
		return path
	}
	if path := strings.TrimSpace(os.Getenv(EnvConfigPath)); path != "" {
		return path
	}
	return DefaultPath
}

// Load loads config from the resolved path and returns the config and path used.
func Load(explicitPath string) (Config, string, error) {
	path := ResolvePath(explicitPath)
	cfg, err := LoadFromPath(path)
	if err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}

// LoadFromPath loads, normalizes and validates config from the provided path.
// Files ending in .json are decoded as JSON, anything else as YAML.
func LoadFromPath(path string) (Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return cfg, err
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate config file %s: %w", path, err)
	}

	return cfg, nil
}

// Update applies fn to the file at path as written, without default
// expansion, and saves the result.
func Update(path string, fn func(*Config)) error {
	cfg, err := readFile(path)
	if err != nil {
		return err
	}
	fn(&cfg)
	return Save(path, cfg)
}

func readFile(path string) (Config, error) {
	cfg := Config{}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w at %s (run `ngxer init` or set %s)", ErrNotFound, path, EnvConfigPath)
		}
		return cfg, fmt.Errorf("read config file %s: %w", path, err)
	}
	if isJSON(path) {
		err = json.Unmarshal(b, &cfg)
	} else {
		err = yaml.Unmarshal(b, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes config back to path, replacing the file atomically. Defaults
// are not expanded into the written file.
func Save(path string, cfg Config) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("config path is required")
	}

	check := cfg
	check.DatabaseRender = append([]DatabaseRender(nil), cfg.DatabaseRender...)
	check.normalize()
	if err := check.Validate(); err != nil {
		return fmt.Errorf("validate config file %s: %w", path, err)
	}

	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		err = enc.Encode(&cfg)
		data = buf.Bytes()
	} else {
		data, err = yaml.Marshal(&cfg)
	}
	if err != nil {
		return fmt.Errorf("marshal config file %s: %w", path, err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	perm := os.FileMode(0o644)
	info, err := os.Stat(path)
	if err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".ngxerrc-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp config %s: %w", tmpName, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp config %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace config file %s: %w", path, err)
	}

	cleanup = false
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
