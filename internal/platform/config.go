package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the optional per-directory configuration file.
const ConfigFileName = "notenest.yaml"

// FileConfig is the content of notenest.yaml. Unset fields keep defaults.
type FileConfig struct {
	Versioning *bool   `yaml:"versioning,omitempty"`
	ReadOnly   *bool   `yaml:"read_only,omitempty"`
	SystemDir  string  `yaml:"system_dir,omitempty"`
	Key        string  `yaml:"key,omitempty"`
	Backups    Backups `yaml:"backups,omitempty"`
}

// Backups configures where `notenest backup` writes by default.
type Backups struct {
	Dir    string `yaml:"dir,omitempty"`
	Format string `yaml:"format,omitempty"` // json, yaml
}

// LoadConfig reads notenest.yaml from dir. A missing file yields nil.
func LoadConfig(dir string) (*FileConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}
	switch cfg.Backups.Format {
	case "", "json", "yaml", "yml":
	default:
		return nil, fmt.Errorf("%s: unknown backup format %q", ConfigFileName, cfg.Backups.Format)
	}
	return &cfg, nil
}

// Save writes cfg to dir/notenest.yaml.
func (c FileConfig) Save(dir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0644)
}

// BackupExt returns the file extension for backups (".json" by default).
func (c *FileConfig) BackupExt() string {
	if c == nil || c.Backups.Format == "" {
		return ".json"
	}
	return "." + c.Backups.Format
}

// apply fills every option the caller did not set explicitly.
func (c *FileConfig) apply(o *options) {
	if c == nil {
		return
	}
	setDefault := func(key string, v interface{}) {
		if _, ok := o.config[key]; !ok {
			o.config[key] = v
		}
	}
	if c.Versioning != nil {
		setDefault("gitless", !*c.Versioning)
	}
	if c.ReadOnly != nil {
		setDefault("read_only", *c.ReadOnly)
	}
	if c.SystemDir != "" {
		setDefault("system_dir", c.SystemDir)
	}
	if c.Key != "" {
		setDefault("key", c.Key)
	}
}
