package framework

import (
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is returned when a jsTestDriver.conf cannot be decoded.
	ErrInvalidConfig = errors.New("framework: invalid config")
	// ErrBasePathOutsideRoot marks a config whose basepath climbs above the
	// scanned root.
	ErrBasePathOutsideRoot = errors.New("framework: basepath outside scanned root")
)

// Config is the content of a jsTestDriver.conf file. Unknown keys such as
// plugin or proxy are ignored.
type Config struct {
	Server   string   `yaml:"server"`
	BasePath string   `yaml:"basepath"`
	Load     []string `yaml:"load"`
	Test     []string `yaml:"test"`
	Exclude  []string `yaml:"exclude"`
	Serve    []string `yaml:"serve"`
	// Timeout is the browser capture timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// ParseConfig decodes jsTestDriver.conf content. An empty document yields an
// empty config.
func ParseConfig(content []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// LoadConfig reads and decodes the config at configPath and resolves its
// scope. configPath is slash-separated and relative to fsys.
func LoadConfig(fsys fs.FS, configPath string) (*ConfigScope, error) {
	content, err := fs.ReadFile(fsys, configPath)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}

	cfg, err := ParseConfig(content)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", configPath, err)
	}

	return NewConfigScope(configPath, cfg), nil
}
