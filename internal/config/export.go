package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/sets"
)

const (
	exportFileName = "config.yaml"
)

// Export holds what to export and where to
type Export struct {
	// Owner is the GitHub user or organization owning the repositories
	Owner string `yaml:"owner"`
	// Repositories are exported in this order
	Repositories []string `yaml:"repositories"`
	// Pipelines is the allow-list of full pipeline names
	Pipelines []string `yaml:"pipelines"`
	OutputDir string   `yaml:"outputDir"`
}

// DefaultExportPath returns the location of the config file used when none is given
func DefaultExportPath() string {
	return filepath.Join(MustConfigDir(), exportFileName)
}

// LoadExport loads the export config from path. An empty path loads the default
// location and returns an empty config if the file doesn't exist there.
func LoadExport(path string) (*Export, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultExportPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return &Export{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Export
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Override replaces values with those set in other
func (e *Export) Override(other Export) {
	if other.Owner != "" {
		e.Owner = other.Owner
	}
	if len(other.Repositories) > 0 {
		e.Repositories = other.Repositories
	}
	if len(other.Pipelines) > 0 {
		e.Pipelines = other.Pipelines
	}
	if other.OutputDir != "" {
		e.OutputDir = other.OutputDir
	}
}

// PipelineSet returns the pipeline allow-list as a set
func (e *Export) PipelineSet() sets.Set[string] {
	return sets.New(e.Pipelines...)
}

// Validate checks that an export can be run with the config
func (e *Export) Validate() error {
	if e.Owner == "" {
		return fmt.Errorf("--owner must be specified and nonempty")
	}
	if len(e.Repositories) == 0 {
		return fmt.Errorf("at least one --repo must be specified")
	}
	if len(e.Pipelines) == 0 {
		return fmt.Errorf("at least one --pipeline must be specified")
	}
	return nil
}
