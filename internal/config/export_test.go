package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `owner: acme
repositories:
  - widgets
  - gears
pipelines:
  - Team/Backlog
  - Waiting
outputDir: /tmp/out
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadExport(path)
	require.NoError(t, err)
	assert.Equal(t, &Export{
		Owner:        "acme",
		Repositories: []string{"widgets", "gears"},
		Pipelines:    []string{"Team/Backlog", "Waiting"},
		OutputDir:    "/tmp/out",
	}, cfg)
	assert.True(t, cfg.PipelineSet().Has("Team/Backlog"))
	assert.False(t, cfg.PipelineSet().Has("Backlog"))
}

func TestLoadExportMissing(t *testing.T) {
	t.Run("explicit path must exist", func(t *testing.T) {
		_, err := LoadExport(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("default path may be missing", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("HOME", t.TempDir())

		cfg, err := LoadExport("")
		require.NoError(t, err)
		assert.Equal(t, &Export{}, cfg)
	})
}

func TestLoadExportMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repositories: [unterminated"), 0644))

	_, err := LoadExport(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestOverride(t *testing.T) {
	cfg := Export{
		Owner:        "acme",
		Repositories: []string{"widgets"},
		Pipelines:    []string{"Waiting"},
		OutputDir:    "/from/file",
	}

	cfg.Override(Export{Repositories: []string{"gears", "cogs"}, OutputDir: "/from/flags"})

	assert.Equal(t, Export{
		Owner:        "acme",
		Repositories: []string{"gears", "cogs"},
		Pipelines:    []string{"Waiting"},
		OutputDir:    "/from/flags",
	}, cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Export
		expectError bool
	}{
		{
			name: "complete",
			cfg:  Export{Owner: "acme", Repositories: []string{"widgets"}, Pipelines: []string{"Waiting"}},
		},
		{
			name:        "no owner",
			cfg:         Export{Repositories: []string{"widgets"}, Pipelines: []string{"Waiting"}},
			expectError: true,
		},
		{
			name:        "no repositories",
			cfg:         Export{Owner: "acme", Pipelines: []string{"Waiting"}},
			expectError: true,
		},
		{
			name:        "no pipelines",
			cfg:         Export{Owner: "acme", Repositories: []string{"widgets"}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
