package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/afrojun/zenhub-data-export/internal/export"
	"github.com/afrojun/zenhub-data-export/internal/issue"
)

const extension = ".csv"

// Artifact describes an exported file
type Artifact struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Store writes export targets as CSV files into a directory
type Store struct {
	dataDir string
}

// NewStore creates a new storage instance
func NewStore(dataDir string) *Store {
	return &Store{
		dataDir: dataDir,
	}
}

// ensureDataDir creates the data directory if it doesn't exist
func (s *Store) ensureDataDir() error {
	return os.MkdirAll(s.dataDir, 0755)
}

// ArtifactPath returns the file path for a given target
func (s *Store) ArtifactPath(target export.Target) string {
	return filepath.Join(s.dataDir, target.String()+extension)
}

// Write replaces the artifact of the target with the header and the given rows
func (s *Store) Write(_ context.Context, target export.Target, rows []issue.Row) error {
	if err := s.ensureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, "."+target.String()+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeRows(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.ArtifactPath(target)); err != nil {
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}

	return nil
}

func writeRows(f *os.File, rows []issue.Row) error {
	w := csv.NewWriter(f)
	if err := w.Write(issue.Header.Fields()); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row.Fields()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns all artifacts in the store, sorted by name
func (s *Store) List() ([]Artifact, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var artifacts []Artifact
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), extension) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue // removed while listing
		}

		artifacts = append(artifacts, Artifact{
			Name:    strings.TrimSuffix(entry.Name(), extension),
			Path:    filepath.Join(s.dataDir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Name < artifacts[j].Name
	})

	return artifacts, nil
}

// GetDataDir returns the data directory path
func (s *Store) GetDataDir() string {
	return s.dataDir
}
