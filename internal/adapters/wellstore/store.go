// Package wellstore persists the well graph to disk and owns the well's
// directory tree.
package wellstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/gemscreen/internal/core/well"
	"github.com/example/gemscreen/internal/ports/secondary"
)

// Store is the filesystem-backed WellStore.
type Store struct{}

var _ secondary.WellStore = (*Store)(nil)

// New returns a filesystem well store.
func New() *Store {
	return &Store{}
}

// Create builds a fresh well. Any artifacts of a prior attempt under the
// same label (config, images, masks directories and the measurement CSV)
// are deleted first, then empty directories are recreated and the initial
// graph is persisted. Running it twice yields the same clean state.
func (s *Store) Create(ctx context.Context, runDir well.Path, runID, label string, grid map[int]well.StageCoord) (*well.Well, error) {
	if len(grid) == 0 {
		return nil, fmt.Errorf("well %s: coordinate grid is empty", label)
	}
	w := well.New(runDir, runID, label, grid)

	if err := os.MkdirAll(string(w.WellDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create well directory %s: %w", w.WellDir, err)
	}

	stale := []string{
		string(w.ConfigDir()),
		string(w.ImagesDir()),
		string(w.MasksDir()),
		string(w.CSVPath()),
	}
	for _, p := range stale {
		if err := os.RemoveAll(p); err != nil {
			return nil, fmt.Errorf("failed to clear stale artifact %s: %w", p, err)
		}
	}
	for _, dir := range []well.Path{w.ConfigDir(), w.ImagesDir(), w.MasksDir()} {
		if err := os.MkdirAll(string(dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := s.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Load restores a persisted well graph. It never creates or resets
// directories, so resuming a mid-run well leaves its evidence intact.
func (s *Store) Load(_ context.Context, objPath well.Path) (*well.Well, error) {
	data, err := os.ReadFile(string(objPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read well object %s: %w", objPath, err)
	}
	w, err := well.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("well object %s: %w", objPath, err)
	}
	return w, nil
}

// Save persists the graph atomically: the document is written to a temp
// file beside the target and renamed into place.
func (s *Store) Save(_ context.Context, w *well.Well) error {
	data, err := well.Encode(w)
	if err != nil {
		return err
	}
	objPath := string(w.ObjectPath())

	tmp, err := os.CreateTemp(filepath.Dir(objPath), filepath.Base(objPath)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", objPath, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write well object %s: %w", objPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close well object %s: %w", objPath, err)
	}
	if err := os.Rename(tmpName, objPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move well object into place at %s: %w", objPath, err)
	}
	return nil
}

// ListImageFiles returns the .tif file names in the well's images
// directory, sorted.
func (s *Store) ListImageFiles(w *well.Well) ([]string, error) {
	return listTifs(string(w.ImagesDir()))
}

// ListMaskFiles returns the .tif file names in the well's masks
// directory, sorted.
func (s *Store) ListMaskFiles(w *well.Well) ([]string, error) {
	return listTifs(string(w.MasksDir()))
}

func listTifs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tif") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
