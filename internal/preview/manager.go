// Package preview derives displayable resources for stored uploads and owns
// their lifecycle. Derivations are memoized per file identity and must be
// released when the file leaves a selection, so repeated re-renders never
// accumulate orphaned artifacts.
package preview

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mediboard/backend/internal/models"
)

// Store defines the interface needed from the storage layer.
type Store interface {
	Get(id string) (*models.FileInfo, error)
	GetFilePath(id string) (string, error)
}

// Resource is a derived preview for one stored file.
type Resource struct {
	FileID      string `json:"fileId"`
	ContentType string `json:"contentType"`
	Path        string `json:"-"`
}

// Manager memoizes preview resources per file identity.
type Manager struct {
	mu         sync.RWMutex
	previewDir string
	store      Store
	resources  map[string]*Resource
}

// NewManager creates a preview manager writing derived artifacts under
// previewDir.
func NewManager(previewDir string, store Store) (*Manager, error) {
	if err := os.MkdirAll(previewDir, 0755); err != nil {
		return nil, fmt.Errorf("creating preview directory: %w", err)
	}
	return &Manager{
		previewDir: previewDir,
		store:      store,
		resources:  make(map[string]*Resource),
	}, nil
}

// Derive returns the preview resource for a file, creating it on first use.
// Non-image content has no preview; Derive returns (nil, nil) and the caller
// renders a generic affordance instead.
func (m *Manager) Derive(fileID string) (*Resource, error) {
	m.mu.RLock()
	res, ok := m.resources[fileID]
	m.mu.RUnlock()
	if ok {
		return res, nil
	}

	info, err := m.store.Get(fileID)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(info.DetectedMime, "image/") {
		return nil, nil
	}

	srcPath, err := m.store.GetFilePath(fileID)
	if err != nil {
		return nil, err
	}

	dstPath := filepath.Join(m.previewDir, fileID)
	if err := copyFile(srcPath, dstPath); err != nil {
		return nil, fmt.Errorf("deriving preview for %s: %w", fileID, err)
	}

	res = &Resource{
		FileID:      fileID,
		ContentType: info.DetectedMime,
		Path:        dstPath,
	}

	m.mu.Lock()
	// Lost race with a concurrent Derive: keep the first artifact.
	if existing, ok := m.resources[fileID]; ok {
		m.mu.Unlock()
		os.Remove(dstPath)
		return existing, nil
	}
	m.resources[fileID] = res
	m.mu.Unlock()

	return res, nil
}

// Release drops the memoized preview for a file and deletes its artifact.
// Releasing a file without a preview is a no-op.
func (m *Manager) Release(fileID string) {
	m.mu.Lock()
	res, ok := m.resources[fileID]
	delete(m.resources, fileID)
	m.mu.Unlock()

	if ok {
		os.Remove(res.Path)
	}
}

// Close releases every derived preview. Called on teardown.
func (m *Manager) Close() {
	m.mu.Lock()
	resources := m.resources
	m.resources = make(map[string]*Resource)
	m.mu.Unlock()

	for _, res := range resources {
		os.Remove(res.Path)
	}
}

// Count returns the number of live derived previews.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.resources)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
