// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mediboard/backend/internal/models"
)

// MockStorage implements storage.Store backed by in-memory maps.
type MockStorage struct {
	mu       sync.RWMutex
	files    map[string]*models.FileInfo
	fileData map[string][]byte
	seq      atomic.Int64

	// FailSave forces the next Save/SaveAs to fail, for error-path tests.
	FailSave bool
}

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		files:    make(map[string]*models.FileInfo),
		fileData: make(map[string][]byte),
	}
}

func (m *MockStorage) Save(name string, declaredMime string, r io.Reader) (*models.FileInfo, error) {
	return m.SaveAs(fmt.Sprintf("mock-%d", m.seq.Add(1)), name, declaredMime, r)
}

func (m *MockStorage) SaveAs(id string, name string, declaredMime string, r io.Reader) (*models.FileInfo, error) {
	if m.FailSave {
		return nil, errors.New("mock save failure")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	info := &models.FileInfo{
		ID:           id,
		Name:         name,
		Size:         int64(len(data)),
		DeclaredMime: declaredMime,
		DetectedMime: declaredMime,
		UploadedAt:   time.Now(),
	}
	m.files[id] = info
	m.fileData[id] = data
	return info, nil
}

func (m *MockStorage) Get(id string) (*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	return info, nil
}

func (m *MockStorage) Open(id string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.fileData[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MockStorage) List(limit int) ([]*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var files []*models.FileInfo
	for _, f := range m.files {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].UploadedAt.After(files[j].UploadedAt)
	})
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return errors.New("file not found")
	}
	delete(m.files, id)
	delete(m.fileData, id)
	return nil
}

func (m *MockStorage) Rename(id string, newName string) (*models.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	info.Name = newName
	return info, nil
}

func (m *MockStorage) GetFilePath(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.files[id]; !ok {
		return "", errors.New("file not found")
	}
	return "/mock/" + id, nil
}

// Data returns the stored bytes for a file, for assertions.
func (m *MockStorage) Data(id string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.fileData[id]
	return data, ok
}

// Count returns the number of stored files.
func (m *MockStorage) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
