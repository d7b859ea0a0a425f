package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/mediboard/backend/internal/models"
)

// Store defines the interface for upload content storage.
type Store interface {
	Save(name string, declaredMime string, r io.Reader) (*models.FileInfo, error)
	SaveAs(id string, name string, declaredMime string, r io.Reader) (*models.FileInfo, error)
	Get(id string) (*models.FileInfo, error)
	Open(id string) (io.ReadCloser, error)
	List(limit int) ([]*models.FileInfo, error)
	Delete(id string) error
	Rename(id string, newName string) (*models.FileInfo, error)
	GetFilePath(id string) (string, error)
}

// LocalStore implements Store using the local filesystem. Content is
// addressed by uuid; metadata lives in memory.
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
	files     map[string]*models.FileInfo
}

// NewLocalStore creates a new LocalStore rooted at uploadDir.
func NewLocalStore(uploadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &LocalStore{
		uploadDir: uploadDir,
		files:     make(map[string]*models.FileInfo),
	}, nil
}

// Save writes the content to disk, sniffs its real content type and records
// the metadata. The declared MIME is kept alongside the detected one.
func (s *LocalStore) Save(name string, declaredMime string, r io.Reader) (*models.FileInfo, error) {
	return s.SaveAs(uuid.New().String(), name, declaredMime, r)
}

// SaveAs stores content under a caller-assigned identity. Used when the file
// ID was already handed out during validation, so stored content and the
// selection stay keyed the same way.
func (s *LocalStore) SaveAs(id string, name string, declaredMime string, r io.Reader) (*models.FileInfo, error) {
	path := filepath.Join(s.uploadDir, id)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}

	size, err := io.Copy(f, r)
	f.Close()
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	info := &models.FileInfo{
		ID:           id,
		Name:         name,
		Size:         size,
		DeclaredMime: declaredMime,
		UploadedAt:   time.Now(),
	}

	if mt, err := mimetype.DetectFile(path); err == nil {
		info.DetectedMime = mt.String()
		info.MimeMismatch = declaredMime != "" && !mt.Is(declaredMime)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = info

	return info, nil
}

// SaveBytes is a convenience wrapper over Save for in-memory content.
func (s *LocalStore) SaveBytes(name string, declaredMime string, data []byte) (*models.FileInfo, error) {
	return s.Save(name, declaredMime, bytes.NewReader(data))
}

// Get retrieves file metadata by ID.
func (s *LocalStore) Get(id string) (*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}

	return info, nil
}

// Open returns a reader over the stored content.
func (s *LocalStore) Open(id string) (io.ReadCloser, error) {
	path, err := s.GetFilePath(id)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// List returns the most recently uploaded files.
func (s *LocalStore) List(limit int) ([]*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*models.FileInfo
	for _, info := range s.files {
		list = append(list, info)
	}

	// Sort by UploadedAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// Delete removes a file and its content.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return fmt.Errorf("file not found: %s", id)
	}

	path := filepath.Join(s.uploadDir, id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}

	delete(s.files, id)

	return nil
}

// Rename updates the display name of a file.
func (s *LocalStore) Rename(id string, newName string) (*models.FileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}

	info.Name = newName
	return info, nil
}

// GetFilePath returns the absolute path to a file's content.
func (s *LocalStore) GetFilePath(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.files[id]; !ok {
		return "", fmt.Errorf("file not found: %s", id)
	}

	return filepath.Join(s.uploadDir, id), nil
}
