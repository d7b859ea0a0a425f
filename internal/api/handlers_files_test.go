// handlers_files_test.go - Tests for stored file handlers
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mediboard/backend/internal/models"
	"github.com/mediboard/backend/internal/preview"
	"github.com/mediboard/backend/internal/storage"
)

// pngBytes is a minimal payload the content sniffer identifies as image/png.
var pngBytes = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 16)...)

type filesFixture struct {
	handler  FileHandler
	store    *storage.LocalStore
	previews *preview.Manager
	e        *echo.Echo
}

func newFilesFixture(t *testing.T) *filesFixture {
	dir := t.TempDir()
	store, err := storage.NewLocalStore(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	previews, err := preview.NewManager(filepath.Join(dir, "previews"), store)
	if err != nil {
		t.Fatalf("creating preview manager: %v", err)
	}
	return &filesFixture{
		handler:  NewFileHandler(store, previews),
		store:    store,
		previews: previews,
		e:        echo.New(),
	}
}

func (f *filesFixture) request(t *testing.T, method, id string, body string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "/api/files/"+id, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, "/api/files/"+id, nil)
	}
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return rec, c
}

func TestFileHandler_RecentFilesKindFilter(t *testing.T) {
	f := newFilesFixture(t)

	if _, err := f.store.SaveBytes("scan.png", "image/png", pngBytes); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := f.store.SaveBytes("notes.txt", "text/plain", []byte("plain text notes")); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/files/recent?kind=image", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)

	if err := f.handler.HandleRecentFiles(c); err != nil {
		t.Fatalf("HandleRecentFiles failed: %v", err)
	}

	var files []*models.FileInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &files); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(files) != 1 || files[0].Name != "scan.png" {
		t.Errorf("expected only scan.png, got %v", files)
	}
}

func TestFileHandler_GetFile(t *testing.T) {
	f := newFilesFixture(t)

	info, err := f.store.SaveBytes("report.pdf", "application/pdf", []byte("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	rec, c := f.request(t, http.MethodGet, info.ID, "")
	if err := f.handler.HandleGetFile(c); err != nil {
		t.Fatalf("HandleGetFile failed: %v", err)
	}

	var got models.FileInfo
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.ID != info.ID || got.Name != "report.pdf" {
		t.Errorf("unexpected metadata: %+v", got)
	}
}

func TestFileHandler_GetFileNotFound(t *testing.T) {
	f := newFilesFixture(t)

	_, c := f.request(t, http.MethodGet, "missing", "")
	err := f.handler.HandleGetFile(c)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", apiErr.Status)
	}
}

func TestFileHandler_FileContent(t *testing.T) {
	f := newFilesFixture(t)

	info, err := f.store.SaveBytes("scan.png", "image/png", pngBytes)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	rec, c := f.request(t, http.MethodGet, info.ID, "")
	if err := f.handler.HandleFileContent(c); err != nil {
		t.Fatalf("HandleFileContent failed: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/png" {
		t.Errorf("expected image/png content type, got %s", ct)
	}
	if rec.Body.Len() != len(pngBytes) {
		t.Errorf("expected %d content bytes, got %d", len(pngBytes), rec.Body.Len())
	}
}

func TestFileHandler_PreviewForImage(t *testing.T) {
	f := newFilesFixture(t)

	info, err := f.store.SaveBytes("scan.png", "image/png", pngBytes)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	rec, c := f.request(t, http.MethodGet, info.ID, "")
	if err := f.handler.HandleFilePreview(c); err != nil {
		t.Fatalf("HandleFilePreview failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if f.previews.Count() != 1 {
		t.Errorf("expected 1 derived preview, got %d", f.previews.Count())
	}
}

func TestFileHandler_PreviewForNonImage(t *testing.T) {
	f := newFilesFixture(t)

	info, err := f.store.SaveBytes("notes.txt", "text/plain", []byte("plain text notes"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	rec, c := f.request(t, http.MethodGet, info.ID, "")
	if err := f.handler.HandleFilePreview(c); err != nil {
		t.Fatalf("HandleFilePreview failed: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for non-previewable content, got %d", rec.Code)
	}
	if f.previews.Count() != 0 {
		t.Errorf("expected no derived preview, got %d", f.previews.Count())
	}
}

func TestFileHandler_Rename(t *testing.T) {
	f := newFilesFixture(t)

	info, err := f.store.SaveBytes("old.txt", "text/plain", []byte("content"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	rec, c := f.request(t, http.MethodPut, info.ID, `{"name":"new.txt"}`)
	if err := f.handler.HandleRenameFile(c); err != nil {
		t.Fatalf("HandleRenameFile failed: %v", err)
	}

	var got models.FileInfo
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Name != "new.txt" {
		t.Errorf("expected renamed file, got %s", got.Name)
	}
}

func TestFileHandler_RenameEmptyName(t *testing.T) {
	f := newFilesFixture(t)

	_, c := f.request(t, http.MethodPut, "any", `{"name":""}`)
	err := f.handler.HandleRenameFile(c)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", apiErr.Code)
	}
}

func TestFileHandler_DeleteReleasesPreview(t *testing.T) {
	f := newFilesFixture(t)

	info, err := f.store.SaveBytes("scan.png", "image/png", pngBytes)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := f.previews.Derive(info.ID); err != nil {
		t.Fatalf("derive failed: %v", err)
	}

	rec, c := f.request(t, http.MethodDelete, info.ID, "")
	if err := f.handler.HandleDeleteFile(c); err != nil {
		t.Fatalf("HandleDeleteFile failed: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if f.previews.Count() != 0 {
		t.Errorf("expected preview released, got %d", f.previews.Count())
	}
	if _, err := f.store.Get(info.ID); err == nil {
		t.Error("expected file metadata gone after delete")
	}
}
