// handlers_files.go - Stored upload metadata, content and preview handlers
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/mediboard/backend/internal/models"
	"github.com/mediboard/backend/internal/preview"
	"github.com/mediboard/backend/internal/storage"
)

// FileHandlerImpl implements the FileHandler interface
type FileHandlerImpl struct {
	store    storage.Store
	previews *preview.Manager
}

// NewFileHandler creates a new file handler instance
func NewFileHandler(store storage.Store, previews *preview.Manager) FileHandler {
	return &FileHandlerImpl{
		store:    store,
		previews: previews,
	}
}

// HandleRecentFiles returns recently uploaded files, optionally filtered by
// MIME major type (?kind=image)
func (h *FileHandlerImpl) HandleRecentFiles(c echo.Context) error {
	files, err := h.store.List(50)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}

	if kind := c.QueryParam("kind"); kind != "" {
		prefix := kind + "/"
		files = lo.Filter(files, func(f *models.FileInfo, _ int) bool {
			return strings.HasPrefix(f.DetectedMime, prefix)
		})
	}

	if len(files) > 20 {
		files = files[:20]
	}

	return c.JSON(http.StatusOK, files)
}

// HandleGetFile returns metadata for a specific file
func (h *FileHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, info)
}

// HandleFileContent streams the stored content with its sniffed type
func (h *FileHandlerImpl) HandleFileContent(c echo.Context) error {
	id := c.Param("id")

	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	path, err := h.store.GetFilePath(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	contentType := info.DetectedMime
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	return c.File(path)
}

// HandleFilePreview serves the derived preview resource for a file.
// Non-previewable content answers 204 and the client renders a generic
// affordance.
func (h *FileHandlerImpl) HandleFilePreview(c echo.Context) error {
	id := c.Param("id")

	res, err := h.previews.Derive(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	if res == nil {
		return c.NoContent(http.StatusNoContent)
	}

	c.Response().Header().Set(echo.HeaderContentType, res.ContentType)
	return c.File(res.Path)
}

type renameFileRequest struct {
	Name string `json:"name"`
}

// HandleRenameFile updates the display name of a file
func (h *FileHandlerImpl) HandleRenameFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req renameFileRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Name == "" {
		return NewValidationError("name")
	}

	info, err := h.store.Rename(id, req.Name)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, info)
}

// HandleDeleteFile deletes a file, its content and any derived preview
func (h *FileHandlerImpl) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	h.previews.Release(id)
	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("file", id)
	}

	return c.NoContent(http.StatusNoContent)
}
