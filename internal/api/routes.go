// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/mediboard/backend/internal/preview"
	"github.com/mediboard/backend/internal/profile"
	"github.com/mediboard/backend/internal/session"
	"github.com/mediboard/backend/internal/stats"
	"github.com/mediboard/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store             storage.Store
	SessionMgr        *session.Manager
	Previews          *preview.Manager
	Profiles          *profile.Registry
	Events            *stats.EventStore
	Hub               *Hub
	DefaultProfile    string
	AllowFileDeletion bool
	Version           string
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Picker    PickerHandler
	File      FileHandler
	Dashboard DashboardHandler
	Hub       *Hub
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	hub := deps.Hub
	if hub == nil {
		hub = NewHub()
	}
	return &Handlers{
		Health:    NewHealthHandler(deps.Version),
		Picker:    NewPickerHandler(deps.Store, deps.SessionMgr, deps.Profiles, deps.Events, hub, deps.DefaultProfile),
		File:      NewFileHandler(deps.Store, deps.Previews),
		Dashboard: NewDashboardHandler(deps.Events),
		Hub:       hub,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers, allowFileDeletion bool) {
	api := e.Group("/api")

	// Health check
	api.GET("/health", handlers.Health.HandleHealth)

	// WebSocket notifications
	api.GET("/ws/pickers", handlers.Hub.HandleWebSocket)

	// Picker sessions
	pickers := api.Group("/pickers")
	pickers.POST("", handlers.Picker.HandleCreatePicker)
	pickers.GET("/:id", handlers.Picker.HandleGetPicker)
	pickers.DELETE("/:id", handlers.Picker.HandleDeletePicker)
	pickers.POST("/:id/files", handlers.Picker.HandleSubmitBatch)
	pickers.DELETE("/:id/files/:index", handlers.Picker.HandleRemoveAt)
	pickers.POST("/:id/drag", handlers.Picker.HandleDragEvent)
	pickers.PUT("/:id/disabled", handlers.Picker.HandleSetDisabled)
	pickers.GET("/:id/selection/msgpack", handlers.Picker.HandleSelectionMsgpack)

	// Stored files
	files := api.Group("/files")
	files.GET("/recent", handlers.File.HandleRecentFiles)
	files.GET("/:id", handlers.File.HandleGetFile)
	files.GET("/:id/content", handlers.File.HandleFileContent)
	files.GET("/:id/preview", handlers.File.HandleFilePreview)
	files.PUT("/:id", handlers.File.HandleRenameFile)
	if allowFileDeletion {
		files.DELETE("/:id", handlers.File.HandleDeleteFile)
	}

	// Dashboard
	api.GET("/dashboard/summary", handlers.Dashboard.HandleDashboardSummary)
}

// FileReleaser wires the session manager's resource discipline to storage
// and previews: when a file leaves a selection, its derived preview and
// stored content go with it.
type FileReleaser struct {
	Store    storage.Store
	Previews *preview.Manager
}

// ReleaseFile implements session.Releaser.
func (r *FileReleaser) ReleaseFile(fileID string) {
	if r.Previews != nil {
		r.Previews.Release(fileID)
	}
	if r.Store != nil {
		// Content may never have been persisted (zero-byte save failure);
		// a missing file is fine here.
		_ = r.Store.Delete(fileID)
	}
}
