// interfaces.go - Handler interfaces for the API surface
package api

import "github.com/labstack/echo/v4"

// HealthHandler reports service liveness.
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// PickerHandler manages picker sessions: creation, batch submission,
// removal, drag events and selection export.
type PickerHandler interface {
	HandleCreatePicker(c echo.Context) error
	HandleGetPicker(c echo.Context) error
	HandleDeletePicker(c echo.Context) error
	HandleSubmitBatch(c echo.Context) error
	HandleRemoveAt(c echo.Context) error
	HandleDragEvent(c echo.Context) error
	HandleSetDisabled(c echo.Context) error
	HandleSelectionMsgpack(c echo.Context) error
}

// FileHandler serves stored upload metadata, content and previews.
type FileHandler interface {
	HandleRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleFileContent(c echo.Context) error
	HandleFilePreview(c echo.Context) error
	HandleRenameFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
}

// DashboardHandler serves aggregate upload statistics.
type DashboardHandler interface {
	HandleDashboardSummary(c echo.Context) error
}
