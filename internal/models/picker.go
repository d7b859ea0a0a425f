package models

import (
	"time"

	"github.com/mediboard/backend/internal/picker"
)

// PickerConfig is the per-instantiation configuration surface of an upload
// control. All fields are optional; Profile supplies defaults and explicit
// fields override it.
type PickerConfig struct {
	Profile  string   `json:"profile,omitempty"`
	Accept   []string `json:"accept,omitempty"`
	Multiple *bool    `json:"multiple,omitempty"`
	MaxSize  int64    `json:"maxSize,omitempty"`
	MaxFiles int      `json:"maxFiles,omitempty"`
	Disabled bool     `json:"disabled,omitempty"`
}

// PickerView is the API representation of one live picker session.
type PickerView struct {
	ID          string             `json:"id"`
	Profile     string             `json:"profile,omitempty"`
	Mode        picker.Mode        `json:"mode"`
	Constraints picker.Constraints `json:"constraints"`
	Disabled    bool               `json:"disabled"`
	Selection   picker.Selection   `json:"selection"`
	LastErrors  []string           `json:"lastErrors,omitempty"`
	DragState   picker.DragState   `json:"dragState"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// SubmitResult is the response body of a batch submission.
type SubmitResult struct {
	Selection picker.Selection `json:"selection"`
	Errors    []string         `json:"errors,omitempty"`
	Changed   bool             `json:"changed"`
}
