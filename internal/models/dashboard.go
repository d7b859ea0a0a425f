package models

import "time"

// MimeCount is one row of the dashboard's uploads-by-kind breakdown.
type MimeCount struct {
	Mime  string `json:"mime"`
	Count int    `json:"count"`
}

// DashboardSummary aggregates upload activity for the dashboard view.
type DashboardSummary struct {
	TotalSubmits    int            `json:"totalSubmits"`
	AcceptedFiles   int            `json:"acceptedFiles"`
	RejectedFiles   int            `json:"rejectedFiles"`
	TruncatedFiles  int            `json:"truncatedFiles"`
	BytesAccepted   int64          `json:"bytesAccepted"`
	RejectsByReason map[string]int `json:"rejectsByReason,omitempty"`
	TopMimeTypes    []MimeCount    `json:"topMimeTypes,omitempty"`
	GeneratedAt     time.Time      `json:"generatedAt"`
}
