package models

import "time"

// FileInfo represents metadata about a stored upload.
//
// DeclaredMime is what the client claimed in the multipart part header;
// DetectedMime is what content sniffing found. The two disagreeing is not an
// error by itself, but the mismatch is surfaced so callers can flag it.
type FileInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	DeclaredMime string    `json:"declaredMime"`
	DetectedMime string    `json:"detectedMime,omitempty"`
	MimeMismatch bool      `json:"mimeMismatch,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
}
