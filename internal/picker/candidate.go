// Package picker implements the upload-input controller shared by all
// file-selection controls: batch validation against a constraint set,
// selection merging, and the drag-hover state machine. The package is pure;
// transport and storage adapters live in internal/api and internal/session.
package picker

// CandidateFile is an opaque handle to a file offered through the platform
// file picker or a drop payload. Immutable once created; ID is the platform
// identity (files are unique by ID, not by name).
type CandidateFile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
}

// Selection is an ordered sequence of candidate files. It is owned by the
// caller: controller operations never mutate a Selection in place and always
// return a fresh slice.
type Selection []CandidateFile

// Clone returns an independent copy of the selection.
func (s Selection) Clone() Selection {
	if s == nil {
		return nil
	}
	out := make(Selection, len(s))
	copy(out, s)
	return out
}

// IDs returns the file identities in selection order.
func (s Selection) IDs() []string {
	ids := make([]string, len(s))
	for i, f := range s {
		ids[i] = f.ID
	}
	return ids
}
