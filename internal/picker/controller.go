package picker

import (
	"errors"
	"fmt"
)

// Mode selects the merge behavior of a control.
type Mode string

const (
	// ModeSingle replaces the current selection with at most the first
	// accepted file of a batch.
	ModeSingle Mode = "single"
	// ModeMultiple appends accepted files to the current selection.
	ModeMultiple Mode = "multiple"
)

// Reason classifies why a file (or batch tail) was not accepted.
type Reason string

const (
	ReasonSizeExceeded  Reason = "size_exceeded"
	ReasonTypeRejected  Reason = "type_rejected"
	ReasonCountExceeded Reason = "count_exceeded"
)

// Rejection records a single rejected file with its reason.
type Rejection struct {
	File   CandidateFile `json:"file"`
	Reason Reason        `json:"reason"`
}

// Outcome is the result of one SubmitBatch pass. Selection is the caller's
// replacement list; Changed reports whether a change notification should
// fire (false when nothing was accepted, even if errors were produced).
type Outcome struct {
	Selection Selection       `json:"selection"`
	Accepted  []CandidateFile `json:"accepted,omitempty"`
	Rejected  []Rejection     `json:"rejected,omitempty"`
	Errors    []string        `json:"errors,omitempty"`
	Truncated int             `json:"truncated,omitempty"`
	Changed   bool            `json:"changed"`
}

// ErrIndexOutOfRange is returned by RemoveAt for an invalid index.
var ErrIndexOutOfRange = errors.New("selection index out of range")

// SubmitBatch validates an attempted batch against the constraint set and
// merges the accepted files into the caller's selection.
//
// Slot accounting runs first: with MaxFiles set, only the earliest
// remaining-slot files of the batch are processed and a single aggregate
// error is emitted for the tail. Each processed file is then checked for
// size before type. Merge semantics follow the mode: multiple appends in
// batch order, single replaces the whole selection with at most the first
// accepted file and leaves the selection untouched when nothing was
// accepted.
func SubmitBatch(attempted []CandidateFile, current Selection, c Constraints, mode Mode) Outcome {
	var errs []string

	batch := attempted
	truncated := 0
	if c.MaxFiles > 0 {
		// Single mode discards the prior selection on merge, so the whole
		// cap is available to the batch; only multiple mode counts the
		// current selection against it.
		remaining := c.MaxFiles
		if mode != ModeSingle {
			remaining -= len(current)
		}
		if remaining < 0 {
			remaining = 0
		}
		if len(batch) > remaining {
			truncated = len(batch) - remaining
			batch = batch[:remaining]
			errs = append(errs, fmt.Sprintf("Maximum %d files allowed", c.MaxFiles))
		}
	}

	var accepted []CandidateFile
	var rejected []Rejection
	for _, f := range batch {
		reason, msg := c.check(f)
		if reason != "" {
			rejected = append(rejected, Rejection{File: f, Reason: reason})
			errs = append(errs, msg)
			continue
		}
		accepted = append(accepted, f)
	}

	out := Outcome{
		Accepted:  accepted,
		Rejected:  rejected,
		Errors:    errs,
		Truncated: truncated,
	}

	switch mode {
	case ModeSingle:
		if len(accepted) > 0 {
			out.Selection = Selection{accepted[0]}
			out.Changed = true
		} else {
			// All-rejected batch leaves the selection as-is; the caller's
			// change notification must not fire.
			out.Selection = current.Clone()
		}
	default:
		out.Selection = append(current.Clone(), accepted...)
		out.Changed = len(accepted) > 0
	}

	return out
}

// RemoveAt returns a new selection with the element at index removed,
// preserving the relative order of the remaining files.
func RemoveAt(sel Selection, index int) (Selection, error) {
	if index < 0 || index >= len(sel) {
		return nil, fmt.Errorf("removing index %d from %d files: %w", index, len(sel), ErrIndexOutOfRange)
	}
	out := make(Selection, 0, len(sel)-1)
	out = append(out, sel[:index]...)
	out = append(out, sel[index+1:]...)
	return out, nil
}
