// Package session tracks live picker sessions: one session per mounted
// upload control, holding its constraint set, current selection, transient
// error list and drag state.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mediboard/backend/internal/picker"
)

// MaxSessions caps concurrent picker sessions to bound memory and stored
// content held by abandoned controls.
const MaxSessions = 256

var (
	ErrNotFound        = errors.New("picker session not found")
	ErrDisabled        = errors.New("picker is disabled")
	ErrTooManySessions = errors.New("too many active picker sessions")
)

// Releaser disposes the resources derived for a file once it leaves a
// selection (stored content, memoized previews).
type Releaser interface {
	ReleaseFile(fileID string)
}

// State is one live picker session. All mutation happens through the
// manager under its lock; the selection slice handed out is always a copy.
type State struct {
	ID           string
	Profile      string
	Mode         picker.Mode
	Constraints  picker.Constraints
	Disabled     bool
	Selection    picker.Selection
	LastErrors   []string
	Drag         *picker.DragTracker
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Manager handles active picker sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*State
	releaser Releaser
}

// NewManager creates a new session manager. The releaser may be nil when no
// per-file cleanup is wanted (tests).
func NewManager(releaser Releaser) *Manager {
	return &Manager{
		sessions: make(map[string]*State),
		releaser: releaser,
	}
}

// Create registers a new picker session.
func (m *Manager) Create(profileName string, mode picker.Mode, c picker.Constraints, disabled bool) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= MaxSessions {
		return nil, ErrTooManySessions
	}

	now := time.Now()
	st := &State{
		ID:           uuid.New().String(),
		Profile:      profileName,
		Mode:         mode,
		Constraints:  c,
		Disabled:     disabled,
		Drag:         picker.NewDragTracker(disabled),
		CreatedAt:    now,
		LastAccessed: now,
	}
	m.sessions[st.ID] = st

	return st, nil
}

// Get returns a snapshot of a session and refreshes its keep-alive window.
func (m *Manager) Get(id string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return State{}, ErrNotFound
	}
	st.LastAccessed = time.Now()
	return m.snapshotLocked(st), nil
}

// Submit runs one validation pass over an attempted batch and merges the
// result into the session's selection. The transient error list is replaced
// on every attempt. The returned outcome carries the full new selection;
// Changed is false when nothing was accepted and no notification should go
// out.
func (m *Manager) Submit(id string, attempted []picker.CandidateFile) (picker.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return picker.Outcome{}, ErrNotFound
	}
	if st.Disabled {
		return picker.Outcome{}, ErrDisabled
	}

	st.LastAccessed = time.Now()
	st.LastErrors = nil

	out := picker.SubmitBatch(attempted, st.Selection, st.Constraints, st.Mode)
	st.LastErrors = out.Errors
	if out.Changed {
		// Single mode replaces: files pushed out of the selection lose
		// their derived resources.
		if st.Mode == picker.ModeSingle {
			kept := make(map[string]bool, len(out.Selection))
			for _, f := range out.Selection {
				kept[f.ID] = true
			}
			for _, f := range st.Selection {
				if !kept[f.ID] {
					m.releaseFile(f.ID)
				}
			}
		}
		st.Selection = out.Selection.Clone()
	}

	return out, nil
}

// RemoveAt removes the selection element at index, releases its resources
// and clears any pending errors.
func (m *Manager) RemoveAt(id string, index int) (picker.Selection, picker.CandidateFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return nil, picker.CandidateFile{}, ErrNotFound
	}

	st.LastAccessed = time.Now()

	newSel, err := picker.RemoveAt(st.Selection, index)
	if err != nil {
		return nil, picker.CandidateFile{}, err
	}
	removed := st.Selection[index]

	st.Selection = newSel
	st.LastErrors = nil
	m.releaseFile(removed.ID)

	return newSel.Clone(), removed, nil
}

// Discard removes the named files from a session's selection and releases
// their resources, preserving the order of the rest. Used to back out
// entries whose content failed to persist; the selection must never
// reference content that does not exist.
func (m *Manager) Discard(id string, fileIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}

	drop := make(map[string]bool, len(fileIDs))
	for _, fid := range fileIDs {
		drop[fid] = true
	}

	kept := make(picker.Selection, 0, len(st.Selection))
	for _, f := range st.Selection {
		if drop[f.ID] {
			m.releaseFile(f.ID)
			continue
		}
		kept = append(kept, f)
	}
	st.Selection = kept

	return nil
}

// DragEnter drives the session's drag automaton; refused while disabled.
func (m *Manager) DragEnter(id string) (picker.DragState, error) {
	return m.dragTransition(id, func(t *picker.DragTracker) picker.DragState {
		return t.Enter()
	})
}

// DragLeave returns the session's drag automaton to idle.
func (m *Manager) DragLeave(id string) (picker.DragState, error) {
	return m.dragTransition(id, func(t *picker.DragTracker) picker.DragState {
		return t.Leave()
	})
}

// Drop resets the drag automaton and reports whether a submit should run.
func (m *Manager) Drop(id string) (picker.DragState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return "", false, ErrNotFound
	}
	st.LastAccessed = time.Now()
	state, submit := st.Drag.Drop()
	return state, submit, nil
}

func (m *Manager) dragTransition(id string, fn func(*picker.DragTracker) picker.DragState) (picker.DragState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return "", ErrNotFound
	}
	st.LastAccessed = time.Now()
	return fn(st.Drag), nil
}

// SetDisabled toggles a session's disabled flag; disabling also forces the
// drag automaton back to idle.
func (m *Manager) SetDisabled(id string, disabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	st.Disabled = disabled
	st.Drag.SetDisabled(disabled)
	return nil
}

// Delete tears a session down and releases every file it still holds.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	for _, f := range st.Selection {
		m.releaseFile(f.ID)
	}
	delete(m.sessions, id)
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupOldSessions removes sessions idle for longer than maxAge and
// releases their resources. Returns the number of sessions removed.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, st := range m.sessions {
		if st.LastAccessed.Before(cutoff) {
			for _, f := range st.Selection {
				m.releaseFile(f.ID)
			}
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		fmt.Printf("[Session] Cleaned up %d idle picker sessions\n", removed)
	}
	return removed
}

func (m *Manager) releaseFile(fileID string) {
	if m.releaser != nil && fileID != "" {
		m.releaser.ReleaseFile(fileID)
	}
}

func (m *Manager) snapshotLocked(st *State) State {
	cp := *st
	cp.Selection = st.Selection.Clone()
	cp.LastErrors = append([]string(nil), st.LastErrors...)
	return cp
}
