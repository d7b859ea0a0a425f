package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediboard/backend/internal/picker"
)

// recordingReleaser captures released file IDs.
type recordingReleaser struct {
	mu       sync.Mutex
	released []string
}

func (r *recordingReleaser) ReleaseFile(fileID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = append(r.released, fileID)
}

func (r *recordingReleaser) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.released...)
}

func candidate(id, name, mime string, size int64) picker.CandidateFile {
	return picker.CandidateFile{ID: id, Name: name, MimeType: mime, SizeBytes: size}
}

func newTestManager(t *testing.T) (*Manager, *recordingReleaser) {
	rel := &recordingReleaser{}
	return NewManager(rel), rel
}

func TestManager_CreateAndGet(t *testing.T) {
	m, _ := newTestManager(t)

	st, err := m.Create("images", picker.ModeMultiple, picker.Constraints{MaxFiles: 3}, false)
	require.NoError(t, err)
	require.NotEmpty(t, st.ID)

	got, err := m.Get(st.ID)
	require.NoError(t, err)
	assert.Equal(t, "images", got.Profile)
	assert.Equal(t, picker.DragIdle, got.Drag.State())
	assert.Empty(t, got.Selection)

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_SubmitUpdatesSelectionAndErrors(t *testing.T) {
	m, _ := newTestManager(t)
	st, _ := m.Create("", picker.ModeMultiple, picker.Constraints{Accept: []string{"image/*"}}, false)

	out, err := m.Submit(st.ID, []picker.CandidateFile{
		candidate("1", "a.png", "image/png", 10),
		candidate("2", "b.exe", "application/octet-stream", 10),
	})
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Len(t, out.Selection, 1)

	got, _ := m.Get(st.ID)
	assert.Len(t, got.Selection, 1)
	assert.Len(t, got.LastErrors, 1)

	// Next attempt resets the error list.
	out, err = m.Submit(st.ID, []picker.CandidateFile{candidate("3", "c.png", "image/png", 10)})
	require.NoError(t, err)
	got, _ = m.Get(st.ID)
	assert.Empty(t, got.LastErrors)
	assert.Len(t, got.Selection, 2)
}

func TestManager_SubmitAllRejectedLeavesSelection(t *testing.T) {
	m, _ := newTestManager(t)
	st, _ := m.Create("", picker.ModeMultiple, picker.Constraints{Accept: []string{"image/*"}}, false)

	_, err := m.Submit(st.ID, []picker.CandidateFile{candidate("1", "a.png", "image/png", 10)})
	require.NoError(t, err)

	out, err := m.Submit(st.ID, []picker.CandidateFile{candidate("2", "b.exe", "application/pdf", 10)})
	require.NoError(t, err)
	assert.False(t, out.Changed)

	got, _ := m.Get(st.ID)
	assert.Len(t, got.Selection, 1)
	assert.NotEmpty(t, got.LastErrors)
}

func TestManager_SubmitDisabled(t *testing.T) {
	m, _ := newTestManager(t)
	st, _ := m.Create("", picker.ModeMultiple, picker.Constraints{}, true)

	_, err := m.Submit(st.ID, []picker.CandidateFile{candidate("1", "a.png", "image/png", 10)})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestManager_SingleModeReplacementReleasesPrior(t *testing.T) {
	m, rel := newTestManager(t)
	st, _ := m.Create("avatar", picker.ModeSingle, picker.Constraints{Accept: []string{"image/*"}, MaxFiles: 1}, false)

	_, err := m.Submit(st.ID, []picker.CandidateFile{candidate("old", "old.png", "image/png", 10)})
	require.NoError(t, err)

	out, err := m.Submit(st.ID, []picker.CandidateFile{candidate("new", "new.png", "image/png", 10)})
	require.NoError(t, err)
	require.Len(t, out.Selection, 1)
	assert.Equal(t, "new", out.Selection[0].ID)
	assert.Equal(t, []string{"old"}, rel.ids())
}

func TestManager_Discard(t *testing.T) {
	m, rel := newTestManager(t)
	st, _ := m.Create("", picker.ModeMultiple, picker.Constraints{}, false)

	_, _ = m.Submit(st.ID, []picker.CandidateFile{
		candidate("1", "a.png", "image/png", 1),
		candidate("2", "b.png", "image/png", 1),
		candidate("3", "c.png", "image/png", 1),
	})

	require.NoError(t, m.Discard(st.ID, []string{"2", "3"}))

	got, _ := m.Get(st.ID)
	require.Len(t, got.Selection, 1)
	assert.Equal(t, "1", got.Selection[0].ID)
	assert.ElementsMatch(t, []string{"2", "3"}, rel.ids())

	assert.ErrorIs(t, m.Discard("missing", []string{"1"}), ErrNotFound)
}

func TestManager_RemoveAt(t *testing.T) {
	m, rel := newTestManager(t)
	st, _ := m.Create("", picker.ModeMultiple, picker.Constraints{}, false)

	_, _ = m.Submit(st.ID, []picker.CandidateFile{
		candidate("1", "a.png", "image/png", 1),
		candidate("2", "b.png", "image/png", 1),
		candidate("3", "c.png", "image/png", 1),
	})

	sel, removed, err := m.RemoveAt(st.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "2", removed.ID)
	require.Len(t, sel, 2)
	assert.Equal(t, "1", sel[0].ID)
	assert.Equal(t, "3", sel[1].ID)
	assert.Contains(t, rel.ids(), "2")

	_, _, err = m.RemoveAt(st.ID, 5)
	assert.ErrorIs(t, err, picker.ErrIndexOutOfRange)
}

func TestManager_DragLifecycle(t *testing.T) {
	m, _ := newTestManager(t)
	st, _ := m.Create("", picker.ModeMultiple, picker.Constraints{}, false)

	state, err := m.DragEnter(st.ID)
	require.NoError(t, err)
	assert.Equal(t, picker.DragActive, state)

	state, submit, err := m.Drop(st.ID)
	require.NoError(t, err)
	assert.Equal(t, picker.DragIdle, state)
	assert.True(t, submit)

	require.NoError(t, m.SetDisabled(st.ID, true))
	state, err = m.DragEnter(st.ID)
	require.NoError(t, err)
	assert.Equal(t, picker.DragIdle, state)

	_, submit, err = m.Drop(st.ID)
	require.NoError(t, err)
	assert.False(t, submit)
}

func TestManager_DeleteReleasesSelection(t *testing.T) {
	m, rel := newTestManager(t)
	st, _ := m.Create("", picker.ModeMultiple, picker.Constraints{}, false)
	_, _ = m.Submit(st.ID, []picker.CandidateFile{candidate("1", "a.png", "image/png", 1)})

	require.NoError(t, m.Delete(st.ID))
	assert.Equal(t, []string{"1"}, rel.ids())
	_, err := m.Get(st.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_CleanupOldSessions(t *testing.T) {
	m, rel := newTestManager(t)
	st, _ := m.Create("", picker.ModeMultiple, picker.Constraints{}, false)
	_, _ = m.Submit(st.ID, []picker.CandidateFile{candidate("1", "a.png", "image/png", 1)})

	// Nothing is old enough yet.
	assert.Equal(t, 0, m.CleanupOldSessions(time.Hour))
	assert.Equal(t, 1, m.Count())

	m.mu.Lock()
	m.sessions[st.ID].LastAccessed = time.Now().Add(-2 * time.Hour)
	m.mu.Unlock()

	assert.Equal(t, 1, m.CleanupOldSessions(time.Hour))
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, []string{"1"}, rel.ids())
}
