package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediboard/backend/internal/picker"
)

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry()

	avatar, err := r.Get("avatar")
	require.NoError(t, err)
	assert.Equal(t, picker.ModeSingle, avatar.Mode)
	assert.Equal(t, []string{"image/*"}, avatar.Constraints.Accept)
	assert.Equal(t, 1, avatar.Constraints.MaxFiles)

	docs, err := r.Get("documents")
	require.NoError(t, err)
	assert.Equal(t, picker.ModeMultiple, docs.Mode)
	assert.Empty(t, docs.Constraints.Accept)

	_, err = r.Get("nope")
	assert.Error(t, err)
}

func TestRegistry_GetIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get(" Avatar ")
	assert.NoError(t, err)
}

func TestRegistry_LoadReaderOverrides(t *testing.T) {
	r := NewRegistry()

	src := `
profiles:
  avatar:
    mode: single
    accept: ["image/png", "image/jpeg"]
    maxSizeBytes: 1048576
    maxFiles: 1
  scans:
    accept: [".pdf", ".dcm"]
    maxSizeBytes: 104857600
    maxFiles: 5
`
	require.NoError(t, r.loadReader(strings.NewReader(src)))

	avatar, err := r.Get("avatar")
	require.NoError(t, err)
	assert.Equal(t, []string{"image/png", "image/jpeg"}, avatar.Constraints.Accept)
	assert.EqualValues(t, 1048576, avatar.Constraints.MaxSizeBytes)

	// New profile without a mode defaults to multiple.
	scans, err := r.Get("scans")
	require.NoError(t, err)
	assert.Equal(t, picker.ModeMultiple, scans.Mode)
	assert.Equal(t, 5, scans.Constraints.MaxFiles)
}

func TestRegistry_RejectsUnknownMode(t *testing.T) {
	r := NewRegistry()
	err := r.loadReader(strings.NewReader("profiles:\n  broken:\n    mode: both\n"))
	assert.Error(t, err)
}

func TestRegistry_LoadFileMissingIsNoop(t *testing.T) {
	r := NewRegistry()
	assert.NoError(t, r.LoadFile("/does/not/exist.yaml"))
}
