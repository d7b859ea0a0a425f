package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDragTracker_EnterLeave(t *testing.T) {
	tr := NewDragTracker(false)
	assert.Equal(t, DragIdle, tr.State())

	assert.Equal(t, DragActive, tr.Enter())
	assert.Equal(t, DragIdle, tr.Leave())
}

func TestDragTracker_DropReturnsToIdleAndSubmits(t *testing.T) {
	tr := NewDragTracker(false)
	tr.Enter()

	state, submit := tr.Drop()
	assert.Equal(t, DragIdle, state)
	assert.True(t, submit)
}

func TestDragTracker_DisabledRefusesEnter(t *testing.T) {
	tr := NewDragTracker(true)

	assert.Equal(t, DragIdle, tr.Enter())

	state, submit := tr.Drop()
	assert.Equal(t, DragIdle, state)
	assert.False(t, submit)
}

func TestDragTracker_DisablingForcesIdle(t *testing.T) {
	tr := NewDragTracker(false)
	tr.Enter()

	tr.SetDisabled(true)
	assert.Equal(t, DragIdle, tr.State())

	tr.SetDisabled(false)
	assert.Equal(t, DragActive, tr.Enter())
}
