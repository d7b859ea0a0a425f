package picker

// DragState is the drag-hover state of a control surface.
type DragState string

const (
	DragIdle   DragState = "idle"
	DragActive DragState = "active"
)

// DragTracker is the two-state drag automaton for one control:
// Idle -(enter)-> Active -(leave|drop)-> Idle. The enter transition is
// refused while the control is disabled.
type DragTracker struct {
	state    DragState
	disabled bool
}

// NewDragTracker returns a tracker in the idle state.
func NewDragTracker(disabled bool) *DragTracker {
	return &DragTracker{state: DragIdle, disabled: disabled}
}

// State returns the current drag state.
func (t *DragTracker) State() DragState {
	return t.state
}

// SetDisabled toggles the disabled guard. Disabling an active tracker
// forces it back to idle.
func (t *DragTracker) SetDisabled(disabled bool) {
	t.disabled = disabled
	if disabled {
		t.state = DragIdle
	}
}

// Enter activates the hover state. Refused while disabled.
func (t *DragTracker) Enter() DragState {
	if !t.disabled {
		t.state = DragActive
	}
	return t.state
}

// Leave returns the tracker to idle.
func (t *DragTracker) Leave() DragState {
	t.state = DragIdle
	return t.state
}

// Drop returns the tracker to idle and reports whether a submit should run.
// A drop always submits, even with an empty payload (the controller treats
// a zero-file batch as a no-op pass-through).
func (t *DragTracker) Drop() (DragState, bool) {
	submit := !t.disabled
	t.state = DragIdle
	return t.state, submit
}
