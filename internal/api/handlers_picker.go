// handlers_picker.go - Picker session handlers: the HTTP adapter between the
// platform file-selection surface and the upload-input controller.
package api

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mediboard/backend/internal/models"
	"github.com/mediboard/backend/internal/picker"
	"github.com/mediboard/backend/internal/profile"
	"github.com/mediboard/backend/internal/session"
	"github.com/mediboard/backend/internal/stats"
	"github.com/mediboard/backend/internal/storage"
)

// PickerHandlerImpl implements the PickerHandler interface
type PickerHandlerImpl struct {
	store          storage.Store
	sessions       *session.Manager
	profiles       *profile.Registry
	events         *stats.EventStore
	hub            *Hub
	defaultProfile string
}

// NewPickerHandler creates a new picker handler instance
func NewPickerHandler(store storage.Store, sessions *session.Manager, profiles *profile.Registry, events *stats.EventStore, hub *Hub, defaultProfile string) PickerHandler {
	return &PickerHandlerImpl{
		store:          store,
		sessions:       sessions,
		profiles:       profiles,
		events:         events,
		hub:            hub,
		defaultProfile: defaultProfile,
	}
}

// HandleCreatePicker registers a new picker session. The request may name a
// profile and override any of its fields; absent everything, the configured
// default profile applies.
func (h *PickerHandlerImpl) HandleCreatePicker(c echo.Context) error {
	var req models.PickerConfig
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	name := req.Profile
	if name == "" {
		name = h.defaultProfile
	}
	prof, err := h.profiles.Get(name)
	if err != nil {
		if req.Profile != "" {
			return NewBadRequestError(fmt.Sprintf("unknown profile: %s", req.Profile), nil)
		}
		// Default profile missing from the registry: start from scratch.
		prof = profile.Profile{Name: "", Mode: picker.ModeMultiple}
	}

	mode := prof.Mode
	constraints := prof.Constraints
	if req.Multiple != nil {
		if *req.Multiple {
			mode = picker.ModeMultiple
		} else {
			mode = picker.ModeSingle
		}
	}
	if req.Accept != nil {
		constraints.Accept = req.Accept
	}
	if req.MaxSize > 0 {
		constraints.MaxSizeBytes = req.MaxSize
	}
	if req.MaxFiles > 0 {
		constraints.MaxFiles = req.MaxFiles
	}

	st, err := h.sessions.Create(prof.Name, mode, constraints, req.Disabled)
	if err != nil {
		if apiErr := mapDomainError(err, "", 0); apiErr != nil {
			return apiErr
		}
		return NewInternalError("failed to create picker", err)
	}

	return c.JSON(http.StatusCreated, h.viewOf(st.ID))
}

// HandleGetPicker returns the current state of a picker session
func (h *PickerHandlerImpl) HandleGetPicker(c echo.Context) error {
	id := c.Param("id")
	st, err := h.sessions.Get(id)
	if err != nil {
		return NewNotFoundError("picker", id)
	}
	return c.JSON(http.StatusOK, toView(st))
}

// HandleDeletePicker tears a picker session down, releasing its files
func (h *PickerHandlerImpl) HandleDeletePicker(c echo.Context) error {
	id := c.Param("id")
	if err := h.sessions.Delete(id); err != nil {
		return NewNotFoundError("picker", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSubmitBatch accepts a multipart batch (field "files"), validates it
// against the picker's constraint set and merges accepted files into the
// selection. Accepted content is persisted; the response carries the full
// replacement selection plus the human-readable error list.
func (h *PickerHandlerImpl) HandleSubmitBatch(c echo.Context) error {
	id := c.Param("id")

	st, err := h.sessions.Get(id)
	if err != nil {
		return NewNotFoundError("picker", id)
	}
	if st.Disabled {
		return NewDisabledError(id)
	}

	headers := batchHeaders(c)
	if len(headers) == 0 {
		// A drop with no files is a pass-through: no errors, no change.
		return c.JSON(http.StatusOK, models.SubmitResult{Selection: st.Selection})
	}

	attempted := make([]picker.CandidateFile, len(headers))
	byID := make(map[string]*multipart.FileHeader, len(headers))
	for i, hdr := range headers {
		cand := picker.CandidateFile{
			ID:        uuid.New().String(),
			Name:      hdr.Filename,
			MimeType:  hdr.Header.Get("Content-Type"),
			SizeBytes: hdr.Size,
		}
		attempted[i] = cand
		byID[cand.ID] = hdr
	}

	out, err := h.sessions.Submit(id, attempted)
	if err != nil {
		if apiErr := mapDomainError(err, id, 0); apiErr != nil {
			return apiErr
		}
		return NewInternalError("failed to submit batch", err)
	}

	var saveErr error
	for _, f := range out.Accepted {
		hdr := byID[f.ID]
		src, err := hdr.Open()
		if err != nil {
			saveErr = err
			break
		}
		_, err = h.store.SaveAs(f.ID, f.Name, f.MimeType, src)
		src.Close()
		if err != nil {
			saveErr = err
			break
		}
	}
	if saveErr != nil {
		// Back the whole batch out: the selection must never reference
		// content that was not persisted, and no notification fires.
		ids := make([]string, len(out.Accepted))
		for i, f := range out.Accepted {
			ids[i] = f.ID
		}
		_ = h.sessions.Discard(id, ids)
		return NewInternalError("failed to save file", saveErr)
	}

	if h.events != nil {
		h.events.RecordOutcome(id, st.Profile, out)
	}
	if out.Changed {
		h.hub.BroadcastSelectionChanged(id, out.Selection)
	} else if len(out.Errors) > 0 {
		h.hub.BroadcastErrors(id, out.Errors)
	}

	return c.JSON(http.StatusOK, models.SubmitResult{
		Selection: out.Selection,
		Errors:    out.Errors,
		Changed:   out.Changed,
	})
}

// HandleRemoveAt removes the selection element at the given index
func (h *PickerHandlerImpl) HandleRemoveAt(c echo.Context) error {
	id := c.Param("id")
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return NewValidationError("index")
	}

	sel, _, err := h.sessions.RemoveAt(id, index)
	if err != nil {
		if apiErr := mapDomainError(err, id, index); apiErr != nil {
			return apiErr
		}
		return NewInternalError("failed to remove file", err)
	}

	h.hub.BroadcastSelectionChanged(id, sel)

	return c.JSON(http.StatusOK, models.SubmitResult{Selection: sel, Changed: true})
}

type dragEventRequest struct {
	Event string `json:"event"`
}

// HandleDragEvent drives the picker's drag automaton. The drop transition
// reports whether the client should follow up with a batch submission.
func (h *PickerHandlerImpl) HandleDragEvent(c echo.Context) error {
	id := c.Param("id")

	var req dragEventRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	var (
		state  picker.DragState
		submit bool
		err    error
	)
	switch req.Event {
	case "enter":
		state, err = h.sessions.DragEnter(id)
	case "leave":
		state, err = h.sessions.DragLeave(id)
	case "drop":
		state, submit, err = h.sessions.Drop(id)
	default:
		return NewValidationError("event")
	}
	if err != nil {
		return NewNotFoundError("picker", id)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"dragState": state,
		"submit":    submit,
	})
}

type setDisabledRequest struct {
	Disabled bool `json:"disabled"`
}

// HandleSetDisabled toggles the disabled flag of a picker session
func (h *PickerHandlerImpl) HandleSetDisabled(c echo.Context) error {
	id := c.Param("id")

	var req setDisabledRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	if err := h.sessions.SetDisabled(id, req.Disabled); err != nil {
		return NewNotFoundError("picker", id)
	}

	return c.JSON(http.StatusOK, h.viewOf(id))
}

// HandleSelectionMsgpack returns the selection as msgpack for clients that
// poll frequently
func (h *PickerHandlerImpl) HandleSelectionMsgpack(c echo.Context) error {
	id := c.Param("id")
	st, err := h.sessions.Get(id)
	if err != nil {
		return NewNotFoundError("picker", id)
	}

	data, err := msgpack.Marshal(st.Selection)
	if err != nil {
		return NewInternalError("failed to encode selection", err)
	}

	return c.Blob(http.StatusOK, "application/x-msgpack", data)
}

func (h *PickerHandlerImpl) viewOf(id string) *models.PickerView {
	st, err := h.sessions.Get(id)
	if err != nil {
		return nil
	}
	return toView(st)
}

func toView(st session.State) *models.PickerView {
	return &models.PickerView{
		ID:          st.ID,
		Profile:     st.Profile,
		Mode:        st.Mode,
		Constraints: st.Constraints,
		Disabled:    st.Disabled,
		Selection:   st.Selection,
		LastErrors:  st.LastErrors,
		DragState:   st.Drag.State(),
		CreatedAt:   st.CreatedAt,
	}
}

// batchHeaders pulls the attempted batch out of the multipart form. A
// request without a parseable form or "files" field is a zero-file batch.
func batchHeaders(c echo.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File["files"]
}
