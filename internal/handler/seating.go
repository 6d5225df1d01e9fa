package handler

import (
	"net/http"

	"github.com/forgo/aisle/api/internal/middleware"
	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/service"
)

// SeatingHandler serves table templates, table placement, layouts and
// seat assignment
type SeatingHandler struct {
	seatingService *service.SeatingService
}

// NewSeatingHandler creates a new seating handler
func NewSeatingHandler(seatingService *service.SeatingService) *SeatingHandler {
	return &SeatingHandler{seatingService: seatingService}
}

func editorFrom(r *http.Request) service.Editor {
	return service.Editor{
		UserID: middleware.GetUserID(r.Context()),
		Role:   middleware.GetUserRole(r.Context()),
	}
}

// ===== Templates =====

// ListTemplates handles GET /v1/table-templates
func (h *SeatingHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	templates, err := h.seatingService.ListTemplates(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, templates, nil, nil)
}

// CreateTemplate handles POST /v1/table-templates
func (h *SeatingHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateTemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t, err := h.seatingService.CreateTemplate(r.Context(), userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, t, map[string]string{"collection": "/v1/table-templates"})
}

// DeleteTemplate handles DELETE /v1/table-templates/{templateId}
func (h *SeatingHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.seatingService.DeleteTemplate(r.Context(), userID, recordID(r, "templateId", "table_template")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// ===== Tables =====

// ListTables handles GET /v1/rooms/{roomId}/tables
func (h *SeatingHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.seatingService.ListTables(r.Context(), recordID(r, "roomId", "venue_room"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, tables, nil, nil)
}

// PlaceTable handles POST /v1/rooms/{roomId}/tables
func (h *SeatingHandler) PlaceTable(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req model.PlaceTableRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.TemplateID = qualify(req.TemplateID, "table_template")

	roomID := recordID(r, "roomId", "venue_room")
	table, err := h.seatingService.PlaceTable(r.Context(), editorFrom(r), roomID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, table, map[string]string{
		"self":   "/v1/tables/" + table.ID,
		"layout": "/v1/rooms/" + roomID + "/layout",
	})
}

// MoveTable handles PATCH /v1/tables/{tableId}
func (h *SeatingHandler) MoveTable(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req model.MoveTableRequest
	if !decodeBody(w, r, &req) {
		return
	}

	table, err := h.seatingService.MoveTable(r.Context(), editorFrom(r), recordID(r, "tableId", "table_instance"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, table, nil)
}

// DeleteTable handles DELETE /v1/tables/{tableId}
func (h *SeatingHandler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	if err := h.seatingService.DeleteTable(r.Context(), editorFrom(r), recordID(r, "tableId", "table_instance")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// ===== Layout and seats =====

// GetLayout handles GET /v1/rooms/{roomId}/layout
func (h *SeatingHandler) GetLayout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	layout, err := h.seatingService.GetLayout(r.Context(), userID, recordID(r, "roomId", "venue_room"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, layout, nil)
}

// AssignSeat handles POST /v1/seats
func (h *SeatingHandler) AssignSeat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.AssignSeatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.GuestID = qualify(req.GuestID, "guest")
	req.TableID = qualify(req.TableID, "table_instance")

	guest, err := h.seatingService.AssignSeat(r.Context(), userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, guest, nil)
}

// UnassignSeat handles DELETE /v1/guests/{guestId}/seat
func (h *SeatingHandler) UnassignSeat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	guest, err := h.seatingService.UnassignSeat(r.Context(), userID, recordID(r, "guestId", "guest"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, guest, nil)
}
