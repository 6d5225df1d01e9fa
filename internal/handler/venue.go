package handler

import (
	"net/http"

	"github.com/forgo/aisle/api/internal/middleware"
	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/service"
)

// VenueHandler serves venues, their rooms and floor plans
type VenueHandler struct {
	venueService *service.VenueService
}

// NewVenueHandler creates a new venue handler
func NewVenueHandler(venueService *service.VenueService) *VenueHandler {
	return &VenueHandler{venueService: venueService}
}

func venueLinks(v *model.Venue) map[string]string {
	return map[string]string{
		"self":  "/v1/venues/" + v.ID,
		"rooms": "/v1/venues/" + v.ID + "/rooms",
	}
}

func roomLinks(room *model.VenueRoom) map[string]string {
	return map[string]string{
		"self":       "/v1/rooms/" + room.ID,
		"venue":      "/v1/venues/" + room.VenueID,
		"layout":     "/v1/rooms/" + room.ID + "/layout",
		"floor_plan": "/v1/rooms/" + room.ID + "/floor-plan",
	}
}

// Create handles POST /v1/venues
func (h *VenueHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateVenueRequest
	if !decodeBody(w, r, &req) {
		return
	}

	venue, err := h.venueService.Create(r.Context(), userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, venue, venueLinks(venue))
}

// List handles GET /v1/venues. Vendors see their own venues, everyone else
// browses the full directory.
func (h *VenueHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	owner := ""
	if middleware.GetUserRole(r.Context()) == model.UserRoleVendor {
		owner = userID
	}

	venues, err := h.venueService.List(r.Context(), owner)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, venues, nil, nil)
}

// Get handles GET /v1/venues/{venueId}
func (h *VenueHandler) Get(w http.ResponseWriter, r *http.Request) {
	venue, err := h.venueService.Get(r.Context(), recordID(r, "venueId", "venue"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, venue, venueLinks(venue))
}

// Update handles PATCH /v1/venues/{venueId}
func (h *VenueHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateVenueRequest
	if !decodeBody(w, r, &req) {
		return
	}

	venue, err := h.venueService.Update(r.Context(), userID, recordID(r, "venueId", "venue"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, venue, venueLinks(venue))
}

// Delete handles DELETE /v1/venues/{venueId}
func (h *VenueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.venueService.Delete(r.Context(), userID, recordID(r, "venueId", "venue")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// CreateRoom handles POST /v1/venues/{venueId}/rooms
func (h *VenueHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateRoomRequest
	if !decodeBody(w, r, &req) {
		return
	}

	room, err := h.venueService.CreateRoom(r.Context(), userID, recordID(r, "venueId", "venue"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, room, roomLinks(room))
}

// ListRooms handles GET /v1/venues/{venueId}/rooms
func (h *VenueHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.venueService.ListRooms(r.Context(), recordID(r, "venueId", "venue"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, rooms, nil, nil)
}

// GetRoom handles GET /v1/rooms/{roomId}
func (h *VenueHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.venueService.GetRoom(r.Context(), recordID(r, "roomId", "venue_room"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, room, roomLinks(room))
}

// UpdateRoom handles PATCH /v1/rooms/{roomId}
func (h *VenueHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateRoomRequest
	if !decodeBody(w, r, &req) {
		return
	}

	room, err := h.venueService.UpdateRoom(r.Context(), userID, recordID(r, "roomId", "venue_room"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, room, roomLinks(room))
}

// DeleteRoom handles DELETE /v1/rooms/{roomId}
func (h *VenueHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.venueService.DeleteRoom(r.Context(), userID, recordID(r, "roomId", "venue_room")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// UploadFloorPlan handles POST /v1/rooms/{roomId}/floor-plan (multipart "file")
func (h *VenueHandler) UploadFloorPlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	data, file, ok := readImageUpload(w, r)
	if !ok {
		return
	}

	result, err := h.venueService.UploadFloorPlan(r.Context(), userID, recordID(r, "roomId", "venue_room"), file.Name, data)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result, roomLinks(result.Room))
}
