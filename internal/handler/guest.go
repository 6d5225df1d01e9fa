package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/service"
)

// GuestHandler serves the guest list, RSVPs and CSV import
type GuestHandler struct {
	guestService *service.GuestService
}

// NewGuestHandler creates a new guest handler
func NewGuestHandler(guestService *service.GuestService) *GuestHandler {
	return &GuestHandler{guestService: guestService}
}

func guestLinks(g *model.Guest) map[string]string {
	return map[string]string{
		"self": "/v1/guests/" + g.ID,
		"rsvp": "/v1/guests/" + g.ID + "/rsvp",
	}
}

// Create handles POST /v1/guests
func (h *GuestHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateGuestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	guest, err := h.guestService.Create(r.Context(), userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, guest, guestLinks(guest))
}

// List handles GET /v1/guests?rsvp_status=&side=&group=&q=&seated=&limit=&offset=
func (h *GuestHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	limit, offset := pagination(r, model.DefaultGuestLimit, model.MaxGuestLimit)
	filters := model.GuestFilters{
		RSVPStatus: q.Get("rsvp_status"),
		Side:       q.Get("side"),
		GroupName:  q.Get("group"),
		Search:     q.Get("q"),
		Limit:      limit,
		Offset:     offset,
	}
	if s := q.Get("seated"); s != "" {
		seated, err := strconv.ParseBool(s)
		if err != nil {
			WriteError(w, model.NewBadRequestError("seated must be true or false"))
			return
		}
		filters.Seated = &seated
	}

	guests, err := h.guestService.List(r.Context(), userID, filters)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, guests, pageInfo(len(guests), limit, offset), map[string]string{
		"summary": "/v1/guests/summary",
		"import":  "/v1/guests/import",
	})
}

// Get handles GET /v1/guests/{guestId}
func (h *GuestHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	guest, err := h.guestService.Get(r.Context(), userID, recordID(r, "guestId", "guest"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, guest, guestLinks(guest))
}

// Update handles PATCH /v1/guests/{guestId}
func (h *GuestHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateGuestRequest
	if !decodeBody(w, r, &req) {
		return
	}

	guest, err := h.guestService.Update(r.Context(), userID, recordID(r, "guestId", "guest"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, guest, guestLinks(guest))
}

// UpdateRSVP handles PUT /v1/guests/{guestId}/rsvp
func (h *GuestHandler) UpdateRSVP(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateRSVPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	guest, err := h.guestService.UpdateRSVP(r.Context(), userID, recordID(r, "guestId", "guest"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, guest, guestLinks(guest))
}

// Delete handles DELETE /v1/guests/{guestId}
func (h *GuestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.guestService.Delete(r.Context(), userID, recordID(r, "guestId", "guest")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Import handles POST /v1/guests/import. The CSV may be sent as a
// multipart "file" field or as a raw text/csv body.
func (h *GuestHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var data []byte
	if isMultipart(r) {
		data, _, ok = readUpload(w, r, "file", model.MaxGuestImportBytes)
		if !ok {
			return
		}
	} else {
		body, err := io.ReadAll(io.LimitReader(r.Body, model.MaxGuestImportBytes+1))
		if err != nil {
			WriteError(w, model.NewBadRequestError("could not read request body"))
			return
		}
		data = body
	}

	result, err := h.guestService.ImportCSV(r.Context(), userID, data)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	status := http.StatusCreated
	if result.Created == 0 {
		status = http.StatusOK
	}
	WriteData(w, status, result, map[string]string{"guests": "/v1/guests"})
}

// Summary handles GET /v1/guests/summary
func (h *GuestHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.guestService.Summary(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, summary, map[string]string{"guests": "/v1/guests"})
}
