package handler

import (
	"net/http"

	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/service"
)

// CustomVendorHandler serves the couple's personal vendor shortlist
type CustomVendorHandler struct {
	customVendorService *service.CustomVendorService
}

// NewCustomVendorHandler creates a new custom vendor handler
func NewCustomVendorHandler(customVendorService *service.CustomVendorService) *CustomVendorHandler {
	return &CustomVendorHandler{customVendorService: customVendorService}
}

// Create handles POST /v1/custom-vendors
func (h *CustomVendorHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateCustomVendorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cv, err := h.customVendorService.Create(r.Context(), userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, cv, map[string]string{"self": "/v1/custom-vendors/" + cv.ID})
}

// List handles GET /v1/custom-vendors?category=&status=
func (h *CustomVendorHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	list, err := h.customVendorService.List(r.Context(), userID, model.CustomVendorFilters{
		Category: r.URL.Query().Get("category"),
		Status:   r.URL.Query().Get("status"),
	})
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, list, nil, nil)
}

// Get handles GET /v1/custom-vendors/{vendorId}
func (h *CustomVendorHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	cv, err := h.customVendorService.Get(r.Context(), userID, recordID(r, "vendorId", "custom_vendor"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, cv, nil)
}

// Update handles PATCH /v1/custom-vendors/{vendorId}
func (h *CustomVendorHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateCustomVendorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cv, err := h.customVendorService.Update(r.Context(), userID, recordID(r, "vendorId", "custom_vendor"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, cv, nil)
}

// Delete handles DELETE /v1/custom-vendors/{vendorId}
func (h *CustomVendorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.customVendorService.Delete(r.Context(), userID, recordID(r, "vendorId", "custom_vendor")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
