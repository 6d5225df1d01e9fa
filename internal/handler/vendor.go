package handler

import (
	"net/http"

	"github.com/forgo/aisle/api/internal/middleware"
	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/service"
)

// VendorHandler serves vendor listings and the registration wizard
type VendorHandler struct {
	vendorService *service.VendorService
}

// NewVendorHandler creates a new vendor handler
func NewVendorHandler(vendorService *service.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

func vendorLinks(v *model.Vendor) map[string]string {
	return map[string]string{
		"self":   "/v1/vendors/" + v.ID,
		"wizard": "/v1/vendors/me/step",
	}
}

// List handles GET /v1/vendors
func (h *VendorHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, model.DefaultVendorListLimit, model.MaxVendorListLimit)
	filters := model.VendorFilters{
		Category: r.URL.Query().Get("category"),
		City:     r.URL.Query().Get("city"),
		Limit:    limit,
		Offset:   offset,
	}

	vendors, err := h.vendorService.List(r.Context(), filters)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, vendors, pageInfo(len(vendors), limit, offset), nil)
}

// Get handles GET /v1/vendors/{vendorId}
func (h *VendorHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vendor, err := h.vendorService.Get(ctx, middleware.GetUserID(ctx), middleware.GetUserRole(ctx), recordID(r, "vendorId", "vendor"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, vendor, map[string]string{"self": "/v1/vendors/" + vendor.ID})
}

// Start handles POST /v1/vendors/me
func (h *VendorHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.VendorBusinessStep
	if !decodeBody(w, r, &req) {
		return
	}

	vendor, err := h.vendorService.Start(r.Context(), userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, vendor, vendorLinks(vendor))
}

// GetMine handles GET /v1/vendors/me
func (h *VendorHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	vendor, err := h.vendorService.GetMine(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, vendor, vendorLinks(vendor))
}

// UpdateStep handles PATCH /v1/vendors/me/step
func (h *VendorHandler) UpdateStep(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateVendorStepRequest
	if !decodeBody(w, r, &req) {
		return
	}

	vendor, err := h.vendorService.UpdateStep(r.Context(), userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, vendor, vendorLinks(vendor))
}

// Submit handles POST /v1/vendors/me/submit
func (h *VendorHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	vendor, err := h.vendorService.Submit(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, vendor, vendorLinks(vendor))
}

// UploadMedia handles POST /v1/vendors/me/media?kind=logo|portfolio
func (h *VendorHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	data, _, ok := readImageUpload(w, r)
	if !ok {
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = service.VendorMediaPortfolio
	}

	vendor, err := h.vendorService.UploadMedia(r.Context(), userID, kind, data)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, vendor, vendorLinks(vendor))
}

// RemovePortfolioItem handles DELETE /v1/vendors/me/portfolio/{index}
func (h *VendorHandler) RemovePortfolioItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}

	vendor, err := h.vendorService.RemovePortfolioItem(r.Context(), userID, index)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, vendor, vendorLinks(vendor))
}

// ListPending handles GET /v1/admin/vendors
func (h *VendorHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, model.DefaultVendorListLimit, model.MaxVendorListLimit)
	vendors, err := h.vendorService.ListPending(r.Context(), model.VendorFilters{Limit: limit, Offset: offset})
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, vendors, pageInfo(len(vendors), limit, offset), nil)
}

// Approve handles POST /v1/admin/vendors/{vendorId}/approve
func (h *VendorHandler) Approve(w http.ResponseWriter, r *http.Request) {
	vendor, err := h.vendorService.Approve(r.Context(), recordID(r, "vendorId", "vendor"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, vendor, map[string]string{"self": "/v1/vendors/" + vendor.ID})
}
