package model

import (
	"net/url"
	"time"
)

// VendorStatus is the lifecycle of a vendor listing
type VendorStatus string

const (
	VendorStatusDraft     VendorStatus = "draft"
	VendorStatusSubmitted VendorStatus = "submitted"
	VendorStatusApproved  VendorStatus = "approved"
)

// VendorStep names a page of the registration wizard
type VendorStep string

const (
	VendorStepBusiness  VendorStep = "business"
	VendorStepServices  VendorStep = "services"
	VendorStepContact   VendorStep = "contact"
	VendorStepPortfolio VendorStep = "portfolio"
	VendorStepSubmit    VendorStep = "submit"
)

// VendorSteps is the wizard order
var VendorSteps = []VendorStep{
	VendorStepBusiness,
	VendorStepServices,
	VendorStepContact,
	VendorStepPortfolio,
	VendorStepSubmit,
}

// Index returns the position of the step in the wizard, or -1
func (s VendorStep) Index() int {
	for i, step := range VendorSteps {
		if step == s {
			return i
		}
	}
	return -1
}

// Next returns the step after s; submit is terminal
func (s VendorStep) Next() VendorStep {
	i := s.Index()
	if i < 0 || i >= len(VendorSteps)-1 {
		return VendorStepSubmit
	}
	return VendorSteps[i+1]
}

// Vendor categories
const (
	VendorCategoryVenue       = "venue"
	VendorCategoryCatering    = "catering"
	VendorCategoryPhotography = "photography"
	VendorCategoryVideography = "videography"
	VendorCategoryFlorist     = "florist"
	VendorCategoryMusic       = "music"
	VendorCategoryAttire      = "attire"
	VendorCategoryBeauty      = "beauty"
	VendorCategoryStationery  = "stationery"
	VendorCategoryCake        = "cake"
	VendorCategoryTransport   = "transportation"
	VendorCategoryOfficiant   = "officiant"
	VendorCategoryPlanner     = "planner"
	VendorCategoryRentals     = "rentals"
	VendorCategoryOther       = "other"
)

var vendorCategories = map[string]bool{
	VendorCategoryVenue: true, VendorCategoryCatering: true, VendorCategoryPhotography: true,
	VendorCategoryVideography: true, VendorCategoryFlorist: true, VendorCategoryMusic: true,
	VendorCategoryAttire: true, VendorCategoryBeauty: true, VendorCategoryStationery: true,
	VendorCategoryCake: true, VendorCategoryTransport: true, VendorCategoryOfficiant: true,
	VendorCategoryPlanner: true, VendorCategoryRentals: true, VendorCategoryOther: true,
}

// IsValidVendorCategory reports whether c is a known category
func IsValidVendorCategory(c string) bool {
	return vendorCategories[c]
}

// Vendor limits
const (
	MaxBusinessNameLength  = 120
	MaxVendorDescLength    = 2000
	MaxPortfolioItems      = 24
	DefaultVendorListLimit = 20
	MaxVendorListLimit     = 100
)

// Vendor is a business listing built through the wizard
type Vendor struct {
	ID            string       `json:"id"`
	OwnerID       string       `json:"owner_id"`
	BusinessName  string       `json:"business_name"`
	Category      string       `json:"category"`
	Description   *string      `json:"description,omitempty"`
	City          *string      `json:"city,omitempty"`
	ServiceArea   *string      `json:"service_area,omitempty"`
	PriceMin      *int64       `json:"price_min,omitempty"` // cents
	PriceMax      *int64       `json:"price_max,omitempty"` // cents
	Phone         *string      `json:"phone,omitempty"`
	Email         *string      `json:"email,omitempty"`
	Website       *string      `json:"website,omitempty"`
	LogoURL       *string      `json:"logo_url,omitempty"`
	PortfolioURLs []string     `json:"portfolio_urls"`
	Status        VendorStatus `json:"status"`
	Step          VendorStep   `json:"step"`
	SubmittedOn   *time.Time   `json:"submitted_on,omitempty"`
	ApprovedOn    *time.Time   `json:"approved_on,omitempty"`
	CreatedOn     time.Time    `json:"created_on"`
	UpdatedOn     time.Time    `json:"updated_on"`
}

// MissingForSubmit lists required fields that are still empty
func (v *Vendor) MissingForSubmit() []FieldError {
	var errors []FieldError
	if blank(v.BusinessName) {
		errors = append(errors, FieldError{Field: "business_name", Message: "business_name is required"})
	}
	if blank(v.Category) {
		errors = append(errors, FieldError{Field: "category", Message: "category is required"})
	}
	if v.City == nil || blank(*v.City) {
		errors = append(errors, FieldError{Field: "city", Message: "city is required"})
	}
	if (v.Email == nil || blank(*v.Email)) && (v.Phone == nil || blank(*v.Phone)) {
		errors = append(errors, FieldError{Field: "email", Message: "email or phone is required"})
	}
	return errors
}

// VendorBusinessStep is the first wizard page
type VendorBusinessStep struct {
	BusinessName string  `json:"business_name"`
	Category     string  `json:"category"`
	Description  *string `json:"description,omitempty"`
}

// VendorServicesStep is the pricing and area page
type VendorServicesStep struct {
	City        *string `json:"city,omitempty"`
	ServiceArea *string `json:"service_area,omitempty"`
	PriceMin    *int64  `json:"price_min,omitempty"`
	PriceMax    *int64  `json:"price_max,omitempty"`
}

// VendorContactStep is the contact page
type VendorContactStep struct {
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Website *string `json:"website,omitempty"`
}

// VendorPortfolioStep is the media page
type VendorPortfolioStep struct {
	LogoURL       *string  `json:"logo_url,omitempty"`
	PortfolioURLs []string `json:"portfolio_urls,omitempty"`
}

// UpdateVendorStepRequest carries one wizard page; only the field matching Step is read
type UpdateVendorStepRequest struct {
	Step      VendorStep           `json:"step"`
	Business  *VendorBusinessStep  `json:"business,omitempty"`
	Services  *VendorServicesStep  `json:"services,omitempty"`
	Contact   *VendorContactStep   `json:"contact,omitempty"`
	Portfolio *VendorPortfolioStep `json:"portfolio,omitempty"`
}

// Validate checks the page payload for the named step
func (r *UpdateVendorStepRequest) Validate() []FieldError {
	var errors []FieldError

	switch r.Step {
	case VendorStepBusiness:
		if r.Business == nil {
			return []FieldError{{Field: "business", Message: "business is required for this step"}}
		}
		if blank(r.Business.BusinessName) {
			errors = append(errors, FieldError{Field: "business.business_name", Message: "business_name is required"})
		} else if tooLong(r.Business.BusinessName, MaxBusinessNameLength) {
			errors = append(errors, FieldError{Field: "business.business_name", Message: "business_name must be 120 characters or less"})
		}
		if !IsValidVendorCategory(r.Business.Category) {
			errors = append(errors, FieldError{Field: "business.category", Message: "category is not recognised"})
		}
		if r.Business.Description != nil && tooLong(*r.Business.Description, MaxVendorDescLength) {
			errors = append(errors, FieldError{Field: "business.description", Message: "description must be 2000 characters or less"})
		}
	case VendorStepServices:
		if r.Services == nil {
			return []FieldError{{Field: "services", Message: "services is required for this step"}}
		}
		if r.Services.PriceMin != nil && *r.Services.PriceMin < 0 {
			errors = append(errors, FieldError{Field: "services.price_min", Message: "price_min cannot be negative"})
		}
		if r.Services.PriceMin != nil && r.Services.PriceMax != nil && *r.Services.PriceMax < *r.Services.PriceMin {
			errors = append(errors, FieldError{Field: "services.price_max", Message: "price_max must be at least price_min"})
		}
	case VendorStepContact:
		if r.Contact == nil {
			return []FieldError{{Field: "contact", Message: "contact is required for this step"}}
		}
		if r.Contact.Email != nil && *r.Contact.Email != "" && !IsValidEmail(*r.Contact.Email) {
			errors = append(errors, FieldError{Field: "contact.email", Message: "email is not valid"})
		}
		if r.Contact.Website != nil && *r.Contact.Website != "" && !IsValidURL(*r.Contact.Website) {
			errors = append(errors, FieldError{Field: "contact.website", Message: "website must be an http(s) URL"})
		}
	case VendorStepPortfolio:
		if r.Portfolio == nil {
			return []FieldError{{Field: "portfolio", Message: "portfolio is required for this step"}}
		}
		if len(r.Portfolio.PortfolioURLs) > MaxPortfolioItems {
			errors = append(errors, FieldError{Field: "portfolio.portfolio_urls", Message: "at most 24 portfolio items"})
		}
		for _, u := range r.Portfolio.PortfolioURLs {
			if !IsValidURL(u) {
				errors = append(errors, FieldError{Field: "portfolio.portfolio_urls", Message: "portfolio urls must be http(s) URLs"})
				break
			}
		}
	default:
		errors = append(errors, FieldError{Field: "step", Message: "step must be business, services, contact or portfolio"})
	}

	return errors
}

// VendorFilters narrows the public listing
type VendorFilters struct {
	Category string
	City     string
	Limit    int
	Offset   int
}

// IsValidURL reports whether s is an absolute http or https URL
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
