package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/handler"
	"github.com/forgo/aisle/api/internal/middleware"
	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/service"
	"github.com/forgo/aisle/api/internal/storage"
)

type routeDeps struct {
	db          database.Database
	tokens      *service.TokenService
	authLimiter *middleware.RateLimiter // nil when rate limiting is off
	media       *storage.MemoryStore    // nil unless the memory driver is used

	auth          *service.AuthService
	events        *service.EventHub
	profiles      *service.ProfileService
	vendors       *service.VendorService
	customVendors *service.CustomVendorService
	venues        *service.VenueService
	seating       *service.SeatingService
	guests        *service.GuestService
	budgets       *service.BudgetService
	timeline      *service.TimelineService
	moodboards    *service.MoodboardService
}

func registerRoutes(mux *http.ServeMux, d routeDeps) {
	authHandler := handler.NewAuthHandler(d.auth)
	eventsHandler := handler.NewEventsHandler(d.events)
	profileHandler := handler.NewProfileHandler(d.profiles)
	vendorHandler := handler.NewVendorHandler(d.vendors)
	customVendorHandler := handler.NewCustomVendorHandler(d.customVendors)
	venueHandler := handler.NewVenueHandler(d.venues)
	seatingHandler := handler.NewSeatingHandler(d.seating)
	guestHandler := handler.NewGuestHandler(d.guests)
	budgetHandler := handler.NewBudgetHandler(d.budgets)
	timelineHandler := handler.NewTimelineHandler(d.timeline)
	moodboardHandler := handler.NewMoodboardHandler(d.moodboards)

	authMiddleware := middleware.Auth(d.tokens)
	optionalAuth := middleware.OptionalAuth(d.tokens)

	// public routes, with the stricter limiter on credential endpoints
	public := func(h http.HandlerFunc) http.Handler {
		if d.authLimiter == nil {
			return h
		}
		return middleware.Chain(h, middleware.RateLimit(d.authLimiter))
	}
	// any signed-in account
	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, authMiddleware)
	}
	// signed-in account with one of roles
	withRole := func(h http.HandlerFunc, roles ...model.UserRole) http.Handler {
		return middleware.Chain(h, authMiddleware, middleware.RequireRole(roles...))
	}
	couple := func(h http.HandlerFunc) http.Handler { return withRole(h, model.UserRoleCouple) }
	vendor := func(h http.HandlerFunc) http.Handler { return withRole(h, model.UserRoleVendor) }
	admin := func(h http.HandlerFunc) http.Handler { return withRole(h, model.UserRoleAdmin) }

	// Health and metrics
	mux.HandleFunc("GET /health", handler.Health)
	mux.Handle("GET /ready", handler.Ready(d.db))
	mux.Handle("GET /metrics", promhttp.Handler())

	if d.media != nil {
		mux.Handle("GET /media/{bucket}/{key...}", d.media)
	}

	// Auth
	mux.Handle("POST /v1/auth/register", public(authHandler.Register))
	mux.Handle("POST /v1/auth/login", public(authHandler.Login))
	mux.Handle("POST /v1/auth/refresh", public(authHandler.Refresh))
	mux.Handle("POST /v1/auth/logout", authed(authHandler.Logout))
	mux.Handle("GET /v1/auth/me", authed(authHandler.Me))
	mux.Handle("GET /v1/auth/session/stream", authed(eventsHandler.SessionStream))

	// Profile
	mux.Handle("GET /v1/profile", couple(profileHandler.Get))
	mux.Handle("PATCH /v1/profile", couple(profileHandler.Update))

	// Vendor directory
	mux.Handle("GET /v1/vendors", middleware.Chain(http.HandlerFunc(vendorHandler.List), optionalAuth))
	mux.Handle("GET /v1/vendors/{vendorId}", middleware.Chain(http.HandlerFunc(vendorHandler.Get), optionalAuth))

	// Vendor onboarding wizard
	mux.Handle("POST /v1/vendors/me", vendor(vendorHandler.Start))
	mux.Handle("GET /v1/vendors/me", vendor(vendorHandler.GetMine))
	mux.Handle("PATCH /v1/vendors/me/step", vendor(vendorHandler.UpdateStep))
	mux.Handle("POST /v1/vendors/me/submit", vendor(vendorHandler.Submit))
	mux.Handle("POST /v1/vendors/me/media", vendor(vendorHandler.UploadMedia))
	mux.Handle("DELETE /v1/vendors/me/portfolio/{index}", vendor(vendorHandler.RemovePortfolioItem))

	// Admin
	mux.Handle("GET /v1/admin/vendors", admin(vendorHandler.ListPending))
	mux.Handle("POST /v1/admin/vendors/{vendorId}/approve", admin(vendorHandler.Approve))

	// Custom vendors
	mux.Handle("POST /v1/custom-vendors", couple(customVendorHandler.Create))
	mux.Handle("GET /v1/custom-vendors", couple(customVendorHandler.List))
	mux.Handle("GET /v1/custom-vendors/{vendorId}", couple(customVendorHandler.Get))
	mux.Handle("PATCH /v1/custom-vendors/{vendorId}", couple(customVendorHandler.Update))
	mux.Handle("DELETE /v1/custom-vendors/{vendorId}", couple(customVendorHandler.Delete))

	// Venues and rooms. Ownership is checked by the service.
	mux.Handle("POST /v1/venues", vendor(venueHandler.Create))
	mux.Handle("GET /v1/venues", authed(venueHandler.List))
	mux.Handle("GET /v1/venues/{venueId}", authed(venueHandler.Get))
	mux.Handle("PATCH /v1/venues/{venueId}", vendor(venueHandler.Update))
	mux.Handle("DELETE /v1/venues/{venueId}", vendor(venueHandler.Delete))
	mux.Handle("POST /v1/venues/{venueId}/rooms", vendor(venueHandler.CreateRoom))
	mux.Handle("GET /v1/venues/{venueId}/rooms", authed(venueHandler.ListRooms))
	mux.Handle("GET /v1/rooms/{roomId}", authed(venueHandler.GetRoom))
	mux.Handle("PATCH /v1/rooms/{roomId}", vendor(venueHandler.UpdateRoom))
	mux.Handle("DELETE /v1/rooms/{roomId}", vendor(venueHandler.DeleteRoom))
	mux.Handle("POST /v1/rooms/{roomId}/floor-plan", vendor(venueHandler.UploadFloorPlan))

	// Seating. Couples and admins edit any room, vendors their own.
	mux.Handle("GET /v1/table-templates", authed(seatingHandler.ListTemplates))
	mux.Handle("POST /v1/table-templates", authed(seatingHandler.CreateTemplate))
	mux.Handle("DELETE /v1/table-templates/{templateId}", authed(seatingHandler.DeleteTemplate))
	mux.Handle("GET /v1/rooms/{roomId}/tables", authed(seatingHandler.ListTables))
	mux.Handle("POST /v1/rooms/{roomId}/tables", authed(seatingHandler.PlaceTable))
	mux.Handle("GET /v1/rooms/{roomId}/layout", authed(seatingHandler.GetLayout))
	mux.Handle("PATCH /v1/tables/{tableId}", authed(seatingHandler.MoveTable))
	mux.Handle("DELETE /v1/tables/{tableId}", authed(seatingHandler.DeleteTable))
	mux.Handle("POST /v1/seats", couple(seatingHandler.AssignSeat))
	mux.Handle("DELETE /v1/guests/{guestId}/seat", couple(seatingHandler.UnassignSeat))

	// Guests. Literal segments win over {guestId}.
	mux.Handle("POST /v1/guests", couple(guestHandler.Create))
	mux.Handle("GET /v1/guests", couple(guestHandler.List))
	mux.Handle("GET /v1/guests/summary", couple(guestHandler.Summary))
	mux.Handle("POST /v1/guests/import", couple(guestHandler.Import))
	mux.Handle("GET /v1/guests/{guestId}", couple(guestHandler.Get))
	mux.Handle("PATCH /v1/guests/{guestId}", couple(guestHandler.Update))
	mux.Handle("PUT /v1/guests/{guestId}/rsvp", couple(guestHandler.UpdateRSVP))
	mux.Handle("DELETE /v1/guests/{guestId}", couple(guestHandler.Delete))

	// Budget
	mux.Handle("GET /v1/budget/categories", authed(budgetHandler.Categories))
	mux.Handle("GET /v1/budget", couple(budgetHandler.Get))
	mux.Handle("GET /v1/budget/summary", couple(budgetHandler.Summary))
	mux.Handle("PUT /v1/budget/total", couple(budgetHandler.SetTotal))
	mux.Handle("PATCH /v1/budget/allocations", couple(budgetHandler.UpdateAllocations))
	mux.Handle("POST /v1/budget/allocations/reset", couple(budgetHandler.ResetAllocations))
	mux.Handle("POST /v1/budget/expenses", couple(budgetHandler.CreateExpense))
	mux.Handle("GET /v1/budget/expenses", couple(budgetHandler.ListExpenses))
	mux.Handle("PATCH /v1/budget/expenses/{expenseId}", couple(budgetHandler.UpdateExpense))
	mux.Handle("DELETE /v1/budget/expenses/{expenseId}", couple(budgetHandler.DeleteExpense))

	// Timeline
	mux.Handle("GET /v1/timeline/tasks", couple(timelineHandler.List))
	mux.Handle("POST /v1/timeline/generate", couple(timelineHandler.Generate))
	mux.Handle("POST /v1/timeline/tasks", couple(timelineHandler.Create))
	mux.Handle("GET /v1/timeline/tasks/{taskId}", couple(timelineHandler.Get))
	mux.Handle("PATCH /v1/timeline/tasks/{taskId}", couple(timelineHandler.Update))
	mux.Handle("POST /v1/timeline/tasks/{taskId}/complete", couple(timelineHandler.Complete))
	mux.Handle("POST /v1/timeline/tasks/{taskId}/reopen", couple(timelineHandler.Reopen))
	mux.Handle("DELETE /v1/timeline/tasks/{taskId}", couple(timelineHandler.Delete))

	// Moodboards
	mux.Handle("POST /v1/moodboards", couple(moodboardHandler.Create))
	mux.Handle("GET /v1/moodboards", couple(moodboardHandler.List))
	mux.Handle("GET /v1/moodboards/{boardId}", couple(moodboardHandler.Get))
	mux.Handle("PATCH /v1/moodboards/{boardId}", couple(moodboardHandler.Update))
	mux.Handle("DELETE /v1/moodboards/{boardId}", couple(moodboardHandler.Delete))
	mux.Handle("POST /v1/moodboards/{boardId}/images", couple(moodboardHandler.AddImage))
	mux.Handle("DELETE /v1/moodboards/{boardId}/images/{index}", couple(moodboardHandler.RemoveImage))
	mux.Handle("POST /v1/moodboards/{boardId}/generate", couple(moodboardHandler.Generate))
}
