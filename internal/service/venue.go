package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/forgo/aisle/api/internal/floorplan"
	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/storage"
)

// VenueRepository defines the interface for venue and room storage
type VenueRepository interface {
	Create(ctx context.Context, venue *model.Venue) error
	GetByID(ctx context.Context, id string) (*model.Venue, error)
	List(ctx context.Context, ownerID string) ([]*model.Venue, error)
	Update(ctx context.Context, venue *model.Venue) error
	Delete(ctx context.Context, id string) error

	CreateRoom(ctx context.Context, room *model.VenueRoom) error
	GetRoom(ctx context.Context, id string) (*model.VenueRoom, error)
	ListRooms(ctx context.Context, venueID string) ([]*model.VenueRoom, error)
	CountRooms(ctx context.Context, venueID string) (int, error)
	UpdateRoom(ctx context.Context, room *model.VenueRoom) error
	DeleteRoom(ctx context.Context, id string) error
}

// FloorPlanAnalyzer measures an uploaded floor plan
type FloorPlanAnalyzer interface {
	Enabled() bool
	Analyze(ctx context.Context, filename, contentType string, image []byte) (*floorplan.Analysis, error)
}

// VenueService manages venues, their rooms and floor plans
type VenueService struct {
	repo     VenueRepository
	buckets  storage.Buckets
	analyzer FloorPlanAnalyzer
}

// VenueServiceConfig holds configuration for the venue service
type VenueServiceConfig struct {
	VenueRepo VenueRepository
	Buckets   storage.Buckets
	Analyzer  FloorPlanAnalyzer // optional
}

// NewVenueService creates a new venue service
func NewVenueService(cfg VenueServiceConfig) *VenueService {
	return &VenueService{
		repo:     cfg.VenueRepo,
		buckets:  cfg.Buckets,
		analyzer: cfg.Analyzer,
	}
}

// Create adds a venue owned by the caller
func (s *VenueService) Create(ctx context.Context, ownerID string, req model.CreateVenueRequest) (*model.Venue, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	venue := &model.Venue{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		Address:     trimmedPtr(req.Address),
		City:        trimmedPtr(req.City),
		Capacity:    req.Capacity,
		Description: trimmedPtr(req.Description),
		ImageURL:    trimmedPtr(req.ImageURL),
	}
	if err := s.repo.Create(ctx, venue); err != nil {
		return nil, err
	}
	return venue, nil
}

// Get returns a venue; any signed-in user may read venues
func (s *VenueService) Get(ctx context.Context, venueID string) (*model.Venue, error) {
	venue, err := s.repo.GetByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, ErrVenueNotFound
	}
	return venue, nil
}

// List returns all venues, or one owner's when ownerID is set
func (s *VenueService) List(ctx context.Context, ownerID string) ([]*model.Venue, error) {
	return s.repo.List(ctx, ownerID)
}

// Update applies a partial update to an owned venue
func (s *VenueService) Update(ctx context.Context, ownerID, venueID string, req model.UpdateVenueRequest) (*model.Venue, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	venue, err := s.getOwned(ctx, ownerID, venueID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		venue.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		venue.Address = trimmedPtr(req.Address)
	}
	if req.City != nil {
		venue.City = trimmedPtr(req.City)
	}
	if req.Capacity != nil {
		venue.Capacity = *req.Capacity
	}
	if req.Description != nil {
		venue.Description = trimmedPtr(req.Description)
	}
	if req.ImageURL != nil {
		venue.ImageURL = trimmedPtr(req.ImageURL)
	}

	if err := s.repo.Update(ctx, venue); err != nil {
		return nil, err
	}
	return venue, nil
}

// Delete removes an owned venue with its rooms and tables
func (s *VenueService) Delete(ctx context.Context, ownerID, venueID string) error {
	if _, err := s.getOwned(ctx, ownerID, venueID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, venueID)
}

func (s *VenueService) getOwned(ctx context.Context, ownerID, venueID string) (*model.Venue, error) {
	venue, err := s.Get(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if venue.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return venue, nil
}

// ===== Rooms =====

// CreateRoom adds a room to an owned venue
func (s *VenueService) CreateRoom(ctx context.Context, ownerID, venueID string, req model.CreateRoomRequest) (*model.VenueRoom, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}
	if _, err := s.getOwned(ctx, ownerID, venueID); err != nil {
		return nil, err
	}

	count, err := s.repo.CountRooms(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxRoomsPerVenue {
		return nil, ErrMaxRoomsReached
	}

	room := &model.VenueRoom{
		VenueID:  venueID,
		Name:     strings.TrimSpace(req.Name),
		WidthFt:  req.WidthFt,
		LengthFt: req.LengthFt,
		Capacity: req.Capacity,
	}
	if err := s.repo.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoom returns a room
func (s *VenueService) GetRoom(ctx context.Context, roomID string) (*model.VenueRoom, error) {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// ListRooms returns a venue's rooms
func (s *VenueService) ListRooms(ctx context.Context, venueID string) ([]*model.VenueRoom, error) {
	if _, err := s.Get(ctx, venueID); err != nil {
		return nil, err
	}
	return s.repo.ListRooms(ctx, venueID)
}

// UpdateRoom applies a partial update to a room of an owned venue
func (s *VenueService) UpdateRoom(ctx context.Context, ownerID, roomID string, req model.UpdateRoomRequest) (*model.VenueRoom, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	room, err := s.getOwnedRoom(ctx, ownerID, roomID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		room.Name = strings.TrimSpace(*req.Name)
	}
	if req.WidthFt != nil {
		room.WidthFt = *req.WidthFt
	}
	if req.LengthFt != nil {
		room.LengthFt = *req.LengthFt
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.PixelsPerFoot != nil {
		ppf := *req.PixelsPerFoot
		room.PixelsPerFoot = &ppf
	}

	if err := s.repo.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// DeleteRoom removes a room with its tables
func (s *VenueService) DeleteRoom(ctx context.Context, ownerID, roomID string) error {
	room, err := s.getOwnedRoom(ctx, ownerID, roomID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteRoom(ctx, roomID); err != nil {
		return err
	}
	if room.FloorPlanURL != nil {
		removeObject(ctx, s.buckets, storage.BucketFloorPlans, *room.FloorPlanURL)
	}
	return nil
}

// UploadFloorPlan stores the image and, when an analyzer is configured,
// applies the measured dimensions and scale to the room
func (s *VenueService) UploadFloorPlan(ctx context.Context, ownerID, roomID, filename string, data []byte) (*model.FloorPlanResult, error) {
	room, err := s.getOwnedRoom(ctx, ownerID, roomID)
	if err != nil {
		return nil, err
	}

	url, contentType, err := storeImage(ctx, s.buckets, storage.BucketFloorPlans, ownerID, data)
	if err != nil {
		return nil, err
	}

	result := &model.FloorPlanResult{Room: room}
	if s.analyzer != nil && s.analyzer.Enabled() {
		analysis, err := s.analyzer.Analyze(ctx, filename, contentType, data)
		if err != nil {
			removeObject(ctx, s.buckets, storage.BucketFloorPlans, url)
			return nil, fmt.Errorf("%w: %v", ErrFloorPlanAnalysis, err)
		}
		room.WidthFt = analysis.WidthFt
		room.LengthFt = analysis.LengthFt
		ppf := analysis.PixelsPerFoot
		room.PixelsPerFoot = &ppf

		result.Analyzed = true
		result.WidthPx = analysis.WidthPx
		result.HeightPx = analysis.HeightPx
	}

	previous := room.FloorPlanURL
	room.FloorPlanURL = &url
	if err := s.repo.UpdateRoom(ctx, room); err != nil {
		removeObject(ctx, s.buckets, storage.BucketFloorPlans, url)
		return nil, err
	}
	if previous != nil && *previous != url {
		removeObject(ctx, s.buckets, storage.BucketFloorPlans, *previous)
	}
	return result, nil
}

func (s *VenueService) getOwnedRoom(ctx context.Context, ownerID, roomID string) (*model.VenueRoom, error) {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if _, err := s.getOwned(ctx, ownerID, room.VenueID); err != nil {
		return nil, err
	}
	return room, nil
}
