package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/forgo/aisle/api/internal/imagegen"
	"github.com/forgo/aisle/api/internal/metrics"
	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/storage"
)

// MoodboardRepository defines the interface for moodboard storage
type MoodboardRepository interface {
	Create(ctx context.Context, board *model.Moodboard) error
	GetByID(ctx context.Context, id string) (*model.Moodboard, error)
	List(ctx context.Context, ownerID string) ([]*model.Moodboard, error)
	Update(ctx context.Context, board *model.Moodboard) error
	AppendImages(ctx context.Context, id string, images []model.MoodboardImage, limit int) (*model.Moodboard, error)
	SetImages(ctx context.Context, id string, images []model.MoodboardImage) error
	Delete(ctx context.Context, id string) error
}

// ImageGenerator produces images from a text prompt
type ImageGenerator interface {
	Enabled() bool
	Generate(ctx context.Context, prompt string, n int) ([]imagegen.Image, error)
	Fetch(ctx context.Context, url string, maxBytes int64) ([]byte, error)
}

// MoodboardService manages inspiration boards
type MoodboardService struct {
	repo      MoodboardRepository
	buckets   storage.Buckets
	generator ImageGenerator
	events    *EventHub
	now       func() time.Time
}

// MoodboardServiceConfig holds configuration for the moodboard service
type MoodboardServiceConfig struct {
	MoodboardRepo MoodboardRepository
	Buckets       storage.Buckets
	Generator     ImageGenerator   // optional
	Events        *EventHub        // optional
	Clock         func() time.Time // defaults to time.Now
}

// NewMoodboardService creates a new moodboard service
func NewMoodboardService(cfg MoodboardServiceConfig) *MoodboardService {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &MoodboardService{
		repo:      cfg.MoodboardRepo,
		buckets:   cfg.Buckets,
		generator: cfg.Generator,
		events:    cfg.Events,
		now:       clock,
	}
}

// Create adds an empty board
func (s *MoodboardService) Create(ctx context.Context, ownerID string, req model.CreateMoodboardRequest) (*model.Moodboard, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	board := &model.Moodboard{
		OwnerID: ownerID,
		Title:   strings.TrimSpace(req.Title),
		Theme:   trimmedPtr(req.Theme),
	}
	if err := s.repo.Create(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

// Get returns an owned board
func (s *MoodboardService) Get(ctx context.Context, ownerID, boardID string) (*model.Moodboard, error) {
	return s.getOwned(ctx, ownerID, boardID)
}

// List returns the owner's boards
func (s *MoodboardService) List(ctx context.Context, ownerID string) ([]*model.Moodboard, error) {
	return s.repo.List(ctx, ownerID)
}

// Update renames or re-themes a board
func (s *MoodboardService) Update(ctx context.Context, ownerID, boardID string, req model.UpdateMoodboardRequest) (*model.Moodboard, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	board, err := s.getOwned(ctx, ownerID, boardID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		board.Title = strings.TrimSpace(*req.Title)
	}
	if req.Theme != nil {
		board.Theme = trimmedPtr(req.Theme)
	}

	if err := s.repo.Update(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

// Delete removes a board and the images it stored
func (s *MoodboardService) Delete(ctx context.Context, ownerID, boardID string) error {
	board, err := s.getOwned(ctx, ownerID, boardID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, boardID); err != nil {
		return err
	}
	for _, img := range board.Images {
		if img.Source != model.ImageSourceLink {
			removeObject(ctx, s.buckets, storage.BucketMoodboards, img.URL)
		}
	}
	return nil
}

// AddImage links an external image
func (s *MoodboardService) AddImage(ctx context.Context, ownerID, boardID string, req model.AddImageRequest) (*model.Moodboard, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}
	if _, err := s.getOwned(ctx, ownerID, boardID); err != nil {
		return nil, err
	}

	img := model.MoodboardImage{
		URL:     req.URL,
		Source:  model.ImageSourceLink,
		Caption: trimmedPtr(req.Caption),
		AddedOn: s.now().UTC(),
	}
	return s.append(ctx, boardID, []model.MoodboardImage{img})
}

// UploadImage stores an uploaded image on the board
func (s *MoodboardService) UploadImage(ctx context.Context, ownerID, boardID string, data []byte, caption *string) (*model.Moodboard, error) {
	if caption != nil && len(*caption) > model.MaxCaptionLength {
		return nil, fieldError("caption", "caption must be 200 characters or less")
	}

	board, err := s.getOwned(ctx, ownerID, boardID)
	if err != nil {
		return nil, err
	}
	if len(board.Images) >= model.MaxMoodboardImages {
		return nil, ErrMaxImagesReached
	}

	url, _, err := storeImage(ctx, s.buckets, storage.BucketMoodboards, ownerID, data)
	if err != nil {
		return nil, err
	}

	img := model.MoodboardImage{
		URL:     url,
		Source:  model.ImageSourceUpload,
		Caption: trimmedPtr(caption),
		AddedOn: s.now().UTC(),
	}
	updated, err := s.append(ctx, boardID, []model.MoodboardImage{img})
	if err != nil {
		removeObject(ctx, s.buckets, storage.BucketMoodboards, url)
		return nil, err
	}
	return updated, nil
}

// RemoveImage drops the image at index
func (s *MoodboardService) RemoveImage(ctx context.Context, ownerID, boardID string, index int) (*model.Moodboard, error) {
	board, err := s.getOwned(ctx, ownerID, boardID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(board.Images) {
		return nil, ErrImageIndexOutOfRange
	}

	removed := board.Images[index]
	board.Images = append(board.Images[:index:index], board.Images[index+1:]...)
	if err := s.repo.SetImages(ctx, boardID, board.Images); err != nil {
		return nil, err
	}
	if removed.Source != model.ImageSourceLink {
		removeObject(ctx, s.buckets, storage.BucketMoodboards, removed.URL)
	}
	return board, nil
}

// Generate asks the image provider for count images, copies each into the
// moodboards bucket and appends them. A copy that fails keeps the
// provider's URL.
func (s *MoodboardService) Generate(ctx context.Context, ownerID, boardID string, req model.GenerateImagesRequest) (*model.Moodboard, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}
	if s.generator == nil || !s.generator.Enabled() {
		return nil, ErrImageGenDisabled
	}

	count := req.Count
	if count == 0 {
		count = 1
	}

	board, err := s.getOwned(ctx, ownerID, boardID)
	if err != nil {
		return nil, err
	}
	if len(board.Images)+count > model.MaxMoodboardImages {
		return nil, ErrMaxImagesReached
	}

	prompt := strings.TrimSpace(req.Prompt)
	generated, err := s.generator.Generate(ctx, prompt, count)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageGeneration, err)
	}

	now := s.now().UTC()
	images := make([]model.MoodboardImage, 0, len(generated))
	var stored []string
	for _, g := range generated {
		url, copied := s.copyGenerated(ctx, ownerID, g)
		if url == "" {
			continue
		}
		if copied {
			stored = append(stored, url)
		}
		p := prompt
		images = append(images, model.MoodboardImage{
			URL:     url,
			Source:  model.ImageSourceGenerated,
			Prompt:  &p,
			AddedOn: now,
		})
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no usable images returned", ErrImageGeneration)
	}

	updated, err := s.append(ctx, boardID, images)
	if err != nil {
		for _, url := range stored {
			removeObject(ctx, s.buckets, storage.BucketMoodboards, url)
		}
		return nil, err
	}
	metrics.MoodboardImagesGenerated.Add(float64(len(images)))

	if s.events != nil {
		s.events.SendToUser(ownerID, EventImagesGenerated, map[string]interface{}{
			"moodboard_id": boardID,
			"count":        len(images),
		})
	}
	return updated, nil
}

// copyGenerated stores one provider image. It returns the URL to keep and
// whether that URL points into our bucket; an empty URL means the image is
// unusable.
func (s *MoodboardService) copyGenerated(ctx context.Context, ownerID string, img imagegen.Image) (string, bool) {
	var data []byte
	var err error
	if img.B64JSON != "" {
		data, err = storage.DecodeBase64Image(img.B64JSON)
	} else if img.URL != "" {
		data, err = s.generator.Fetch(ctx, img.URL, storage.MaxUploadBytes)
	} else {
		return "", false
	}

	if err == nil {
		var url string
		url, _, err = storeImage(ctx, s.buckets, storage.BucketMoodboards, ownerID, data)
		if err == nil {
			return url, true
		}
	}

	slog.Warn("failed to copy generated image",
		slog.String("owner_id", ownerID),
		slog.String("error", err.Error()))
	return img.URL, false
}

func (s *MoodboardService) append(ctx context.Context, boardID string, images []model.MoodboardImage) (*model.Moodboard, error) {
	board, err := s.repo.AppendImages(ctx, boardID, images, model.MaxMoodboardImages)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, ErrMaxImagesReached
	}
	return board, nil
}

func (s *MoodboardService) getOwned(ctx context.Context, ownerID, boardID string) (*model.Moodboard, error) {
	board, err := s.repo.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, ErrMoodboardNotFound
	}
	if board.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return board, nil
}
