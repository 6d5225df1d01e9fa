package repository

import (
	"context"
	"errors"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
)

// MoodboardRepository handles moodboards and their images
type MoodboardRepository struct {
	db database.Database
}

// NewMoodboardRepository creates a new moodboard repository
func NewMoodboardRepository(db database.Database) *MoodboardRepository {
	return &MoodboardRepository{db: db}
}

// Create creates an empty board
func (r *MoodboardRepository) Create(ctx context.Context, board *model.Moodboard) error {
	query := `
		CREATE moodboard CONTENT {
			owner: type::record($owner),
			title: $title,
			theme: $theme,
			images: [],
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"owner": board.OwnerID,
		"title": board.Title,
		"theme": optional(board.Theme),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	board.ID = created.ID
	board.Images = []model.MoodboardImage{}
	board.CreatedOn = created.CreatedOn
	board.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves a board by ID
func (r *MoodboardRepository) GetByID(ctx context.Context, id string) (*model.Moodboard, error) {
	if !inTable(id, "moodboard") {
		return nil, nil
	}

	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseMoodboard(result)
}

// List returns the owner's boards, newest first
func (r *MoodboardRepository) List(ctx context.Context, ownerID string) ([]*model.Moodboard, error) {
	query := `SELECT * FROM moodboard WHERE owner = type::record($owner) ORDER BY created_on DESC`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"owner": ownerID})
	if err != nil {
		return nil, err
	}

	boards := decodeRecords[model.Moodboard](results, ownerRenames)
	for _, b := range boards {
		if b.Images == nil {
			b.Images = []model.MoodboardImage{}
		}
	}
	return boards, nil
}

// Update writes the title and theme
func (r *MoodboardRepository) Update(ctx context.Context, board *model.Moodboard) error {
	query := `
		UPDATE type::record($id) SET
			title = $title,
			theme = IF $theme IS NOT NULL THEN $theme ELSE NONE END,
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":    board.ID,
		"title": board.Title,
		"theme": optional(board.Theme),
	}
	return r.db.Execute(ctx, query, vars)
}

// AppendImages adds images when the board stays within limit images. It
// returns the updated board, or nil when the append would exceed limit.
func (r *MoodboardRepository) AppendImages(ctx context.Context, id string, images []model.MoodboardImage, limit int) (*model.Moodboard, error) {
	query := `
		UPDATE type::record($id) SET
			images = array::concat(images, $images),
			updated_on = time::now()
		WHERE array::len(images) + $count <= $max
		RETURN AFTER
	`
	vars := map[string]interface{}{
		"id":     id,
		"images": imageRows(images),
		"count":  len(images),
		"max":    limit,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseMoodboard(result)
}

// SetImages replaces the image list
func (r *MoodboardRepository) SetImages(ctx context.Context, id string, images []model.MoodboardImage) error {
	query := `UPDATE type::record($id) SET images = $images, updated_on = time::now()`
	vars := map[string]interface{}{
		"id":     id,
		"images": imageRows(images),
	}
	return r.db.Execute(ctx, query, vars)
}

// Delete removes a board
func (r *MoodboardRepository) Delete(ctx context.Context, id string) error {
	return r.db.Execute(ctx, `DELETE type::record($id)`, map[string]interface{}{"id": id})
}

func imageRows(images []model.MoodboardImage) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(images))
	for _, img := range images {
		row := map[string]interface{}{
			"url":      img.URL,
			"source":   img.Source,
			"added_on": formatTime(img.AddedOn),
		}
		if img.Caption != nil {
			row["caption"] = *img.Caption
		}
		if img.Prompt != nil {
			row["prompt"] = *img.Prompt
		}
		rows = append(rows, row)
	}
	return rows
}

func parseMoodboard(result interface{}) (*model.Moodboard, error) {
	board, _, err := decodeRecord[model.Moodboard](result, ownerRenames)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if board.Images == nil {
		board.Images = []model.MoodboardImage{}
	}
	return board, nil
}
