package model

import "time"

// ImageSource records how a moodboard image arrived
type ImageSource string

const (
	ImageSourceUpload    ImageSource = "upload"
	ImageSourceGenerated ImageSource = "generated"
	ImageSourceLink      ImageSource = "link"
)

// Moodboard limits
const (
	MaxMoodboardImages      = 50
	MaxMoodboardTitleLength = 100
	MaxPromptLength         = 1000
	MaxGenerateCount        = 4
	MaxCaptionLength        = 200
)

// MoodboardImage is one picture on a board
type MoodboardImage struct {
	URL     string      `json:"url"`
	Source  ImageSource `json:"source"`
	Caption *string     `json:"caption,omitempty"`
	Prompt  *string     `json:"prompt,omitempty"`
	AddedOn time.Time   `json:"added_on"`
}

// Moodboard is a collection of inspiration images
type Moodboard struct {
	ID        string           `json:"id"`
	OwnerID   string           `json:"owner_id"`
	Title     string           `json:"title"`
	Theme     *string          `json:"theme,omitempty"`
	Images    []MoodboardImage `json:"images"`
	CreatedOn time.Time        `json:"created_on"`
	UpdatedOn time.Time        `json:"updated_on"`
}

// CreateMoodboardRequest creates a board
type CreateMoodboardRequest struct {
	Title string  `json:"title"`
	Theme *string `json:"theme,omitempty"`
}

// Validate checks the board request
func (r *CreateMoodboardRequest) Validate() []FieldError {
	var errors []FieldError
	if blank(r.Title) {
		errors = append(errors, FieldError{Field: "title", Message: "title is required"})
	} else if tooLong(r.Title, MaxMoodboardTitleLength) {
		errors = append(errors, FieldError{Field: "title", Message: "title must be 100 characters or less"})
	}
	return errors
}

// UpdateMoodboardRequest renames or re-themes a board
type UpdateMoodboardRequest struct {
	Title *string `json:"title,omitempty"`
	Theme *string `json:"theme,omitempty"`
}

// Validate checks the update
func (r *UpdateMoodboardRequest) Validate() []FieldError {
	var errors []FieldError
	if r.Title != nil {
		if blank(*r.Title) {
			errors = append(errors, FieldError{Field: "title", Message: "title cannot be empty"})
		} else if tooLong(*r.Title, MaxMoodboardTitleLength) {
			errors = append(errors, FieldError{Field: "title", Message: "title must be 100 characters or less"})
		}
	}
	return errors
}

// AddImageRequest links an external image
type AddImageRequest struct {
	URL     string  `json:"url"`
	Caption *string `json:"caption,omitempty"`
}

// Validate checks the link
func (r *AddImageRequest) Validate() []FieldError {
	var errors []FieldError
	if !IsValidURL(r.URL) {
		errors = append(errors, FieldError{Field: "url", Message: "url must be an http(s) URL"})
	}
	if r.Caption != nil && tooLong(*r.Caption, MaxCaptionLength) {
		errors = append(errors, FieldError{Field: "caption", Message: "caption must be 200 characters or less"})
	}
	return errors
}

// GenerateImagesRequest asks the image model for inspiration
type GenerateImagesRequest struct {
	Prompt string `json:"prompt"`
	Count  int    `json:"count,omitempty"`
}

// Validate checks the prompt and count; a zero count means one image
func (r *GenerateImagesRequest) Validate() []FieldError {
	var errors []FieldError
	if blank(r.Prompt) {
		errors = append(errors, FieldError{Field: "prompt", Message: "prompt is required"})
	} else if tooLong(r.Prompt, MaxPromptLength) {
		errors = append(errors, FieldError{Field: "prompt", Message: "prompt must be 1000 characters or less"})
	}
	if r.Count < 0 || r.Count > MaxGenerateCount {
		errors = append(errors, FieldError{Field: "count", Message: "count must be between 1 and 4"})
	}
	return errors
}
