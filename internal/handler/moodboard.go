package handler

import (
	"net/http"

	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/service"
)

// MoodboardHandler serves moodboards and their images
type MoodboardHandler struct {
	moodboardService *service.MoodboardService
}

// NewMoodboardHandler creates a new moodboard handler
func NewMoodboardHandler(moodboardService *service.MoodboardService) *MoodboardHandler {
	return &MoodboardHandler{moodboardService: moodboardService}
}

func boardLinks(b *model.Moodboard) map[string]string {
	return map[string]string{
		"self":     "/v1/moodboards/" + b.ID,
		"images":   "/v1/moodboards/" + b.ID + "/images",
		"generate": "/v1/moodboards/" + b.ID + "/generate",
	}
}

// Create handles POST /v1/moodboards
func (h *MoodboardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateMoodboardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	board, err := h.moodboardService.Create(r.Context(), userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, board, boardLinks(board))
}

// List handles GET /v1/moodboards
func (h *MoodboardHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	boards, err := h.moodboardService.List(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, boards, nil, nil)
}

// Get handles GET /v1/moodboards/{boardId}
func (h *MoodboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	board, err := h.moodboardService.Get(r.Context(), userID, recordID(r, "boardId", "moodboard"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, board, boardLinks(board))
}

// Update handles PATCH /v1/moodboards/{boardId}
func (h *MoodboardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateMoodboardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	board, err := h.moodboardService.Update(r.Context(), userID, recordID(r, "boardId", "moodboard"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, board, boardLinks(board))
}

// Delete handles DELETE /v1/moodboards/{boardId}
func (h *MoodboardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.moodboardService.Delete(r.Context(), userID, recordID(r, "boardId", "moodboard")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// AddImage handles POST /v1/moodboards/{boardId}/images. A JSON body adds
// a link; a multipart body with a "file" field uploads an image.
func (h *MoodboardHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	boardID := recordID(r, "boardId", "moodboard")

	var (
		board *model.Moodboard
		err   error
	)
	if isMultipart(r) {
		data, file, ok := readImageUpload(w, r)
		if !ok {
			return
		}
		board, err = h.moodboardService.UploadImage(r.Context(), userID, boardID, data, file.Caption)
	} else {
		var req model.AddImageRequest
		if !decodeBody(w, r, &req) {
			return
		}
		board, err = h.moodboardService.AddImage(r.Context(), userID, boardID, req)
	}
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, board, boardLinks(board))
}

// RemoveImage handles DELETE /v1/moodboards/{boardId}/images/{index}
func (h *MoodboardHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	index, ok := pathIndex(w, r, "index")
	if !ok {
		return
	}

	board, err := h.moodboardService.RemoveImage(r.Context(), userID, recordID(r, "boardId", "moodboard"), index)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, board, boardLinks(board))
}

// Generate handles POST /v1/moodboards/{boardId}/generate
func (h *MoodboardHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.GenerateImagesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	board, err := h.moodboardService.Generate(r.Context(), userID, recordID(r, "boardId", "moodboard"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, board, boardLinks(board))
}
