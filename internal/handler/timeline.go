package handler

import (
	"net/http"

	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/service"
)

// TimelineHandler serves the planning checklist
type TimelineHandler struct {
	timelineService *service.TimelineService
}

// NewTimelineHandler creates a new timeline handler
func NewTimelineHandler(timelineService *service.TimelineService) *TimelineHandler {
	return &TimelineHandler{timelineService: timelineService}
}

func taskLinks(t *model.TimelineTask) map[string]string {
	return map[string]string{
		"self":     "/v1/timeline/tasks/" + t.ID,
		"complete": "/v1/timeline/tasks/" + t.ID + "/complete",
	}
}

// List handles GET /v1/timeline/tasks?status=upcoming|overdue|completed&category=
func (h *TimelineHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.timelineService.List(r.Context(), userID, model.TaskFilters{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, tasks, nil, map[string]string{"generate": "/v1/timeline/generate"})
}

// Generate handles POST /v1/timeline/generate
func (h *TimelineHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.timelineService.GenerateDefault(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, tasks, nil, nil)
}

// Create handles POST /v1/timeline/tasks
func (h *TimelineHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	task, err := h.timelineService.Create(r.Context(), userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, task, taskLinks(task))
}

// Get handles GET /v1/timeline/tasks/{taskId}
func (h *TimelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	task, err := h.timelineService.Get(r.Context(), userID, recordID(r, "taskId", "timeline_task"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, task, taskLinks(task))
}

// Update handles PATCH /v1/timeline/tasks/{taskId}
func (h *TimelineHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	task, err := h.timelineService.Update(r.Context(), userID, recordID(r, "taskId", "timeline_task"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, task, taskLinks(task))
}

// Complete handles POST /v1/timeline/tasks/{taskId}/complete
func (h *TimelineHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.setDone(w, r, true)
}

// Reopen handles POST /v1/timeline/tasks/{taskId}/reopen
func (h *TimelineHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	h.setDone(w, r, false)
}

func (h *TimelineHandler) setDone(w http.ResponseWriter, r *http.Request, done bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	taskID := recordID(r, "taskId", "timeline_task")
	var (
		task *model.TimelineTask
		err  error
	)
	if done {
		task, err = h.timelineService.Complete(r.Context(), userID, taskID)
	} else {
		task, err = h.timelineService.Reopen(r.Context(), userID, taskID)
	}
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, task, taskLinks(task))
}

// Delete handles DELETE /v1/timeline/tasks/{taskId}
func (h *TimelineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.timelineService.Delete(r.Context(), userID, recordID(r, "taskId", "timeline_task")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
