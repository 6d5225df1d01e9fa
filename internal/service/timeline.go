package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/forgo/aisle/api/internal/model"
)

// TimelineRepository defines the interface for task storage
type TimelineRepository interface {
	Create(ctx context.Context, task *model.TimelineTask) error
	CreateDefaults(ctx context.Context, ownerID string, tasks []*model.TimelineTask) (bool, error)
	GetByID(ctx context.Context, id string) (*model.TimelineTask, error)
	List(ctx context.Context, ownerID string, filters model.TaskFilters, now time.Time) ([]*model.TimelineTask, error)
	Count(ctx context.Context, ownerID string) (int, error)
	Update(ctx context.Context, task *model.TimelineTask) error
	Delete(ctx context.Context, id string) error
	ListNewlyOverdue(ctx context.Context, now time.Time, limit int) ([]*model.TimelineTask, error)
	MarkOverdueSent(ctx context.Context, id string) error
}

// TimelineService manages the planning checklist
type TimelineService struct {
	repo     TimelineRepository
	profiles ProfileReader
	events   *EventHub
	now      func() time.Time
}

// TimelineServiceConfig holds configuration for the timeline service
type TimelineServiceConfig struct {
	TimelineRepo TimelineRepository
	ProfileRepo  ProfileReader
	Events       *EventHub        // optional
	Clock        func() time.Time // defaults to time.Now
}

// NewTimelineService creates a new timeline service
func NewTimelineService(cfg TimelineServiceConfig) *TimelineService {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TimelineService{
		repo:     cfg.TimelineRepo,
		profiles: cfg.ProfileRepo,
		events:   cfg.Events,
		now:      clock,
	}
}

// GenerateDefault materializes the built-in checklist. It does nothing when
// the owner already has tasks, including when a concurrent call wrote them
// first. Without a wedding date the tasks are undated until Reschedule sets one.
func (s *TimelineService) GenerateDefault(ctx context.Context, ownerID string) ([]*model.TimelineTask, error) {
	count, err := s.repo.Count(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return s.repo.List(ctx, ownerID, model.TaskFilters{}, s.now())
	}

	var wedding *time.Time
	if s.profiles != nil {
		profile, err := s.profiles.GetByUser(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if profile != nil {
			wedding = profile.WeddingDate
		}
	}

	tasks := make([]*model.TimelineTask, 0, len(model.DefaultTimeline))
	for _, d := range model.DefaultTimeline {
		months := d.MonthsBefore
		task := &model.TimelineTask{
			OwnerID:      ownerID,
			Title:        d.Title,
			Category:     d.Category,
			MonthsBefore: &months,
		}
		if wedding != nil {
			due := model.DueDateFor(*wedding, months)
			task.DueDate = &due
		}
		tasks = append(tasks, task)
	}

	created, err := s.repo.CreateDefaults(ctx, ownerID, tasks)
	if err != nil {
		return nil, err
	}
	if !created {
		slog.Debug("checklist already generated", slog.String("owner_id", ownerID))
	}
	return s.repo.List(ctx, ownerID, model.TaskFilters{}, s.now())
}

// Reschedule recomputes due dates of checklist tasks after the wedding date
// changes. Tasks the couple added themselves keep their dates.
func (s *TimelineService) Reschedule(ctx context.Context, ownerID string, wedding *time.Time) error {
	tasks, err := s.repo.List(ctx, ownerID, model.TaskFilters{}, s.now())
	if err != nil {
		return err
	}

	for _, task := range tasks {
		if task.MonthsBefore == nil {
			continue
		}
		if wedding == nil {
			task.DueDate = nil
		} else {
			due := model.DueDateFor(*wedding, *task.MonthsBefore)
			task.DueDate = &due
		}
		task.OverdueSent = false
		if err := s.repo.Update(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

// List returns the owner's tasks
func (s *TimelineService) List(ctx context.Context, ownerID string, filters model.TaskFilters) ([]*model.TimelineTask, error) {
	switch filters.Status {
	case model.TaskFilterAll, model.TaskFilterUpcoming, model.TaskFilterOverdue, model.TaskFilterCompleted:
	default:
		return nil, fieldError("status", "status must be upcoming, overdue or completed")
	}
	return s.repo.List(ctx, ownerID, filters, s.now())
}

// Get returns an owned task
func (s *TimelineService) Get(ctx context.Context, ownerID, taskID string) (*model.TimelineTask, error) {
	return s.getOwned(ctx, ownerID, taskID)
}

// Create adds a task
func (s *TimelineService) Create(ctx context.Context, ownerID string, req model.CreateTaskRequest) (*model.TimelineTask, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	count, err := s.repo.Count(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxTasksPerOwner {
		return nil, ErrMaxTasksReached
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "other"
	}

	task := &model.TimelineTask{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(req.Title),
		Description: trimmedPtr(req.Description),
		Category:    category,
		DueDate:     parseOptionalDate(req.DueDate),
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update applies a partial update. Setting a due date by hand detaches the
// task from the wedding date.
func (s *TimelineService) Update(ctx context.Context, ownerID, taskID string, req model.UpdateTaskRequest) (*model.TimelineTask, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	task, err := s.getOwned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = emptyToNil(strings.TrimSpace(*req.Description))
	}
	if req.Category != nil {
		task.Category = strings.TrimSpace(*req.Category)
	}
	if req.DueDate != nil {
		task.DueDate = parseOptionalDate(req.DueDate)
		task.MonthsBefore = nil
		task.OverdueSent = false
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Complete marks a task done
func (s *TimelineService) Complete(ctx context.Context, ownerID, taskID string) (*model.TimelineTask, error) {
	task, err := s.getOwned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	if task.Completed {
		return task, nil
	}

	now := s.now().UTC()
	task.Completed = true
	task.CompletedOn = &now
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Reopen marks a task not done
func (s *TimelineService) Reopen(ctx context.Context, ownerID, taskID string) (*model.TimelineTask, error) {
	task, err := s.getOwned(ctx, ownerID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.Completed {
		return task, nil
	}

	task.Completed = false
	task.CompletedOn = nil
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task
func (s *TimelineService) Delete(ctx context.Context, ownerID, taskID string) error {
	if _, err := s.getOwned(ctx, ownerID, taskID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, taskID)
}

// ProcessOverdue notifies owners of tasks that became overdue and returns
// how many were sent. Each task is notified once until its date changes.
func (s *TimelineService) ProcessOverdue(ctx context.Context, limit int) (int, error) {
	tasks, err := s.repo.ListNewlyOverdue(ctx, s.now(), limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, task := range tasks {
		if err := s.repo.MarkOverdueSent(ctx, task.ID); err != nil {
			slog.Warn("failed to mark task overdue",
				slog.String("task_id", task.ID),
				slog.String("error", err.Error()))
			continue
		}
		if s.events != nil {
			s.events.SendToUser(task.OwnerID, EventTaskOverdue, task)
		}
		sent++
	}
	return sent, nil
}

func (s *TimelineService) getOwned(ctx context.Context, ownerID, taskID string) (*model.TimelineTask, error) {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if task.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return task, nil
}
