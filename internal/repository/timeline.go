package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
)

// TimelineRepository handles timeline tasks
type TimelineRepository struct {
	db database.Database
}

// NewTimelineRepository creates a new timeline repository
func NewTimelineRepository(db database.Database) *TimelineRepository {
	return &TimelineRepository{db: db}
}

const createTaskQuery = `
	CREATE timeline_task CONTENT {
		owner: type::record($owner),
		title: $title,
		description: $description,
		category: $category,
		due_date: IF $due_date IS NOT NULL THEN <datetime>$due_date ELSE NONE END,
		months_before: $months_before,
		completed: false,
		overdue_sent: false,
		created_on: time::now(),
		updated_on: time::now()
	}
`

// Create adds a task
func (r *TimelineRepository) Create(ctx context.Context, task *model.TimelineTask) error {
	result, err := r.db.Query(ctx, createTaskQuery, taskVars(task))
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	task.ID = created.ID
	task.CreatedOn = created.CreatedOn
	task.UpdatedOn = created.UpdatedOn
	return nil
}

const checklistExists = "checklist already exists"

// CreateDefaults adds the owner's checklist in one transaction, unless the
// owner already has tasks. It reports whether the tasks were written.
func (r *TimelineRepository) CreateDefaults(ctx context.Context, ownerID string, tasks []*model.TimelineTask) (bool, error) {
	batch := database.NewAtomicBatch().Add(`
		IF (SELECT count() AS count FROM timeline_task WHERE owner = type::record($owner) GROUP ALL)[0].count > 0 {
			THROW "`+checklistExists+`"
		}`, map[string]interface{}{"owner": ownerID})
	for _, t := range tasks {
		batch.Add(createTaskQuery, taskVars(t))
	}

	if err := batch.Execute(ctx, r.db); err != nil {
		if strings.Contains(err.Error(), checklistExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetByID retrieves a task by ID
func (r *TimelineRepository) GetByID(ctx context.Context, id string) (*model.TimelineTask, error) {
	if !inTable(id, "timeline_task") {
		return nil, nil
	}

	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	task, err := parseTask(result)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

// List returns the owner's tasks ordered by due date
func (r *TimelineRepository) List(ctx context.Context, ownerID string, filters model.TaskFilters, now time.Time) ([]*model.TimelineTask, error) {
	query := `SELECT * FROM timeline_task WHERE owner = type::record($owner)`
	vars := map[string]interface{}{"owner": ownerID}

	switch filters.Status {
	case model.TaskFilterUpcoming:
		query += ` AND completed = false AND (due_date IS NONE OR due_date >= <datetime>$now)`
		vars["now"] = formatTime(now)
	case model.TaskFilterOverdue:
		query += ` AND completed = false AND due_date IS NOT NONE AND due_date < <datetime>$now`
		vars["now"] = formatTime(now)
	case model.TaskFilterCompleted:
		query += ` AND completed = true`
	}
	if filters.Category != "" {
		query += ` AND category = $category`
		vars["category"] = filters.Category
	}
	query += ` ORDER BY due_date ASC, created_on ASC`

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return parseTasks(results), nil
}

// Count counts the owner's tasks
func (r *TimelineRepository) Count(ctx context.Context, ownerID string) (int, error) {
	query := `SELECT count() AS count FROM timeline_task WHERE owner = type::record($owner) GROUP ALL`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"owner": ownerID})
	if err != nil {
		return 0, err
	}
	return extractCount(results), nil
}

// Update writes every editable task field
func (r *TimelineRepository) Update(ctx context.Context, task *model.TimelineTask) error {
	query := `
		UPDATE type::record($id) SET
			title = $title,
			description = IF $description IS NOT NULL THEN $description ELSE NONE END,
			category = $category,
			due_date = IF $due_date IS NOT NULL THEN <datetime>$due_date ELSE NONE END,
			months_before = IF $months_before IS NOT NULL THEN $months_before ELSE NONE END,
			completed = $completed,
			completed_on = IF $completed_on IS NOT NULL THEN <datetime>$completed_on ELSE NONE END,
			overdue_sent = $overdue_sent,
			updated_on = time::now()
	`
	vars := taskVars(task)
	vars["id"] = task.ID
	vars["completed"] = task.Completed
	vars["completed_on"] = optTime(task.CompletedOn)
	vars["overdue_sent"] = task.OverdueSent
	return r.db.Execute(ctx, query, vars)
}

// Delete removes a task
func (r *TimelineRepository) Delete(ctx context.Context, id string) error {
	return r.db.Execute(ctx, `DELETE type::record($id)`, map[string]interface{}{"id": id})
}

// ListNewlyOverdue returns open, past-due tasks not yet announced
func (r *TimelineRepository) ListNewlyOverdue(ctx context.Context, now time.Time, limit int) ([]*model.TimelineTask, error) {
	query := `
		SELECT * FROM timeline_task
		WHERE completed = false
			AND overdue_sent = false
			AND due_date IS NOT NONE
			AND due_date < <datetime>$now
		ORDER BY due_date ASC
		LIMIT $limit
	`
	vars := map[string]interface{}{
		"now":   formatTime(now),
		"limit": limit,
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return parseTasks(results), nil
}

// MarkOverdueSent flags a task as announced
func (r *TimelineRepository) MarkOverdueSent(ctx context.Context, id string) error {
	return r.db.Execute(ctx, `UPDATE type::record($id) SET overdue_sent = true`, map[string]interface{}{"id": id})
}

func taskVars(t *model.TimelineTask) map[string]interface{} {
	return map[string]interface{}{
		"owner":         t.OwnerID,
		"title":         t.Title,
		"description":   optional(t.Description),
		"category":      t.Category,
		"due_date":      optTime(t.DueDate),
		"months_before": optional(t.MonthsBefore),
	}
}

func parseTask(result interface{}) (*model.TimelineTask, error) {
	task, data, err := decodeRecord[model.TimelineTask](result, ownerRenames)
	if err != nil {
		return nil, err
	}
	task.OverdueSent = getBool(data, "overdue_sent")
	return task, nil
}

func parseTasks(results []interface{}) []*model.TimelineTask {
	tasks := make([]*model.TimelineTask, 0)
	for _, res := range results {
		resp, ok := res.(map[string]interface{})
		if !ok {
			continue
		}
		rows, ok := resp["result"].([]interface{})
		if !ok {
			continue
		}
		for _, row := range rows {
			if task, err := parseTask(row); err == nil {
				tasks = append(tasks, task)
			}
		}
	}
	return tasks
}
