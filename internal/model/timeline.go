package model

import "time"

// TimelineTask is a checklist item with a due date
type TimelineTask struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	Category     string     `json:"category"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	MonthsBefore *int       `json:"months_before,omitempty"`
	Completed    bool       `json:"completed"`
	CompletedOn  *time.Time `json:"completed_on,omitempty"`
	OverdueSent  bool       `json:"-"`
	CreatedOn    time.Time  `json:"created_on"`
	UpdatedOn    time.Time  `json:"updated_on"`
}

// IsOverdue reports whether an open task is past its due date
func (t *TimelineTask) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// DefaultTask is an entry of the built-in checklist
type DefaultTask struct {
	Title        string
	Category     string
	MonthsBefore int
}

// DefaultTimeline is the built-in checklist, keyed by months before the wedding
var DefaultTimeline = []DefaultTask{
	{Title: "Set the overall budget", Category: "budget", MonthsBefore: 12},
	{Title: "Draft the guest list", Category: "guests", MonthsBefore: 12},
	{Title: "Book the ceremony and reception venue", Category: "venue", MonthsBefore: 12},
	{Title: "Book the photographer", Category: "photography", MonthsBefore: 10},
	{Title: "Book the caterer", Category: "catering", MonthsBefore: 10},
	{Title: "Send save-the-dates", Category: "stationery", MonthsBefore: 9},
	{Title: "Book music or entertainment", Category: "music", MonthsBefore: 9},
	{Title: "Order invitations", Category: "stationery", MonthsBefore: 6},
	{Title: "Book the florist", Category: "flowers", MonthsBefore: 6},
	{Title: "Schedule attire fittings", Category: "attire", MonthsBefore: 4},
	{Title: "Arrange transportation", Category: "transportation", MonthsBefore: 4},
	{Title: "Send invitations", Category: "stationery", MonthsBefore: 2},
	{Title: "Confirm final headcount", Category: "guests", MonthsBefore: 1},
	{Title: "Finish the seating chart", Category: "guests", MonthsBefore: 1},
	{Title: "Confirm all vendors", Category: "vendors", MonthsBefore: 0},
}

// DueDateFor subtracts monthsBefore calendar months from the wedding date.
// The day is clamped to the end of the target month, so March 31 less one
// month is the last day of February.
func DueDateFor(wedding time.Time, monthsBefore int) time.Time {
	y, m, d := wedding.Date()
	first := time.Date(y, m-time.Month(monthsBefore), 1,
		wedding.Hour(), wedding.Minute(), wedding.Second(), wedding.Nanosecond(), wedding.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// Timeline limits
const (
	MaxTaskTitleLength = 200
	MaxTasksPerOwner   = 500
)

// CreateTaskRequest adds a task
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

// Validate checks the task
func (r *CreateTaskRequest) Validate() []FieldError {
	var errors []FieldError

	if blank(r.Title) {
		errors = append(errors, FieldError{Field: "title", Message: "title is required"})
	} else if tooLong(r.Title, MaxTaskTitleLength) {
		errors = append(errors, FieldError{Field: "title", Message: "title must be 200 characters or less"})
	}
	if r.DueDate != nil && *r.DueDate != "" {
		if _, err := ParseDate(*r.DueDate); err != nil {
			errors = append(errors, FieldError{Field: "due_date", Message: "due_date must be YYYY-MM-DD"})
		}
	}

	return errors
}

// UpdateTaskRequest applies a partial update
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

// Validate checks the update
func (r *UpdateTaskRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Title != nil {
		if blank(*r.Title) {
			errors = append(errors, FieldError{Field: "title", Message: "title cannot be empty"})
		} else if tooLong(*r.Title, MaxTaskTitleLength) {
			errors = append(errors, FieldError{Field: "title", Message: "title must be 200 characters or less"})
		}
	}
	if r.DueDate != nil && *r.DueDate != "" {
		if _, err := ParseDate(*r.DueDate); err != nil {
			errors = append(errors, FieldError{Field: "due_date", Message: "due_date must be YYYY-MM-DD"})
		}
	}

	return errors
}

// Task list filters
const (
	TaskFilterAll       = ""
	TaskFilterUpcoming  = "upcoming"
	TaskFilterOverdue   = "overdue"
	TaskFilterCompleted = "completed"
)

// TaskFilters narrows the task list
type TaskFilters struct {
	Status   string
	Category string
}
