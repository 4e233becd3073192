package model

import "time"

// Task is a single time-boxed item on today's list: either a one-time task
// or the current day's instance of a recurring template.
type Task struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Position    int64     `gorm:"index" json:"-"`
	Name        string    `json:"name"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Description string    `json:"description"`
	Completed   bool      `gorm:"default:false" json:"completed"`
	IsRecurring bool      `gorm:"default:false;index" json:"isRecurring"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TaskPatch lists the fields an update may change. Nil fields are left untouched.
type TaskPatch struct {
	Name        *string `json:"name,omitempty"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// Apply returns a copy of task with the patch applied.
func (p TaskPatch) Apply(task Task) Task {
	if p.Name != nil {
		task.Name = *p.Name
	}
	if p.StartTime != nil {
		task.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		task.EndTime = *p.EndTime
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
	return task
}

// Columns maps the patch to column updates for the SQL store.
func (p TaskPatch) Columns() map[string]interface{} {
	updates := make(map[string]interface{})
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.StartTime != nil {
		updates["start_time"] = *p.StartTime
	}
	if p.EndTime != nil {
		updates["end_time"] = *p.EndTime
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.Completed != nil {
		updates["completed"] = *p.Completed
	}
	return updates
}
