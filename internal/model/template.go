package model

import "time"

// Template is the durable definition of a recurring task. Name is its identity:
// no two templates share a name. Completion lives only on materialized instances.
type Template struct {
	Name        string    `gorm:"primaryKey" json:"name" yaml:"name"`
	Position    int64     `gorm:"index" json:"-" yaml:"-"`
	StartTime   string    `json:"startTime" yaml:"start"`
	EndTime     string    `json:"endTime" yaml:"end"`
	Description string    `json:"description" yaml:"description"`
	CreatedAt   time.Time `json:"createdAt" yaml:"-"`
}

// Instance copies the template into a fresh, uncompleted task.
func (t Template) Instance(id string, now time.Time) Task {
	return Task{
		ID:          id,
		Name:        t.Name,
		StartTime:   t.StartTime,
		EndTime:     t.EndTime,
		Description: t.Description,
		Completed:   false,
		IsRecurring: true,
		CreatedAt:   now,
	}
}

// TemplateFromTask extracts the recurring definition carried by a task.
func TemplateFromTask(task Task) Template {
	return Template{
		Name:        task.Name,
		StartTime:   task.StartTime,
		EndTime:     task.EndTime,
		Description: task.Description,
	}
}
