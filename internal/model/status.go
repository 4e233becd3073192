package model

// Status is the live classification of a task relative to the current time.
// It is derived on demand and never stored.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusCurrent   Status = "current"
	StatusOverdue   Status = "overdue"
	StatusCompleted Status = "completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusCurrent, StatusOverdue, StatusUpcoming, StatusCompleted}
