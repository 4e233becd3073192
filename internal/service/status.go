package service

import (
	"time"

	"daily-tasks/internal/model"
)

// StatusOf classifies task against now. The window is anchored on now's
// calendar day, so a task is never "tomorrow". A window that cannot be parsed
// reads as upcoming.
func StatusOf(task model.Task, now time.Time) model.Status {
	if task.Completed {
		return model.StatusCompleted
	}

	start, okStart := clockOn(now, task.StartTime)
	end, okEnd := clockOn(now, task.EndTime)
	if !okStart || !okEnd {
		return model.StatusUpcoming
	}

	switch {
	case now.Before(start):
		return model.StatusUpcoming
	case !now.After(end):
		return model.StatusCurrent
	default:
		return model.StatusOverdue
	}
}

func clockOn(day time.Time, clock string) (time.Time, bool) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	year, month, date := day.Date()
	return time.Date(year, month, date, parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), true
}
