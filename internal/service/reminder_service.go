package service

import (
	"fmt"
	"html"
	"strings"
	"time"

	"daily-tasks/internal/model"
)

const (
	iconCurrent   = "🔴"
	iconOverdue   = "⚠️"
	iconUpcoming  = "⏰"
	iconCompleted = "✅"
	iconRecurring = "♻️"
)

var statusTitles = map[model.Status]string{
	model.StatusCurrent:   "In progress",
	model.StatusOverdue:   "Overdue",
	model.StatusUpcoming:  "Upcoming",
	model.StatusCompleted: "Done",
}

// ReminderService builds human-readable summaries of today's list.
type ReminderService struct {
	planner *Planner
}

func NewReminderService(planner *Planner) *ReminderService {
	return &ReminderService{planner: planner}
}

// DailySummary renders the list grouped by status as Telegram HTML.
func (s *ReminderService) DailySummary(now time.Time) string {
	views := s.planner.Snapshot().Views(now)

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily tasks</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s · %s\n\n", now.Format("2006-01-02"), now.Format("15:04")))

	if len(views) == 0 {
		builder.WriteString("📝 No tasks yet! Add your first task to get started.")
		return builder.String()
	}

	for _, status := range model.Statuses {
		var group []TaskView
		for _, view := range views {
			if view.Status == status {
				group = append(group, view)
			}
		}
		if len(group) == 0 {
			continue
		}
		builder.WriteString(fmt.Sprintf("<b>%s</b> (%d)\n", statusTitles[status], len(group)))
		for _, view := range group {
			builder.WriteString(FormatTask(view))
		}
		builder.WriteByte('\n')
	}

	return strings.TrimSpace(builder.String())
}

// StatusIcon returns the marker shown next to a task with the given status.
func StatusIcon(status model.Status) string {
	switch status {
	case model.StatusCurrent:
		return iconCurrent
	case model.StatusOverdue:
		return iconOverdue
	case model.StatusCompleted:
		return iconCompleted
	default:
		return iconUpcoming
	}
}

// FormatTask renders one task as an HTML line with an optional description.
func FormatTask(view TaskView) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s <b>%s–%s</b> %s", StatusIcon(view.Status), view.StartTime, view.EndTime, html.EscapeString(strings.TrimSpace(view.Name))))
	if view.IsRecurring {
		sb.WriteString(" " + iconRecurring)
	}
	if view.Description != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(view.Description))))
	}

	sb.WriteByte('\n')
	return sb.String()
}
