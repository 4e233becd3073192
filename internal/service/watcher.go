package service

import (
	"sync"

	"daily-tasks/internal/model"
)

// Transition is a status change of one task between two ticks.
type Transition struct {
	Task model.Task
	From model.Status
	To   model.Status
}

// StatusWatcher remembers the last status seen per task id and reports
// changes. It only reads snapshots and never touches stored state.
type StatusWatcher struct {
	mu   sync.Mutex
	last map[string]model.Status
}

func NewStatusWatcher() *StatusWatcher {
	return &StatusWatcher{last: make(map[string]model.Status)}
}

// Observe compares views with the previous tick. Tasks seen for the first
// time are recorded without a transition; tasks gone from views are forgotten.
func (w *StatusWatcher) Observe(views []TaskView) []Transition {
	w.mu.Lock()
	defer w.mu.Unlock()

	var changes []Transition
	seen := make(map[string]model.Status, len(views))
	for _, view := range views {
		seen[view.ID] = view.Status
		prev, ok := w.last[view.ID]
		if ok && prev != view.Status {
			changes = append(changes, Transition{Task: view.Task, From: prev, To: view.Status})
		}
	}
	w.last = seen
	return changes
}

// Counts tallies views per status.
func Counts(views []TaskView) map[model.Status]int {
	counts := make(map[model.Status]int, len(model.Statuses))
	for _, status := range model.Statuses {
		counts[status] = 0
	}
	for _, view := range views {
		counts[view.Status]++
	}
	return counts
}
