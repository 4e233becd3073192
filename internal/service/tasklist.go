package service

import (
	"fmt"
	"sort"
	"time"

	"daily-tasks/internal/model"
)

// TaskList is a snapshot of today's tasks. Every change returns a new list and
// leaves the receiver untouched, so readers holding an older snapshot never see
// a half-applied update.
type TaskList struct {
	tasks []model.Task
}

// TaskView pairs a task with its status at a given instant.
type TaskView struct {
	model.Task
	Status model.Status `json:"status"`
}

func NewTaskList(tasks []model.Task) TaskList {
	return TaskList{tasks: clone(tasks)}
}

// Tasks returns a copy of the tasks in list order.
func (l TaskList) Tasks() []model.Task {
	return clone(l.tasks)
}

func (l TaskList) Len() int {
	return len(l.tasks)
}

func (l TaskList) Find(id string) (model.Task, bool) {
	if i := l.index(id); i >= 0 {
		return l.tasks[i], true
	}
	return model.Task{}, false
}

// HasRecurring reports whether an instance of the template called name is on the list.
func (l TaskList) HasRecurring(name string) bool {
	for _, task := range l.tasks {
		if task.IsRecurring && task.Name == name {
			return true
		}
	}
	return false
}

// CountOneTime returns how many non-recurring tasks the list holds.
func (l TaskList) CountOneTime() int {
	n := 0
	for _, task := range l.tasks {
		if !task.IsRecurring {
			n++
		}
	}
	return n
}

// Add appends task after validating it.
func (l TaskList) Add(task model.Task) (TaskList, error) {
	if err := ValidateTask(task.Name, task.StartTime, task.EndTime); err != nil {
		return l, err
	}
	if l.index(task.ID) >= 0 {
		return l, invalid("ID", fmt.Sprintf("Task %s already exists", task.ID))
	}
	tasks := make([]model.Task, 0, len(l.tasks)+1)
	tasks = append(tasks, l.tasks...)
	return TaskList{tasks: append(tasks, task)}, nil
}

// ToggleComplete flips the completion flag of the task with the given id.
func (l TaskList) ToggleComplete(id string) (TaskList, model.Task, error) {
	i := l.index(id)
	if i < 0 {
		return l, model.Task{}, fmt.Errorf("toggle %s: %w", id, ErrNotFound)
	}
	tasks := clone(l.tasks)
	tasks[i].Completed = !tasks[i].Completed
	return TaskList{tasks: tasks}, tasks[i], nil
}

// Remove drops the instance with the given id. Templates are not touched here.
func (l TaskList) Remove(id string) (TaskList, model.Task, error) {
	i := l.index(id)
	if i < 0 {
		return l, model.Task{}, fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	removed := l.tasks[i]
	tasks := make([]model.Task, 0, len(l.tasks)-1)
	tasks = append(tasks, l.tasks[:i]...)
	tasks = append(tasks, l.tasks[i+1:]...)
	return TaskList{tasks: tasks}, removed, nil
}

// ClearOneTime drops every non-recurring task and reports how many went.
func (l TaskList) ClearOneTime() (TaskList, int) {
	tasks := make([]model.Task, 0, len(l.tasks))
	for _, task := range l.tasks {
		if task.IsRecurring {
			tasks = append(tasks, task)
		}
	}
	return TaskList{tasks: tasks}, len(l.tasks) - len(tasks)
}

// SortByStartTime orders tasks by start time. Ties keep their relative order.
func (l TaskList) SortByStartTime() TaskList {
	tasks := clone(l.tasks)
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].StartTime < tasks[j].StartTime
	})
	return TaskList{tasks: tasks}
}

// Views derives the status of every task at now.
func (l TaskList) Views(now time.Time) []TaskView {
	views := make([]TaskView, 0, len(l.tasks))
	for _, task := range l.tasks {
		views = append(views, TaskView{Task: task, Status: StatusOf(task, now)})
	}
	return views
}

func (l TaskList) index(id string) int {
	for i, task := range l.tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}

func clone(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}
