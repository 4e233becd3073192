package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"daily-tasks/internal/model"
	"daily-tasks/internal/store"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Name        string
	StartTime   string
	EndTime     string
	Description string
	IsRecurring bool
}

// Observer receives notable planner events. The metrics collector implements it.
type Observer interface {
	ResetPerformed(day string, instances int)
	OperationFailed(op string, err error)
}

type noopObserver struct{}

func (noopObserver) ResetPerformed(string, int)     {}
func (noopObserver) OperationFailed(string, error) {}

// Option configures a Planner.
type Option func(*Planner)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.clock = now }
}

// WithLocation sets the zone that defines "today".
func WithLocation(loc *time.Location) Option {
	return func(p *Planner) {
		if loc != nil {
			p.loc = loc
		}
	}
}

func WithObserver(o Observer) Option {
	return func(p *Planner) {
		if o != nil {
			p.observer = o
		}
	}
}

// Planner holds today's task list and routes every change through the store
// first. The in-memory list is replaced only after the store accepted the
// change, so a failed call leaves it as it was and a retry is safe.
type Planner struct {
	store    store.TaskStore
	registry *Registry
	marker   *ResetMarker
	clock    func() time.Time
	loc      *time.Location
	observer Observer

	// mu serializes mutations; readers use the snapshot without locking.
	mu   sync.Mutex
	list atomic.Pointer[TaskList]
}

func NewPlanner(st store.TaskStore, registry *Registry, marker *ResetMarker, opts ...Option) (*Planner, error) {
	if st == nil {
		return nil, ErrStoreNil
	}
	if registry == nil || marker == nil {
		return nil, ErrRegistryNil
	}

	p := &Planner{
		store:    st,
		registry: registry,
		marker:   marker,
		clock:    time.Now,
		loc:      time.Local,
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	empty := NewTaskList(nil)
	p.list.Store(&empty)
	return p, nil
}

// Now is the current instant in the planner's zone.
func (p *Planner) Now() time.Time {
	return p.clock().In(p.loc)
}

// Snapshot returns the current list. It is safe to call from any goroutine.
func (p *Planner) Snapshot() TaskList {
	return *p.list.Load()
}

// Views derives statuses for the current list at the planner's clock.
func (p *Planner) Views() []TaskView {
	return p.Snapshot().Views(p.Now())
}

func (p *Planner) publish(list TaskList) {
	p.list.Store(&list)
}

// Load fetches every task, seeds the registry on first run and performs the
// daily reset when due. The reset writes the new instances before advancing
// the marker; if the write fails the marker stays put and the next Load
// retries the same reset. It reports whether a reset happened.
func (p *Planner) Load(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seeded, err := p.registry.SeedDefaults(ctx); err != nil {
		return false, p.fail("seed templates", err)
	} else if seeded {
		log.Printf("[info] recurring templates seeded with defaults")
	}

	tasks, err := p.store.FetchAll(ctx)
	if err != nil {
		return false, p.fail("fetch tasks", err)
	}

	templates, err := p.registry.ListAll(ctx)
	if err != nil {
		p.publish(NewTaskList(tasks))
		return false, p.fail("list templates", err)
	}
	last, err := p.marker.Load(ctx)
	if err != nil {
		p.publish(NewTaskList(tasks))
		return false, p.fail("load reset date", err)
	}

	res := MaybeReset(p.Now(), last, templates, tasks)
	if !res.DidReset {
		p.publish(NewTaskList(res.Tasks))
		return false, nil
	}

	if err := p.store.ResetRecurring(ctx, res.Instances); err != nil {
		p.publish(NewTaskList(tasks))
		return false, p.fail("daily reset", err)
	}
	p.publish(NewTaskList(res.Tasks))

	if err := p.marker.Commit(ctx, res.LastResetDate); err != nil {
		return true, p.fail("daily reset", err)
	}

	log.Printf("[info] daily reset for %s: %d recurring instances", res.LastResetDate, len(res.Instances))
	p.observer.ResetPerformed(res.LastResetDate, len(res.Instances))
	return true, nil
}

// Add validates input, stores the new task and, for a recurring task, registers
// its template. A recurring name already on today's list is rejected.
func (p *Planner) Add(ctx context.Context, in TaskInput) (model.Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	name := strings.TrimSpace(in.Name)
	if err := ValidateTask(name, in.StartTime, in.EndTime); err != nil {
		return model.Task{}, err
	}

	current := p.Snapshot()
	now := p.Now()
	task := model.Task{
		ID:          newTaskID(),
		Name:        name,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Description: strings.TrimSpace(in.Description),
		IsRecurring: in.IsRecurring,
		CreatedAt:   now,
	}
	if in.IsRecurring {
		if current.HasRecurring(name) {
			return model.Task{}, invalid("Name", fmt.Sprintf("Recurring task %q already exists", name))
		}
		task.ID = recurringID(now, name)
	}

	next, err := current.Add(task)
	if err != nil {
		return model.Task{}, err
	}
	if err := p.store.Add(ctx, task); err != nil {
		return model.Task{}, p.fail("add task", err)
	}
	p.publish(next)
	log.Printf("[info] task added id=%s recurring=%t", task.ID, task.IsRecurring)

	if in.IsRecurring {
		if _, err := p.registry.EnsurePresent(ctx, model.TemplateFromTask(task)); err != nil {
			return task, p.fail("register template", err)
		}
	}
	return task, nil
}

// ToggleComplete flips the completion flag of a task.
func (p *Planner) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next, toggled, err := p.Snapshot().ToggleComplete(id)
	if err != nil {
		return model.Task{}, err
	}
	completed := toggled.Completed
	if err := p.store.Update(ctx, id, model.TaskPatch{Completed: &completed}); err != nil {
		return model.Task{}, p.fail("update task", err)
	}
	p.publish(next)
	return toggled, nil
}

// Delete removes a single instance. A recurring template stays registered and
// the task comes back with the next reset.
func (p *Planner) Delete(ctx context.Context, id string) (model.Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.delete(ctx, id)
}

// RemoveRecurring removes an instance and, when it is recurring, its template,
// so the task is not materialized again.
func (p *Planner) RemoveRecurring(ctx context.Context, id string) (model.Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed, err := p.delete(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	if removed.IsRecurring {
		if err := p.registry.Remove(ctx, removed.Name); err != nil {
			return removed, p.fail("remove template", err)
		}
	}
	return removed, nil
}

func (p *Planner) delete(ctx context.Context, id string) (model.Task, error) {
	next, removed, err := p.Snapshot().Remove(id)
	if err != nil {
		return model.Task{}, err
	}
	if err := p.store.Delete(ctx, id); err != nil {
		return model.Task{}, p.fail("delete task", err)
	}
	p.publish(next)
	log.Printf("[info] task deleted id=%s recurring=%t", removed.ID, removed.IsRecurring)
	return removed, nil
}

// ClearOneTime removes every one-time task. With nothing to clear it returns
// 0 without calling the store.
func (p *Planner) ClearOneTime(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.Snapshot()
	if current.CountOneTime() == 0 {
		return 0, nil
	}
	if err := p.store.ClearOneTime(ctx); err != nil {
		return 0, p.fail("clear one-time tasks", err)
	}
	next, n := current.ClearOneTime()
	p.publish(next)
	return n, nil
}

// SortByStartTime reorders the in-memory list. Order is a display preference
// and is not written back to the store.
func (p *Planner) SortByStartTime() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.publish(p.Snapshot().SortByStartTime())
}

// Templates lists the registered recurring templates.
func (p *Planner) Templates(ctx context.Context) ([]model.Template, error) {
	return p.registry.ListAll(ctx)
}

func (p *Planner) fail(op string, err error) error {
	log.Printf("[error] %s: %v", op, err)
	p.observer.OperationFailed(op, err)
	return fmt.Errorf("%s: %w", op, err)
}
