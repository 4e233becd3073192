package service

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"daily-tasks/internal/model"
	"daily-tasks/internal/store"
)

// --- fakes ---

type memTemplates struct {
	mu        sync.Mutex
	templates []model.Template
	listErr   error
}

func (m *memTemplates) List(context.Context) ([]model.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]model.Template, len(m.templates))
	copy(out, m.templates)
	return out, nil
}

func (m *memTemplates) CreateIfAbsent(_ context.Context, tpl *model.Template) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.templates {
		if existing.Name == tpl.Name {
			return false, nil
		}
	}
	m.templates = append(m.templates, *tpl)
	return true, nil
}

func (m *memTemplates) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.templates {
		if existing.Name == name {
			m.templates = append(m.templates[:i], m.templates[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type memSettings struct {
	mu      sync.Mutex
	values  map[string]string
	setErr  error
	setErrs map[string]error
}

func newMemSettings() *memSettings {
	return &memSettings{values: make(map[string]string)}
}

func (m *memSettings) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memSettings) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.setErrs[key]; err != nil {
		return err
	}
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

// fakeStore is an in-memory TaskStore. failOn makes the named operation fail.
type fakeStore struct {
	mu     sync.Mutex
	tasks  []model.Task
	failOn map[string]error
	calls  []string
}

func newFakeStore(tasks ...model.Task) *fakeStore {
	return &fakeStore{tasks: tasks, failOn: make(map[string]error)}
}

func (s *fakeStore) record(op string) error {
	s.calls = append(s.calls, op)
	return s.failOn[op]
}

func (s *fakeStore) FetchAll(context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("fetch"); err != nil {
		return nil, err
	}
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

func (s *fakeStore) Add(_ context.Context, task model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("add"); err != nil {
		return err
	}
	s.tasks = append(s.tasks, task)
	return nil
}

func (s *fakeStore) Update(_ context.Context, id string, patch model.TaskPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("update"); err != nil {
		return err
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i] = patch.Apply(s.tasks[i])
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("delete"); err != nil {
		return err
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *fakeStore) ClearOneTime(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("clear"); err != nil {
		return err
	}
	kept := s.tasks[:0]
	for _, task := range s.tasks {
		if task.IsRecurring {
			kept = append(kept, task)
		}
	}
	s.tasks = kept
	return nil
}

func (s *fakeStore) ResetRecurring(_ context.Context, instances []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("reset"); err != nil {
		return err
	}
	kept := make([]model.Task, 0, len(s.tasks)+len(instances))
	for _, task := range s.tasks {
		if !task.IsRecurring {
			kept = append(kept, task)
		}
	}
	s.tasks = append(kept, instances...)
	return nil
}

func (s *fakeStore) snapshot() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *fakeStore) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == op {
			n++
		}
	}
	return n
}

var errTransport = store.Transport("resetRecurringTasks", "Sheet is locked", nil)

var errDisk = errors.New("disk full")
