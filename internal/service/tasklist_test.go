package service

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"daily-tasks/internal/model"
)

func TestStatusOf(t *testing.T) {
	task := model.Task{ID: "1", Name: "Standup", StartTime: "09:00", EndTime: "10:00"}
	done := task
	done.Completed = true

	tests := []struct {
		name string
		task model.Task
		now  time.Time
		want model.Status
	}{
		{"before start", task, at(8, 59), model.StatusUpcoming},
		{"at start", task, at(9, 0), model.StatusCurrent},
		{"inside window", task, at(9, 30), model.StatusCurrent},
		{"at end", task, at(10, 0), model.StatusCurrent},
		{"after end", task, at(10, 1), model.StatusOverdue},
		{"completed before start", done, at(8, 0), model.StatusCompleted},
		{"completed after end", done, at(23, 0), model.StatusCompleted},
		{"unparsable window", model.Task{StartTime: "soon", EndTime: "later"}, at(12, 0), model.StatusUpcoming},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusOf(tc.task, tc.now); got != tc.want {
				t.Fatalf("StatusOf()=%s, want %s", got, tc.want)
			}
		})
	}
}

func TestStatusOf_UsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	task := model.Task{StartTime: "09:00", EndTime: "10:00"}
	now := time.Date(2026, 10, 18, 14, 30, 0, 0, time.UTC).In(loc) // 09:30 local
	if got := StatusOf(task, now); got != model.StatusCurrent {
		t.Fatalf("StatusOf()=%s, want current", got)
	}
}

func TestValidateTask(t *testing.T) {
	tests := []struct {
		name                 string
		taskName, start, end string
		wantErr              bool
	}{
		{"ok", "Read", "09:00", "10:00", false},
		{"empty name", "   ", "09:00", "10:00", true},
		{"missing start", "Read", "", "10:00", true},
		{"missing end", "Read", "09:00", "", true},
		{"end before start", "Read", "10:00", "09:00", true},
		{"equal times", "Read", "09:00", "09:00", true},
		{"not a clock", "Read", "9am", "10:00", true},
		{"hour out of range", "Read", "09:00", "24:00", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTask(tc.taskName, tc.start, tc.end)
			if tc.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ValidateTask() err=%v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateTask() err=%v, want nil", err)
			}
		})
	}

	if msg := UserMessage(ValidateTask("Read", "10:00", "09:00")); msg != "End time must be after start time" {
		t.Fatalf("UserMessage=%q", msg)
	}
}

func TestTaskList_AddRejectsInvalidWindow(t *testing.T) {
	list := NewTaskList([]model.Task{{ID: "1", Name: "A", StartTime: "08:00", EndTime: "09:00"}})

	next, err := list.Add(model.Task{ID: "2", Name: "B", StartTime: "10:00", EndTime: "09:00"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Add() err=%v, want ErrValidation", err)
	}
	if !reflect.DeepEqual(next.Tasks(), list.Tasks()) || list.Len() != 1 {
		t.Fatalf("list changed after rejected add")
	}

	if _, err := list.Add(model.Task{ID: "1", Name: "Dup", StartTime: "10:00", EndTime: "11:00"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("Add(duplicate id) err=%v, want ErrValidation", err)
	}
}

func TestTaskList_IsCopyOnWrite(t *testing.T) {
	list := NewTaskList([]model.Task{{ID: "1", Name: "A", StartTime: "08:00", EndTime: "09:00"}})

	toggled, task, err := list.ToggleComplete("1")
	if err != nil {
		t.Fatalf("ToggleComplete err=%v", err)
	}
	if !task.Completed {
		t.Fatalf("toggled task not completed")
	}
	if orig, _ := list.Find("1"); orig.Completed {
		t.Fatalf("original snapshot mutated")
	}
	if got, _ := toggled.Find("1"); !got.Completed {
		t.Fatalf("new snapshot not toggled")
	}

	tasks := toggled.Tasks()
	tasks[0].Name = "changed"
	if got, _ := toggled.Find("1"); got.Name != "A" {
		t.Fatalf("Tasks() exposed internal slice")
	}
}

func TestTaskList_NotFound(t *testing.T) {
	list := NewTaskList(nil)
	if _, _, err := list.ToggleComplete("x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ToggleComplete err=%v, want ErrNotFound", err)
	}
	if _, _, err := list.Remove("x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Remove err=%v, want ErrNotFound", err)
	}
}

func TestTaskList_ClearOneTime(t *testing.T) {
	list := NewTaskList([]model.Task{
		{ID: "1", Name: "A", StartTime: "08:00", EndTime: "09:00"},
		{ID: "r", Name: "Wake Up", StartTime: "07:00", EndTime: "07:30", IsRecurring: true, Completed: true},
		{ID: "2", Name: "B", StartTime: "10:00", EndTime: "11:00"},
	})

	next, n := list.ClearOneTime()
	if n != 2 {
		t.Fatalf("ClearOneTime removed %d, want 2", n)
	}
	got := next.Tasks()
	if len(got) != 1 || got[0].ID != "r" || !got[0].Completed {
		t.Fatalf("after clear=%+v, want untouched recurring instance", got)
	}
}

func TestTaskList_SortByStartTimeIsStable(t *testing.T) {
	list := NewTaskList([]model.Task{
		{ID: "late", StartTime: "18:00", EndTime: "19:00"},
		{ID: "first-nine", StartTime: "09:00", EndTime: "10:00"},
		{ID: "early", StartTime: "07:00", EndTime: "07:30"},
		{ID: "second-nine", StartTime: "09:00", EndTime: "09:30"},
	})

	var order []string
	for _, task := range list.SortByStartTime().Tasks() {
		order = append(order, task.ID)
	}
	want := []string{"early", "first-nine", "second-nine", "late"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order=%v, want %v", order, want)
	}
}

func TestStatusWatcher(t *testing.T) {
	w := NewStatusWatcher()
	list := NewTaskList([]model.Task{
		{ID: "1", Name: "Standup", StartTime: "09:00", EndTime: "09:15"},
		{ID: "2", Name: "Lunch", StartTime: "12:00", EndTime: "13:00"},
	})

	if got := w.Observe(list.Views(at(8, 59))); len(got) != 0 {
		t.Fatalf("first observation reported %d transitions", len(got))
	}
	got := w.Observe(list.Views(at(9, 0)))
	if len(got) != 1 || got[0].Task.ID != "1" || got[0].From != model.StatusUpcoming || got[0].To != model.StatusCurrent {
		t.Fatalf("transitions=%+v, want 1 upcoming->current", got)
	}
	if got := w.Observe(list.Views(at(9, 1))); len(got) != 0 {
		t.Fatalf("unchanged tick reported %+v", got)
	}
	got = w.Observe(list.Views(at(9, 16)))
	if len(got) != 1 || got[0].To != model.StatusOverdue {
		t.Fatalf("transitions=%+v, want current->overdue", got)
	}

	counts := Counts(list.Views(at(9, 16)))
	if counts[model.StatusOverdue] != 1 || counts[model.StatusUpcoming] != 1 || counts[model.StatusCompleted] != 0 {
		t.Fatalf("Counts=%v", counts)
	}
}

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("00:05")
	if err != nil || spec != "0 5 0 * * *" {
		t.Fatalf("buildDailySpec=%q err=%v", spec, err)
	}
	for _, bad := range []string{"", "24:00", "7", "07:60", "aa:bb"} {
		if _, err := buildDailySpec(bad); err == nil {
			t.Fatalf("buildDailySpec(%q) err=nil", bad)
		}
	}
}
