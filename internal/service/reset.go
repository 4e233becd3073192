package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"daily-tasks/internal/model"
	"daily-tasks/internal/store"
)

const settingLastResetDate = "last_reset_date"

// ResetResult is the outcome of a daily reset check.
type ResetResult struct {
	DidReset bool
	// Tasks is the full list to hold after the check.
	Tasks []model.Task
	// Instances holds the freshly materialized recurring tasks, in template order.
	Instances     []model.Task
	LastResetDate string
}

// DayOf returns the ISO calendar date of t in t's location.
func DayOf(t time.Time) string {
	return t.Format(time.DateOnly)
}

// MaybeReset decides whether the daily reset for now's calendar day is due and,
// if so, computes the new list: one-time tasks kept in their relative order,
// then one fresh instance per template. A marker already on today is a no-op,
// which makes repeated checks within a day idempotent.
func MaybeReset(now time.Time, lastResetDate string, templates []model.Template, current []model.Task) ResetResult {
	today := DayOf(now)
	if sameDay(lastResetDate, today) {
		return ResetResult{Tasks: current, LastResetDate: lastResetDate}
	}

	kept := make([]model.Task, 0, len(current)+len(templates))
	for _, task := range current {
		if !task.IsRecurring {
			kept = append(kept, task)
		}
	}
	instances := Materialize(now, templates)

	return ResetResult{
		DidReset:      true,
		Tasks:         append(kept, instances...),
		Instances:     instances,
		LastResetDate: today,
	}
}

// Materialize creates exactly one uncompleted instance per template. Ids are
// unique within the batch even when two names share a slug.
func Materialize(now time.Time, templates []model.Template) []model.Task {
	used := make(map[string]bool, len(templates))
	instances := make([]model.Task, 0, len(templates))
	for _, tpl := range templates {
		base := recurringID(now, tpl.Name)
		id := base
		for n := 2; used[id]; n++ {
			id = fmt.Sprintf("%s-%d", base, n)
		}
		used[id] = true
		instances = append(instances, tpl.Instance(id, now))
	}
	return instances
}

func sameDay(marker, today string) bool {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return false
	}
	day, err := time.Parse(time.DateOnly, marker)
	if err != nil {
		return false
	}
	return DayOf(day) == today
}

// ResetMarker persists the date of the last completed reset.
type ResetMarker struct {
	settings SettingStore
}

func NewResetMarker(settings SettingStore) *ResetMarker {
	return &ResetMarker{settings: settings}
}

// Load returns the stored date, or "" before the first reset.
func (m *ResetMarker) Load(ctx context.Context) (string, error) {
	value, _, err := m.settings.Get(ctx, settingLastResetDate)
	if err != nil {
		return "", store.Persistence("load reset date", err)
	}
	return value, nil
}

// Commit records day as reset. Callers commit only after the new list is durable.
func (m *ResetMarker) Commit(ctx context.Context, day string) error {
	if err := m.settings.Set(ctx, settingLastResetDate, day); err != nil {
		return store.Persistence("save reset date", err)
	}
	return nil
}
