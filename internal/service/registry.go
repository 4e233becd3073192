package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"daily-tasks/internal/model"
	"daily-tasks/internal/store"
)

const settingTemplatesSeeded = "templates_seeded"

// TemplateRepository persists recurring templates keyed by name.
type TemplateRepository interface {
	List(ctx context.Context) ([]model.Template, error)
	CreateIfAbsent(ctx context.Context, tpl *model.Template) (bool, error)
	Delete(ctx context.Context, name string) error
}

// SettingStore reads and writes named scalar records.
type SettingStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Registry owns the set of recurring templates.
type Registry struct {
	repo     TemplateRepository
	settings SettingStore
	seeds    []model.Template
	now      func() time.Time
}

func NewRegistry(repo TemplateRepository, settings SettingStore, seeds []model.Template) *Registry {
	return &Registry{repo: repo, settings: settings, seeds: seeds, now: time.Now}
}

// EnsurePresent inserts tpl unless a template with the same name exists. An
// existing template is never updated. It reports whether tpl was inserted.
func (r *Registry) EnsurePresent(ctx context.Context, tpl model.Template) (bool, error) {
	tpl.Name = strings.TrimSpace(tpl.Name)
	if err := ValidateTask(tpl.Name, tpl.StartTime, tpl.EndTime); err != nil {
		return false, err
	}
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = r.now()
	}
	created, err := r.repo.CreateIfAbsent(ctx, &tpl)
	if err != nil {
		return false, store.Persistence("save template", err)
	}
	if created {
		log.Printf("[info] recurring template added name=%q window=%s-%s", tpl.Name, tpl.StartTime, tpl.EndTime)
	}
	return created, nil
}

// Remove deletes the template called name. Removing an absent name is a no-op.
func (r *Registry) Remove(ctx context.Context, name string) error {
	err := r.repo.Delete(ctx, name)
	switch {
	case err == nil:
		log.Printf("[info] recurring template removed name=%q", name)
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return store.Persistence("remove template", err)
	}
}

// ListAll returns templates in insertion order.
func (r *Registry) ListAll(ctx context.Context) ([]model.Template, error) {
	templates, err := r.repo.List(ctx)
	if err != nil {
		return nil, store.Persistence("list templates", err)
	}
	return templates, nil
}

// SeedDefaults writes the starter templates on first run. A persisted flag
// separates "never initialized" from "deliberately emptied", so a registry the
// user cleared stays empty.
func (r *Registry) SeedDefaults(ctx context.Context) (bool, error) {
	_, seeded, err := r.settings.Get(ctx, settingTemplatesSeeded)
	if err != nil {
		return false, store.Persistence("load registry flag", err)
	}
	if seeded {
		return false, nil
	}

	existing, err := r.ListAll(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) == 0 {
		for _, tpl := range r.seeds {
			if _, err := r.EnsurePresent(ctx, tpl); err != nil {
				if errors.Is(err, ErrValidation) {
					log.Printf("[error] skip seed template %q: %v", tpl.Name, err)
					continue
				}
				return false, err
			}
		}
	}

	if err := r.settings.Set(ctx, settingTemplatesSeeded, DayOf(r.now())); err != nil {
		return false, store.Persistence("save registry flag", err)
	}
	return len(existing) == 0, nil
}
