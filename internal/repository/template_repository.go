package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"daily-tasks/internal/model"
)

// TemplateRepository stores recurring task templates keyed by name.
type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// List returns templates in insertion order.
func (r *TemplateRepository) List(ctx context.Context) ([]model.Template, error) {
	var templates []model.Template
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// CreateIfAbsent inserts the template unless one with the same name exists.
// The existing row is never updated. It reports whether a row was inserted.
func (r *TemplateRepository) CreateIfAbsent(ctx context.Context, tpl *model.Template) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&model.Template{}).Select("COALESCE(MAX(position), 0)").Scan(&last).Error; err != nil {
			return fmt.Errorf("next template position: %w", err)
		}
		tpl.Position = last + 1
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(tpl)
		if res.Error != nil {
			return fmt.Errorf("create template: %w", res.Error)
		}
		created = res.RowsAffected > 0
		return nil
	})
	return created, err
}

// Delete removes the template with the given name. It returns
// gorm.ErrRecordNotFound when there is none.
func (r *TemplateRepository) Delete(ctx context.Context, name string) error {
	res := r.db.WithContext(ctx).Where("name = ?", name).Delete(&model.Template{})
	if res.Error != nil {
		return fmt.Errorf("delete template: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
