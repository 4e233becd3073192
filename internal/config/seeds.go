package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"daily-tasks/internal/model"
	"daily-tasks/internal/service"
)

type seedFile struct {
	Templates []model.Template `yaml:"templates"`
}

// DefaultSeeds is the starter set of recurring templates written on first run.
func DefaultSeeds() []model.Template {
	return []model.Template{
		{Name: "Wake Up", StartTime: "07:00", EndTime: "07:30", Description: "Start your day!"},
		{Name: "Brush Teeth", StartTime: "07:30", EndTime: "07:45", Description: "Maintain oral hygiene."},
		{Name: "Morning Prayers", StartTime: "07:45", EndTime: "08:00", Description: "Start your day with spiritual reflection."},
	}
}

// LoadSeeds returns the starter templates from a YAML file, or the built-in
// defaults when path is empty.
//
//	templates:
//	  - name: Wake Up
//	    start: "07:00"
//	    end: "07:30"
//	    description: Start your day!
func LoadSeeds(path string) ([]model.Template, error) {
	if path == "" {
		return DefaultSeeds(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	seen := make(map[string]bool, len(file.Templates))
	for _, tpl := range file.Templates {
		if tpl.Name == "" {
			return nil, fmt.Errorf("seed file %s: template without name", path)
		}
		if seen[tpl.Name] {
			return nil, fmt.Errorf("seed file %s: duplicate template %q", path, tpl.Name)
		}
		seen[tpl.Name] = true
		if err := service.ValidateTask(tpl.Name, tpl.StartTime, tpl.EndTime); err != nil {
			return nil, fmt.Errorf("seed file %s: template %q: %w", path, tpl.Name, err)
		}
	}
	return file.Templates, nil
}
