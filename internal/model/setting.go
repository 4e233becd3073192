package model

import "time"

// Setting is a named scalar record, used for the reset marker and registry flags.
type Setting struct {
	Name      string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}
