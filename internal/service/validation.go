package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var validate = newValidator()

var fieldLabels = map[string]string{
	"Name":      "Name",
	"StartTime": "Start time",
	"EndTime":   "End time",
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

type taskWindow struct {
	Name      string `validate:"required"`
	StartTime string `validate:"required,clock"`
	EndTime   string `validate:"required,clock"`
}

// ValidateTask checks the user-supplied fields shared by tasks and templates.
// Zero-padded HH:MM strings order the same way as the times they denote, so
// the window check is a plain string comparison.
func ValidateTask(name, startTime, endTime string) error {
	in := taskWindow{
		Name:      strings.TrimSpace(name),
		StartTime: startTime,
		EndTime:   endTime,
	}

	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return invalid("", err.Error())
		}
		fe := fieldErrs[0]
		if fe.Tag() == "required" {
			return invalid(fe.Field(), "Please fill in all required fields")
		}
		return invalid(fe.Field(), fieldLabels[fe.Field()]+" must be a 24h time like 07:30")
	}

	if in.StartTime >= in.EndTime {
		return invalid("EndTime", "End time must be after start time")
	}
	return nil
}

// ValidClock reports whether s is a zero-padded 24h HH:MM time.
func ValidClock(s string) bool {
	return clockPattern.MatchString(s)
}
