package service

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Slugs are capped in bytes so callback payloads built from ids stay under
// Telegram's 64 bytes.
const maxSlugBytes = 24

var whitespace = regexp.MustCompile(`\s`)

// newTaskID returns a time-ordered id for a one-time task.
func newTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// recurringID names one day's instance of a template. It changes on every
// materialization; the template name is the only identity that spans days.
func recurringID(now time.Time, name string) string {
	slug := whitespace.ReplaceAllString(name, "-")
	if len(slug) > maxSlugBytes {
		cut := 0
		for i := range slug {
			if i > maxSlugBytes {
				break
			}
			cut = i
		}
		slug = slug[:cut]
	}
	return fmt.Sprintf("recurring-%d-%s", now.UnixMilli(), slug)
}
