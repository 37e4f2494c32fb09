package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/noah-isme/tutor-schedule-api/internal/calendar"
)

// Context is shared by every schedulectl command.
type Context struct {
	Out      io.Writer
	Location *time.Location
	Now      func() time.Time
}

func (c *Context) today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return calendar.Today(now(), loc)
}

// loadLessons reads a JSON array of calendar lessons (id, className, scheduledDate,
// startTime, endTime, status).
func loadLessons(path string) ([]calendar.Lesson, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open lessons: %w", err)
		}
		defer f.Close()
		r = f
	}

	var lessons []calendar.Lesson
	if err := json.NewDecoder(r).Decode(&lessons); err != nil {
		return nil, fmt.Errorf("decode lessons: %w", err)
	}
	return lessons, nil
}
