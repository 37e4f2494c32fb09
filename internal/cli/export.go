package cli

import (
	"fmt"
	"os"

	"github.com/noah-isme/tutor-schedule-api/internal/calendar"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	"github.com/noah-isme/tutor-schedule-api/pkg/export"
)

// ExportCmd renders a lessons file to CSV or PDF.
type ExportCmd struct {
	Lessons string `arg:"" help:"Lessons JSON file, '-' for stdin." default:"-"`
	Format  string `help:"csv or pdf." default:"csv" enum:"csv,pdf"`
	Output  string `short:"o" help:"Output file; defaults to lessons.<format>." type:"path"`
}

func (c *ExportCmd) Run(ctx *Context) error {
	renderer, err := export.ForFormat(c.Format)
	if err != nil {
		return err
	}
	raw, err := loadLessons(c.Lessons)
	if err != nil {
		return err
	}
	lessons, err := calendar.ToCalendarLessons(raw, ctx.Location)
	if err != nil {
		return err
	}
	stats, err := calendar.CalculateStatusCounts(lessons)
	if err != nil {
		return err
	}

	dataset := export.Dataset{
		Title:    "Teacher lessons",
		Subtitle: formatStats(stats),
		Columns: []export.Column{
			{Key: "date", Title: "Date"},
			{Key: "day", Title: "Day"},
			{Key: "start", Title: "Start", Width: 0.6},
			{Key: "end", Title: "End", Width: 0.6},
			{Key: "class", Title: "Class", Width: 2},
			{Key: "status", Title: "Status"},
		},
		Rows: make([]map[string]string, 0, len(lessons)),
	}
	for _, l := range lessons {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"date":   l.ScheduledDate,
			"day":    models.DayOf(l.Date).String(),
			"start":  l.StartTime,
			"end":    l.EndTime,
			"class":  l.ClassName,
			"status": string(l.Status),
		})
	}

	body, err := renderer.Render(dataset)
	if err != nil {
		return err
	}
	out := c.Output
	if out == "" {
		out = "lessons." + renderer.Extension()
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(ctx.Out, "wrote %d lessons to %s\n", len(lessons), out)
	return nil
}
