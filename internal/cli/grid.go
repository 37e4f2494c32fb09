package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/noah-isme/tutor-schedule-api/internal/calendar"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

// GridCmd renders a weekly or monthly grid from a lessons file.
type GridCmd struct {
	Lessons string `arg:"" help:"Lessons JSON file, '-' for stdin." default:"-"`
	View    string `help:"weekly or monthly." default:"weekly" enum:"weekly,monthly,week,month"`
	Anchor  string `help:"Anchor date (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *GridCmd) Run(ctx *Context) error {
	view, err := calendar.ParseView(c.View)
	if err != nil {
		return err
	}
	today := ctx.today()
	anchor := today
	if c.Anchor != "today" {
		if anchor, err = models.ParseDate(c.Anchor); err != nil {
			return fmt.Errorf("invalid anchor, use YYYY-MM-DD or 'today': %w", err)
		}
	}

	raw, err := loadLessons(c.Lessons)
	if err != nil {
		return err
	}
	lessons, err := calendar.ToCalendarLessons(raw, ctx.Location)
	if err != nil {
		return err
	}

	r, err := calendar.DateRangeForView(anchor, view)
	if err != nil {
		return err
	}
	byDate := calendar.GroupLessonsByDate(lessons)
	var cells []calendar.MonthDayData
	if view == calendar.Monthly {
		cells, err = calendar.GenerateMonthGridData(r, anchor, byDate, today)
	} else {
		cells, err = calendar.GenerateWeekGridData(r, anchor, byDate, today)
	}
	if err != nil {
		return err
	}
	stats, err := calendar.PeriodStats(byDate)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.Out, headerStyle.Render(fmt.Sprintf("%s view, %s to %s", view, models.FormatDate(r.Start), models.FormatDate(r.End))))
	for start := 0; start < len(cells); start += 7 {
		end := start + 7
		if end > len(cells) {
			end = len(cells)
		}
		row := make([]string, 0, 7)
		for _, cell := range cells[start:end] {
			row = append(row, renderCell(cell))
		}
		fmt.Fprintln(ctx.Out, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	fmt.Fprintln(ctx.Out, statsStyle.Render(formatStats(stats)))
	return nil
}

func renderCell(cell calendar.MonthDayData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d", models.DayOf(cell.Date).String()[:3], cell.DayNumber)
	for _, l := range cell.Lessons {
		fmt.Fprintf(&b, "\n%s %s", l.StartTime, l.ClassName)
		if l.Status != models.LessonScheduled {
			fmt.Fprintf(&b, " (%s)", l.Status)
		}
	}

	style := dayStyle
	switch {
	case cell.IsToday:
		style = todayStyle
	case !cell.IsCurrentMonth:
		style = outsideStyle
	}
	return style.Render(b.String())
}

func formatStats(s calendar.StatusCounts) string {
	return fmt.Sprintf("%d lessons: %d scheduled, %d conducted, %d cancelled, %d make-up, %d no-show",
		s.Total, s.Scheduled, s.Conducted, s.Cancelled, s.MakeUp, s.NoShow)
}
