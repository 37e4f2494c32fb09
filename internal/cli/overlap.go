package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/noah-isme/tutor-schedule-api/internal/dto"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
	"github.com/noah-isme/tutor-schedule-api/internal/service"
)

// OverlapCmd checks a proposed slot against an exported list of a class's slots.
type OverlapCmd struct {
	Slots    string `arg:"" help:"Schedule slots JSON file." type:"existingfile"`
	Day      string `required:"" help:"Day of week (ISO number or name)."`
	Start    string `required:"" help:"Start time HH:mm."`
	End      string `required:"" help:"End time HH:mm."`
	Semester string `help:"Semester id; empty means a global slot."`
	Exclude  string `help:"Slot id being edited."`
}

func (c *OverlapCmd) Run(ctx *Context) error {
	day, err := models.ParseDayOfWeek(c.Day)
	if err != nil {
		return err
	}
	start, err := models.ParseTimeOfDay(c.Start)
	if err != nil {
		return err
	}
	end, err := models.ParseTimeOfDay(c.End)
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("start %s must be before end %s", start, end)
	}

	raw, err := os.ReadFile(c.Slots)
	if err != nil {
		return fmt.Errorf("read slots: %w", err)
	}
	var slots []models.ScheduleSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return fmt.Errorf("decode slots: %w", err)
	}

	proposal := dto.SlotProposal{DayOfWeek: day, StartTime: start, EndTime: end, ExcludeSlotID: c.Exclude}
	if c.Semester != "" {
		proposal.SemesterID = &c.Semester
	}
	info := service.DetectOverlaps(proposal, slots)
	if !info.HasOverlap {
		fmt.Fprintln(ctx.Out, headerStyle.Render(fmt.Sprintf("%s %s-%s is free", day, start, end)))
		return nil
	}
	fmt.Fprintln(ctx.Out, headerStyle.Render(fmt.Sprintf("%s %s-%s overlaps %d slot(s)", day, start, end, len(info.Overlaps))))
	for _, o := range info.Overlaps {
		fmt.Fprintf(ctx.Out, "  %s  %s-%s  %s  %d future lessons\n", o.ScheduleSlotID, o.StartTime, o.EndTime, o.OverlapType, o.FutureLessonCount)
	}
	return nil
}
