package service

import (
	"sort"
	"time"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

// conflictIndex answers "what collides with this class at this date and time" from
// lessons loaded once for the whole generation window.
type conflictIndex struct {
	class         *models.Class
	excludeSlotID string
	byDate        map[string][]models.Lesson
}

type conflictHit struct {
	kind       models.ConflictType
	resourceID string
	lesson     models.Lesson
}

func newConflictIndex(class *models.Class, excludeSlotID string, lessons []models.Lesson) *conflictIndex {
	byDate := make(map[string][]models.Lesson, len(lessons))
	for _, l := range lessons {
		key := models.FormatDate(l.ScheduledDate)
		byDate[key] = append(byDate[key], l)
	}
	return &conflictIndex{class: class, excludeSlotID: excludeSlotID, byDate: byDate}
}

// hits reports every resource collision for a lesson of the class at date [start,end).
func (ix *conflictIndex) hits(date time.Time, start, end models.TimeOfDay) []conflictHit {
	var out []conflictHit
	for _, l := range ix.byDate[models.FormatDate(date)] {
		if !models.Overlaps(start, end, l.StartTime, l.EndTime) {
			continue
		}
		if l.ClassID == ix.class.ID {
			if ix.excludeSlotID != "" && l.FromSlot(ix.excludeSlotID) {
				continue
			}
			out = append(out, conflictHit{kind: models.ConflictClass, resourceID: ix.class.ID, lesson: l})
			continue
		}
		if l.TeacherID != "" && l.TeacherID == ix.class.TeacherID {
			out = append(out, conflictHit{kind: models.ConflictTeacher, resourceID: l.TeacherID, lesson: l})
		}
		if ix.class.ClassroomID != nil && l.ClassroomID != nil && *l.ClassroomID == *ix.class.ClassroomID {
			out = append(out, conflictHit{kind: models.ConflictClassroom, resourceID: *l.ClassroomID, lesson: l})
		}
	}
	return out
}

func (ix *conflictIndex) free(dates []time.Time, start, end models.TimeOfDay) bool {
	for _, d := range dates {
		if len(ix.hits(d, start, end)) > 0 {
			return false
		}
	}
	return true
}

var conflictOrder = map[models.ConflictType]int{
	models.ConflictTeacher:   0,
	models.ConflictClassroom: 1,
	models.ConflictClass:     2,
}

// conflicts groups hits over all dates into one entry per conflicting resource.
func (ix *conflictIndex) conflicts(dates []time.Time, start, end models.TimeOfDay) models.ScheduleConflictInfo {
	type groupKey struct {
		kind       models.ConflictType
		resourceID string
	}
	groups := make(map[groupKey]*models.ScheduleConflict)
	var order []groupKey

	for _, d := range dates {
		for _, h := range ix.hits(d, start, end) {
			key := groupKey{kind: h.kind, resourceID: h.resourceID}
			group, ok := groups[key]
			if !ok {
				group = &models.ScheduleConflict{ConflictType: h.kind, ResourceID: h.resourceID}
				groups[key] = group
				order = append(order, key)
			}
			group.Instances = append(group.Instances, models.ConflictInstance{
				Date:      models.FormatDate(d),
				StartTime: h.lesson.StartTime,
				EndTime:   h.lesson.EndTime,
				LessonID:  h.lesson.ID,
				ClassID:   h.lesson.ClassID,
			})
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return conflictOrder[order[i].kind] < conflictOrder[order[j].kind]
	})
	info := models.ScheduleConflictInfo{Conflicts: make([]models.ScheduleConflict, 0, len(order))}
	for _, key := range order {
		info.Conflicts = append(info.Conflicts, *groups[key])
	}
	info.HasConflicts = len(info.Conflicts) > 0
	return info
}
