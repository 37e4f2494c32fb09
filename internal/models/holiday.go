package models

import "time"

// Holiday is an inclusive range of days without lessons.
type Holiday struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"startDate"`
	EndDate   time.Time `db:"end_date" json:"endDate"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Covers reports whether the civil date day falls inside the holiday.
func (h Holiday) Covers(day time.Time) bool {
	day = CivilDate(day)
	return !day.Before(CivilDate(h.StartDate)) && !day.After(CivilDate(h.EndDate))
}
