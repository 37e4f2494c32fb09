package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayOfWeek follows ISO numbering: Monday=1 .. Sunday=7.
type DayOfWeek int

const (
	Monday DayOfWeek = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{"", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// AllDays lists the week in ISO order.
var AllDays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDayOfWeek accepts a name ("monday", "MON") or an ISO number ("1").
func ParseDayOfWeek(value string) (DayOfWeek, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	if n, err := strconv.Atoi(value); err == nil {
		d := DayOfWeek(n)
		if !d.Valid() {
			return 0, fmt.Errorf("day of week %d out of range 1-7", n)
		}
		return d, nil
	}
	if len(value) >= 3 {
		for i := 1; i < len(dayNames); i++ {
			if strings.HasPrefix(dayNames[i], value) {
				return DayOfWeek(i), nil
			}
		}
	}
	return 0, fmt.Errorf("invalid day of week %q", value)
}

// DayOf returns the ISO weekday of t.
func DayOf(t time.Time) DayOfWeek {
	wd := t.Weekday()
	if wd == time.Sunday {
		return Sunday
	}
	return DayOfWeek(wd)
}

func (d DayOfWeek) Valid() bool { return d >= Monday && d <= Sunday }

// Weekday converts to the standard library representation.
func (d DayOfWeek) Weekday() time.Weekday {
	return time.Weekday(int(d) % 7)
}

// Distance is the shortest number of days between d and o around the week.
func (d DayOfWeek) Distance(o DayOfWeek) int {
	diff := int(d) - int(o)
	if diff < 0 {
		diff = -diff
	}
	if 7-diff < diff {
		return 7 - diff
	}
	return diff
}

func (d DayOfWeek) String() string {
	if !d.Valid() {
		return "DayOfWeek(" + strconv.Itoa(int(d)) + ")"
	}
	return dayNames[d]
}

func (d DayOfWeek) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts both names and ISO numbers.
func (d *DayOfWeek) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var (
		parsed DayOfWeek
		err    error
	)
	switch v := raw.(type) {
	case string:
		parsed, err = ParseDayOfWeek(v)
	case float64:
		parsed, err = ParseDayOfWeek(strconv.Itoa(int(v)))
	default:
		err = fmt.Errorf("invalid day of week %v", raw)
	}
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the ISO number.
func (d DayOfWeek) Value() (driver.Value, error) {
	return int64(d), nil
}

// Scan reads the ISO number.
func (d *DayOfWeek) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*d = DayOfWeek(v)
	case []byte:
		n, err := strconv.Atoi(string(v))
		if err != nil {
			return fmt.Errorf("scan day of week: %w", err)
		}
		*d = DayOfWeek(n)
	default:
		return fmt.Errorf("unsupported day of week source %T", src)
	}
	return nil
}
