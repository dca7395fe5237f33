// Package stats derives view-model numbers from raw schedule rows. All
// functions are pure: callers fetch the relevant row sets once (a calendar
// month, a trailing window) and pass them in together with a reference
// date, so list views stay O(persons + rows) and the math is reproducible
// under test.
package stats

import (
	"math"
	"time"

	"liveadmin/models"
)

// PersonStats is the per-person block shown on the roster page.
type PersonStats struct {
	TotalHours       float64 `json:"total_hours"`
	MonthlyLateHours float64 `json:"monthly_late_hours"`
	// AttendanceRate is nil when the person had no schedules in the window.
	AttendanceRate *float64 `json:"attendance_rate"`
}

// BuildPersonStats groups monthRows (the reference calendar month) and
// windowRows (the trailing 30-day window) by person and reduces each group.
// Attendance rate = (scheduled − late-cancelled) / scheduled × 100 over the
// window, rounded to 2 decimals.
func BuildPersonStats(monthRows, windowRows []models.Schedule) map[uint]PersonStats {
	out := make(map[uint]PersonStats)

	monthByPerson := make(map[uint][]models.Schedule)
	for _, s := range monthRows {
		monthByPerson[s.PersonID] = append(monthByPerson[s.PersonID], s)
	}
	windowByPerson := make(map[uint][]models.Schedule)
	for _, s := range windowRows {
		windowByPerson[s.PersonID] = append(windowByPerson[s.PersonID], s)
	}

	for id, rows := range monthByPerson {
		st := out[id]
		var hours, late float64
		for i := range rows {
			hours += rows[i].Duration()
			late += rows[i].LateHours
		}
		st.TotalHours = models.Round2(hours)
		st.MonthlyLateHours = models.Round2(late)
		out[id] = st
	}

	for id, rows := range windowByPerson {
		st := out[id]
		scheduled := len(rows)
		cancelled := 0
		for i := range rows {
			if rows[i].IsLateCancellation {
				cancelled++
			}
		}
		if scheduled > 0 {
			rate := models.Round2(float64(scheduled-cancelled) / float64(scheduled) * 100)
			st.AttendanceRate = &rate
		}
		out[id] = st
	}

	return out
}

// BrandMonthHours sums scheduled duration per brand over the given rows
// (callers pass the current calendar month), rounded to 2 decimals.
func BrandMonthHours(rows []models.Schedule) map[uint]float64 {
	out := make(map[uint]float64)
	for i := range rows {
		if rows[i].BrandID == nil {
			continue
		}
		out[*rows[i].BrandID] += rows[i].Duration()
	}
	for id, h := range out {
		out[id] = models.Round2(h)
	}
	return out
}

// Progress is the share of a brand's cooperation budget already scheduled
// this month, as a percentage. A zero budget yields 0.
func Progress(monthHours, coopHours float64) float64 {
	if coopHours <= 0 {
		return 0
	}
	return models.Round2(monthHours / coopHours * 100)
}

// MonthStats is the summary block of the employee-schedule API, computed
// over the employee's current-month rows. The API historically rounds to
// one decimal and reports 100% attendance when the month is empty.
type MonthStats struct {
	TotalHours         float64 `json:"total_hours"`
	AttendanceRate     float64 `json:"attendance_rate"`
	TotalSchedules     int     `json:"total_schedules"`
	CancelledSchedules int     `json:"cancelled_schedules"`
}

func EmployeeMonthStats(monthRows []models.Schedule) MonthStats {
	st := MonthStats{AttendanceRate: 100, TotalSchedules: len(monthRows)}
	var hours float64
	for i := range monthRows {
		hours += monthRows[i].Duration()
		if monthRows[i].IsLateCancellation {
			st.CancelledSchedules++
		}
	}
	st.TotalHours = round1(hours)
	if st.TotalSchedules > 0 {
		st.AttendanceRate = round1(float64(st.TotalSchedules-st.CancelledSchedules) /
			float64(st.TotalSchedules) * 100)
	}
	return st
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// MonthRange returns the [start, end) bounds of ref's calendar month, for
// date-range queries.
func MonthRange(ref time.Time) (time.Time, time.Time) {
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// WindowRange returns the inclusive trailing 30-day window [ref−29, ref]
// used for attendance rates.
func WindowRange(ref time.Time) (time.Time, time.Time) {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -29), day
}
