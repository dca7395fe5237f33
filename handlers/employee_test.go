package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"liveadmin/models"
)

type employeeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		EmployeeName string `json:"employee_name"`
		Stats        struct {
			TotalHours         float64 `json:"total_hours"`
			AttendanceRate     float64 `json:"attendance_rate"`
			TotalSchedules     int     `json:"total_schedules"`
			CancelledSchedules int     `json:"cancelled_schedules"`
		} `json:"stats"`
		Schedules []struct {
			Date        string  `json:"date"`
			DateDisplay string  `json:"date_display"`
			Duration    float64 `json:"duration"`
			BrandName   string  `json:"brand_name"`
			BrandColor  string  `json:"brand_color"`
			IsPast      bool    `json:"is_past"`
			IsToday     bool    `json:"is_today"`
			IsFuture    bool    `json:"is_future"`
		} `json:"schedules"`
	} `json:"data"`
}

func getEmployeeSchedule(t *testing.T, h *ScheduleHandler, query string) (*httptest.ResponseRecorder, employeeResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/employee-schedule"+query, nil)
	rr := httptest.NewRecorder()
	h.EmployeeSchedule(rr, req)

	var resp employeeResponse
	if rr.Code == http.StatusOK {
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return rr, resp
}

func TestEmployeeSchedule_Placeholder(t *testing.T) {
	setupTestDB(t)
	h := newTestScheduleHandler(time.Now())

	rr, resp := getEmployeeSchedule(t, h, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !resp.Success || resp.Data.EmployeeName != "" || len(resp.Data.Schedules) != 0 {
		t.Errorf("placeholder payload = %+v", resp.Data)
	}
	if resp.Data.Stats.AttendanceRate != 0 {
		t.Errorf("placeholder attendance = %v, want 0", resp.Data.Stats.AttendanceRate)
	}
}

func TestEmployeeSchedule_UnknownEmployee(t *testing.T) {
	setupTestDB(t)
	h := newTestScheduleHandler(time.Now())

	rr, _ := getEmployeeSchedule(t, h, "?employee_id=42")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestEmployeeSchedule_StatsAndFlags(t *testing.T) {
	db := setupTestDB(t)

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	h := newTestScheduleHandler(now)

	p := createPerson(t, db, "Alice")
	brand := &models.Brand{Name: "Glow", Color: "#ff0000",
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)}
	if err := db.Create(brand).Error; err != nil {
		t.Fatalf("create brand: %v", err)
	}

	past := createSchedule(t, db, p.ID, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), "09:00", "17:30", 1)
	past.BrandID = &brand.ID
	past.IsLateCancellation = true
	db.Save(past)
	createSchedule(t, db, p.ID, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), "10:00", "12:00", 1)
	createSchedule(t, db, p.ID, time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC), "10:00", "11:00", 1)
	// Outside the ±30 day window and outside the month.
	createSchedule(t, db, p.ID, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), "10:00", "11:00", 1)

	rr, resp := getEmployeeSchedule(t, h, "?employee_id="+itoa(p.ID))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	if resp.Data.EmployeeName != "Alice" {
		t.Errorf("employee_name = %q", resp.Data.EmployeeName)
	}
	st := resp.Data.Stats
	if st.TotalSchedules != 3 {
		t.Errorf("total_schedules = %d, want 3 (month only)", st.TotalSchedules)
	}
	if st.CancelledSchedules != 1 {
		t.Errorf("cancelled_schedules = %d, want 1", st.CancelledSchedules)
	}
	if st.TotalHours != 11.5 {
		t.Errorf("total_hours = %v, want 11.5", st.TotalHours)
	}
	if st.AttendanceRate != 66.7 {
		t.Errorf("attendance_rate = %v, want 66.7", st.AttendanceRate)
	}

	if len(resp.Data.Schedules) != 3 {
		t.Fatalf("got %d schedule entries, want 3 in the ±30 day range", len(resp.Data.Schedules))
	}
	// Ordered newest first.
	future, today, pastEntry := resp.Data.Schedules[0], resp.Data.Schedules[1], resp.Data.Schedules[2]
	if !future.IsFuture || future.Date != "2026-06-20" {
		t.Errorf("future entry = %+v", future)
	}
	if !today.IsToday || today.Date != "2026-06-15" {
		t.Errorf("today entry = %+v", today)
	}
	if !pastEntry.IsPast || pastEntry.Date != "2026-06-10" {
		t.Errorf("past entry = %+v", pastEntry)
	}
	if pastEntry.BrandName != "Glow" || pastEntry.BrandColor != "#ff0000" {
		t.Errorf("brand on past entry = %q %q", pastEntry.BrandName, pastEntry.BrandColor)
	}
	if today.BrandName != "No brand" || today.BrandColor != "#6c757d" {
		t.Errorf("brandless entry = %q %q", today.BrandName, today.BrandColor)
	}
	if pastEntry.Duration != 8.5 {
		t.Errorf("duration = %v, want 8.5", pastEntry.Duration)
	}
	if pastEntry.DateDisplay != "06/10" {
		t.Errorf("date_display = %q, want 06/10", pastEntry.DateDisplay)
	}
}

func TestEmployeeSchedule_MethodNotAllowed(t *testing.T) {
	setupTestDB(t)
	h := newTestScheduleHandler(time.Now())

	req := httptest.NewRequest(http.MethodPost, "/api/employee-schedule", nil)
	rr := httptest.NewRecorder()
	h.EmployeeSchedule(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
}
