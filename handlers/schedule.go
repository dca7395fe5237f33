package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"liveadmin/config"
	"liveadmin/database"
	"liveadmin/middleware"
	"liveadmin/models"
	"liveadmin/stats"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type ScheduleHandler struct {
	config    *config.Config
	templates map[string]*template.Template
	// now is swappable so lateness checks are deterministic under test.
	now func() time.Time
}

func NewScheduleHandler(cfg *config.Config, templates map[string]*template.Template) *ScheduleHandler {
	return &ScheduleHandler{
		config:    cfg,
		templates: templates,
		now:       time.Now,
	}
}

// scheduleView is the per-entry payload used by the calendar page script
// and the employee-schedule API.
type scheduleView struct {
	ID                 int     `json:"id"`
	Date               string  `json:"date"`
	DateDisplay        string  `json:"date_display"`
	PersonName         string  `json:"person_name"`
	StartTime          string  `json:"start_time"`
	EndTime            string  `json:"end_time"`
	Duration           float64 `json:"duration"`
	Role               string  `json:"role"`
	BrandName          string  `json:"brand_name"`
	BrandColor         string  `json:"brand_color"`
	Room               int     `json:"room"`
	IsCancelled        bool    `json:"is_cancelled"`
	ModificationStatus string  `json:"modification_status"`
	IsPast             bool    `json:"is_past"`
	IsToday            bool    `json:"is_today"`
	IsFuture           bool    `json:"is_future"`
}

func shortClock(s string) string {
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}

// brandRow pairs a Brand with this month's scheduled hours and the share
// of its cooperation budget already used.
type brandRow struct {
	models.Brand
	MonthHours float64
	Progress   float64
}

// CalendarPage renders the date form: the selected day's schedules, a
// by-date map for the calendar grid, brand progress for the current month,
// and the most recent late/cancel records.
func (h *ScheduleHandler) CalendarPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	db := database.GetDB()
	today := h.now()

	var persons []models.Person
	db.Order("name asc").Find(&persons)

	selectedDateStr := r.URL.Query().Get("date")
	var daySchedules []models.Schedule
	if selectedDateStr != "" {
		if d, err := time.Parse("2006-01-02", selectedDateStr); err == nil {
			db.Preload("Person").Preload("Brand").
				Where("date = ?", d).Order("start_time asc").Find(&daySchedules)
		}
	}

	// All schedules keyed by date for the calendar grid script.
	var all []models.Schedule
	db.Preload("Person").Preload("Brand").Find(&all)
	byDate := make(map[string][]scheduleView)
	for i := range all {
		s := &all[i]
		v := scheduleView{
			ID:                 int(s.ID),
			Date:               s.Date.Format("2006-01-02"),
			PersonName:         s.Person.Name,
			StartTime:          shortClock(s.StartTime),
			EndTime:            shortClock(s.EndTime),
			Duration:           s.Duration(),
			Role:               string(s.Role),
			Room:               s.Room,
			IsCancelled:        s.IsLateCancellation,
			ModificationStatus: string(s.ModificationStatus),
		}
		if s.Brand != nil {
			v.BrandName = s.Brand.Name
			v.BrandColor = s.Brand.Color
		}
		byDate[v.Date] = append(byDate[v.Date], v)
	}
	byDateJSON, _ := json.Marshal(byDate)

	var brands []models.Brand
	db.Find(&brands)
	monthStart, monthEnd := stats.MonthRange(today)
	var monthRows []models.Schedule
	db.Where("date >= ? AND date < ?", monthStart, monthEnd).Find(&monthRows)
	monthHours := stats.BrandMonthHours(monthRows)

	brandRows := make([]brandRow, 0, len(brands))
	for _, b := range brands {
		hours := monthHours[b.ID]
		brandRows = append(brandRows, brandRow{
			Brand:      b,
			MonthHours: hours,
			Progress:   stats.Progress(hours, b.CoopHours),
		})
	}

	// Recent late/cancel records for the side panel.
	var records []models.Schedule
	db.Preload("Person").Preload("Brand").
		Where("modification_status IN ? AND modified_at IS NOT NULL",
			[]models.ModificationStatus{models.StatusLate, models.StatusCancelled}).
		Order("modified_at desc").Limit(20).Find(&records)

	data := map[string]interface{}{
		"User":            user,
		"Persons":         persons,
		"Schedules":       daySchedules,
		"SchedulesByDate": template.JS(byDateJSON),
		"Brands":          brandRows,
		"CurrentMonth":    int(today.Month()),
		"Records":         records,
		"SelectedDate":    selectedDateStr,
		"Error":           r.URL.Query().Get("error"),
		"Success":         r.URL.Query().Get("success"),
	}
	h.templates["date-form"].ExecuteTemplate(w, "base", data)
}

// scheduleFromForm parses and validates the shared create/edit form
// fields. start must come strictly before end; overnight wrap is rejected.
func scheduleFromForm(r *http.Request, s *models.Schedule) error {
	date, err := time.Parse("2006-01-02", r.FormValue("date"))
	if err != nil {
		return fmt.Errorf("invalid date")
	}

	personID, err := strconv.ParseUint(r.FormValue("person"), 10, 32)
	if err != nil {
		return fmt.Errorf("invalid person")
	}

	role := models.Role(r.FormValue("role"))
	if !role.Valid() {
		return fmt.Errorf("role must be host or operator")
	}

	start := r.FormValue("start_time")
	end := r.FormValue("end_time")
	startAt, err := time.Parse("15:04", shortClock(start))
	if err != nil {
		return fmt.Errorf("invalid start time")
	}
	endAt, err := time.Parse("15:04", shortClock(end))
	if err != nil {
		return fmt.Errorf("invalid end time")
	}
	if !startAt.Before(endAt) {
		return fmt.Errorf("start time must be before end time")
	}

	room := 0
	if v := r.FormValue("room"); v != "" {
		room, err = strconv.Atoi(v)
		if err != nil || room < 0 {
			return fmt.Errorf("invalid room")
		}
	}

	var brandID *uint
	if v := r.FormValue("brand"); v != "" {
		bid, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid brand")
		}
		id := uint(bid)
		brandID = &id
	}

	s.Date = date
	s.PersonID = uint(personID)
	s.Role = role
	s.StartTime = shortClock(start)
	s.EndTime = shortClock(end)
	s.Room = room
	s.BrandID = brandID
	return nil
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		http.Redirect(w, r, "/date-form?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	var sched models.Schedule
	if err := scheduleFromForm(r, &sched); err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		http.Redirect(w, r, "/date-form?error="+template.URLQueryEscaper(err.Error()), http.StatusSeeOther)
		return
	}

	if err := database.GetDB().Create(&sched).Error; err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusInternalServerError, "Failed to save schedule: "+err.Error())
			return
		}
		http.Redirect(w, r, "/date-form?error=Failed+to+save+schedule", http.StatusSeeOther)
		return
	}

	if isAJAX(r) {
		jsonSuccess(w, "Schedule saved")
		return
	}
	http.Redirect(w, r, "/date-form?date="+r.FormValue("date"), http.StatusSeeOther)
}

func (h *ScheduleHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Redirect(w, r, "/date-form?error=Invalid+schedule+ID", http.StatusSeeOther)
		return
	}

	var sched models.Schedule
	if err := database.GetDB().Preload("Person").Preload("Brand").First(&sched, id).Error; err != nil {
		http.Redirect(w, r, "/date-form?error=Schedule+not+found", http.StatusSeeOther)
		return
	}

	var persons []models.Person
	var brands []models.Brand
	database.GetDB().Order("name asc").Find(&persons)
	database.GetDB().Find(&brands)

	data := map[string]interface{}{
		"User":     middleware.GetUserFromContext(r.Context()),
		"Schedule": &sched,
		"Persons":  persons,
		"Brands":   brands,
		"Error":    r.URL.Query().Get("error"),
	}
	h.templates["schedule-form"].ExecuteTemplate(w, "base", data)
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusBadRequest, "Invalid schedule ID")
			return
		}
		http.Redirect(w, r, "/date-form?error=Invalid+schedule+ID", http.StatusSeeOther)
		return
	}

	var sched models.Schedule
	if err := database.GetDB().First(&sched, id).Error; err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusNotFound, "Schedule not found")
			return
		}
		http.Redirect(w, r, "/date-form?error=Schedule+not+found", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		http.Redirect(w, r, "/date-form?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	if err := scheduleFromForm(r, &sched); err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/schedule/edit/%d?error=%s", id, template.URLQueryEscaper(err.Error())), http.StatusSeeOther)
		return
	}

	if err := database.GetDB().Save(&sched).Error; err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusInternalServerError, "Failed to update schedule: "+err.Error())
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/schedule/edit/%d?error=Failed+to+update", id), http.StatusSeeOther)
		return
	}

	if isAJAX(r) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
		return
	}
	http.Redirect(w, r, "/date-form?date="+sched.Date.Format("2006-01-02"), http.StatusSeeOther)
}

// Delete removes one schedule. A missing id is an error, not a no-op.
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusBadRequest, "Invalid schedule ID")
			return
		}
		http.Redirect(w, r, "/date-form?error=Invalid+schedule+ID", http.StatusSeeOther)
		return
	}

	date := r.URL.Query().Get("date")

	var sched models.Schedule
	if err := database.GetDB().First(&sched, id).Error; err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusNotFound, "Schedule not found")
			return
		}
		http.Redirect(w, r, "/date-form?date="+date+"&error=Schedule+not+found", http.StatusSeeOther)
		return
	}

	if err := database.GetDB().Delete(&sched).Error; err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusInternalServerError, "Delete failed: "+err.Error())
			return
		}
		http.Redirect(w, r, "/date-form?date="+date+"&error=Delete+failed", http.StatusSeeOther)
		return
	}

	if isAJAX(r) {
		jsonSuccess(w, "Schedule deleted")
		return
	}
	http.Redirect(w, r, "/date-form?date="+date+"&success=Schedule+deleted", http.StatusSeeOther)
}

type cancelRequest struct {
	Date               string      `json:"date"`
	Room               int         `json:"room"`
	Reason             string      `json:"reason"`
	LateHours          interface{} `json:"late_hours"`
	ModificationReason string      `json:"modification_reason"`
}

// lateHoursValue coerces the loosely-typed late_hours field; anything
// unparsable counts as 0.
func lateHoursValue(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// BulkCancel marks every schedule on a (date, room) pair late or
// cancelled. Lateness against the wall clock is a separate concern from
// the submitted reason: the is_late_cancellation flag is set only when the
// slot had already started, whichever reason was given.
func (h *ScheduleHandler) BulkCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, http.StatusMethodNotAllowed, "Only POST is supported")
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Date == "" || req.Room == 0 {
		jsonError(w, http.StatusBadRequest, "Missing date or room")
		return
	}

	targetDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid date")
		return
	}

	db := database.GetDB()

	var schedules []models.Schedule
	if err := db.Where("date = ? AND room = ?", targetDate, req.Room).Find(&schedules).Error; err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(schedules) == 0 {
		jsonError(w, http.StatusNotFound, "No matching schedules")
		return
	}

	now := h.now()
	isLate := now.After(schedules[0].StartsAt())
	lateHours := lateHoursValue(req.LateHours)

	err = db.Transaction(func(tx *gorm.DB) error {
		for i := range schedules {
			sched := &schedules[i]

			var person models.Person
			if err := tx.First(&person, sched.PersonID).Error; err != nil {
				return err
			}

			modifiedAt := now
			sched.ModifiedAt = &modifiedAt

			switch req.Reason {
			case "late":
				person.LateCount++
				sched.ModificationStatus = models.StatusLate
				sched.ModificationReason = req.ModificationReason
				if sched.ModificationReason == "" {
					sched.ModificationReason = "Late arrival"
				}
				sched.LateHours = lateHours
				if err := tx.Create(&models.ScheduleEvent{
					Kind:       models.EventLate,
					ScheduleID: sched.ID,
					PersonID:   person.ID,
					Reason:     sched.ModificationReason,
					LateHours:  lateHours,
				}).Error; err != nil {
					return err
				}
			case "cancel":
				person.CancelCount++
				sched.ModificationStatus = models.StatusCancelled
				sched.ModificationReason = req.ModificationReason
				if sched.ModificationReason == "" {
					sched.ModificationReason = "Stream cancelled"
				}
				if err := tx.Create(&models.ScheduleEvent{
					Kind:       models.EventCancel,
					ScheduleID: sched.ID,
					PersonID:   person.ID,
					Reason:     sched.ModificationReason,
				}).Error; err != nil {
					return err
				}
			}

			if err := tx.Save(&person).Error; err != nil {
				return err
			}

			if isLate {
				sched.IsLateCancellation = true
			}
			if err := tx.Save(sched).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}

	jsonSuccess(w, "Operation completed")
}

// EmployeeSchedule is the roster panel API: the employee's current-month
// stats plus entries within 30 days either side of today.
func (h *ScheduleHandler) EmployeeSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, http.StatusMethodNotAllowed, "Only GET is supported")
		return
	}

	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"employee_name": "",
				"stats":         stats.MonthStats{AttendanceRate: 0},
				"schedules":     []scheduleView{},
			},
		})
		return
	}

	id, err := strconv.ParseUint(employeeID, 10, 32)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid employee ID")
		return
	}

	db := database.GetDB()

	var person models.Person
	if err := db.First(&person, id).Error; err != nil {
		jsonError(w, http.StatusNotFound, "Employee not found")
		return
	}

	now := h.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	rangeStart := today.AddDate(0, 0, -30)
	rangeEnd := today.AddDate(0, 0, 30)

	var schedules []models.Schedule
	db.Preload("Brand").
		Where("person_id = ? AND date >= ? AND date <= ?", person.ID, rangeStart, rangeEnd).
		Order("date desc, start_time asc").Find(&schedules)

	monthStart, monthEnd := stats.MonthRange(now)
	var monthRows []models.Schedule
	db.Where("person_id = ? AND date >= ? AND date < ?", person.ID, monthStart, monthEnd).
		Find(&monthRows)

	views := make([]scheduleView, 0, len(schedules))
	for i := range schedules {
		s := &schedules[i]
		day := time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), 0, 0, 0, 0, time.UTC)
		v := scheduleView{
			ID:                 int(s.ID),
			Date:               s.Date.Format("2006-01-02"),
			DateDisplay:        s.Date.Format("01/02"),
			StartTime:          shortClock(s.StartTime),
			EndTime:            shortClock(s.EndTime),
			Duration:           s.Duration(),
			Role:               string(s.Role),
			BrandName:          "No brand",
			BrandColor:         "#6c757d",
			Room:               s.Room,
			IsCancelled:        s.IsLateCancellation,
			ModificationStatus: string(s.ModificationStatus),
			IsPast:             day.Before(today),
			IsToday:            day.Equal(today),
			IsFuture:           day.After(today),
		}
		if s.Brand != nil {
			v.BrandName = s.Brand.Name
			v.BrandColor = s.Brand.Color
		}
		views = append(views, v)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"employee_name": person.Name,
			"stats":         stats.EmployeeMonthStats(monthRows),
			"schedules":     views,
		},
	})
}
