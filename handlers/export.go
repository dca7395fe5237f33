package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"liveadmin/config"
	"liveadmin/database"
	"liveadmin/middleware"
	"liveadmin/models"

	"github.com/xuri/excelize/v2"
)

type ExportHandler struct {
	config    *config.Config
	templates map[string]*template.Template
}

func NewExportHandler(cfg *config.Config, templates map[string]*template.Template) *ExportHandler {
	return &ExportHandler{
		config:    cfg,
		templates: templates,
	}
}

func (h *ExportHandler) Page(w http.ResponseWriter, r *http.Request) {
	currentYear := time.Now().Year()
	years := make([]int, 5)
	for i := 0; i < 5; i++ {
		years[i] = currentYear - i
	}

	data := map[string]interface{}{
		"User":         middleware.GetUserFromContext(r.Context()),
		"Years":        years,
		"CurrentMonth": int(time.Now().Month()),
		"CurrentYear":  currentYear,
	}
	h.templates["export"].ExecuteTemplate(w, "base", data)
}

func monthEntries(r *http.Request) ([]models.Schedule, int, int, error) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		return nil, 0, 0, fmt.Errorf("invalid month")
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2100 {
		return nil, 0, 0, fmt.Errorf("invalid year")
	}

	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, 0)

	var entries []models.Schedule
	database.GetDB().Preload("Person").Preload("Brand").
		Where("date >= ? AND date < ?", startDate, endDate).
		Order("date asc, room asc, start_time asc").Find(&entries)

	return entries, year, month, nil
}

func scheduleRecord(s *models.Schedule) []string {
	brandName := ""
	if s.Brand != nil {
		brandName = s.Brand.Name
	}
	return []string{
		s.Date.Format("2006-01-02"),
		s.Person.DisplayName(),
		string(s.Role),
		shortClock(s.StartTime),
		shortClock(s.EndTime),
		fmt.Sprintf("%.2f", s.Duration()),
		strconv.Itoa(s.Room),
		brandName,
		string(s.ModificationStatus),
		fmt.Sprintf("%.2f", s.LateHours),
	}
}

var exportHeader = []string{
	"Date", "Person", "Role", "Start", "End", "Hours",
	"Room", "Brand", "Status", "Late Hours",
}

func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	entries, year, month, err := monthEntries(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filename := fmt.Sprintf("schedules_%d_%02d.csv", year, month)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write(exportHeader)
	for i := range entries {
		writer.Write(scheduleRecord(&entries[i]))
	}
}

// XLSX writes the same monthly export as a spreadsheet, with a per-person
// hours summary appended below the entries.
func (h *ExportHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	entries, year, month, err := monthEntries(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := make([]interface{}, len(exportHeader))
	for i, v := range exportHeader {
		header[i] = v
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		http.Error(w, "Failed to build spreadsheet", http.StatusInternalServerError)
		return
	}

	row := 2
	personHours := make(map[string]float64)
	for i := range entries {
		rec := scheduleRecord(&entries[i])
		excelRow := make([]interface{}, len(rec))
		for j, v := range rec {
			excelRow[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			http.Error(w, "Failed to build spreadsheet", http.StatusInternalServerError)
			return
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			http.Error(w, "Failed to build spreadsheet", http.StatusInternalServerError)
			return
		}
		personHours[entries[i].Person.DisplayName()] += entries[i].Duration()
		row++
	}

	// Summary block.
	row++
	for name, hours := range personHours {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			http.Error(w, "Failed to build spreadsheet", http.StatusInternalServerError)
			return
		}
		summary := []interface{}{name, models.Round2(hours)}
		if err := f.SetSheetRow(sheet, cell, &summary); err != nil {
			http.Error(w, "Failed to build spreadsheet", http.StatusInternalServerError)
			return
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		http.Error(w, "Failed to write spreadsheet", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("schedules_%d_%02d.xlsx", year, month)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Write(buf.Bytes())
}
