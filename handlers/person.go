package handlers

import (
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
)

type PersonHandler struct {
	config    *config.Config
	templates map[string]*template.Template
	now       func() time.Time
}

func NewPersonHandler(cfg *config.Config, templates map[string]*template.Template) *PersonHandler {
	return &PersonHandler{
		config:    cfg,
		templates: templates,
		now:       time.Now,
	}
}

// personRow pairs a Person with its derived monthly stats for the roster
// template.
type personRow struct {
	models.Person
	Stats stats.PersonStats
}

// List renders the roster: every person with current-month hours, late
// hours, and the trailing 30-day attendance rate. Schedule rows are
// fetched in two bulk queries and grouped in memory, so the page stays
// O(persons + rows) regardless of roster size.
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	db := database.GetDB()
	today := h.now()

	var persons []models.Person
	db.Order("name asc").Find(&persons)

	monthStart, monthEnd := stats.MonthRange(today)
	windowStart, windowEnd := stats.WindowRange(today)

	var monthRows, windowRows []models.Schedule
	db.Where("date >= ? AND date < ?", monthStart, monthEnd).Find(&monthRows)
	db.Where("date >= ? AND date < ?", windowStart, windowEnd.AddDate(0, 0, 1)).Find(&windowRows)

	byPerson := stats.BuildPersonStats(monthRows, windowRows)

	rows := make([]personRow, 0, len(persons))
	for _, p := range persons {
		rows = append(rows, personRow{Person: p, Stats: byPerson[p.ID]})
	}

	var invoices []models.Invoice
	db.Preload("Person").Order("date desc").Find(&invoices)

	data := map[string]interface{}{
		"User":     user,
		"Persons":  rows,
		"Invoices": invoices,
		"Error":    r.URL.Query().Get("error"),
		"Success":  r.URL.Query().Get("success"),
	}
	h.templates["person-list"].ExecuteTemplate(w, "base", data)
}

func (h *PersonHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"User":  middleware.GetUserFromContext(r.Context()),
		"Error": r.URL.Query().Get("error"),
	}
	h.templates["person-form"].ExecuteTemplate(w, "base", data)
}

func (h *PersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		http.Redirect(w, r, "/person/create?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	person := models.Person{
		Name:     r.FormValue("name"),
		NickName: r.FormValue("nick_name"),
		Bank:     r.FormValue("bank"),
		Account:  r.FormValue("account"),
		SortCode: r.FormValue("sort_code"),
		BankName: r.FormValue("bank_name"),
	}

	if person.Name == "" {
		if isAJAX(r) {
			jsonError(w, http.StatusBadRequest, "Name is required")
			return
		}
		http.Redirect(w, r, "/person/create?error=Name+is+required", http.StatusSeeOther)
		return
	}

	if err := database.GetDB().Create(&person).Error; err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusInternalServerError, "Failed to create person: "+err.Error())
			return
		}
		http.Redirect(w, r, "/person/create?error=Failed+to+create+person", http.StatusSeeOther)
		return
	}

	if isAJAX(r) {
		jsonSuccess(w, "Person created")
		return
	}
	http.Redirect(w, r, "/?success=Person+created", http.StatusSeeOther)
}

func (h *PersonHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Redirect(w, r, "/?error=Invalid+person+ID", http.StatusSeeOther)
		return
	}

	var person models.Person
	if err := database.GetDB().First(&person, id).Error; err != nil {
		http.Redirect(w, r, "/?error=Person+not+found", http.StatusSeeOther)
		return
	}

	data := map[string]interface{}{
		"User":   middleware.GetUserFromContext(r.Context()),
		"Person": &person,
		"Error":  r.URL.Query().Get("error"),
	}
	h.templates["person-edit"].ExecuteTemplate(w, "base", data)
}

func (h *PersonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Redirect(w, r, "/?error=Invalid+person+ID", http.StatusSeeOther)
		return
	}

	var person models.Person
	if err := database.GetDB().First(&person, id).Error; err != nil {
		http.Redirect(w, r, "/?error=Person+not+found", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	person.Name = r.FormValue("name")
	person.NickName = r.FormValue("nick_name")
	person.Bank = r.FormValue("bank")
	person.Account = r.FormValue("account")
	person.SortCode = r.FormValue("sort_code")
	person.BankName = r.FormValue("bank_name")

	if person.Name == "" {
		http.Redirect(w, r, "/person/edit/"+strconv.FormatUint(id, 10)+"?error=Name+is+required", http.StatusSeeOther)
		return
	}

	if err := database.GetDB().Save(&person).Error; err != nil {
		http.Redirect(w, r, "/person/edit/"+strconv.FormatUint(id, 10)+"?error=Failed+to+update", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/?success=Person+updated", http.StatusSeeOther)
}

// RebuildCounters re-derives the late/cancel tallies from the event log.
// Admin-only maintenance action.
func (h *PersonHandler) RebuildCounters(w http.ResponseWriter, r *http.Request) {
	if err := database.RebuildPersonCounters(database.GetDB()); err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusInternalServerError, "Rebuild failed: "+err.Error())
			return
		}
		http.Redirect(w, r, "/?error=Rebuild+failed", http.StatusSeeOther)
		return
	}
	if isAJAX(r) {
		jsonSuccess(w, "Counters rebuilt")
		return
	}
	http.Redirect(w, r, "/?success=Counters+rebuilt", http.StatusSeeOther)
}
