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
)

type BrandHandler struct {
	config    *config.Config
	templates map[string]*template.Template
}

func NewBrandHandler(cfg *config.Config, templates map[string]*template.Template) *BrandHandler {
	return &BrandHandler{
		config:    cfg,
		templates: templates,
	}
}

func (h *BrandHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var persons []models.Person
	database.GetDB().Order("name asc").Find(&persons)

	data := map[string]interface{}{
		"User":    middleware.GetUserFromContext(r.Context()),
		"Persons": persons,
		"Today":   time.Now().Format("2006-01-02"),
		"Error":   r.URL.Query().Get("error"),
		"Success": r.URL.Query().Get("success"),
	}
	h.templates["brand-form"].ExecuteTemplate(w, "base", data)
}

func (h *BrandHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		http.Redirect(w, r, "/brand/create?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		if isAJAX(r) {
			jsonError(w, http.StatusBadRequest, "Name is required")
			return
		}
		http.Redirect(w, r, "/brand/create?error=Name+is+required", http.StatusSeeOther)
		return
	}

	startDate, err := time.Parse("2006-01-02", r.FormValue("start_date"))
	if err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusBadRequest, "Invalid start date")
			return
		}
		http.Redirect(w, r, "/brand/create?error=Invalid+start+date", http.StatusSeeOther)
		return
	}
	endDate, err := time.Parse("2006-01-02", r.FormValue("end_date"))
	if err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusBadRequest, "Invalid end date")
			return
		}
		http.Redirect(w, r, "/brand/create?error=Invalid+end+date", http.StatusSeeOther)
		return
	}

	coopHours, _ := strconv.ParseFloat(r.FormValue("coop_hours"), 64)

	color := r.FormValue("color")
	if color == "" {
		color = "#000000"
	}

	brand := models.Brand{
		Name:      name,
		Color:     color,
		CoopHours: coopHours,
		StartDate: startDate,
		EndDate:   endDate,
	}

	if v := r.FormValue("responsible"); v != "" {
		rid, err := strconv.ParseUint(v, 10, 32)
		if err == nil {
			id := uint(rid)
			brand.ResponsibleID = &id
		}
	}

	if err := database.GetDB().Create(&brand).Error; err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusInternalServerError, "Failed to create brand: "+err.Error())
			return
		}
		http.Redirect(w, r, "/brand/create?error=Failed+to+create+brand", http.StatusSeeOther)
		return
	}

	if isAJAX(r) {
		jsonSuccess(w, "Brand created")
		return
	}
	http.Redirect(w, r, "/brand/create?success=Brand+created", http.StatusSeeOther)
}
