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

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type InvoiceHandler struct {
	config    *config.Config
	templates map[string]*template.Template
}

func NewInvoiceHandler(cfg *config.Config, templates map[string]*template.Template) *InvoiceHandler {
	return &InvoiceHandler{
		config:    cfg,
		templates: templates,
	}
}

func (h *InvoiceHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	db := database.GetDB()

	var persons []models.Person
	var companies []models.Company
	db.Order("name asc").Find(&persons)
	db.Order("name asc").Find(&companies)

	data := map[string]interface{}{
		"User":      middleware.GetUserFromContext(r.Context()),
		"Persons":   persons,
		"Companies": companies,
		"Today":     time.Now().Format("2006-01-02"),
		"Error":     r.URL.Query().Get("error"),
	}
	h.templates["invoice-form"].ExecuteTemplate(w, "base", data)
}

// itemsFromForm reads the parallel item field arrays. Rows where every
// field is blank are skipped (the form always posts one trailing empty
// row).
func itemsFromForm(r *http.Request) []models.InvoiceItem {
	descs := r.PostForm["item_description"]
	hoursVals := r.PostForm["item_hours"]
	rates := r.PostForm["item_rate"]

	n := len(descs)
	if len(hoursVals) > n {
		n = len(hoursVals)
	}
	if len(rates) > n {
		n = len(rates)
	}

	at := func(vals []string, i int) string {
		if i < len(vals) {
			return vals[i]
		}
		return ""
	}

	var items []models.InvoiceItem
	for i := 0; i < n; i++ {
		desc := at(descs, i)
		hoursStr := at(hoursVals, i)
		rateStr := at(rates, i)
		if desc == "" && hoursStr == "" && rateStr == "" {
			continue
		}
		hours, _ := strconv.ParseFloat(hoursStr, 64)
		rate, _ := strconv.ParseFloat(rateStr, 64)
		items = append(items, models.InvoiceItem{
			Description: desc,
			Hours:       hours,
			Rate:        rate,
			TotalAmount: models.Round2(hours * rate),
		})
	}
	return items
}

// saveItems replaces the invoice's item set and then recomputes the
// header total from what was actually persisted. The recompute must run
// after the item write or a stale total gets stored.
func saveItems(tx *gorm.DB, invoice *models.Invoice, items []models.InvoiceItem) error {
	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = 0
		items[i].InvoiceID = invoice.ID
		if err := tx.Create(&items[i]).Error; err != nil {
			return err
		}
	}

	var total float64
	row := tx.Model(&models.InvoiceItem{}).
		Where("invoice_id = ?", invoice.ID).
		Select("COALESCE(SUM(total_amount), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return err
	}

	invoice.TotalAmount = models.Round2(total)
	return tx.Model(invoice).Update("total_amount", invoice.TotalAmount).Error
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/invoice/create?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	personID, err := strconv.ParseUint(r.FormValue("person"), 10, 32)
	if err != nil {
		http.Redirect(w, r, "/invoice/create?error=Invalid+person", http.StatusSeeOther)
		return
	}

	date, err := time.Parse("2006-01-02", r.FormValue("date"))
	if err != nil {
		http.Redirect(w, r, "/invoice/create?error=Invalid+date", http.StatusSeeOther)
		return
	}

	invoice := models.Invoice{
		PersonID:      uint(personID),
		Company:       r.FormValue("company"),
		Address:       r.FormValue("address"),
		Description:   r.FormValue("description"),
		Date:          date,
		ReceiptNumber: r.FormValue("receipt_number"),
	}
	items := itemsFromForm(r)

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		return saveItems(tx, &invoice, items)
	})
	if err != nil {
		http.Redirect(w, r, "/invoice/create?error=Failed+to+save+invoice", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/?success=Invoice+saved", http.StatusSeeOther)
}

// Update re-saves an invoice's item set; saving the same set twice leaves
// the total unchanged.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Redirect(w, r, "/?error=Invalid+invoice+ID", http.StatusSeeOther)
		return
	}

	var invoice models.Invoice
	if err := database.GetDB().First(&invoice, id).Error; err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusNotFound, "Invoice not found")
			return
		}
		http.Redirect(w, r, "/?error=Invoice+not+found", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	if v := r.FormValue("company"); v != "" {
		invoice.Company = v
	}
	if v := r.FormValue("receipt_number"); v != "" {
		invoice.ReceiptNumber = v
	}
	items := itemsFromForm(r)

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&invoice).Error; err != nil {
			return err
		}
		return saveItems(tx, &invoice, items)
	})
	if err != nil {
		if isAJAX(r) {
			jsonError(w, http.StatusInternalServerError, "Failed to update invoice: "+err.Error())
			return
		}
		http.Redirect(w, r, "/?error=Failed+to+update+invoice", http.StatusSeeOther)
		return
	}

	if isAJAX(r) {
		jsonSuccess(w, "Invoice updated")
		return
	}
	http.Redirect(w, r, "/?success=Invoice+updated", http.StatusSeeOther)
}

// PDFData serves the invoice as JSON for client-side PDF generation.
func (h *InvoiceHandler) PDFData(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}

	var invoice models.Invoice
	if err := database.GetDB().Preload("Person").Preload("Items").First(&invoice, id).Error; err != nil {
		jsonError(w, http.StatusNotFound, "Invoice not found")
		return
	}

	itemData := make([]map[string]interface{}, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		itemData = append(itemData, map[string]interface{}{
			"description":  item.Description,
			"hours":        item.Hours,
			"rate":         item.Rate,
			"total_amount": item.TotalAmount,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"id":             invoice.ID,
			"receipt_number": invoice.ReceiptNumber,
			"date":           invoice.Date.Format("2006-01-02"),
			"company":        invoice.Company,
			"address":        invoice.Address,
			"description":    invoice.Description,
			"total_amount":   invoice.TotalAmount,
			"person": map[string]interface{}{
				"name":      invoice.Person.Name,
				"bank":      invoice.Person.Bank,
				"bank_name": invoice.Person.BankName,
				"account":   invoice.Person.Account,
				"sort_code": invoice.Person.SortCode,
			},
			"items": itemData,
		},
	})
}
