package main

import (
	"html/template"
	"log"
	"net/http"

	"liveadmin/config"
	"liveadmin/database"
	"liveadmin/handlers"
	"liveadmin/middleware"
	"liveadmin/models"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	middleware.SetJWTSecret(cfg.JWTSecret)

	if err := database.Init(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	funcMap := template.FuncMap{
		"deref": func(p *uint) uint {
			if p == nil {
				return 0
			}
			return *p
		},
		"derefFloat": func(p *float64) float64 {
			if p == nil {
				return 0
			}
			return *p
		},
	}

	// Parse templates - each page template paired with base
	templates := make(map[string]*template.Template)
	pages := []string{
		"login", "change-password",
		"person-list", "person-form", "person-edit",
		"invoice-form", "date-form", "schedule-form", "brand-form",
		"export",
	}
	for _, page := range pages {
		templates[page] = template.Must(template.New("").Funcs(funcMap).ParseFiles(
			"templates/base.html",
			"templates/"+page+".html",
		))
	}

	authHandler := handlers.NewAuthHandler(cfg, templates)
	personHandler := handlers.NewPersonHandler(cfg, templates)
	scheduleHandler := handlers.NewScheduleHandler(cfg, templates)
	brandHandler := handlers.NewBrandHandler(cfg, templates)
	invoiceHandler := handlers.NewInvoiceHandler(cfg, templates)
	exportHandler := handlers.NewExportHandler(cfg, templates)

	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Metrics)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if cfg.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler())
	}

	// Public routes
	router.Get("/login", authHandler.LoginPage)
	router.Post("/login", authHandler.Login)
	router.Get("/logout", authHandler.Logout)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)

		r.Get("/change-password", authHandler.ChangePasswordPage)
		r.Post("/change-password", authHandler.ChangePassword)

		// Roster
		r.Get("/", personHandler.List)
		r.Get("/person/create", personHandler.CreatePage)
		r.Post("/person/create", personHandler.Create)
		r.Get("/person/edit/{id}", personHandler.EditPage)
		r.Post("/person/edit/{id}", personHandler.Update)

		// Invoices
		r.Get("/invoice/create", invoiceHandler.CreatePage)
		r.Post("/invoice/create", invoiceHandler.Create)
		r.Post("/invoice/edit/{id}", invoiceHandler.Update)
		r.Get("/invoice/{id}/pdf-data", invoiceHandler.PDFData)

		// Scheduling
		r.Get("/date-form", scheduleHandler.CalendarPage)
		r.Post("/date-form", scheduleHandler.Create)
		r.Post("/date-form/delete/{id}", scheduleHandler.Delete)
		r.Get("/schedule/edit/{id}", scheduleHandler.EditPage)
		r.Post("/schedule/edit/{id}", scheduleHandler.Update)
		// These two check the method themselves so non-matching methods
		// get the JSON 405 their callers expect.
		r.HandleFunc("/cancel-schedule", scheduleHandler.BulkCancel)
		r.HandleFunc("/api/employee-schedule", scheduleHandler.EmployeeSchedule)

		// Brands
		r.Get("/brand/create", brandHandler.CreatePage)
		r.Post("/brand/create", brandHandler.Create)

		// Admin only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Get("/export", exportHandler.Page)
			r.Get("/export/csv", exportHandler.CSV)
			r.Get("/export/xlsx", exportHandler.XLSX)
			r.Post("/admin/rebuild-counters", personHandler.RebuildCounters)
		})
	})

	log.Printf("Server starting on port %s", cfg.ServerPort)
	log.Fatal(http.ListenAndServe(":"+cfg.ServerPort, router))
}
