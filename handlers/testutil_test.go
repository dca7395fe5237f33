package handlers

import (
	"strconv"
	"testing"
	"time"

	"liveadmin/config"
	"liveadmin/database"
	"liveadmin/models"

	"github.com/go-chi/chi/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter() chi.Router {
	return chi.NewRouter()
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// setupTestDB points the package-global DB at a fresh in-memory SQLite
// database for the duration of one test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// A second connection would see its own empty :memory: database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiration: time.Hour,
		ServerPort:    "0",
	}
}

func createPerson(t *testing.T, db *gorm.DB, name string) *models.Person {
	t.Helper()
	p := &models.Person{Name: name}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create person: %v", err)
	}
	return p
}

func createSchedule(t *testing.T, db *gorm.DB, personID uint, date time.Time, start, end string, room int) *models.Schedule {
	t.Helper()
	s := &models.Schedule{
		Date:               date,
		PersonID:           personID,
		Role:               models.RoleHost,
		StartTime:          start,
		EndTime:            end,
		Room:               room,
		ModificationStatus: models.StatusNormal,
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	return s
}
