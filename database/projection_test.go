package database

import (
	"testing"

	"liveadmin/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRebuildPersonCounters(t *testing.T) {
	db := openTestDB(t)

	// Counters drifted from what the event log records.
	p1 := models.Person{Name: "Alice", LateCount: 9, CancelCount: 9}
	p2 := models.Person{Name: "Bob"}
	if err := db.Create(&p1).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&p2).Error; err != nil {
		t.Fatal(err)
	}

	events := []models.ScheduleEvent{
		{Kind: models.EventLate, PersonID: p1.ID, ScheduleID: 1},
		{Kind: models.EventLate, PersonID: p1.ID, ScheduleID: 2},
		{Kind: models.EventCancel, PersonID: p1.ID, ScheduleID: 3},
		{Kind: models.EventCancel, PersonID: p2.ID, ScheduleID: 4},
	}
	for i := range events {
		if err := db.Create(&events[i]).Error; err != nil {
			t.Fatal(err)
		}
	}

	if err := RebuildPersonCounters(db); err != nil {
		t.Fatalf("RebuildPersonCounters: %v", err)
	}

	var got1, got2 models.Person
	db.First(&got1, p1.ID)
	db.First(&got2, p2.ID)
	if got1.LateCount != 2 || got1.CancelCount != 1 {
		t.Errorf("p1 counters = %d/%d, want 2/1", got1.LateCount, got1.CancelCount)
	}
	if got2.LateCount != 0 || got2.CancelCount != 1 {
		t.Errorf("p2 counters = %d/%d, want 0/1", got2.LateCount, got2.CancelCount)
	}
}

func TestRebuildPersonCounters_NoEvents(t *testing.T) {
	db := openTestDB(t)

	p := models.Person{Name: "Alice", LateCount: 3, CancelCount: 2}
	if err := db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}

	if err := RebuildPersonCounters(db); err != nil {
		t.Fatalf("RebuildPersonCounters: %v", err)
	}

	var got models.Person
	db.First(&got, p.ID)
	if got.LateCount != 0 || got.CancelCount != 0 {
		t.Errorf("counters = %d/%d, want 0/0 with an empty log", got.LateCount, got.CancelCount)
	}
}
