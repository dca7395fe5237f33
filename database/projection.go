package database

import (
	"liveadmin/models"

	"gorm.io/gorm"
)

// RebuildPersonCounters recomputes every person's late/cancel tallies from
// the schedule event log. The counters are normally maintained in the same
// transaction as the events; this projection exists to repair drift and to
// keep the log authoritative.
func RebuildPersonCounters(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		type tally struct {
			PersonID uint
			Kind     models.EventKind
			N        int
		}
		var tallies []tally
		if err := tx.Model(&models.ScheduleEvent{}).
			Select("person_id, kind, COUNT(*) as n").
			Group("person_id, kind").Scan(&tallies).Error; err != nil {
			return err
		}

		late := make(map[uint]int)
		cancel := make(map[uint]int)
		for _, c := range tallies {
			switch c.Kind {
			case models.EventLate:
				late[c.PersonID] = c.N
			case models.EventCancel:
				cancel[c.PersonID] = c.N
			}
		}

		var persons []models.Person
		if err := tx.Find(&persons).Error; err != nil {
			return err
		}
		for i := range persons {
			p := &persons[i]
			wantLate, wantCancel := late[p.ID], cancel[p.ID]
			if p.LateCount == wantLate && p.CancelCount == wantCancel {
				continue
			}
			if err := tx.Model(p).Updates(map[string]interface{}{
				"late_count":   wantLate,
				"cancel_count": wantCancel,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
