package timerecord

import (
	"time"

	"github.com/google/uuid"
)

// TimeRecord is one attendance swipe interval. The natural key
// (staff, date, location, check-in) is the dedup boundary for imports.
// A record with a nil TaskID sits in the open pool; TaskID is written
// only by the billing engine when the record is claimed.
type TimeRecord struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	StaffID         uuid.UUID  `gorm:"column:staff_id;type:uuid;not null;index;uniqueIndex:uq_time_records_natural,priority:1"`
	TaskID          *uuid.UUID `gorm:"column:task_id;type:uuid;index"`
	RecordDate      time.Time  `gorm:"column:record_date;type:date;not null;uniqueIndex:uq_time_records_natural,priority:2"`
	FactoryLocation string     `gorm:"column:factory_location;type:varchar(50);not null;uniqueIndex:uq_time_records_natural,priority:3"`
	CheckInTime     time.Time  `gorm:"column:check_in_time;type:timestamptz;not null;uniqueIndex:uq_time_records_natural,priority:4"`
	CheckOutTime    *time.Time `gorm:"column:check_out_time;type:timestamptz"`
	HoursWorked     float64    `gorm:"column:hours_worked;not null;default:0"`
	HasConflict     bool       `gorm:"column:has_conflict;not null;default:false"`
	Notes           *string    `gorm:"column:notes;type:text"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
}

func (TimeRecord) TableName() string {
	return "time_records"
}
