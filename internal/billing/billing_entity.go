package billing

import (
	"time"

	"github.com/google/uuid"
)

const (
	DecisionTypeMerged           = "merged_records"
	DecisionTypeConflictResolved = "conflict_resolved"
)

// Decision is one versioned billing ruling over a set of time records.
// Rows are append-only: after creation the only permitted mutation is
// flipping IsActive to false when a later claim supersedes the decision.
type Decision struct {
	ID                      uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	TaskID                  uuid.UUID  `gorm:"column:task_id;type:uuid;not null;index"`
	DecisionType            string     `gorm:"column:decision_type;type:varchar(30);not null"`
	RecommendedMD           *float64   `gorm:"column:recommended_md"`
	FinalMD                 float64    `gorm:"column:final_md;not null"`
	IsForcedMD              bool       `gorm:"column:is_forced_md;not null;default:false"`
	Reason                  *string    `gorm:"column:reason;type:text"`
	DecisionMakerID         *uuid.UUID `gorm:"column:decision_maker_id;type:uuid"`
	HasConflict             bool       `gorm:"column:has_conflict;not null;default:false"`
	ConflictType            *string    `gorm:"column:conflict_type;type:varchar(50)"`
	IsConflictResolved      bool       `gorm:"column:is_conflict_resolved;not null;default:false"`
	ConflictResolutionNotes *string    `gorm:"column:conflict_resolution_notes;type:text"`
	IsBillable              bool       `gorm:"column:is_billable;not null;default:false"`
	IsActive                bool       `gorm:"column:is_active;not null;default:true;index"`
	CreatedAt               time.Time  `gorm:"column:created_at"`
}

func (Decision) TableName() string {
	return "billing_decisions"
}

// DecisionRecord links one decision to one time record. Link rows are
// immutable and survive their decision going inactive; together they form
// the lineage trail of every ruling that ever covered a record.
type DecisionRecord struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	BillingDecisionID uuid.UUID `gorm:"column:billing_decision_id;type:uuid;not null;index;uniqueIndex:uq_decision_record,priority:1"`
	TimeRecordID      uuid.UUID `gorm:"column:time_record_id;type:uuid;not null;index;uniqueIndex:uq_decision_record,priority:2"`
}

func (DecisionRecord) TableName() string {
	return "billing_decision_records"
}
