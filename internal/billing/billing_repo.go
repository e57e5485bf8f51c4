package billing

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AdamWu1996/YCS/internal/timerecord"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository gives the claim transaction its storage primitives. Every
// method that participates in the supersede sequence goes through the
// bound *sql.Tx so the whole of a claim commits or rolls back as one unit.
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	// LockTimeRecords selects the rows FOR UPDATE, serializing concurrent
	// claims that touch overlapping record sets.
	LockTimeRecords(ctx context.Context, ids []uuid.UUID) ([]timerecord.TimeRecord, error)
	FindActiveDecisionIDs(ctx context.Context, recordIDs []uuid.UUID) ([]uuid.UUID, error)
	FindRecordIDsOfDecisions(ctx context.Context, decisionIDs []uuid.UUID) ([]uuid.UUID, error)
	DeactivateDecisions(ctx context.Context, decisionIDs []uuid.UUID) error
	CreateDecision(ctx context.Context, d *Decision) error
	CreateDecisionRecords(ctx context.Context, links []DecisionRecord) error
	AssignTask(ctx context.Context, recordIDs []uuid.UUID, taskID uuid.UUID) error
	ClearTask(ctx context.Context, recordIDs []uuid.UUID) error

	// Reads outside the claim transaction.
	ListPending(ctx context.Context) ([]PendingRow, error)
	FindDecisionByID(ctx context.Context, id string) (*Decision, error)
	ListDecisionsByTask(ctx context.Context, taskID string) ([]Decision, error)
}

// PendingRow is a pool record paired with its active decision, if any.
type PendingRow struct {
	TimeRecordID       uuid.UUID  `gorm:"column:time_record_id"`
	StaffID            uuid.UUID  `gorm:"column:staff_id"`
	TaskID             *uuid.UUID `gorm:"column:task_id"`
	RecordDate         time.Time  `gorm:"column:record_date"`
	FactoryLocation    string     `gorm:"column:factory_location"`
	HoursWorked        float64    `gorm:"column:hours_worked"`
	CheckInTime        time.Time  `gorm:"column:check_in_time"`
	CheckOutTime       *time.Time `gorm:"column:check_out_time"`
	HasConflict        bool       `gorm:"column:has_conflict"`
	BillingDecisionID  *uuid.UUID `gorm:"column:billing_decision_id"`
	DecisionType       *string    `gorm:"column:decision_type"`
	IsConflictResolved bool       `gorm:"column:is_conflict_resolved"`
	IsBillable         bool       `gorm:"column:is_billable"`
	FinalMD            *float64   `gorm:"column:final_md"`
	HasDecision        bool       `gorm:"column:has_decision"`
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

type queryer interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

func (r *repository) conn() (queryer, error) {
	if r.tx != nil {
		return r.tx, nil
	}
	return r.db.DB()
}

// placeholders renders "$start, $start+1, ..." for n parameters.
func placeholders(n, start int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

func idArgs(ids []uuid.UUID) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func (r *repository) LockTimeRecords(ctx context.Context, ids []uuid.UUID) ([]timerecord.TimeRecord, error) {
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}

	// Lock rows in one deterministic order regardless of how the caller
	// ordered them, so overlapping concurrent claims cannot deadlock.
	ordered := make([]uuid.UUID, len(ids))
	copy(ordered, ids)
	sort.Slice(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i][:], ordered[j][:]) < 0
	})

	query := fmt.Sprintf(`
SELECT
	id, staff_id, task_id, record_date, factory_location,
	check_in_time, check_out_time, hours_worked, has_conflict, notes
FROM time_records
WHERE id IN (%s)
FOR UPDATE
`, placeholders(len(ordered), 1))

	rows, err := conn.QueryContext(ctx, query, idArgs(ordered)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]timerecord.TimeRecord, 0, len(ids))
	for rows.Next() {
		var rec timerecord.TimeRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.StaffID,
			&rec.TaskID,
			&rec.RecordDate,
			&rec.FactoryLocation,
			&rec.CheckInTime,
			&rec.CheckOutTime,
			&rec.HoursWorked,
			&rec.HasConflict,
			&rec.Notes,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *repository) FindActiveDecisionIDs(ctx context.Context, recordIDs []uuid.UUID) ([]uuid.UUID, error) {
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
SELECT DISTINCT bd.id
FROM billing_decision_records bdr
JOIN billing_decisions bd ON bd.id = bdr.billing_decision_id
WHERE bd.is_active = TRUE
	AND bdr.time_record_id IN (%s)
`, placeholders(len(recordIDs), 1))

	rows, err := conn.QueryContext(ctx, query, idArgs(recordIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *repository) FindRecordIDsOfDecisions(ctx context.Context, decisionIDs []uuid.UUID) ([]uuid.UUID, error) {
	conn, err := r.conn()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
SELECT DISTINCT time_record_id
FROM billing_decision_records
WHERE billing_decision_id IN (%s)
`, placeholders(len(decisionIDs), 1))

	rows, err := conn.QueryContext(ctx, query, idArgs(decisionIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *repository) DeactivateDecisions(ctx context.Context, decisionIDs []uuid.UUID) error {
	conn, err := r.conn()
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
UPDATE billing_decisions
SET is_active = FALSE
WHERE id IN (%s)
`, placeholders(len(decisionIDs), 1))

	_, err = conn.ExecContext(ctx, query, idArgs(decisionIDs)...)
	return err
}

func (r *repository) CreateDecision(ctx context.Context, d *Decision) error {
	conn, err := r.conn()
	if err != nil {
		return err
	}

	query := `
INSERT INTO billing_decisions (
	id, task_id, decision_type, recommended_md, final_md, is_forced_md,
	reason, decision_maker_id, has_conflict, conflict_type,
	is_conflict_resolved, conflict_resolution_notes, is_billable, is_active,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
`

	_, err = conn.ExecContext(
		ctx, query,
		d.ID, d.TaskID, d.DecisionType, d.RecommendedMD, d.FinalMD, d.IsForcedMD,
		d.Reason, d.DecisionMakerID, d.HasConflict, d.ConflictType,
		d.IsConflictResolved, d.ConflictResolutionNotes, d.IsBillable, d.IsActive,
	)
	return err
}

func (r *repository) CreateDecisionRecords(ctx context.Context, links []DecisionRecord) error {
	conn, err := r.conn()
	if err != nil {
		return err
	}

	query := `
INSERT INTO billing_decision_records (id, billing_decision_id, time_record_id)
VALUES ($1, $2, $3)
`

	for _, link := range links {
		if _, err := conn.ExecContext(ctx, query, link.ID, link.BillingDecisionID, link.TimeRecordID); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) AssignTask(ctx context.Context, recordIDs []uuid.UUID, taskID uuid.UUID) error {
	conn, err := r.conn()
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
UPDATE time_records
SET task_id = $1
WHERE id IN (%s)
`, placeholders(len(recordIDs), 2))

	args := append([]any{taskID}, idArgs(recordIDs)...)
	_, err = conn.ExecContext(ctx, query, args...)
	return err
}

func (r *repository) ClearTask(ctx context.Context, recordIDs []uuid.UUID) error {
	conn, err := r.conn()
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
UPDATE time_records
SET task_id = NULL
WHERE id IN (%s)
`, placeholders(len(recordIDs), 1))

	_, err = conn.ExecContext(ctx, query, idArgs(recordIDs)...)
	return err
}

func (r *repository) ListPending(ctx context.Context) ([]PendingRow, error) {
	var rows []PendingRow
	err := r.db.WithContext(ctx).Raw(`
SELECT
	tr.id AS time_record_id,
	tr.staff_id,
	tr.task_id,
	tr.record_date,
	tr.factory_location,
	tr.hours_worked,
	tr.check_in_time,
	tr.check_out_time,
	tr.has_conflict,
	active.id AS billing_decision_id,
	active.decision_type,
	COALESCE(active.is_conflict_resolved, FALSE) AS is_conflict_resolved,
	COALESCE(active.is_billable, FALSE) AS is_billable,
	active.final_md,
	active.id IS NOT NULL AS has_decision
FROM time_records tr
LEFT JOIN (
	SELECT bdr.time_record_id, bd.*
	FROM billing_decision_records bdr
	JOIN billing_decisions bd ON bd.id = bdr.billing_decision_id
	WHERE bd.is_active = TRUE
) active ON active.time_record_id = tr.id
ORDER BY tr.record_date DESC, tr.check_in_time DESC
`).Scan(&rows).Error
	return rows, err
}

func (r *repository) FindDecisionByID(ctx context.Context, id string) (*Decision, error) {
	var d Decision
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) ListDecisionsByTask(ctx context.Context, taskID string) ([]Decision, error) {
	var rows []Decision
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
