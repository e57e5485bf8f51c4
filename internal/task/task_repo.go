package task

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClaimableTaskRow is one row of the claimable-task listing: a task joined
// with its project and the recomputed sum of final MD over active decisions.
type ClaimableTaskRow struct {
	ID          uuid.UUID `gorm:"column:id"`
	Code        string    `gorm:"column:code"`
	Name        string    `gorm:"column:name"`
	BudgetedMD  *float64  `gorm:"column:budgeted_md"`
	UsedMD      float64   `gorm:"column:used_md"`
	ProjectID   uuid.UUID `gorm:"column:project_id"`
	ProjectCode string    `gorm:"column:project_code"`
	ProjectName string    `gorm:"column:project_name"`
}

type Repository interface {
	FindByID(ctx context.Context, id string) (*Task, error)
	FindByCodes(ctx context.Context, projectCode, taskCode string) (*Task, error)
	ListActiveWithUsedMD(ctx context.Context) ([]ClaimableTaskRow, error)
	SumUsedMD(ctx context.Context, taskID string) (float64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id string) (*Task, error) {
	var t Task
	err := r.db.WithContext(ctx).
		Preload("Project").
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) FindByCodes(ctx context.Context, projectCode, taskCode string) (*Task, error) {
	var t Task
	err := r.db.WithContext(ctx).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.code = ? AND projects.status = ?", projectCode, StatusActive).
		Where("tasks.code = ? AND tasks.status = ?", taskCode, StatusActive).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListActiveWithUsedMD recomputes used MD on every call; it is never cached.
func (r *repository) ListActiveWithUsedMD(ctx context.Context) ([]ClaimableTaskRow, error) {
	var rows []ClaimableTaskRow
	err := r.db.WithContext(ctx).Raw(`
SELECT
	tasks.id,
	tasks.code,
	tasks.name,
	tasks.budgeted_md,
	COALESCE(summary.used_md, 0) AS used_md,
	projects.id   AS project_id,
	projects.code AS project_code,
	projects.name AS project_name
FROM tasks
JOIN projects ON projects.id = tasks.project_id
LEFT JOIN (
	SELECT task_id, SUM(final_md) AS used_md
	FROM billing_decisions
	WHERE is_active = TRUE
	GROUP BY task_id
) summary ON summary.task_id = tasks.id
WHERE tasks.status = ?
ORDER BY tasks.code ASC
`, StatusActive).Scan(&rows).Error
	return rows, err
}

func (r *repository) SumUsedMD(ctx context.Context, taskID string) (float64, error) {
	var usedMD float64
	err := r.db.WithContext(ctx).Raw(`
SELECT COALESCE(SUM(final_md), 0)
FROM billing_decisions
WHERE task_id = ? AND is_active = TRUE
`, taskID).Scan(&usedMD).Error
	return usedMD, err
}
