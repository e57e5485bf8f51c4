package task

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

type Project struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Code      string    `gorm:"column:code;type:varchar(50);not null;uniqueIndex"`
	Name      string    `gorm:"column:name;type:varchar(200);not null"`
	Status    string    `gorm:"column:status;type:varchar(20);not null;default:active"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

// Task is the scope MD is billed under. BudgetedMD nil means unbounded.
// Used MD is always derived from active billing decisions, never stored here.
type Task struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID  uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	Code       string    `gorm:"column:code;type:varchar(50);not null"`
	Name       string    `gorm:"column:name;type:varchar(200);not null"`
	BudgetedMD *float64  `gorm:"column:budgeted_md"`
	Status     string    `gorm:"column:status;type:varchar(20);not null;default:active"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
	Project    *Project  `gorm:"foreignKey:ProjectID;references:ID"`
}

func (Task) TableName() string {
	return "tasks"
}
