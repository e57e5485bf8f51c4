package timerecord

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// InsertIgnoreDuplicates inserts rows with ON CONFLICT DO NOTHING on the
	// natural key and returns how many were actually inserted.
	InsertIgnoreDuplicates(ctx context.Context, rows []TimeRecord) (int64, error)
	ListUnclaimed(ctx context.Context) ([]TimeRecord, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InsertIgnoreDuplicates(ctx context.Context, rows []TimeRecord) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "staff_id"},
				{Name: "record_date"},
				{Name: "factory_location"},
				{Name: "check_in_time"},
			},
			DoNothing: true,
		}).
		Create(&rows)

	return res.RowsAffected, res.Error
}

func (r *repository) ListUnclaimed(ctx context.Context) ([]TimeRecord, error) {
	var rows []TimeRecord
	err := r.db.WithContext(ctx).
		Where("task_id IS NULL").
		Order("record_date DESC, check_in_time DESC").
		Find(&rows).Error
	return rows, err
}
