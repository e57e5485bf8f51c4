package importer

import (
	"context"
	"fmt"

	"github.com/AdamWu1996/YCS/internal/timerecord"

	"go.uber.org/zap"
)

const loadBatchSize = 150

// ImportResult summarizes one import run. Imported counts rows actually
// inserted; Skipped counts natural-key duplicates plus noise intervals.
type ImportResult struct {
	Imported  int         `json:"imported"`
	Skipped   int         `json:"skipped"`
	Rejected  []Rejection `json:"rejected"`
	Errors    []string    `json:"errors,omitempty"`
	TotalRows int         `json:"total_rows"`
}

// Loader persists candidate records in batches. Duplicates on the natural
// key are silently skipped; a failing batch is recorded and the remaining
// batches still run.
type Loader struct {
	repo   timerecord.Repository
	logger *zap.Logger
}

func NewLoader(repo timerecord.Repository) *Loader {
	return &Loader{
		repo:   repo,
		logger: zap.L().Named("importer.loader"),
	}
}

func (l *Loader) Load(ctx context.Context, candidates []Candidate) (imported, skipped int, errs []string) {
	for start := 0; start < len(candidates); start += loadBatchSize {
		end := start + loadBatchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		rows := make([]timerecord.TimeRecord, 0, end-start)
		for _, c := range candidates[start:end] {
			rows = append(rows, timerecord.TimeRecord{
				StaffID:         c.StaffID,
				RecordDate:      c.RecordDate,
				FactoryLocation: c.FactoryLocation,
				CheckInTime:     c.CheckInTime,
				CheckOutTime:    c.CheckOutTime,
				HoursWorked:     c.HoursWorked,
				Notes:           c.Notes,
			})
		}

		inserted, err := l.repo.InsertIgnoreDuplicates(ctx, rows)
		if err != nil {
			l.logger.Error("batch insert failed",
				zap.Int("batch_start", start),
				zap.Int("batch_size", len(rows)),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("batch starting at row %d failed: %v", start, err))
			continue
		}

		imported += int(inserted)
		skipped += len(rows) - int(inserted)
	}

	return imported, skipped, errs
}
