package importer_test

import (
	"context"
	"testing"

	"github.com/AdamWu1996/YCS/internal/importer"
	"github.com/AdamWu1996/YCS/internal/shared/apperror"
	"github.com/AdamWu1996/YCS/internal/staff"
	"github.com/AdamWu1996/YCS/internal/timerecord"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeStaffRepository struct {
	profiles []staff.Profile
}

func (f *fakeStaffRepository) Create(ctx context.Context, p *staff.Profile) error {
	return nil
}

func (f *fakeStaffRepository) FindByID(ctx context.Context, id string) (*staff.Profile, error) {
	return nil, nil
}

func (f *fakeStaffRepository) ListAll(ctx context.Context) ([]staff.Profile, error) {
	return f.profiles, nil
}

func setupImportService(profiles []staff.Profile) (importer.Service, *fakeTimeRecordRepository) {
	recordRepo := &fakeTimeRecordRepository{}
	svc := importer.NewService(
		&fakeStaffRepository{profiles: profiles},
		importer.NewLoader(recordRepo),
	)
	return svc, recordRepo
}

func TestImportService_Import_MixedBatch(t *testing.T) {
	profiles := staffList("Maria Santos", "Wei Chen")
	svc, recordRepo := setupImportService(profiles)

	req := importer.ImportRequest{
		Headers: []string{"Vendor Name", "Date", "Factory", "Check In", "Check Out"},
		Rows: []map[string]any{
			{
				"Vendor Name": "Maria Santos",
				"Date":        "2026-03-09",
				"Factory":     "Plant A",
				"Check In":    "08:00",
				"Check Out":   "16:30",
			},
			{
				// noise tap, 2 minutes
				"Vendor Name": "Wei Chen",
				"Date":        "2026-03-09",
				"Factory":     "Plant A",
				"Check In":    "08:00",
				"Check Out":   "08:02",
			},
			{
				"Vendor Name": "Nobody Known",
				"Date":        "2026-03-09",
				"Factory":     "Plant A",
				"Check In":    "08:00",
			},
		},
	}

	resp, err := svc.Import(context.Background(), req)

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, 3, resp.TotalRows)
	if assert.Len(t, resp.Rejected, 1) {
		assert.Equal(t, 2, resp.Rejected[0].RowIndex)
	}
	if assert.Len(t, recordRepo.batches, 1) {
		assert.Equal(t, profiles[0].ID, recordRepo.batches[0][0].StaffID)
	}
}

func TestImportService_Import_ReingestIsIdempotent(t *testing.T) {
	profiles := staffList("Maria Santos")
	svc, recordRepo := setupImportService(profiles)
	recordRepo.insertFn = func(ctx context.Context, rows []timerecord.TimeRecord) (int64, error) {
		// the whole batch already exists on the natural key
		return 0, nil
	}

	resp, err := svc.Import(context.Background(), importer.ImportRequest{
		Headers: []string{"Name", "Date", "Factory", "Check In"},
		Rows: []map[string]any{
			{"Name": "Maria Santos", "Date": "2026-03-09", "Factory": "Plant A", "Check In": "08:00"},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, resp.Imported)
	assert.Equal(t, 1, resp.Skipped)
	assert.Empty(t, resp.Rejected)
}

func TestImportService_Import_HeaderOverrides(t *testing.T) {
	profiles := staffList("Maria Santos")
	svc, recordRepo := setupImportService(profiles)

	resp, err := svc.Import(context.Background(), importer.ImportRequest{
		Headers: []string{"Mitarbeiter", "Datum", "Werk", "Kommen"},
		HeaderOverrides: map[string]string{
			"name":     "Mitarbeiter",
			"date":     "Datum",
			"location": "Werk",
			"check_in": "Kommen",
		},
		Rows: []map[string]any{
			{"Mitarbeiter": "Maria Santos", "Datum": "2026-03-09", "Werk": "Plant B", "Kommen": "07:45"},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Imported)
	if assert.Len(t, recordRepo.batches, 1) {
		assert.Equal(t, "Plant B", recordRepo.batches[0][0].FactoryLocation)
	}
}

func TestImportService_Import_UnresolvedHeadersFail(t *testing.T) {
	svc, recordRepo := setupImportService(staffList("Maria Santos"))

	_, err := svc.Import(context.Background(), importer.ImportRequest{
		Headers: []string{"Mitarbeiter", "Datum"},
		Rows:    []map[string]any{{"Mitarbeiter": "Maria Santos"}},
	})

	var appErr *apperror.AppError
	if assert.ErrorAs(t, err, &appErr) {
		assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
	}
	assert.Empty(t, recordRepo.batches)
}

func TestImportService_Import_BadOverrides(t *testing.T) {
	svc, _ := setupImportService(nil)

	t.Run("unknown field", func(t *testing.T) {
		_, err := svc.Import(context.Background(), importer.ImportRequest{
			Headers:         []string{"Name", "Date", "Factory", "Check In"},
			HeaderOverrides: map[string]string{"shift": "Name"},
			Rows:            []map[string]any{{}},
		})
		assert.Error(t, err)
	})

	t.Run("column not present", func(t *testing.T) {
		_, err := svc.Import(context.Background(), importer.ImportRequest{
			Headers:         []string{"Name", "Date", "Factory", "Check In"},
			HeaderOverrides: map[string]string{"name": "Missing Column"},
			Rows:            []map[string]any{{}},
		})
		assert.Error(t, err)
	})
}

func TestImportService_Import_ManualMatches(t *testing.T) {
	manualID := uuid.New()
	svc, recordRepo := setupImportService(nil)

	resp, err := svc.Import(context.Background(), importer.ImportRequest{
		Headers:       []string{"Name", "Date", "Factory", "Check In"},
		ManualMatches: map[string]string{"M.S. (badge 441)": manualID.String()},
		Rows: []map[string]any{
			{"Name": "M.S. (badge 441)", "Date": "2026-03-09", "Factory": "Plant A", "Check In": "08:00"},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Imported)
	if assert.Len(t, recordRepo.batches, 1) {
		assert.Equal(t, manualID, recordRepo.batches[0][0].StaffID)
	}

	t.Run("invalid staff id", func(t *testing.T) {
		_, err := svc.Import(context.Background(), importer.ImportRequest{
			Headers:       []string{"Name", "Date", "Factory", "Check In"},
			ManualMatches: map[string]string{"someone": "not-a-uuid"},
			Rows:          []map[string]any{{}},
		})
		assert.Error(t, err)
	})
}

func TestImportService_PreviewHeaders(t *testing.T) {
	svc, _ := setupImportService(nil)

	resp, err := svc.PreviewHeaders(context.Background(), importer.HeaderPreviewRequest{
		Headers: []string{"Vendor Name", "Factory", "Actual Entry Time"},
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.Signature)
	assert.Equal(t, "Vendor Name", resp.Resolved["name"])
	assert.Equal(t, "Actual Entry Time", resp.Resolved["check_in"])
	assert.Empty(t, resp.Missing)
}
