package task_test

import (
	"context"
	"testing"

	"github.com/AdamWu1996/YCS/internal/task"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeTaskRepository struct {
	findByIDFn             func(ctx context.Context, id string) (*task.Task, error)
	findByCodesFn          func(ctx context.Context, projectCode, taskCode string) (*task.Task, error)
	listActiveWithUsedMDFn func(ctx context.Context) ([]task.ClaimableTaskRow, error)
	sumUsedMDFn            func(ctx context.Context, taskID string) (float64, error)
}

func (f *fakeTaskRepository) FindByID(ctx context.Context, id string) (*task.Task, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeTaskRepository) FindByCodes(ctx context.Context, projectCode, taskCode string) (*task.Task, error) {
	if f.findByCodesFn != nil {
		return f.findByCodesFn(ctx, projectCode, taskCode)
	}
	return nil, nil
}

func (f *fakeTaskRepository) ListActiveWithUsedMD(ctx context.Context) ([]task.ClaimableTaskRow, error) {
	if f.listActiveWithUsedMDFn != nil {
		return f.listActiveWithUsedMDFn(ctx)
	}
	return nil, nil
}

func (f *fakeTaskRepository) SumUsedMD(ctx context.Context, taskID string) (float64, error) {
	if f.sumUsedMDFn != nil {
		return f.sumUsedMDFn(ctx, taskID)
	}
	return 0, nil
}

func TestTaskService_ListClaimableTasks(t *testing.T) {
	ctx := context.Background()
	budget := 20.0

	repo := &fakeTaskRepository{
		listActiveWithUsedMDFn: func(ctx context.Context) ([]task.ClaimableTaskRow, error) {
			return []task.ClaimableTaskRow{
				{
					ID:          uuid.New(),
					Code:        "T-100",
					Name:        "Line retrofit",
					BudgetedMD:  &budget,
					UsedMD:      12.5,
					ProjectID:   uuid.New(),
					ProjectCode: "P-01",
					ProjectName: "Factory North",
				},
				{
					ID:          uuid.New(),
					Code:        "T-200",
					Name:        "Commissioning",
					UsedMD:      0,
					ProjectID:   uuid.New(),
					ProjectCode: "P-01",
					ProjectName: "Factory North",
				},
			}, nil
		},
	}
	svc := task.NewService(repo)

	resp, err := svc.ListClaimableTasks(ctx)

	assert.NoError(t, err)
	if assert.Len(t, resp, 2) {
		assert.Equal(t, "T-100", resp[0].Code)
		assert.Equal(t, 12.5, resp[0].UsedMD)
		if assert.NotNil(t, resp[0].BudgetedMD) {
			assert.Equal(t, 20.0, *resp[0].BudgetedMD)
		}
		assert.Equal(t, "P-01", resp[0].Project.Code)
		// unbounded task carries no budget
		assert.Nil(t, resp[1].BudgetedMD)
	}
}

func TestTaskService_ResolveTaskByCodes(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		taskID := uuid.New()
		repo := &fakeTaskRepository{
			findByCodesFn: func(ctx context.Context, projectCode, taskCode string) (*task.Task, error) {
				assert.Equal(t, "P-01", projectCode)
				assert.Equal(t, "T-100", taskCode)
				return &task.Task{ID: taskID, ProjectID: uuid.New(), Code: taskCode, Status: task.StatusActive}, nil
			},
		}
		svc := task.NewService(repo)

		resp, err := svc.ResolveTaskByCodes(ctx, "P-01", "T-100")
		assert.NoError(t, err)
		assert.Equal(t, taskID.String(), resp.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &fakeTaskRepository{
			findByCodesFn: func(ctx context.Context, projectCode, taskCode string) (*task.Task, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := task.NewService(repo)

		_, err := svc.ResolveTaskByCodes(ctx, "P-01", "T-999")
		assert.Error(t, err)
	})

	t.Run("blank codes", func(t *testing.T) {
		svc := task.NewService(&fakeTaskRepository{})
		_, err := svc.ResolveTaskByCodes(ctx, "", "T-100")
		assert.Error(t, err)
	})
}

func TestTaskService_GetUsedMD(t *testing.T) {
	ctx := context.Background()
	taskID := uuid.New().String()

	repo := &fakeTaskRepository{
		sumUsedMDFn: func(ctx context.Context, id string) (float64, error) {
			assert.Equal(t, taskID, id)
			return 4.5, nil
		},
	}
	svc := task.NewService(repo)

	used, err := svc.GetUsedMD(ctx, taskID)
	assert.NoError(t, err)
	assert.Equal(t, 4.5, used)
}
