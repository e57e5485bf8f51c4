package task

import (
	"context"
	"errors"
	"net/http"

	"github.com/AdamWu1996/YCS/internal/shared/apperror"

	"gorm.io/gorm"
)

type Service interface {
	// ListClaimableTasks returns active tasks with their budgeted MD and the
	// used MD recomputed from currently active billing decisions.
	ListClaimableTasks(ctx context.Context) ([]ClaimableTaskResponse, error)
	ResolveTaskByCodes(ctx context.Context, projectCode, taskCode string) (TaskResponse, error)
	GetUsedMD(ctx context.Context, taskID string) (float64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListClaimableTasks(ctx context.Context) ([]ClaimableTaskResponse, error) {
	rows, err := s.repo.ListActiveWithUsedMD(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]ClaimableTaskResponse, len(rows))
	for i, row := range rows {
		res[i] = ClaimableTaskResponse{
			ID:         row.ID.String(),
			Code:       row.Code,
			Name:       row.Name,
			BudgetedMD: row.BudgetedMD,
			UsedMD:     row.UsedMD,
			Project: ProjectResponse{
				ID:   row.ProjectID.String(),
				Code: row.ProjectCode,
				Name: row.ProjectName,
			},
		}
	}
	return res, nil
}

func (s *service) ResolveTaskByCodes(ctx context.Context, projectCode, taskCode string) (TaskResponse, error) {
	if projectCode == "" || taskCode == "" {
		return TaskResponse{}, apperror.New(apperror.CodeInvalidInput, "project code and task code are required", http.StatusBadRequest)
	}

	t, err := s.repo.FindByCodes(ctx, projectCode, taskCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaskResponse{}, apperror.New(apperror.CodeNotFound, "task not found for the given codes", http.StatusNotFound)
		}
		return TaskResponse{}, err
	}

	return TaskResponse{
		ID:         t.ID.String(),
		ProjectID:  t.ProjectID.String(),
		Code:       t.Code,
		Name:       t.Name,
		BudgetedMD: t.BudgetedMD,
		Status:     t.Status,
	}, nil
}

func (s *service) GetUsedMD(ctx context.Context, taskID string) (float64, error) {
	return s.repo.SumUsedMD(ctx, taskID)
}
