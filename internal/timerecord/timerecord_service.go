package timerecord

import "context"

type Service interface {
	// ListUnclaimed returns the open pool: records no active decision has
	// claimed, newest first.
	ListUnclaimed(ctx context.Context) ([]RecordResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListUnclaimed(ctx context.Context) ([]RecordResponse, error) {
	rows, err := s.repo.ListUnclaimed(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]RecordResponse, len(rows))
	for i, r := range rows {
		res[i] = mapRecord(r)
	}
	return res, nil
}
