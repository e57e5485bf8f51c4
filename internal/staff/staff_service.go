package staff

import (
	"context"
	"net/http"
	"strings"

	"github.com/AdamWu1996/YCS/internal/shared/apperror"

	"github.com/google/uuid"
)

type Service interface {
	CreateProfile(ctx context.Context, req CreateProfileRequest) (ProfileResponse, error)
	ListProfiles(ctx context.Context) ([]ProfileResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateProfile(ctx context.Context, req CreateProfileRequest) (ProfileResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ProfileResponse{}, apperror.RequiredField("name")
	}

	p := &Profile{
		ID:    uuid.New(),
		Name:  name,
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return ProfileResponse{}, apperror.Wrap(err, apperror.CodeConflict, "profile could not be created", http.StatusConflict)
	}
	return mapProfile(*p), nil
}

func (s *service) ListProfiles(ctx context.Context) ([]ProfileResponse, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]ProfileResponse, len(rows))
	for i, p := range rows {
		res[i] = mapProfile(p)
	}
	return res, nil
}
