package usecase

import (
	"context"
	"fmt"
	"time"

	"quickshow/internal/data/entity"
	"quickshow/internal/data/repository"
	"quickshow/internal/dto/request"
	"quickshow/internal/dto/response"
	"quickshow/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ShowService interface {
	CreateShow(ctx context.Context, req *request.CreateShowRequest) (*response.ShowResponse, error)
	GetShowByID(ctx context.Context, showID string) (*response.ShowResponse, error)
	ListUpcoming(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ShowResponse], error)
}

type showService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewShowService(repo *repository.Repository, log *zap.Logger) ShowService {
	return &showService{
		repo: repo,
		log:  log.With(zap.String("service", "show")),
	}
}

func (s *showService) CreateShow(ctx context.Context, req *request.CreateShowRequest) (*response.ShowResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create show validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	if req.ShowTime.Before(time.Now()) {
		return nil, fmt.Errorf("cannot create show in the past")
	}

	now := time.Now()
	show := &entity.Show{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MovieTitle: req.MovieTitle,
		ShowTime:   req.ShowTime,
		Price:      req.Price,
	}

	if err := s.repo.Show.Create(ctx, show); err != nil {
		return nil, fmt.Errorf("create show: %w", err)
	}

	s.log.Info("Show created",
		zap.String("show_id", show.ID.String()),
		zap.String("movie_title", show.MovieTitle),
		zap.Time("show_time", show.ShowTime),
	)

	resp := response.ShowToResponse(show)
	return &resp, nil
}

func (s *showService) GetShowByID(ctx context.Context, showID string) (*response.ShowResponse, error) {
	id, err := uuid.Parse(showID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidShowID, showID)
	}

	show, err := s.repo.Show.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find show: %w", err)
	}
	if show == nil {
		return nil, ErrShowNotFound
	}

	resp := response.ShowToResponse(show)
	return &resp, nil
}

func (s *showService) ListUpcoming(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ShowResponse], error) {
	shows, err := s.repo.Show.FindUpcoming(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list upcoming shows: %w", err)
	}

	total, err := s.repo.Show.CountUpcoming(ctx)
	if err != nil {
		return nil, fmt.Errorf("count upcoming shows: %w", err)
	}

	showResponses := make([]response.ShowResponse, len(shows))
	for i, show := range shows {
		showResponses[i] = response.ShowToResponse(show)
	}

	return response.NewPaginatedResponse(showResponses, req.Page, req.PerPage, total), nil
}
