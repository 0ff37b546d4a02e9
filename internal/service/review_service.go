package service

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/model"
	"github.com/tamu-thinktank/website-sub002/internal/repository"
)

// ReviewService 申请评审业务接口
type ReviewService interface {
	// Upsert 每位干事对每份申请一条评审，提交后重算均分
	Upsert(ctx context.Context, applicationID, officerID string, req *dto.UpsertReviewRequest) (*dto.ReviewResponse, error)
	List(ctx context.Context, applicationID string) ([]dto.ReviewResponse, error)
}

type reviewService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReviewService 创建 ReviewService 实例
func NewReviewService(repo *repository.Repository, logger *zap.Logger) ReviewService {
	return &reviewService{repo: repo, logger: logger}
}

func (s *reviewService) Upsert(ctx context.Context, applicationID, officerID string, req *dto.UpsertReviewRequest) (*dto.ReviewResponse, error) {
	if _, err := s.repo.Application.GetByID(ctx, applicationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("查询申请失败", zap.String("id", applicationID), zap.Error(err))
		return nil, err
	}

	review := &model.ApplicationReview{
		ApplicationID: applicationID,
		OfficerID:     officerID,
		Score:         req.Score,
		Comment:       req.Comment,
	}
	review.CreatedBy = &officerID
	review.UpdatedBy = &officerID

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Review.Upsert(ctx, review); err != nil {
			return err
		}
		avg, count, err := txRepo.Review.Aggregate(ctx, applicationID)
		if err != nil {
			return err
		}
		var score *float64
		if count > 0 {
			rounded := math.Round(avg*100) / 100
			score = &rounded
		}
		return txRepo.Application.UpdateScore(ctx, applicationID, score, int(count))
	})
	if err != nil {
		s.logger.Error("保存评审失败", zap.String("application_id", applicationID), zap.Error(err))
		return nil, err
	}

	saved, err := s.repo.Review.GetByApplicationAndOfficer(ctx, applicationID, officerID)
	if err != nil {
		return nil, err
	}
	return toReviewResponse(saved), nil
}

func (s *reviewService) List(ctx context.Context, applicationID string) ([]dto.ReviewResponse, error) {
	if _, err := s.repo.Application.GetByID(ctx, applicationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}

	reviews, err := s.repo.Review.ListByApplication(ctx, applicationID)
	if err != nil {
		s.logger.Error("列出评审失败", zap.String("application_id", applicationID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		result = append(result, *toReviewResponse(&reviews[i]))
	}
	return result, nil
}

func toReviewResponse(r *model.ApplicationReview) *dto.ReviewResponse {
	return &dto.ReviewResponse{
		ID:            r.ReviewID,
		ApplicationID: r.ApplicationID,
		Officer:       toOfficerBrief(r.Officer),
		Score:         r.Score,
		Comment:       r.Comment,
		CreatedAt:     formatTime(r.CreatedAt),
		UpdatedAt:     formatTime(r.UpdatedAt),
	}
}
