package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/socialcause/cause-api/apperror"
	"github.com/socialcause/cause-api/models"
	"github.com/socialcause/cause-api/utils"
)

// ContributionService 捐款业务逻辑 — records and aggregates contributions.
type ContributionService struct {
	db *gorm.DB
}

func NewContributionService(db *gorm.DB) *ContributionService {
	return &ContributionService{db: db}
}

// Contribute records a contribution against an existing cause. A missing
// cause fails the whole transaction; nothing is inserted.
func (s *ContributionService) Contribute(ctx context.Context, causeID uuid.UUID, req models.ContributionRequest) (*models.Contribution, error) {
	var contribution models.Contribution
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cause, err := findCause(tx, causeID)
		if err != nil {
			return err
		}

		contribution = models.Contribution{
			Name:      req.Name,
			Email:     req.Email,
			Amount:    *req.Amount,
			CauseID:   cause.ID,
			Reference: utils.GenerateReference(),
		}
		return tx.Create(&contribution).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Contribution %s recorded for cause %s: %.2f", contribution.Reference, causeID, contribution.Amount)
	return &contribution, nil
}

// ListForCause returns every contribution recorded for the cause. An empty
// set is reported as NotFound, same policy as the cause listing.
func (s *ContributionService) ListForCause(ctx context.Context, causeID uuid.UUID) ([]models.Contribution, error) {
	var contributions []models.Contribution
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findCause(tx, causeID); err != nil {
			return err
		}

		if err := tx.Where("cause_id = ?", causeID).Find(&contributions).Error; err != nil {
			return err
		}
		if len(contributions) == 0 {
			return apperror.NotFound(fmt.Sprintf("No contributions were found for cause with ID: %s", causeID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contributions, nil
}

// Summarize returns the contribution count, amount total and full list for
// the cause.
func (s *ContributionService) Summarize(ctx context.Context, causeID uuid.UUID) (*models.ContributionSummary, error) {
	contributions, err := s.ListForCause(ctx, causeID)
	if err != nil {
		return nil, err
	}

	var total float64
	for _, contribution := range contributions {
		total += contribution.Amount
	}
	return &models.ContributionSummary{
		ContributionCount: len(contributions),
		TotalAmount:       total,
		Contributions:     contributions,
	}, nil
}

// Recent returns the latest contributions across all causes, newest first.
// Used to seed live feed clients on connect.
func (s *ContributionService) Recent(ctx context.Context, limit int) ([]models.Contribution, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	var contributions []models.Contribution
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&contributions).Error; err != nil {
		return nil, err
	}
	return contributions, nil
}
