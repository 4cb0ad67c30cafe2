package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/socialcause/cause-api/apperror"
	"github.com/socialcause/cause-api/models"
)

// CauseService 募捐项目业务逻辑 — cause business rules over an injected handle.
// Every operation runs inside its own transaction.
type CauseService struct {
	db *gorm.DB
}

func NewCauseService(db *gorm.DB) *CauseService {
	return &CauseService{db: db}
}

// findCause loads a cause by primary key within the given handle.
func findCause(tx *gorm.DB, id uuid.UUID) (*models.Cause, error) {
	var cause models.Cause
	if err := tx.Where("id = ?", id).First(&cause).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(fmt.Sprintf("No cause found with ID: %s", id))
		}
		return nil, err
	}
	return &cause, nil
}

// Create inserts a new cause unless an identical (title, description,
// image_url) triple already exists. The duplicate check is a plain read, so
// two simultaneous identical creates can still race; there is no unique
// index backing it.
func (s *CauseService) Create(ctx context.Context, req models.CauseRequest) (*models.Cause, error) {
	var cause models.Cause
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Cause
		err := tx.Where("title = ? AND description = ? AND image_url = ?",
			req.Title, req.Description, req.ImageURL).First(&existing).Error
		if err == nil {
			log.Printf("Duplicate cause rejected: %s", req.Title)
			return apperror.Conflict(fmt.Sprintf("Cause '%s' already exists", req.Title))
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		cause = models.Cause{
			Title:       req.Title,
			Description: req.Description,
			ImageURL:    req.ImageURL,
		}
		return tx.Create(&cause).Error
	})
	if err != nil {
		return nil, err
	}
	return &cause, nil
}

// ListAll returns every stored cause in storage order. An empty store is
// reported as NotFound, matching the documented contract.
func (s *CauseService) ListAll(ctx context.Context) ([]models.Cause, error) {
	var causes []models.Cause
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Find(&causes).Error; err != nil {
			return err
		}
		if len(causes) == 0 {
			return apperror.NotFound("No causes found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return causes, nil
}

// Get returns the cause matching id.
func (s *CauseService) Get(ctx context.Context, id uuid.UUID) (*models.Cause, error) {
	var cause *models.Cause
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := findCause(tx, id)
		if err != nil {
			return err
		}
		cause = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cause, nil
}

// Update overwrites every field of an existing cause with the payload and
// returns the persisted result. Applying the same payload twice yields the
// same state.
func (s *CauseService) Update(ctx context.Context, id uuid.UUID, req models.CauseRequest) (*models.Cause, error) {
	var updated models.Cause
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cause, err := findCause(tx, id)
		if err != nil {
			return err
		}

		cause.Title = req.Title
		cause.Description = req.Description
		cause.ImageURL = req.ImageURL
		if err := tx.Save(cause).Error; err != nil {
			return err
		}
		updated = *cause
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a cause and its contributions in one transaction and
// returns a confirmation message. Contributions have no endpoints of their
// own, so rows left behind would be unreachable forever.
func (s *CauseService) Delete(ctx context.Context, id uuid.UUID) (string, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cause, err := findCause(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Where("cause_id = ?", cause.ID).Delete(&models.Contribution{}).Error; err != nil {
			return err
		}
		return tx.Delete(cause).Error
	})
	if err != nil {
		return "", err
	}
	log.Printf("Deleted cause %s", id)
	return fmt.Sprintf("Deleted cause with ID: %s", id), nil
}
