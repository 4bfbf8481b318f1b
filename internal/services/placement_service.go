package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/campusplacements/portal/internal/models"
	apperrors "github.com/campusplacements/portal/pkg/errors"
)

var (
	// ErrPlacementNotFound indicates the requested placement record does not exist.
	ErrPlacementNotFound = apperrors.New("PLACEMENT_NOT_FOUND", "Placement record not found", http.StatusNotFound)
	// ErrPlacementFields rejects create/update payloads missing any of the seven required fields.
	ErrPlacementFields = apperrors.New("PLACEMENT_FIELDS_REQUIRED", "All fields are required", http.StatusBadRequest)
	// ErrPlacementGender rejects gender values outside the accepted set.
	ErrPlacementGender = apperrors.New("PLACEMENT_INVALID_GENDER", "Gender must be Male or Female", http.StatusBadRequest)
)

// PlacementInput carries the seven required placement fields.
type PlacementInput struct {
	Name    string
	Batch   int
	Branch  string
	Company string
	Package float64
	CPI     float64
	Gender  string
}

func (in PlacementInput) validate() error {
	if strings.TrimSpace(in.Name) == "" ||
		in.Batch == 0 ||
		strings.TrimSpace(in.Branch) == "" ||
		strings.TrimSpace(in.Company) == "" ||
		in.Package == 0 ||
		in.CPI == 0 ||
		strings.TrimSpace(in.Gender) == "" {
		return ErrPlacementFields
	}
	if in.Gender != models.GenderMale && in.Gender != models.GenderFemale {
		return ErrPlacementGender
	}
	return nil
}

// PlacementService provides admin-gated CRUD over placement records.
type PlacementService struct {
	db *gorm.DB
}

// NewPlacementService constructs a PlacementService.
func NewPlacementService(db *gorm.DB) (*PlacementService, error) {
	if db == nil {
		return nil, errors.New("placement service: db is required")
	}
	return &PlacementService{db: db}, nil
}

// Create persists a new placement record after validating all seven fields.
func (s *PlacementService) Create(ctx context.Context, input PlacementInput) (*models.Placement, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	record := models.Placement{
		Name:    strings.TrimSpace(input.Name),
		Batch:   input.Batch,
		Branch:  strings.TrimSpace(input.Branch),
		Company: strings.TrimSpace(input.Company),
		Package: input.Package,
		CPI:     input.CPI,
		Gender:  input.Gender,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("placement service: create: %w", err)
	}

	return &record, nil
}

// ListSummaries returns the public projection: CPI and gender withheld.
func (s *PlacementService) ListSummaries(ctx context.Context) ([]models.PlacementSummary, error) {
	var records []models.Placement
	if err := s.db.WithContext(ctx).Order("created_at").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("placement service: list: %w", err)
	}

	summaries := make([]models.PlacementSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, models.PlacementSummary{
			ID:      record.ID,
			Name:    record.Name,
			Branch:  record.Branch,
			Batch:   record.Batch,
			Company: record.Company,
			Package: record.Package,
		})
	}

	return summaries, nil
}

// ListAll returns full records for the admin view.
func (s *PlacementService) ListAll(ctx context.Context) ([]models.Placement, error) {
	var records []models.Placement
	if err := s.db.WithContext(ctx).Order("created_at").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("placement service: list all: %w", err)
	}
	return records, nil
}

// Update overwrites an existing record with a full, validated payload.
func (s *PlacementService) Update(ctx context.Context, id string, input PlacementInput) (*models.Placement, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var record models.Placement
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlacementNotFound
		}
		return nil, fmt.Errorf("placement service: lookup: %w", err)
	}

	updates := map[string]any{
		"name":    strings.TrimSpace(input.Name),
		"batch":   input.Batch,
		"branch":  strings.TrimSpace(input.Branch),
		"company": strings.TrimSpace(input.Company),
		"package": input.Package,
		"cpi":     input.CPI,
		"gender":  input.Gender,
	}
	if err := s.db.WithContext(ctx).Model(&record).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("placement service: update: %w", err)
	}

	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("placement service: reload: %w", err)
	}
	return &record, nil
}

// Delete removes a record; deleting an unknown id is an error and leaves
// the collection unchanged.
func (s *PlacementService) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Placement{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("placement service: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPlacementNotFound
	}
	return nil
}
