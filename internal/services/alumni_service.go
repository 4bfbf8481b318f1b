package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/campusplacements/portal/internal/models"
)

const (
	defaultAlumniPage  = 1
	defaultAlumniLimit = 10
)

// AlumniPage is one page of the public alumni listing.
type AlumniPage struct {
	Page        int             `json:"page"`
	Limit       int             `json:"limit"`
	TotalPages  int             `json:"totalPages"`
	TotalAlumni int64           `json:"totalAlumni"`
	Data        []models.Alumni `json:"data"`
}

// AlumniService serves the read-only alumni directory.
type AlumniService struct {
	db *gorm.DB
}

// NewAlumniService constructs an AlumniService.
func NewAlumniService(db *gorm.DB) (*AlumniService, error) {
	if db == nil {
		return nil, errors.New("alumni service: db is required")
	}
	return &AlumniService{db: db}, nil
}

// List returns one page of alumni. Out-of-range arguments fall back to the
// defaults rather than failing.
func (s *AlumniService) List(ctx context.Context, page, limit int) (AlumniPage, error) {
	if page < 1 {
		page = defaultAlumniPage
	}
	if limit < 1 {
		limit = defaultAlumniLimit
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Alumni{}).Count(&total).Error; err != nil {
		return AlumniPage{}, fmt.Errorf("alumni service: count: %w", err)
	}

	var alumni []models.Alumni
	if err := s.db.WithContext(ctx).
		Order("created_at").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&alumni).Error; err != nil {
		return AlumniPage{}, fmt.Errorf("alumni service: list: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return AlumniPage{
		Page:        page,
		Limit:       limit,
		TotalPages:  totalPages,
		TotalAlumni: total,
		Data:        alumni,
	}, nil
}
