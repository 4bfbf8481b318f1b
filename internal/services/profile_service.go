package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/campusplacements/portal/internal/models"
	apperrors "github.com/campusplacements/portal/pkg/errors"
	"github.com/campusplacements/portal/pkg/metrics"
)

// Review actions accepted by Review.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// StatusPendingApproval is the status string reported while a submission
// awaits review.
const StatusPendingApproval = "Pending Approval"

var (
	// ErrOnlyStudents rejects profile submissions from non-student roles.
	ErrOnlyStudents = apperrors.New("PROFILE_STUDENTS_ONLY", "Only students can request updates", http.StatusForbidden)
	// ErrUpdatePending enforces the at-most-one-pending-update invariant.
	ErrUpdatePending = apperrors.New("PROFILE_UPDATE_PENDING", "You already have a pending update request. Please wait for admin approval.", http.StatusBadRequest)
	// ErrNoChanges blocks resubmission of data identical to an approved profile.
	ErrNoChanges = apperrors.New("PROFILE_NO_CHANGES", "Your profile is already approved with this information.", http.StatusBadRequest)
	// ErrNoPendingUpdate indicates there is nothing for the admin to act on.
	ErrNoPendingUpdate = apperrors.New("PROFILE_NO_PENDING_UPDATE", "No pending update found", http.StatusBadRequest)
	// ErrInvalidAction rejects review actions other than approve/reject.
	ErrInvalidAction = apperrors.New("PROFILE_INVALID_ACTION", "Invalid action. Use 'approve' or 'reject'", http.StatusBadRequest)
)

// ProfileOption customises the ProfileService.
type ProfileOption func(*ProfileService)

// WithProfileClock injects a custom time source.
func WithProfileClock(clock func() time.Time) ProfileOption {
	return func(s *ProfileService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// ProfileService drives the per-user approval workflow:
// none -> pending -> {approved | rejected}, with resubmission allowed from
// any resolved state but never while a request is already pending.
type ProfileService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewProfileService constructs a ProfileService.
func NewProfileService(db *gorm.DB, opts ...ProfileOption) (*ProfileService, error) {
	if db == nil {
		return nil, errors.New("profile service: db is required")
	}

	service := &ProfileService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// SubmitUpdate stores the student's proposed fields as the pending update.
// The reviewed Profile is left untouched until an admin acts.
func (s *ProfileService) SubmitUpdate(ctx context.Context, userID string, fields models.ProfileFields) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("profile service: lookup user: %w", err)
	}

	if user.Role != models.RoleStudent {
		return ErrOnlyStudents
	}

	if user.PendingUpdate != nil {
		return ErrUpdatePending
	}

	if profile := user.ProfileData(); profile != nil &&
		profile.Status == models.ReviewStatusApproved &&
		profile.ProfileFields == fields {
		return ErrNoChanges
	}

	if !user.ReviewState.CanTransition(models.ReviewPending) {
		return ErrUpdatePending
	}

	pending := datatypes.NewJSONType(models.PendingUpdate{
		ProfileFields: fields,
		SubmittedAt:   s.now(),
	})

	updates := map[string]any{
		"pending_update": pending,
		"review_state":   models.ReviewPending,
	}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return fmt.Errorf("profile service: store pending update: %w", err)
	}

	return nil
}

// PendingReview is the review-friendly projection of a pending update.
type PendingReview struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Branch      string    `json:"branch"`
	CGPA        string    `json:"cgpa"`
	RollNo      string    `json:"rollNo"`
	Gender      string    `json:"gender"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// ListPending returns every user awaiting review, with "N/A" standing in
// for any field the student left blank.
func (s *ProfileService) ListPending(ctx context.Context) ([]PendingReview, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("pending_update IS NOT NULL").
		Order("created_at").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("profile service: list pending: %w", err)
	}

	reviews := make([]PendingReview, 0, len(users))
	for _, user := range users {
		pending := user.PendingUpdateData()
		if pending == nil {
			continue
		}
		reviews = append(reviews, PendingReview{
			ID:          user.ID,
			Email:       user.Email,
			Name:        user.Username,
			Branch:      orNA(pending.Department),
			CGPA:        formatCPI(pending.CPI),
			RollNo:      orNA(pending.RollNo),
			Gender:      orNA(pending.Gender),
			SubmittedAt: pending.SubmittedAt,
		})
	}

	return reviews, nil
}

// Review resolves a pending update. Approval publishes the submitted
// fields; rejection keeps the last-good profile data and only stamps the
// rejected status, materialising a rejected profile when none existed yet.
// The pending slot is cleared in the same write either way.
func (s *ProfileService) Review(ctx context.Context, email, action string) error {
	email = normaliseEmail(email)

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("profile service: lookup user: %w", err)
	}

	pending := user.PendingUpdateData()
	if pending == nil {
		return ErrNoPendingUpdate
	}

	now := s.now()

	var (
		profile models.Profile
		next    models.ReviewState
	)

	action = strings.ToLower(strings.TrimSpace(action))

	switch action {
	case ActionApprove:
		profile = models.Profile{
			ProfileFields: pending.ProfileFields,
			Status:        models.ReviewStatusApproved,
			ApprovedAt:    &now,
		}
		next = models.ReviewApproved
	case ActionReject:
		if existing := user.ProfileData(); existing != nil {
			profile = *existing
			profile.Status = models.ReviewStatusRejected
			profile.RejectedAt = &now
		} else {
			profile = models.Profile{
				ProfileFields: pending.ProfileFields,
				Status:        models.ReviewStatusRejected,
				RejectedAt:    &now,
			}
		}
		next = models.ReviewRejected
	default:
		return ErrInvalidAction
	}

	if !user.ReviewState.CanTransition(next) {
		return ErrNoPendingUpdate
	}

	stored := datatypes.NewJSONType(profile)
	updates := map[string]any{
		"profile":        stored,
		"pending_update": nil,
		"review_state":   next,
	}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return fmt.Errorf("profile service: resolve pending update: %w", err)
	}

	metrics.ProfileReviews.WithLabelValues(action).Inc()
	return nil
}

// ProfileStatus is the owner-facing view of the workflow.
type ProfileStatus struct {
	Status            *string     `json:"status"`
	Profile           interface{} `json:"profile"`
	HasPendingRequest bool        `json:"hasPendingRequest"`
}

// Status reports the owner's current position in the workflow: pending,
// resolved, or empty.
func (s *ProfileService) Status(ctx context.Context, userID string) (ProfileStatus, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProfileStatus{}, ErrUserNotFound
		}
		return ProfileStatus{}, fmt.Errorf("profile service: lookup user: %w", err)
	}

	if pending := user.PendingUpdateData(); pending != nil {
		status := StatusPendingApproval
		return ProfileStatus{
			Status:            &status,
			Profile:           pending,
			HasPendingRequest: true,
		}, nil
	}

	if profile := user.ProfileData(); profile != nil {
		status := string(profile.Status)
		return ProfileStatus{
			Status:            &status,
			Profile:           profile,
			HasPendingRequest: false,
		}, nil
	}

	return ProfileStatus{}, nil
}

// ApprovedStudent pairs a student's identity with their published profile.
type ApprovedStudent struct {
	ID      string         `json:"_id"`
	Email   string         `json:"email"`
	Profile models.Profile `json:"profile"`
}

// ApprovedStudents lists verified students whose profile status is exactly
// Approved. Pending or rejected profiles never appear here.
func (s *ProfileService) ApprovedStudents(ctx context.Context) ([]ApprovedStudent, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("role = ? AND verification_state = ? AND profile IS NOT NULL",
			models.RoleStudent, models.VerificationVerified).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("profile service: list approved: %w", err)
	}

	students := make([]ApprovedStudent, 0, len(users))
	for _, user := range users {
		profile := user.ProfileData()
		if profile == nil || profile.Status != models.ReviewStatusApproved {
			continue
		}
		students = append(students, ApprovedStudent{
			ID:      user.ID,
			Email:   user.Email,
			Profile: *profile,
		})
	}

	return students, nil
}

// StudentRecord is the admin-facing view of a student: the account fields
// plus the decoded profile data, credential omitted.
type StudentRecord struct {
	ID            string                `json:"id"`
	Username      string                `json:"username"`
	Email         string                `json:"email"`
	Role          models.Role           `json:"role"`
	Profile       *models.Profile       `json:"profile"`
	PendingUpdate *models.PendingUpdate `json:"pendingUpdate"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func newStudentRecord(user models.User) StudentRecord {
	return StudentRecord{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Role:          user.Role,
		Profile:       user.ProfileData(),
		PendingUpdate: user.PendingUpdateData(),
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

// ListApprovedRecords returns the full student records, profile included,
// of students with approved profiles, for the admin roster.
func (s *ProfileService) ListApprovedRecords(ctx context.Context) ([]StudentRecord, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).
		Omit("password").
		Where("role = ? AND profile IS NOT NULL", models.RoleStudent).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("profile service: list approved records: %w", err)
	}

	records := make([]StudentRecord, 0, len(users))
	for _, user := range users {
		if profile := user.ProfileData(); profile != nil && profile.Status == models.ReviewStatusApproved {
			records = append(records, newStudentRecord(user))
		}
	}

	return records, nil
}

// UpdateStudentInput enumerates the student attributes an admin may edit directly.
type UpdateStudentInput struct {
	Username *string
	Email    *string
}

// UpdateStudent applies an admin edit to a student record and returns the
// refreshed record, profile included.
func (s *ProfileService) UpdateStudent(ctx context.Context, id string, input UpdateStudentInput) (*StudentRecord, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("profile service: lookup user: %w", err)
	}

	updates := map[string]any{}
	if input.Username != nil && strings.TrimSpace(*input.Username) != "" {
		updates["username"] = strings.TrimSpace(*input.Username)
	}
	if input.Email != nil && normaliseEmail(*input.Email) != "" {
		updates["email"] = normaliseEmail(*input.Email)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, ErrEmailTaken
			}
			return nil, fmt.Errorf("profile service: update student: %w", err)
		}
	}

	record := newStudentRecord(user)
	return &record, nil
}

// DeleteStudent removes a student record entirely.
func (s *ProfileService) DeleteStudent(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("profile service: delete student: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return value
}

func formatCPI(cpi float64) string {
	if cpi == 0 {
		return "N/A"
	}
	return strconv.FormatFloat(cpi, 'f', -1, 64)
}
