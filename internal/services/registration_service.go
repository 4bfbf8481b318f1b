package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/campusplacements/portal/internal/models"
	"github.com/campusplacements/portal/pkg/crypto"
	apperrors "github.com/campusplacements/portal/pkg/errors"
	"github.com/campusplacements/portal/pkg/mail"
	"github.com/campusplacements/portal/pkg/metrics"
)

const defaultOTPExpiry = 10 * time.Minute

var (
	// ErrEmailTaken indicates a verified account already owns the email.
	ErrEmailTaken = apperrors.New("AUTH_EMAIL_TAKEN", "Email already in use", http.StatusBadRequest)
	// ErrOTPAlreadySent indicates an unverified registration is still awaiting its code.
	// Resend is not supported; the caller must wait out the expiry.
	ErrOTPAlreadySent = apperrors.New("AUTH_OTP_PENDING", "OTP already sent. Please verify your email.", http.StatusBadRequest)
	// ErrUserNotFound indicates no account matches the supplied email.
	ErrUserNotFound = apperrors.New("AUTH_USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrAlreadyVerified indicates the account has already completed verification.
	ErrAlreadyVerified = apperrors.New("AUTH_ALREADY_VERIFIED", "Email already verified", http.StatusBadRequest)
	// ErrOTPInvalid covers both a wrong code and an expired one.
	ErrOTPInvalid = apperrors.New("AUTH_OTP_INVALID", "Invalid or expired OTP", http.StatusBadRequest)
	// ErrNotVerified blocks login until OTP verification completes.
	ErrNotVerified = apperrors.New("AUTH_NOT_VERIFIED", "User not verified", http.StatusBadRequest)
)

// RegistrationOption customises the RegistrationService.
type RegistrationOption func(*RegistrationService)

// WithOTPExpiry overrides the code lifetime.
func WithOTPExpiry(d time.Duration) RegistrationOption {
	return func(s *RegistrationService) {
		if d > 0 {
			s.otpExpiry = d
		}
	}
}

// WithRegistrationClock injects a custom time source.
func WithRegistrationClock(clock func() time.Time) RegistrationOption {
	return func(s *RegistrationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithCodeGenerator overrides OTP generation, primarily for tests.
func WithCodeGenerator(gen func() (string, error)) RegistrationOption {
	return func(s *RegistrationService) {
		if gen != nil {
			s.genCode = gen
		}
	}
}

// RegistrationService drives the email-OTP registration state machine:
// unregistered -> otp_pending -> verified.
type RegistrationService struct {
	db        *gorm.DB
	mailer    mail.Mailer
	otpExpiry time.Duration
	now       func() time.Time
	genCode   func() (string, error)
}

// NewRegistrationService constructs a registration service with the provided dependencies.
func NewRegistrationService(db *gorm.DB, mailer mail.Mailer, opts ...RegistrationOption) (*RegistrationService, error) {
	if db == nil {
		return nil, errors.New("registration service: db is required")
	}

	service := &RegistrationService{
		db:        db,
		mailer:    mailer,
		otpExpiry: defaultOTPExpiry,
		now:       time.Now,
		genCode:   crypto.GenerateOTP,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// RegisterInput carries the send-otp request fields.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// SendOTP creates an unverified account holding a fresh 6-digit code and
// dispatches it by email. When dispatch fails the just-created record is
// removed so the caller can retry immediately instead of being locked out
// until the sweep runs.
func (s *RegistrationService) SendOTP(ctx context.Context, input RegisterInput) error {
	email := normaliseEmail(input.Email)
	username := strings.TrimSpace(input.Username)
	if email == "" {
		return apperrors.NewBadRequest("email is required")
	}
	if username == "" {
		return apperrors.NewBadRequest("username is required")
	}
	if input.Password == "" {
		return apperrors.NewBadRequest("password is required")
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if existing.IsVerified() {
			return ErrEmailTaken
		}
		return ErrOTPAlreadySent
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("registration service: lookup email: %w", err)
	}

	code, err := s.genCode()
	if err != nil {
		return fmt.Errorf("registration service: generate otp: %w", err)
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return fmt.Errorf("registration service: hash password: %w", err)
	}

	now := s.now()
	expires := now.Add(s.otpExpiry)
	user := models.User{
		Username:            username,
		Email:               email,
		Password:            hash,
		Role:                models.RoleStudent,
		VerificationState:   models.VerificationUnverified,
		VerificationCode:    &code,
		VerificationExpires: &expires,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Lost a race with a concurrent registration for the same email.
			return ErrOTPAlreadySent
		}
		return fmt.Errorf("registration service: create user: %w", err)
	}

	if s.mailer != nil {
		msg := mail.Message{
			To:      []string{email},
			Subject: "Verify Your Email",
			Body:    s.otpBody(code),
		}
		if mailErr := s.mailer.Send(ctx, msg); mailErr != nil && !errors.Is(mailErr, mail.ErrSMTPDisabled) {
			metrics.OTPIssued.WithLabelValues("failed").Inc()
			if delErr := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", user.ID).Error; delErr != nil {
				return fmt.Errorf("registration service: rollback after send failure: %w", delErr)
			}
			return apperrors.Wrap(mailErr, "Failed to send verification email")
		}
	}

	metrics.OTPIssued.WithLabelValues("sent").Inc()
	return nil
}

// VerifyOTP consumes a correct, unexpired code and promotes the account to
// verified. This is the only transition out of the otp_pending state.
func (s *RegistrationService) VerifyOTP(ctx context.Context, email, code string) (*models.User, error) {
	email = normaliseEmail(email)

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("registration service: lookup email: %w", err)
	}

	if user.IsVerified() {
		return nil, ErrAlreadyVerified
	}

	now := s.now()
	if user.VerificationCode == nil || user.VerificationExpires == nil {
		return nil, ErrOTPInvalid
	}
	if subtle.ConstantTimeCompare([]byte(*user.VerificationCode), []byte(code)) != 1 {
		return nil, ErrOTPInvalid
	}
	if !now.Before(*user.VerificationExpires) {
		return nil, ErrOTPInvalid
	}

	updates := map[string]any{
		"verification_state":   models.VerificationVerified,
		"verification_code":    nil,
		"verification_expires": nil,
	}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("registration service: mark verified: %w", err)
	}

	user.VerificationState = models.VerificationVerified
	user.VerificationCode = nil
	user.VerificationExpires = nil
	return &user, nil
}

// Authenticate checks email/password against a verified account. The caller
// mints the session token on success.
func (s *RegistrationService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = normaliseEmail(email)

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("registration service: lookup email: %w", err)
	}

	if !user.IsVerified() {
		return nil, ErrNotVerified
	}

	if !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return &user, nil
}

// DeleteExpiredUnverified removes unverified accounts whose code expired
// before now. Invoked by the maintenance sweep, never from the request path.
func (s *RegistrationService) DeleteExpiredUnverified(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("verification_state = ? AND verification_expires < ?", models.VerificationUnverified, now).
		Delete(&models.User{})
	if result.Error != nil {
		return 0, fmt.Errorf("registration service: purge unverified: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *RegistrationService) otpBody(code string) string {
	minutes := int(s.otpExpiry / time.Minute)
	return fmt.Sprintf("Thanks for registering! Just one step away from access. Here is your verification code: %s. It expires in %d minutes.\n", code, minutes)
}
