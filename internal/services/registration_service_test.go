package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusplacements/portal/internal/models"
	"github.com/campusplacements/portal/pkg/crypto"
	apperrors "github.com/campusplacements/portal/pkg/errors"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestSendOTPCreatesUnverifiedUser(t *testing.T) {
	db := openServiceTestDB(t)
	mailer := &stubMailer{}
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	svc, err := NewRegistrationService(db, mailer,
		WithRegistrationClock(fixedClock(start)),
		WithCodeGenerator(func() (string, error) { return "654321", nil }),
	)
	require.NoError(t, err)

	require.NoError(t, svc.SendOTP(context.Background(), RegisterInput{
		Username: "riya",
		Email:    "Riya@Campus.EDU",
		Password: "pw1",
	}))

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "riya@campus.edu").Error)
	require.Equal(t, models.VerificationUnverified, user.VerificationState)
	require.Equal(t, models.RoleStudent, user.Role)
	require.NotNil(t, user.VerificationCode)
	require.Equal(t, "654321", *user.VerificationCode)
	require.NotNil(t, user.VerificationExpires)
	require.True(t, user.VerificationExpires.Equal(start.Add(10*time.Minute)))
	require.True(t, crypto.VerifyPassword(user.Password, "pw1"))
	require.NotEqual(t, "pw1", user.Password)

	require.Len(t, mailer.sent, 1)
	require.Equal(t, []string{"riya@campus.edu"}, mailer.sent[0].To)
	require.Contains(t, mailer.sent[0].Body, "654321")
}

func TestSendOTPRejectsVerifiedDuplicateWithoutMutation(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewRegistrationService(db, &stubMailer{})
	require.NoError(t, err)

	existing := models.User{
		Username:          "riya",
		Email:             "riya@campus.edu",
		Password:          "hash",
		VerificationState: models.VerificationVerified,
	}
	require.NoError(t, db.Create(&existing).Error)

	err = svc.SendOTP(context.Background(), RegisterInput{Username: "other", Email: "riya@campus.edu", Password: "pw"})
	require.ErrorIs(t, err, ErrEmailTaken)

	var after models.User
	require.NoError(t, db.First(&after, "email = ?", "riya@campus.edu").Error)
	require.Equal(t, "riya", after.Username)
	require.Equal(t, "hash", after.Password)
	require.Nil(t, after.VerificationCode)
}

func TestSendOTPRejectsUnverifiedDuplicate(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewRegistrationService(db, &stubMailer{},
		WithCodeGenerator(func() (string, error) { return "111111", nil }),
	)
	require.NoError(t, err)

	require.NoError(t, svc.SendOTP(context.Background(), RegisterInput{Username: "riya", Email: "riya@campus.edu", Password: "pw"}))

	// Resend is not supported while a code is outstanding.
	err = svc.SendOTP(context.Background(), RegisterInput{Username: "riya", Email: "riya@campus.edu", Password: "pw"})
	require.ErrorIs(t, err, ErrOTPAlreadySent)

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "riya@campus.edu").Error)
	require.Equal(t, "111111", *user.VerificationCode)
}

func TestSendOTPRollsBackWhenDispatchFails(t *testing.T) {
	db := openServiceTestDB(t)
	mailer := &stubMailer{err: errors.New("smtp: connection refused")}

	svc, err := NewRegistrationService(db, mailer)
	require.NoError(t, err)

	err = svc.SendOTP(context.Background(), RegisterInput{Username: "riya", Email: "riya@campus.edu", Password: "pw"})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrOTPAlreadySent)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Zero(t, count, "failed dispatch must not leave an unverified record behind")
}

func TestVerifyOTPHappyPath(t *testing.T) {
	db := openServiceTestDB(t)
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	current := start

	svc, err := NewRegistrationService(db, &stubMailer{},
		WithRegistrationClock(func() time.Time { return current }),
		WithCodeGenerator(func() (string, error) { return "222333", nil }),
	)
	require.NoError(t, err)

	require.NoError(t, svc.SendOTP(context.Background(), RegisterInput{Username: "a", Email: "a@x.com", Password: "pw1"}))

	// Wrong code is rejected.
	_, err = svc.VerifyOTP(context.Background(), "a@x.com", "999999")
	require.ErrorIs(t, err, ErrOTPInvalid)

	// Correct code before expiry verifies and clears the code.
	current = start.Add(9 * time.Minute)
	user, err := svc.VerifyOTP(context.Background(), "a@x.com", "222333")
	require.NoError(t, err)
	require.True(t, user.IsVerified())

	var stored models.User
	require.NoError(t, db.First(&stored, "email = ?", "a@x.com").Error)
	require.Equal(t, models.VerificationVerified, stored.VerificationState)
	require.Nil(t, stored.VerificationCode)
	require.Nil(t, stored.VerificationExpires)
}

func TestVerifyOTPFailsAtExpiryEvenWithCorrectCode(t *testing.T) {
	db := openServiceTestDB(t)
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	current := start

	svc, err := NewRegistrationService(db, &stubMailer{},
		WithRegistrationClock(func() time.Time { return current }),
		WithCodeGenerator(func() (string, error) { return "222333", nil }),
	)
	require.NoError(t, err)

	require.NoError(t, svc.SendOTP(context.Background(), RegisterInput{Username: "a", Email: "a@x.com", Password: "pw1"}))

	current = start.Add(10 * time.Minute) // exactly at expiry
	_, err = svc.VerifyOTP(context.Background(), "a@x.com", "222333")
	require.ErrorIs(t, err, ErrOTPInvalid)
}

func TestVerifyOTPUnknownAndAlreadyVerified(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewRegistrationService(db, &stubMailer{})
	require.NoError(t, err)

	_, err = svc.VerifyOTP(context.Background(), "ghost@x.com", "123456")
	require.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, db.Create(&models.User{
		Username:          "a",
		Email:             "a@x.com",
		Password:          "hash",
		VerificationState: models.VerificationVerified,
	}).Error)

	_, err = svc.VerifyOTP(context.Background(), "a@x.com", "123456")
	require.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestAuthenticate(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewRegistrationService(db, &stubMailer{},
		WithCodeGenerator(func() (string, error) { return "424242", nil }),
	)
	require.NoError(t, err)

	require.NoError(t, svc.SendOTP(context.Background(), RegisterInput{Username: "a", Email: "a@x.com", Password: "pw1"}))

	// Login is blocked until verification completes.
	_, err = svc.Authenticate(context.Background(), "a@x.com", "pw1")
	require.ErrorIs(t, err, ErrNotVerified)

	_, err = svc.VerifyOTP(context.Background(), "a@x.com", "424242")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "a@x.com", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "ghost@x.com", "pw1")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	user, err := svc.Authenticate(context.Background(), "a@x.com", "pw1")
	require.NoError(t, err)
	require.Equal(t, "a", user.Username)
}

func TestDeleteExpiredUnverified(t *testing.T) {
	db := openServiceTestDB(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	svc, err := NewRegistrationService(db, &stubMailer{})
	require.NoError(t, err)

	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)
	code := "123456"

	expired := models.User{Username: "expired", Email: "expired@x.com", Password: "h",
		VerificationCode: &code, VerificationExpires: &past}
	fresh := models.User{Username: "fresh", Email: "fresh@x.com", Password: "h",
		VerificationCode: &code, VerificationExpires: &future}
	verified := models.User{Username: "done", Email: "done@x.com", Password: "h",
		VerificationState: models.VerificationVerified}

	require.NoError(t, db.Create(&expired).Error)
	require.NoError(t, db.Create(&fresh).Error)
	require.NoError(t, db.Create(&verified).Error)

	removed, err := svc.DeleteExpiredUnverified(context.Background(), now)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	var remaining []models.User
	require.NoError(t, db.Order("email").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	require.Equal(t, "done@x.com", remaining[0].Email)
	require.Equal(t, "fresh@x.com", remaining[1].Email)
}
