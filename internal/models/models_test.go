package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openModelTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}, &Placement{}, &Alumni{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestUserDefaultsAndUUID(t *testing.T) {
	db := openModelTestDB(t)

	user := User{Username: "riya", Email: "riya@campus.edu", Password: "hash"}
	require.NoError(t, db.Create(&user).Error)
	require.NotEmpty(t, user.ID)

	var stored User
	require.NoError(t, db.First(&stored, "email = ?", "riya@campus.edu").Error)
	require.Equal(t, RoleStudent, stored.Role)
	require.Equal(t, VerificationUnverified, stored.VerificationState)
	require.Equal(t, ReviewNone, stored.ReviewState)
	require.False(t, stored.IsVerified())
	require.Nil(t, stored.PendingUpdateData())
	require.Nil(t, stored.ProfileData())
}

func TestUserEmailUnique(t *testing.T) {
	db := openModelTestDB(t)

	require.NoError(t, db.Create(&User{Username: "a", Email: "dup@campus.edu", Password: "h"}).Error)
	err := db.Create(&User{Username: "b", Email: "dup@campus.edu", Password: "h"}).Error
	require.Error(t, err)
}

func TestPendingUpdateRoundTrip(t *testing.T) {
	db := openModelTestDB(t)

	pending := datatypes.NewJSONType(PendingUpdate{
		ProfileFields: ProfileFields{
			Name:       "Riya",
			RollNo:     "20XX001",
			Department: "Computer Science",
			CPI:        9.1,
			Gender:     GenderFemale,
		},
		SubmittedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	})

	user := User{
		Username:      "riya",
		Email:         "riya@campus.edu",
		Password:      "hash",
		ReviewState:   ReviewPending,
		PendingUpdate: &pending,
	}
	require.NoError(t, db.Create(&user).Error)

	var stored User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)

	data := stored.PendingUpdateData()
	require.NotNil(t, data)
	require.Equal(t, "20XX001", data.RollNo)
	require.InEpsilon(t, 9.1, data.CPI, 1e-9)
	require.True(t, data.SubmittedAt.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))
}

func TestReviewTransitionTable(t *testing.T) {
	cases := []struct {
		from, to ReviewState
		ok       bool
	}{
		{ReviewNone, ReviewPending, true},
		{ReviewNone, ReviewApproved, false},
		{ReviewPending, ReviewApproved, true},
		{ReviewPending, ReviewRejected, true},
		{ReviewPending, ReviewPending, false},
		{ReviewApproved, ReviewPending, true},
		{ReviewRejected, ReviewPending, true},
		{ReviewApproved, ReviewRejected, false},
	}

	for _, tc := range cases {
		require.Equalf(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
