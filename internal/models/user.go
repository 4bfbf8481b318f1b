package models

import (
	"time"

	"gorm.io/datatypes"
)

// Role enumerates the access levels known to the portal.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// VerificationState tracks progress through email-OTP registration.
type VerificationState string

const (
	VerificationUnverified VerificationState = "unverified"
	VerificationVerified   VerificationState = "verified"
)

// User describes a portal account. Accounts are created unverified by the
// send-otp flow and promoted to verified on a correct, unexpired code; the
// code and its expiry are present only while unverified.
type User struct {
	BaseModel

	Username string `gorm:"not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	Role Role `gorm:"type:varchar(16);not null;default:student;index" json:"role"`

	VerificationState   VerificationState `gorm:"type:varchar(16);not null;default:unverified;index" json:"-"`
	VerificationCode    *string           `gorm:"size:6" json:"-"`
	VerificationExpires *time.Time        `gorm:"index" json:"-"`

	// ReviewState mirrors the approval workflow; pending iff PendingUpdate
	// is non-nil.
	ReviewState   ReviewState                        `gorm:"type:varchar(16);not null;default:none;index" json:"-"`
	PendingUpdate *datatypes.JSONType[PendingUpdate] `gorm:"column:pending_update" json:"-"`
	Profile       *datatypes.JSONType[Profile]       `gorm:"column:profile" json:"-"`
}

// IsVerified reports whether the account completed OTP verification.
func (u *User) IsVerified() bool {
	return u.VerificationState == VerificationVerified
}

// PendingUpdateData returns the decoded pending update, or nil.
func (u *User) PendingUpdateData() *PendingUpdate {
	if u.PendingUpdate == nil {
		return nil
	}
	data := u.PendingUpdate.Data()
	return &data
}

// ProfileData returns the decoded reviewed profile, or nil.
func (u *User) ProfileData() *Profile {
	if u.Profile == nil {
		return nil
	}
	data := u.Profile.Data()
	return &data
}
