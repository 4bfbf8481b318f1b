package models

import "time"

// ReviewStatus tags a reviewed profile with the admin's decision.
type ReviewStatus string

const (
	ReviewStatusApproved ReviewStatus = "Approved"
	ReviewStatusRejected ReviewStatus = "Rejected"
)

// ReviewState is the explicit per-user state of the profile approval
// workflow. It replaces inferring state from which optional fields happen
// to be set.
type ReviewState string

const (
	ReviewNone     ReviewState = "none"
	ReviewPending  ReviewState = "pending"
	ReviewApproved ReviewState = "approved"
	ReviewRejected ReviewState = "rejected"
)

// reviewTransitions is the full transition table of the approval workflow.
// Resubmission is allowed from every resolved state but never while a
// request is already pending.
var reviewTransitions = map[ReviewState][]ReviewState{
	ReviewNone:     {ReviewPending},
	ReviewPending:  {ReviewApproved, ReviewRejected},
	ReviewApproved: {ReviewPending},
	ReviewRejected: {ReviewPending},
}

// CanTransition reports whether moving from s to next is a legal step.
func (s ReviewState) CanTransition(next ReviewState) bool {
	for _, allowed := range reviewTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ProfileFields enumerates the reviewable profile attributes a student can
// submit. Keeping the set closed catches shape drift at compile time.
type ProfileFields struct {
	Name       string  `json:"name"`
	RollNo     string  `json:"rollNo"`
	Department string  `json:"department"`
	CPI        float64 `json:"cpi"`
	Gender     string  `json:"gender"`
}

// PendingUpdate is a student-submitted, not-yet-reviewed set of profile
// field values together with the server-assigned submission time.
type PendingUpdate struct {
	ProfileFields
	SubmittedAt time.Time `json:"submittedAt"`
}

// Profile is the last admin-reviewed set of profile field values. A
// rejected first submission still materialises a Profile, tagged Rejected.
type Profile struct {
	ProfileFields
	Status     ReviewStatus `json:"status"`
	ApprovedAt *time.Time   `json:"approvedAt,omitempty"`
	RejectedAt *time.Time   `json:"rejectedAt,omitempty"`
}
