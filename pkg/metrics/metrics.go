package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// OTPIssued counts registration OTP emails dispatched by result (sent|failed).
	OTPIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_otp_issued_total",
			Help: "Total number of registration OTP codes issued",
		},
		[]string{"result"},
	)

	// ProfileReviews counts admin decisions on pending profile updates (approve|reject).
	ProfileReviews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_profile_reviews_total",
			Help: "Total number of profile review decisions",
		},
		[]string{"action"},
	)

	// UnverifiedPurged counts users removed by the expired-registration sweep.
	UnverifiedPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_unverified_purged_total",
			Help: "Total number of expired unverified accounts removed",
		},
	)

	// APILatency observes request durations by method, route and status.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_api_request_duration_seconds",
			Help:    "API request latency distributions",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
