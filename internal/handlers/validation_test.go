package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appValidator "github.com/campusplacements/portal/pkg/validator"
)

func TestFormatValidationError(t *testing.T) {
	cases := []struct {
		name     string
		failures appValidator.ValidationErrors
		want     string
	}{
		{
			name:     "required",
			failures: appValidator.ValidationErrors{{Field: "email", Tag: "required"}},
			want:     "email is required",
		},
		{
			name:     "email",
			failures: appValidator.ValidationErrors{{Field: "email", Tag: "email"}},
			want:     "email must be a valid email address",
		},
		{
			name:     "len",
			failures: appValidator.ValidationErrors{{Field: "otp", Tag: "len", Param: "6"}},
			want:     "otp must be exactly 6 characters",
		},
		{
			name: "multiple",
			failures: appValidator.ValidationErrors{
				{Field: "username", Tag: "required"},
				{Field: "password", Tag: "min", Param: "4"},
			},
			want: "username is required; password must be at least 4 characters",
		},
		{
			name:     "unknown tag",
			failures: appValidator.ValidationErrors{{Field: "gender", Tag: "oneof", Param: "Male Female"}},
			want:     "gender failed validation: oneof=Male Female",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, formatValidationError(tc.failures))
		})
	}

	require.Equal(t, "invalid request payload", formatValidationError(nil))
}

func TestParseIntQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=3&limit=oops", nil)

	require.Equal(t, 3, parseIntQuery(c, "page", 1))
	require.Equal(t, 10, parseIntQuery(c, "limit", 10))
	require.Equal(t, 10, parseIntQuery(c, "missing", 10))
}
