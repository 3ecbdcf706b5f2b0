package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Minutes
	}{
		{"00:00", 0},
		{"09:00", 540},
		{"9:30", 570},
		{"12:00:00", 720},
		{"17:45:59", 1065},
		{"23:59", 1439},
		{"24:00", 1440},
		{" 08:15 ", 495},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "9", "9:5", "ab:cd", "25:00", "24:30", "10:60", "10:00:61", "-1:00", "+1:00", "10:00:00:00", "100:00"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.ErrorIs(t, err, ErrInvalidTime)
		})
	}
}

func TestMinutes_Clock(t *testing.T) {
	assert.Equal(t, "00:00:00", Minutes(0).Clock())
	assert.Equal(t, "09:05:00", Minutes(545).Clock())
	assert.Equal(t, "16:30:00", MustParse("16:30").Clock())
	assert.Equal(t, "16:30", MustParse("16:30:00").HHMM())
}

func TestTo12Hour(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"00:00", "12:00 AM"},
		{"00:30", "12:30 AM"},
		{"09:05", "9:05 AM"},
		{"12:00", "12:00 PM"},
		{"13:15", "1:15 PM"},
		{"23:59", "11:59 PM"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := To12Hour(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := To12Hour("noon")
	assert.ErrorIs(t, err, ErrInvalidTime)
}
