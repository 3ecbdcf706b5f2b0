package slots

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConsecutive(t *testing.T) {
	req := baseRequest()
	req.Close = "12:00"
	req.Appointments = []Entry{{Start: "10:00", End: "10:30"}}

	slots, err := Generate(req)
	require.NoError(t, err)

	groups := FindConsecutive(slots)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 2) // 09:00, 09:30
	assert.Len(t, groups[1], 3) // 10:30, 11:00, 11:30

	windows := FreeWindows(slots)
	assert.Equal(t, []Window{
		{Start: "09:00:00", End: "10:00:00", Slots: 2},
		{Start: "10:30:00", End: "12:00:00", Slots: 3},
	}, windows)

	assert.Nil(t, FindConsecutive(nil))
	assert.Empty(t, FreeWindows(nil))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "30 min", FormatDuration(30))
	assert.Equal(t, "1 hour", FormatDuration(60))
	assert.Equal(t, "1 h 30 min", FormatDuration(90))
	assert.Equal(t, "3 hours", FormatDuration(180))
}

func TestSlotJSON(t *testing.T) {
	free, err := json.Marshal(Slot{Start: "09:00:00", Available: true})
	require.NoError(t, err)
	assert.Contains(t, string(free), `"unavailable_reason":null`)

	booked, err := json.Marshal(Slot{Start: "09:00:00", Reason: ReasonBooked})
	require.NoError(t, err)
	assert.Contains(t, string(booked), `"unavailable_reason":"Booked"`)

	var back Slot
	require.NoError(t, json.Unmarshal(booked, &back))
	assert.Equal(t, ReasonBooked, back.Reason)

	var fresh Slot
	require.NoError(t, json.Unmarshal(free, &fresh))
	assert.Equal(t, ReasonNone, fresh.Reason)
	assert.True(t, fresh.Available)
}
