package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotbook/internal/slots"
)

const dayYAML = `
open: "09:00"
close: "12:00"
granularity: 30
duration: 30
date: "2026-01-14"
timezone: UTC
working_hours:
  - day: Wednesday
    start: "09:00"
    end: "12:00"
breaks:
  - start: "11:00"
    end: "11:30"
appointments:
  - start: "10:00"
    end: "10:30"
  - start: "bogus"
    end: "10:30"
`

func writeDay(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "day.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dayYAML), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSlotsCmd_Table(t *testing.T) {
	out, errOut, err := run(t, "", "slots", "-f", writeDay(t))
	require.NoError(t, err)

	assert.Contains(t, out, "9:00 AM")
	assert.Contains(t, out, "Booked")
	assert.Contains(t, out, "Break overlap")
	assert.Contains(t, out, "4 of 6 slots free for 30 min (UTC)")
	assert.Contains(t, errOut, "ignored appointment[1]")
}

func TestSlotsCmd_JSONAvailable(t *testing.T) {
	out, _, err := run(t, dayYAML, "slots", "-f", "-", "--available", "--json")
	require.NoError(t, err)

	var got []slots.Slot
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 4)
	assert.Equal(t, "09:00:00", got[0].Start)
	assert.Equal(t, "09:30:00", got[1].Start)
	assert.Equal(t, "10:30:00", got[2].Start)
	assert.Equal(t, "11:30:00", got[3].Start)
}

func TestSlotsCmd_Windows(t *testing.T) {
	out, _, err := run(t, "", "slots", "-f", writeDay(t), "--windows")
	require.NoError(t, err)
	assert.Equal(t, "09:00:00 - 10:00:00 (2 slots)\n10:30:00 - 11:00:00 (1 slots)\n11:30:00 - 12:00:00 (1 slots)\n", out)
}

const shortDayYAML = `
open: "09:00"
close: "10:00"
granularity: 30
duration: 90
date: "2026-01-14"
timezone: Europe/London
`

func TestSlotsCmd_EmptyGrid(t *testing.T) {
	out, _, err := run(t, shortDayYAML, "slots", "-f", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 0 slots free for 1 h 30 min (Europe/London)")

	out, _, err = run(t, shortDayYAML, "slots", "-f", "-", "--json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestCheckCmd(t *testing.T) {
	path := writeDay(t)

	out, _, err := run(t, "", "check", "-f", path, "--at", "09:15")
	require.NoError(t, err)
	assert.Equal(t, "9:15 AM: available\n", out)

	out, _, err = run(t, "", "check", "-f", path, "--at", "11:15")
	require.NoError(t, err)
	assert.Equal(t, "11:15 AM: unavailable (Break overlap)\n", out)

	out, _, err = run(t, "", "check", "-f", path, "--at", "11:45")
	require.NoError(t, err)
	assert.Equal(t, "11:45 AM: unavailable (Outside business hours)\n", out)

	_, _, err = run(t, "", "check", "-f", path, "--at", "25:00")
	assert.Error(t, err)

	_, _, err = run(t, "", "check", "-f", path)
	assert.Error(t, err)
}

func TestSlotsCmd_Errors(t *testing.T) {
	_, _, err := run(t, "", "slots")
	assert.ErrorContains(t, err, "day file is required")

	_, _, err = run(t, "", "slots", "-f", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read day file")

	_, _, err = run(t, "open: [", "slots", "-f", "-")
	assert.ErrorContains(t, err, "parse day file")

	_, _, err = run(t, "open: \"09:00\"\nclose: \"08:00\"\ngranularity: 30\nduration: 30\n", "slots", "-f", "-")
	assert.ErrorIs(t, err, slots.ErrInvalidBusinessHours)
}

func TestVersionCmd(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "slotctl dev (commit=none, built=unknown)\n", out)
}
