package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(-4, 1, 100))
	assert.Equal(t, 100, Clamp(400, 1, 100))
	assert.Equal(t, 10, Clamp(10, 1, 100))
}

func TestDefaultDateRange(t *testing.T) {
	now := time.Date(2025, 1, 10, 22, 0, 0, 0, time.UTC)

	start, end := DefaultDateRange(now, 7)
	assert.Equal(t, "2025-01-04", start)
	assert.Equal(t, "2025-01-10", end)

	start, end = DefaultDateRange(now, 0)
	assert.Equal(t, "2025-01-10", start)
	assert.Equal(t, "2025-01-10", end)
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay(" 2025-02-28 ")
	require.NoError(t, err)
	assert.Equal(t, 28, day.Day())

	_, err = ParseDay("28/02/2025")
	assert.ErrorContains(t, err, "28/02/2025")
}

func TestMissingFlags(t *testing.T) {
	RequiredFlags = map[*string]string{}
	filled, empty := "2025-01-01", " "
	RequiredFlag(&filled, "start")
	RequiredFlag(&empty, "-end")

	assert.Equal(t, []string{"--end"}, MissingFlags())
}

func TestGetPackageName(t *testing.T) {
	assert.Equal(t, "util", GetPackageName())
}
