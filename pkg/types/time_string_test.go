package types

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", ts.String())

	_, err = NewTimeStringFromString("9:30pm")
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromString("25:00")
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts := TimeString("16:30")

	next, err := ts.AddMinutes(45)
	require.NoError(t, err)
	assert.Equal(t, TimeString("17:15"), next)

	_, err = ts.AddMinutes(8 * 60)
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_Compare(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("17:00"))
	assert.True(t, TimeString("17:00").IsAfter("09:00"))
	assert.False(t, TimeString("09:00").IsBefore("09:00"))
}

func TestTimeString_On(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	at, err := TimeString("09:00").On(2025, time.January, 6, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 6, 14, 0, 0, 0, time.UTC), at.UTC())
}
