package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResetter struct{ n int }

func (c *countingResetter) ResetLeaderboard() { c.n++ }

func TestNew_NextIsSundayNoon(t *testing.T) {
	s, err := New("0 12 * * SUN", "America/Chicago", &countingResetter{})
	require.NoError(t, err)

	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	next := s.Next().In(loc)
	assert.Equal(t, time.Sunday, next.Weekday())
	assert.Equal(t, 12, next.Hour())
	assert.Equal(t, 0, next.Minute())
	assert.True(t, next.After(time.Now()))
}

func TestNew_BadInput(t *testing.T) {
	_, err := New("not a schedule", "UTC", &countingResetter{})
	assert.Error(t, err)

	_, err = New("0 12 * * SUN", "Mars/Olympus", &countingResetter{})
	assert.Error(t, err)
}
