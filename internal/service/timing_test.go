package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HummaSaeed/TimeTableManager/internal/models"
)

func testShape() models.WeekShape {
	return models.WeekShape{
		WorkingDays:             []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		PeriodsPerDay:           6,
		PeriodDurationMinutes:   40,
		AssemblyStart:           "08:00",
		AssemblyDurationMinutes: 15,
		Breaks: []models.BreakPeriod{
			{Period: 3, DurationMinutes: 20, Name: "Recess"},
		},
	}
}

func TestPeriodWindowWalksTheDay(t *testing.T) {
	shape := testShape()

	cases := []struct {
		period int
		start  string
		end    string
	}{
		{1, "08:15", "08:55"},
		{2, "08:55", "09:35"},
		{3, "09:35", "09:55"}, // break period uses its own duration
		{4, "09:55", "10:35"},
		{6, "11:15", "11:55"},
	}
	for _, tc := range cases {
		start, end, err := PeriodWindow(shape, tc.period)
		require.NoError(t, err)
		assert.Equal(t, tc.start, start, "period %d start", tc.period)
		assert.Equal(t, tc.end, end, "period %d end", tc.period)
	}
}

func TestPeriodWindowIsPure(t *testing.T) {
	shape := testShape()

	first, _, err := PeriodWindow(shape, 5)
	require.NoError(t, err)
	second, _, err := PeriodWindow(shape, 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPeriodWindowRejectsOutOfRange(t *testing.T) {
	shape := testShape()

	_, _, err := PeriodWindow(shape, 0)
	assert.Error(t, err)
	_, _, err = PeriodWindow(shape, 7)
	assert.Error(t, err)
}

func TestPeriodWindowRejectsBadAssemblyTime(t *testing.T) {
	shape := testShape()
	shape.AssemblyStart = "not-a-time"

	_, _, err := PeriodWindow(shape, 1)
	assert.Error(t, err)
}
