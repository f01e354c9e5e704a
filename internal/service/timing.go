package service

import (
	"fmt"
	"time"

	"github.com/HummaSaeed/TimeTableManager/internal/models"
)

const clockLayout = "15:04"

// PeriodWindow computes the wall-clock window of one period by walking the
// day from assembly onward, consuming each earlier period's duration in turn.
// Break periods consume their own configured duration. Pure function of the
// week shape, recomputed per slot rather than stored.
func PeriodWindow(shape models.WeekShape, period int) (start, end string, err error) {
	if period < 1 || period > shape.PeriodsPerDay {
		return "", "", fmt.Errorf("period %d out of range 1..%d", period, shape.PeriodsPerDay)
	}

	base, err := time.Parse(clockLayout, shape.AssemblyStart)
	if err != nil {
		return "", "", fmt.Errorf("parse assembly start %q: %w", shape.AssemblyStart, err)
	}

	cursor := base.Add(time.Duration(shape.AssemblyDurationMinutes) * time.Minute)
	var from, to time.Time
	for p := 1; p <= period; p++ {
		minutes := shape.PeriodDurationMinutes
		if br := shape.BreakAt(p); br != nil {
			minutes = br.DurationMinutes
		}
		from = cursor
		to = cursor.Add(time.Duration(minutes) * time.Minute)
		cursor = to
	}

	return from.Format(clockLayout), to.Format(clockLayout), nil
}
