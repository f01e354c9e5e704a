package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// BreakPeriod marks one period of the day as a break instead of a lesson.
type BreakPeriod struct {
	Period          int    `json:"period"`
	DurationMinutes int    `json:"duration_minutes"`
	Name            string `json:"name"`
}

// WeekShape describes the teaching week for a school: which days are taught,
// how many periods each day has and how the clock walks through them.
type WeekShape struct {
	WorkingDays             []string      `json:"working_days"`
	PeriodsPerDay           int           `json:"periods_per_day"`
	PeriodDurationMinutes   int           `json:"period_duration_minutes"`
	AssemblyStart           string        `json:"assembly_start"`
	AssemblyDurationMinutes int           `json:"assembly_duration_minutes"`
	Breaks                  []BreakPeriod `json:"breaks"`
}

// BreakAt returns the break configured for the given period, if any.
func (w WeekShape) BreakAt(period int) *BreakPeriod {
	for i := range w.Breaks {
		if w.Breaks[i].Period == period {
			return &w.Breaks[i]
		}
	}
	return nil
}

// TotalWeeklyPeriods is the number of period cells in one class week,
// breaks included.
func (w WeekShape) TotalWeeklyPeriods() int {
	return len(w.WorkingDays) * w.PeriodsPerDay
}

// School owns the week shape and roster for one institution.
type School struct {
	ID                      string         `db:"id" json:"id"`
	Name                    string         `db:"name" json:"name"`
	Code                    string         `db:"code" json:"code"`
	AcademicYear            string         `db:"academic_year" json:"academic_year"`
	WorkingDays             types.JSONText `db:"working_days" json:"working_days"`
	PeriodsPerDay           int            `db:"periods_per_day" json:"periods_per_day"`
	PeriodDurationMinutes   int            `db:"period_duration_minutes" json:"period_duration_minutes"`
	AssemblyStart           string         `db:"assembly_start" json:"assembly_start"`
	AssemblyDurationMinutes int            `db:"assembly_duration_minutes" json:"assembly_duration_minutes"`
	BreakPeriods            types.JSONText `db:"break_periods" json:"break_periods"`
	CreatedAt               time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time      `db:"updated_at" json:"updated_at"`
}

// Shape decodes the stored week configuration into a WeekShape value.
func (s *School) Shape() (WeekShape, error) {
	shape := WeekShape{
		PeriodsPerDay:           s.PeriodsPerDay,
		PeriodDurationMinutes:   s.PeriodDurationMinutes,
		AssemblyStart:           s.AssemblyStart,
		AssemblyDurationMinutes: s.AssemblyDurationMinutes,
	}
	if len(s.WorkingDays) > 0 {
		if err := json.Unmarshal(s.WorkingDays, &shape.WorkingDays); err != nil {
			return WeekShape{}, err
		}
	}
	if len(shape.WorkingDays) == 0 {
		shape.WorkingDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
	}
	if len(s.BreakPeriods) > 0 {
		if err := json.Unmarshal(s.BreakPeriods, &shape.Breaks); err != nil {
			return WeekShape{}, err
		}
	}
	return shape, nil
}
