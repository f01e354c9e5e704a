package service

import (
	"fmt"

	"github.com/HummaSaeed/TimeTableManager/internal/models"
)

// AuditTimetable inspects a generated slot set without mutating it and
// reports double-bookings, over-cap teachers and under-filled classes.
func AuditTimetable(
	shape models.WeekShape,
	slots []models.TimetableSlot,
	teacherNames map[string]string,
	classLabels map[string]string,
	weeklyCap int,
) []models.TimetableWarning {
	warnings := []models.TimetableWarning{}

	type cell struct {
		id     string
		day    string
		period int
	}

	teacherCells := map[cell]int{}
	classCells := map[cell]int{}
	teacherTotals := map[string]int{}
	classTotals := map[string]int{}

	for _, slot := range slots {
		classTotals[slot.ClassID]++
		classCells[cell{slot.ClassID, slot.Day, slot.Period}]++
		if slot.IsBreak || slot.TeacherID == nil {
			continue
		}
		teacherCells[cell{*slot.TeacherID, slot.Day, slot.Period}]++
		teacherTotals[*slot.TeacherID]++
	}

	for key, count := range teacherCells {
		if count > 1 {
			warnings = append(warnings, models.TimetableWarning{
				Code: models.WarnTeacherDoubleBooked,
				Message: fmt.Sprintf("Teacher %s booked %d times on %s P%d",
					displayName(teacherNames, key.id), count, key.day, key.period),
			})
		}
	}

	for key, count := range classCells {
		if count > 1 {
			warnings = append(warnings, models.TimetableWarning{
				Code: models.WarnClassDoubleBooked,
				Message: fmt.Sprintf("Class %s booked %d times on %s P%d",
					displayName(classLabels, key.id), count, key.day, key.period),
			})
		}
	}

	for teacherID, total := range teacherTotals {
		if total > weeklyCap {
			warnings = append(warnings, models.TimetableWarning{
				Code: models.WarnTeacherOverCap,
				Message: fmt.Sprintf("Teacher %s: %d periods assigned (over recommended limit)",
					displayName(teacherNames, teacherID), total),
			})
		}
	}

	expected := shape.TotalWeeklyPeriods()
	for classID, label := range classLabels {
		total := classTotals[classID]
		if total < expected {
			warnings = append(warnings, models.TimetableWarning{
				Code:    models.WarnClassIncomplete,
				Message: fmt.Sprintf("Class %s: only %d/%d slots created", label, total, expected),
			})
		}
	}

	return warnings
}

func displayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}
