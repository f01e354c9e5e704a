package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/HummaSaeed/TimeTableManager/internal/models"
)

func auditShape() models.WeekShape {
	return models.WeekShape{
		WorkingDays:   []string{"Monday", "Tuesday"},
		PeriodsPerDay: 2,
	}
}

func teachingSlot(classID, teacherID, day string, period int) models.TimetableSlot {
	subject := "sub1"
	return models.TimetableSlot{
		ClassID:   classID,
		SubjectID: &subject,
		TeacherID: &teacherID,
		Day:       day,
		Period:    period,
	}
}

func TestAuditCleanTimetable(t *testing.T) {
	slots := []models.TimetableSlot{
		teachingSlot("c1", "t1", "Monday", 1),
		teachingSlot("c1", "t2", "Monday", 2),
		teachingSlot("c1", "t1", "Tuesday", 1),
		teachingSlot("c1", "t2", "Tuesday", 2),
	}

	warnings := AuditTimetable(auditShape(), slots,
		map[string]string{"t1": "Ayesha Khan", "t2": "Bilal Ahmed"},
		map[string]string{"c1": "Grade 1-A"}, 25)
	assert.Empty(t, warnings)
}

func TestAuditDetectsTeacherDoubleBooking(t *testing.T) {
	slots := []models.TimetableSlot{
		teachingSlot("c1", "t1", "Monday", 1),
		teachingSlot("c2", "t1", "Monday", 1),
	}

	warnings := AuditTimetable(auditShape(), slots,
		map[string]string{"t1": "Ayesha Khan"}, map[string]string{}, 25)

	found := false
	for _, w := range warnings {
		if w.Code == models.WarnTeacherDoubleBooked {
			found = true
			assert.Contains(t, w.Message, "Ayesha Khan")
		}
	}
	assert.True(t, found)
}

func TestAuditDetectsClassDoubleBooking(t *testing.T) {
	slots := []models.TimetableSlot{
		teachingSlot("c1", "t1", "Monday", 1),
		teachingSlot("c1", "t2", "Monday", 1),
	}

	warnings := AuditTimetable(auditShape(), slots,
		map[string]string{}, map[string]string{"c1": "Grade 1-A"}, 25)

	codes := warningCodes(warnings)
	assert.Contains(t, codes, models.WarnClassDoubleBooked)
}

func TestAuditDetectsOverCapTeacher(t *testing.T) {
	slots := []models.TimetableSlot{
		teachingSlot("c1", "t1", "Monday", 1),
		teachingSlot("c1", "t1", "Monday", 2),
		teachingSlot("c1", "t1", "Tuesday", 1),
	}

	warnings := AuditTimetable(auditShape(), slots,
		map[string]string{"t1": "Ayesha Khan"}, map[string]string{}, 2)

	codes := warningCodes(warnings)
	assert.Contains(t, codes, models.WarnTeacherOverCap)
}

func TestAuditReportsIncompleteClass(t *testing.T) {
	slots := []models.TimetableSlot{
		teachingSlot("c1", "t1", "Monday", 1),
	}

	warnings := AuditTimetable(auditShape(), slots,
		map[string]string{}, map[string]string{"c1": "Grade 1-A"}, 25)

	found := false
	for _, w := range warnings {
		if w.Code == models.WarnClassIncomplete {
			found = true
			assert.Contains(t, w.Message, "1/4")
		}
	}
	assert.True(t, found)
}

func TestAuditCountsBreaksTowardCompleteness(t *testing.T) {
	name := "Recess"
	slots := []models.TimetableSlot{
		teachingSlot("c1", "t1", "Monday", 1),
		{ClassID: "c1", Day: "Monday", Period: 2, IsBreak: true, BreakName: &name},
		teachingSlot("c1", "t1", "Tuesday", 1),
		{ClassID: "c1", Day: "Tuesday", Period: 2, IsBreak: true, BreakName: &name},
	}

	warnings := AuditTimetable(auditShape(), slots,
		map[string]string{}, map[string]string{"c1": "Grade 1-A"}, 25)
	assert.Empty(t, warnings)
}

func warningCodes(warnings []models.TimetableWarning) []string {
	codes := make([]string, len(warnings))
	for i, w := range warnings {
		codes[i] = w.Code
	}
	return codes
}
