package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/HummaSaeed/TimeTableManager/internal/models"
)

type SlotRepository struct {
	db *sqlx.DB
}

func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// DeleteByScope removes every slot for a school and academic year. It runs on
// the caller's executor so generation can pair it with the insert in one tx.
func (r *SlotRepository) DeleteByScope(ctx context.Context, exec sqlx.ExtContext, schoolID, academicYear string) error {
	const query = `
		DELETE FROM timetable_slots
		WHERE school_id = $1 AND academic_year = $2`

	if _, err := exec.ExecContext(ctx, query, schoolID, academicYear); err != nil {
		return fmt.Errorf("delete slots: %w", err)
	}
	return nil
}

// BulkInsert writes a batch of generated slots, assigning ids and timestamps.
func (r *SlotRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error {
	if len(slots) == 0 {
		return nil
	}

	const query = `
		INSERT INTO timetable_slots
			(id, school_id, class_id, subject_id, teacher_id, day, period,
			 academic_year, is_break, break_name, start_time, end_time,
			 active, created_at, updated_at)
		VALUES (:id, :school_id, :class_id, :subject_id, :teacher_id, :day, :period,
			:academic_year, :is_break, :break_name, :start_time, :end_time,
			:active, :created_at, :updated_at)`

	now := time.Now().UTC()
	for i := range slots {
		if slots[i].ID == "" {
			slots[i].ID = uuid.NewString()
		}
		slots[i].Active = true
		slots[i].CreatedAt = now
		slots[i].UpdatedAt = now
	}

	if _, err := sqlx.NamedExecContext(ctx, exec, query, slots); err != nil {
		return fmt.Errorf("bulk insert slots: %w", err)
	}
	return nil
}

func (r *SlotRepository) ListBySchool(ctx context.Context, schoolID, academicYear string) ([]models.TimetableSlotDetail, error) {
	const query = `
		SELECT sl.id, sl.school_id, sl.class_id, sl.subject_id, sl.teacher_id,
		       sl.day, sl.period, sl.academic_year, sl.is_break, sl.break_name,
		       sl.start_time, sl.end_time, sl.active, sl.created_at, sl.updated_at,
		       c.name AS class_name, c.section, su.name AS subject_name, t.full_name AS teacher_name
		FROM timetable_slots sl
		JOIN class_sections c ON c.id = sl.class_id
		LEFT JOIN subjects su ON su.id = sl.subject_id
		LEFT JOIN teachers t ON t.id = sl.teacher_id
		WHERE sl.school_id = $1 AND sl.academic_year = $2 AND sl.active = TRUE
		ORDER BY c.name, c.section, sl.day, sl.period`

	slots := []models.TimetableSlotDetail{}
	if err := r.db.SelectContext(ctx, &slots, query, schoolID, academicYear); err != nil {
		return nil, fmt.Errorf("list slots by school: %w", err)
	}
	return slots, nil
}

func (r *SlotRepository) ListByClass(ctx context.Context, schoolID, classID, academicYear string) ([]models.TimetableSlotDetail, error) {
	const query = `
		SELECT sl.id, sl.school_id, sl.class_id, sl.subject_id, sl.teacher_id,
		       sl.day, sl.period, sl.academic_year, sl.is_break, sl.break_name,
		       sl.start_time, sl.end_time, sl.active, sl.created_at, sl.updated_at,
		       c.name AS class_name, c.section, su.name AS subject_name, t.full_name AS teacher_name
		FROM timetable_slots sl
		JOIN class_sections c ON c.id = sl.class_id
		LEFT JOIN subjects su ON su.id = sl.subject_id
		LEFT JOIN teachers t ON t.id = sl.teacher_id
		WHERE sl.school_id = $1 AND sl.class_id = $2 AND sl.academic_year = $3 AND sl.active = TRUE
		ORDER BY sl.day, sl.period`

	slots := []models.TimetableSlotDetail{}
	if err := r.db.SelectContext(ctx, &slots, query, schoolID, classID, academicYear); err != nil {
		return nil, fmt.Errorf("list slots by class: %w", err)
	}
	return slots, nil
}

// ListByTeacherDay returns the teaching slots of one teacher on one weekday.
func (r *SlotRepository) ListByTeacherDay(ctx context.Context, schoolID, teacherID, day string) ([]models.TimetableSlotDetail, error) {
	const query = `
		SELECT sl.id, sl.school_id, sl.class_id, sl.subject_id, sl.teacher_id,
		       sl.day, sl.period, sl.academic_year, sl.is_break, sl.break_name,
		       sl.start_time, sl.end_time, sl.active, sl.created_at, sl.updated_at,
		       c.name AS class_name, c.section, su.name AS subject_name, t.full_name AS teacher_name
		FROM timetable_slots sl
		JOIN class_sections c ON c.id = sl.class_id
		LEFT JOIN subjects su ON su.id = sl.subject_id
		LEFT JOIN teachers t ON t.id = sl.teacher_id
		WHERE sl.school_id = $1 AND sl.teacher_id = $2 AND sl.day = $3
		  AND sl.is_break = FALSE AND sl.active = TRUE
		ORDER BY sl.period`

	slots := []models.TimetableSlotDetail{}
	if err := r.db.SelectContext(ctx, &slots, query, schoolID, teacherID, day); err != nil {
		return nil, fmt.Errorf("list slots by teacher day: %w", err)
	}
	return slots, nil
}

// HasSlots reports whether any timetable exists for the scope.
func (r *SlotRepository) HasSlots(ctx context.Context, schoolID, academicYear string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM timetable_slots
			WHERE school_id = $1 AND academic_year = $2 AND active = TRUE
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, schoolID, academicYear); err != nil {
		return false, fmt.Errorf("check slots exist: %w", err)
	}
	return exists, nil
}

// ListTeacherIDsAt returns teachers already booked at (day, period).
func (r *SlotRepository) ListTeacherIDsAt(ctx context.Context, schoolID, day string, period int) ([]string, error) {
	const query = `
		SELECT DISTINCT teacher_id
		FROM timetable_slots
		WHERE school_id = $1 AND day = $2 AND period = $3
		  AND teacher_id IS NOT NULL AND active = TRUE`

	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, schoolID, day, period); err != nil {
		return nil, fmt.Errorf("list teachers at period: %w", err)
	}
	return ids, nil
}

// CountByTeacher returns the teacher's weekly teaching load.
func (r *SlotRepository) CountByTeacher(ctx context.Context, schoolID, teacherID string) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM timetable_slots
		WHERE school_id = $1 AND teacher_id = $2 AND is_break = FALSE AND active = TRUE`

	var count int
	if err := r.db.GetContext(ctx, &count, query, schoolID, teacherID); err != nil {
		return 0, fmt.Errorf("count teacher slots: %w", err)
	}
	return count, nil
}

// UpdateTeacher swaps the teacher assigned to a slot.
func (r *SlotRepository) UpdateTeacher(ctx context.Context, exec sqlx.ExtContext, slotID, teacherID string) error {
	const query = `
		UPDATE timetable_slots
		SET teacher_id = $1, updated_at = $2
		WHERE id = $3`

	if _, err := exec.ExecContext(ctx, query, teacherID, time.Now().UTC(), slotID); err != nil {
		return fmt.Errorf("update slot teacher: %w", err)
	}
	return nil
}
