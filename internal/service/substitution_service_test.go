package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HummaSaeed/TimeTableManager/internal/dto"
	"github.com/HummaSaeed/TimeTableManager/internal/models"
	"github.com/HummaSaeed/TimeTableManager/pkg/config"
	apperrors "github.com/HummaSaeed/TimeTableManager/pkg/errors"
)

type fakeTeacherReader struct {
	teachers map[string]*models.Teacher
}

func (f *fakeTeacherReader) FindByID(_ context.Context, id string) (*models.Teacher, error) {
	teacher, ok := f.teachers[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return teacher, nil
}

type fakeSubEligibility struct {
	bySubject map[string][]models.Teacher
}

func (f *fakeSubEligibility) ListTeachersForSubject(_ context.Context, _, subjectID string) ([]models.Teacher, error) {
	return f.bySubject[subjectID], nil
}

type fakeSubSlotStore struct {
	byTeacherDay map[string][]models.TimetableSlotDetail
	busyAt       map[int][]string
	weeklyCount  map[string]int
	updates      map[string]string
}

func (f *fakeSubSlotStore) ListByTeacherDay(_ context.Context, _, teacherID, _ string) ([]models.TimetableSlotDetail, error) {
	return f.byTeacherDay[teacherID], nil
}

func (f *fakeSubSlotStore) ListTeacherIDsAt(_ context.Context, _, _ string, period int) ([]string, error) {
	return f.busyAt[period], nil
}

func (f *fakeSubSlotStore) CountByTeacher(_ context.Context, _, teacherID string) (int, error) {
	return f.weeklyCount[teacherID], nil
}

func (f *fakeSubSlotStore) UpdateTeacher(_ context.Context, _ sqlx.ExtContext, slotID, teacherID string) error {
	if f.updates == nil {
		f.updates = map[string]string{}
	}
	f.updates[slotID] = teacherID
	return nil
}

type fakeAbsenceStore struct {
	existing map[string]bool
	created  []*models.TeacherAbsence
}

func (f *fakeAbsenceStore) Exists(_ context.Context, teacherID string, date time.Time) (bool, error) {
	return f.existing[teacherID+date.Format("2006-01-02")], nil
}

func (f *fakeAbsenceStore) Create(_ context.Context, _ sqlx.ExtContext, absence *models.TeacherAbsence) error {
	f.created = append(f.created, absence)
	return nil
}

type fakeRecordWriter struct {
	records []*models.SubstitutionRecord
}

func (f *fakeRecordWriter) Create(_ context.Context, _ sqlx.ExtContext, record *models.SubstitutionRecord) error {
	f.records = append(f.records, record)
	return nil
}

func slotDetail(id, subjectID, subjectName string, period int) models.TimetableSlotDetail {
	return models.TimetableSlotDetail{
		TimetableSlot: models.TimetableSlot{
			ID:        id,
			SchoolID:  "sch1",
			ClassID:   "c1",
			SubjectID: &subjectID,
			TeacherID: strPtr("absent"),
			Day:       "Monday",
			Period:    period,
		},
		ClassName:   "Grade 5",
		Section:     "A",
		SubjectName: &subjectName,
	}
}

func strPtr(s string) *string { return &s }

func newSubstitutionFixture(t *testing.T) (*SubstitutionService, *fakeSubSlotStore, *fakeAbsenceStore, *fakeRecordWriter) {
	t.Helper()

	teachers := &fakeTeacherReader{teachers: map[string]*models.Teacher{
		"absent": {ID: "absent", SchoolID: "sch1", FullName: "Absent Teacher", Active: true},
	}}
	eligibility := &fakeSubEligibility{bySubject: map[string][]models.Teacher{
		// Name-sorted candidate lists, absent teacher included as the repo would.
		"math": {
			{ID: "absent", FullName: "Absent Teacher"},
			{ID: "sub-a", FullName: "Farah Malik"},
		},
		"eng": {
			{ID: "absent", FullName: "Absent Teacher"},
			{ID: "busy", FullName: "Hina Raza"},
			{ID: "sub-b", FullName: "Imran Shah"},
		},
		"urdu": {
			{ID: "absent", FullName: "Absent Teacher"},
		},
	}}
	slots := &fakeSubSlotStore{
		byTeacherDay: map[string][]models.TimetableSlotDetail{
			"absent": {
				slotDetail("slot1", "math", "Mathematics", 1),
				slotDetail("slot2", "eng", "English", 2),
				slotDetail("slot3", "urdu", "Urdu", 3),
			},
		},
		busyAt:      map[int][]string{2: {"busy"}},
		weeklyCount: map[string]int{"sub-a": 10, "sub-b": 12},
	}
	absences := &fakeAbsenceStore{existing: map[string]bool{}}
	records := &fakeRecordWriter{}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := NewSubstitutionService(
		teachers, eligibility, slots, absences, records,
		sqlx.NewDb(db, "sqlmock"), nil, nil,
		config.SchedulerConfig{WeeklyTeacherCap: 25},
		nil,
	)
	return svc, slots, absences, records
}

func TestMarkAbsentAssignsSubstitutes(t *testing.T) {
	svc, slots, absences, records := newSubstitutionFixture(t)

	// 2026-01-05 is a Monday.
	resp, err := svc.MarkAbsent(context.Background(), "sch1", dto.MarkAbsenceRequest{
		TeacherID: "absent",
		Date:      "2026-01-05",
		Reason:    "sick leave",
	})
	require.NoError(t, err)

	require.Len(t, resp.Substitutions, 3)
	assert.Contains(t, resp.Message, "Absent Teacher")
	assert.Contains(t, resp.Message, "2026-01-05")

	first := resp.Substitutions[0]
	assert.Equal(t, "Grade 5-A", first.Class)
	assert.Equal(t, 1, first.Period)
	assert.Equal(t, "Mathematics", first.Subject)
	assert.Equal(t, "Absent Teacher", first.OldTeacher)
	require.NotNil(t, first.Substitute)
	assert.Equal(t, "Farah Malik", *first.Substitute)

	// The only other eligible English teacher besides the booked one.
	second := resp.Substitutions[1]
	require.NotNil(t, second.Substitute)
	assert.Equal(t, "Imran Shah", *second.Substitute)

	third := resp.Substitutions[2]
	assert.Nil(t, third.Substitute)
	assert.Equal(t, "no substitute found", third.Note)

	// Slot reassignments and audit records only for the two successes.
	assert.Equal(t, map[string]string{"slot1": "sub-a", "slot2": "sub-b"}, slots.updates)
	require.Len(t, records.records, 2)
	assert.Equal(t, "absent", records.records[0].OriginalTeacherID)
	assert.Equal(t, "sub-a", records.records[0].SubstituteTeacherID)
	assert.Equal(t, "slot1", records.records[0].SlotID)

	require.Len(t, absences.created, 1)
	assert.Equal(t, "sick leave", absences.created[0].Reason)
}

func TestMarkAbsentRejectsDuplicate(t *testing.T) {
	svc, slots, absences, records := newSubstitutionFixture(t)
	absences.existing["absent2026-01-05"] = true

	_, err := svc.MarkAbsent(context.Background(), "sch1", dto.MarkAbsenceRequest{
		TeacherID: "absent",
		Date:      "2026-01-05",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateAbsence)
	assert.Empty(t, absences.created)
	assert.Empty(t, records.records)
	assert.Empty(t, slots.updates)
}

func TestMarkAbsentSkipsBookedAndOverCapCandidates(t *testing.T) {
	svc, slots, _, _ := newSubstitutionFixture(t)
	// Push the only math substitute to the cap; the slot must stay unfilled.
	slots.weeklyCount["sub-a"] = 25

	resp, err := svc.MarkAbsent(context.Background(), "sch1", dto.MarkAbsenceRequest{
		TeacherID: "absent",
		Date:      "2026-01-05",
	})
	require.NoError(t, err)

	assert.Nil(t, resp.Substitutions[0].Substitute)
	assert.Equal(t, "no substitute found", resp.Substitutions[0].Note)
	_, reassigned := slots.updates["slot1"]
	assert.False(t, reassigned)
}

func TestMarkAbsentCountsProspectiveLoadAgainstCap(t *testing.T) {
	teachers := &fakeTeacherReader{teachers: map[string]*models.Teacher{
		"absent": {ID: "absent", SchoolID: "sch1", FullName: "Absent Teacher", Active: true},
	}}
	// One substitute covers both subjects with a single free period of headroom.
	sub := models.Teacher{ID: "sub-a", FullName: "Farah Malik"}
	eligibility := &fakeSubEligibility{bySubject: map[string][]models.Teacher{
		"math": {sub},
		"eng":  {sub},
	}}
	slots := &fakeSubSlotStore{
		byTeacherDay: map[string][]models.TimetableSlotDetail{
			"absent": {
				slotDetail("slot1", "math", "Mathematics", 1),
				slotDetail("slot2", "eng", "English", 2),
			},
		},
		weeklyCount: map[string]int{"sub-a": 24},
	}
	absences := &fakeAbsenceStore{existing: map[string]bool{}}
	records := &fakeRecordWriter{}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := NewSubstitutionService(
		teachers, eligibility, slots, absences, records,
		sqlx.NewDb(db, "sqlmock"), nil, nil,
		config.SchedulerConfig{WeeklyTeacherCap: 25},
		nil,
	)

	resp, err := svc.MarkAbsent(context.Background(), "sch1", dto.MarkAbsenceRequest{
		TeacherID: "absent",
		Date:      "2026-01-05",
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Substitutions[0].Substitute)
	assert.Nil(t, resp.Substitutions[1].Substitute)
	require.Len(t, records.records, 1)
}

func TestMarkAbsentRejectsUnknownTeacher(t *testing.T) {
	svc, _, _, _ := newSubstitutionFixture(t)

	_, err := svc.MarkAbsent(context.Background(), "sch1", dto.MarkAbsenceRequest{
		TeacherID: "ghost",
		Date:      "2026-01-05",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMarkAbsentRejectsWrongSchool(t *testing.T) {
	svc, _, _, _ := newSubstitutionFixture(t)

	_, err := svc.MarkAbsent(context.Background(), "other-school", dto.MarkAbsenceRequest{
		TeacherID: "absent",
		Date:      "2026-01-05",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMarkAbsentRejectsBadDate(t *testing.T) {
	svc, _, _, _ := newSubstitutionFixture(t)

	_, err := svc.MarkAbsent(context.Background(), "sch1", dto.MarkAbsenceRequest{
		TeacherID: "absent",
		Date:      "05-01-2026",
	})
	require.Error(t, err)
	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.ErrValidation.Code, appErr.Code)
}
