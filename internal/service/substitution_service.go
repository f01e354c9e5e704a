package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/HummaSaeed/TimeTableManager/internal/dto"
	"github.com/HummaSaeed/TimeTableManager/internal/models"
	"github.com/HummaSaeed/TimeTableManager/pkg/config"
	apperrors "github.com/HummaSaeed/TimeTableManager/pkg/errors"
)

const dateLayout = "2006-01-02"

type substitutionTeacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type substitutionEligibilityReader interface {
	ListTeachersForSubject(ctx context.Context, schoolID, subjectID string) ([]models.Teacher, error)
}

type substitutionSlotStore interface {
	ListByTeacherDay(ctx context.Context, schoolID, teacherID, day string) ([]models.TimetableSlotDetail, error)
	ListTeacherIDsAt(ctx context.Context, schoolID, day string, period int) ([]string, error)
	CountByTeacher(ctx context.Context, schoolID, teacherID string) (int, error)
	UpdateTeacher(ctx context.Context, exec sqlx.ExtContext, slotID, teacherID string) error
}

type absenceStore interface {
	Exists(ctx context.Context, teacherID string, date time.Time) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, absence *models.TeacherAbsence) error
}

type substitutionRecordWriter interface {
	Create(ctx context.Context, exec sqlx.ExtContext, record *models.SubstitutionRecord) error
}

type substitutionRecorder interface {
	RecordSubstitution(found bool)
}

// SubstitutionService handles same-day teacher absences: it records the
// absence, walks the absent teacher's slots for that weekday and swaps in
// the first qualified, unbooked, under-cap substitute per slot. Slots with
// no viable substitute keep their teacher and are reported as such.
type SubstitutionService struct {
	teachers    substitutionTeacherReader
	eligibility substitutionEligibilityReader
	slots       substitutionSlotStore
	absences    absenceStore
	records     substitutionRecordWriter
	tx          txProvider
	cache       CacheInvalidator
	metrics     substitutionRecorder

	cfg      config.SchedulerConfig
	validate *validator.Validate
	logger   *zap.Logger
}

func NewSubstitutionService(
	teachers substitutionTeacherReader,
	eligibility substitutionEligibilityReader,
	slots substitutionSlotStore,
	absences absenceStore,
	records substitutionRecordWriter,
	tx txProvider,
	cache CacheInvalidator,
	metrics substitutionRecorder,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) *SubstitutionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WeeklyTeacherCap <= 0 {
		cfg.WeeklyTeacherCap = DefaultWeeklyCap
	}
	return &SubstitutionService{
		teachers:    teachers,
		eligibility: eligibility,
		slots:       slots,
		absences:    absences,
		records:     records,
		tx:          tx,
		cache:       cache,
		metrics:     metrics,
		cfg:         cfg,
		validate:    validator.New(),
		logger:      logger,
	}
}

// MarkAbsent records an absence for the teacher on the given date and
// resolves substitutes for every affected slot. Timetables are week
// templates, so the date is mapped to its weekday name for slot lookup.
func (s *SubstitutionService) MarkAbsent(ctx context.Context, schoolID string, req dto.MarkAbsenceRequest) (*dto.MarkAbsenceResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid absence request")
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid date, expected YYYY-MM-DD")
	}

	teacher, err := s.teachers.FindByID(ctx, req.TeacherID)
	if err != nil {
		return nil, err
	}
	if teacher.SchoolID != schoolID {
		return nil, apperrors.ErrNotFound
	}

	exists, err := s.absences.Exists(ctx, teacher.ID, date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrDuplicateAbsence
	}

	day := date.Weekday().String()
	affected, err := s.slots.ListByTeacherDay(ctx, schoolID, teacher.ID, day)
	if err != nil {
		return nil, err
	}

	tx, err := s.tx.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin substitution tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	absence := &models.TeacherAbsence{
		SchoolID:  schoolID,
		TeacherID: teacher.ID,
		Date:      date,
		Reason:    req.Reason,
	}
	if err := s.absences.Create(ctx, tx, absence); err != nil {
		return nil, err
	}

	// Track assignments made during this request so one substitute is not
	// double-booked across the absent teacher's own slots, and so prospective
	// load counts against the weekly cap.
	assignedAt := map[int]map[string]bool{}
	prospective := map[string]int{}

	outcomes := make([]dto.SubstitutionOutcome, 0, len(affected))
	for _, slot := range affected {
		outcome := dto.SubstitutionOutcome{
			Class:      slot.ClassName + "-" + slot.Section,
			Period:     slot.Period,
			OldTeacher: teacher.FullName,
		}
		if slot.SubjectName != nil {
			outcome.Subject = *slot.SubjectName
		}

		substitute, err := s.findSubstitute(ctx, schoolID, teacher.ID, slot, day, assignedAt, prospective)
		if err != nil {
			return nil, err
		}
		if substitute == nil {
			outcome.Note = "no substitute found"
			outcomes = append(outcomes, outcome)
			if s.metrics != nil {
				s.metrics.RecordSubstitution(false)
			}
			continue
		}

		if err := s.slots.UpdateTeacher(ctx, tx, slot.ID, substitute.ID); err != nil {
			return nil, err
		}
		record := &models.SubstitutionRecord{
			SchoolID:            schoolID,
			SlotID:              slot.ID,
			OriginalTeacherID:   teacher.ID,
			SubstituteTeacherID: substitute.ID,
			Date:                date,
			Reason:              req.Reason,
		}
		if err := s.records.Create(ctx, tx, record); err != nil {
			return nil, err
		}

		if assignedAt[slot.Period] == nil {
			assignedAt[slot.Period] = map[string]bool{}
		}
		assignedAt[slot.Period][substitute.ID] = true
		prospective[substitute.ID]++

		name := substitute.FullName
		outcome.Substitute = &name
		outcomes = append(outcomes, outcome)
		if s.metrics != nil {
			s.metrics.RecordSubstitution(true)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit substitution tx: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "timetable:"+schoolID+":*"); err != nil {
			s.logger.Warn("timetable cache invalidation failed", zap.String("school_id", schoolID), zap.Error(err))
		}
	}

	s.logger.Info("absence processed",
		zap.String("school_id", schoolID),
		zap.String("teacher_id", teacher.ID),
		zap.String("date", req.Date),
		zap.Int("affected_slots", len(affected)))

	return &dto.MarkAbsenceResponse{
		Message:       fmt.Sprintf("Absence recorded for %s on %s", teacher.FullName, req.Date),
		Substitutions: outcomes,
	}, nil
}

// findSubstitute returns the first eligible teacher, in name order, who is
// not the absent teacher, not booked at the slot's period and still under
// the weekly cap including substitutions made earlier in this request.
func (s *SubstitutionService) findSubstitute(
	ctx context.Context,
	schoolID, absentID string,
	slot models.TimetableSlotDetail,
	day string,
	assignedAt map[int]map[string]bool,
	prospective map[string]int,
) (*models.Teacher, error) {
	if slot.SubjectID == nil {
		return nil, nil
	}

	candidates, err := s.eligibility.ListTeachersForSubject(ctx, schoolID, *slot.SubjectID)
	if err != nil {
		return nil, err
	}

	busyIDs, err := s.slots.ListTeacherIDsAt(ctx, schoolID, day, slot.Period)
	if err != nil {
		return nil, err
	}
	busy := make(map[string]bool, len(busyIDs))
	for _, id := range busyIDs {
		busy[id] = true
	}

	for i := range candidates {
		candidate := &candidates[i]
		if candidate.ID == absentID {
			continue
		}
		if busy[candidate.ID] || assignedAt[slot.Period][candidate.ID] {
			continue
		}
		weekly, err := s.slots.CountByTeacher(ctx, schoolID, candidate.ID)
		if err != nil {
			return nil, err
		}
		if weekly+prospective[candidate.ID] >= s.cfg.WeeklyTeacherCap {
			continue
		}
		return candidate, nil
	}
	return nil, nil
}
