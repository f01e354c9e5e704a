package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/HummaSaeed/TimeTableManager/internal/dto"
	"github.com/HummaSaeed/TimeTableManager/internal/models"
	"github.com/HummaSaeed/TimeTableManager/pkg/config"
	apperrors "github.com/HummaSaeed/TimeTableManager/pkg/errors"
)

// Variety limits: a teacher repeats a subject at most once per day and at
// most eight times per week.
const (
	dailySubjectLimit  = 1
	weeklySubjectLimit = 8
)

type generatorSchoolReader interface {
	FindByID(ctx context.Context, id string) (*models.School, error)
}

type generatorClassStore interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.ClassSection, error)
	ListSubjects(ctx context.Context, classID string) ([]string, error)
	AddSubject(ctx context.Context, classID, subjectID string) error
}

type generatorSubjectLister interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.Subject, error)
}

type generatorTeacherLister interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.Teacher, error)
}

// rosterNormalizer prepares subjects and eligibility before an engine run.
type rosterNormalizer interface {
	EnsureCoreSubjects(ctx context.Context, schoolID string) error
	Sync(ctx context.Context, schoolID string) error
	BuildIndex(ctx context.Context, schoolID string, teachers []models.Teacher) (map[string][]models.Teacher, error)
}

type slotWriter interface {
	HasSlots(ctx context.Context, schoolID, academicYear string) (bool, error)
	DeleteByScope(ctx context.Context, exec sqlx.ExtContext, schoolID, academicYear string) error
	BulkInsert(ctx context.Context, exec sqlx.ExtContext, slots []models.TimetableSlot) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// CacheInvalidator clears cached timetable reads after a write. A nil value
// disables invalidation.
type CacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

type generationRecorder interface {
	RecordGeneration(success bool, slotsCreated, attempts int)
}

// GeneratorService builds a full weekly timetable for one school. Each run
// is a synchronous, single-threaded computation: attempts accumulate slots
// in memory and the winning attempt is committed in one transaction that
// replaces the previous timetable for the same academic year.
type GeneratorService struct {
	schools  generatorSchoolReader
	classes  generatorClassStore
	subjects generatorSubjectLister
	teachers generatorTeacherLister
	roster   rosterNormalizer
	slots    slotWriter
	tx       txProvider
	cache    CacheInvalidator
	metrics  generationRecorder

	cfg      config.SchedulerConfig
	rng      *rand.Rand
	validate *validator.Validate
	logger   *zap.Logger
}

func NewGeneratorService(
	schools generatorSchoolReader,
	classes generatorClassStore,
	subjects generatorSubjectLister,
	teachers generatorTeacherLister,
	roster rosterNormalizer,
	slots slotWriter,
	tx txProvider,
	cache CacheInvalidator,
	metrics generationRecorder,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) *GeneratorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 100
	}
	if cfg.WeeklyTeacherCap <= 0 {
		cfg.WeeklyTeacherCap = DefaultWeeklyCap
	}

	var rng *rand.Rand
	if cfg.RandomSeed != 0 {
		rng = rand.New(rand.NewSource(cfg.RandomSeed))
	}

	return &GeneratorService{
		schools:  schools,
		classes:  classes,
		subjects: subjects,
		teachers: teachers,
		roster:   roster,
		slots:    slots,
		tx:       tx,
		cache:    cache,
		metrics:  metrics,
		cfg:      cfg,
		rng:      rng,
		validate: validator.New(),
		logger:   logger,
	}
}

// Generate produces and persists the timetable for one school and academic
// year. Configuration problems (empty roster, uncoverable subject) come back
// as a structured failure rather than a Go error; errors are reserved for
// invalid input and storage trouble.
func (s *GeneratorService) Generate(ctx context.Context, schoolID string, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid generation request")
	}

	school, err := s.schools.FindByID(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	shape, err := school.Shape()
	if err != nil {
		return nil, fmt.Errorf("decode week shape: %w", err)
	}
	if shape.PeriodsPerDay <= 0 || len(shape.WorkingDays) == 0 {
		return s.configFailure("school has no usable week configuration"), nil
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = s.cfg.MaxAttempts
	}

	// Regeneration replaces the scope wholesale. Callers that do not want
	// that must opt out explicitly, in which case an existing timetable
	// blocks the run.
	if req.ClearExisting != nil && !*req.ClearExisting {
		exists, err := s.slots.HasSlots(ctx, schoolID, req.AcademicYear)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.Clone(apperrors.ErrConflict,
				fmt.Sprintf("a timetable already exists for academic year %s; set clearExisting to replace it", req.AcademicYear))
		}
	}

	classes, err := s.classes.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return s.configFailure("no active classes found for the school"), nil
	}

	if err := s.roster.EnsureCoreSubjects(ctx, schoolID); err != nil {
		return nil, err
	}

	subjects, err := s.subjects.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if len(subjects) == 0 {
		return s.configFailure("no active subjects found for the school"), nil
	}

	teachers, err := s.teachers.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if len(teachers) == 0 {
		return s.configFailure("no active teachers found for the school"), nil
	}

	if err := s.roster.Sync(ctx, schoolID); err != nil {
		return nil, err
	}
	index, err := s.roster.BuildIndex(ctx, schoolID, teachers)
	if err != nil {
		return nil, err
	}
	if len(index) == 0 {
		return s.configFailure("no teacher-subject assignments found"), nil
	}

	plan, planWarnings, err := s.buildClassPlans(ctx, schoolID, classes, subjects, shape)
	if err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		resp := s.configFailure("no class has any subjects assigned")
		resp.Warnings = planWarnings
		return resp, nil
	}

	// A mandatory subject nobody can teach will never converge, so fail
	// before burning attempts.
	for _, cp := range plan {
		for _, subject := range cp.subjects {
			if len(index[subject.ID]) == 0 {
				msg := fmt.Sprintf("no eligible teachers for subject %s (class %s), aborted after 0 attempts",
					subject.Name, cp.class.Label())
				return s.configFailure(msg), nil
			}
		}
	}

	totalCells := len(shape.WorkingDays) * shape.PeriodsPerDay * len(plan)
	target := float64(totalCells) / float64(len(teachers))

	best := attemptResult{}
	attempts := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attempts = attempt
		res, err := s.runAttempt(shape, schoolID, req.AcademicYear, plan, index, target)
		if err != nil {
			return nil, err
		}
		if attempt == 1 || len(res.warnings) < len(best.warnings) {
			best = res
		}
		if len(best.warnings) == 0 {
			break
		}
		if s.rng == nil {
			// Without a random source every retry replays the same
			// deterministic choices.
			break
		}
		s.rng.Shuffle(len(plan), func(i, j int) { plan[i], plan[j] = plan[j], plan[i] })
	}

	warnings := append(planWarnings, best.warnings...)
	warnings = append(warnings, AuditTimetable(shape, best.slots, teacherNameMap(teachers), classLabelMap(classes), s.cfg.WeeklyTeacherCap)...)

	if err := s.persist(ctx, schoolID, req.AcademicYear, best.slots); err != nil {
		if s.metrics != nil {
			s.metrics.RecordGeneration(false, 0, attempts)
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "timetable:"+schoolID+":*"); err != nil {
			s.logger.Warn("timetable cache invalidation failed", zap.String("school_id", schoolID), zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordGeneration(true, best.teaching, attempts)
	}

	s.logger.Info("timetable generated",
		zap.String("school_id", schoolID),
		zap.String("academic_year", req.AcademicYear),
		zap.Int("slots_created", best.teaching),
		zap.Int("attempts", attempts),
		zap.Int("warnings", len(warnings)))

	return &dto.GenerateTimetableResponse{
		Success:                 true,
		SlotsCreated:            best.teaching,
		Attempts:                attempts,
		Warnings:                warnings,
		TeacherWorkload:         workloadSummary(best.slots, teachers, target),
		TargetPeriodsPerTeacher: math.Round(target*100) / 100,
	}, nil
}

// configFailure reports a roster or configuration problem as a structured
// response. The run still counts as a failed generation in the metrics.
func (s *GeneratorService) configFailure(message string) *dto.GenerateTimetableResponse {
	if s.metrics != nil {
		s.metrics.RecordGeneration(false, 0, 0)
	}
	return &dto.GenerateTimetableResponse{
		Success:  false,
		Error:    message,
		Warnings: []models.TimetableWarning{},
	}
}

// classPlan is the per-class input to one attempt: the subject list in
// stable order and the weekly quota for each subject.
type classPlan struct {
	class    models.ClassSection
	subjects []models.Subject
	quotas   map[string]int
}

func (s *GeneratorService) buildClassPlans(
	ctx context.Context,
	schoolID string,
	classes []models.ClassSection,
	subjects []models.Subject,
	shape models.WeekShape,
) ([]classPlan, []models.TimetableWarning, error) {
	byID := make(map[string]models.Subject, len(subjects))
	byLowerName := make(map[string]models.Subject, len(subjects))
	for _, subject := range subjects {
		byID[subject.ID] = subject
		byLowerName[strings.ToLower(subject.Name)] = subject
	}

	plans := make([]classPlan, 0, len(classes))
	warnings := []models.TimetableWarning{}
	for _, class := range classes {
		ids, err := s.classes.ListSubjects(ctx, class.ID)
		if err != nil {
			return nil, nil, err
		}

		var classSubjects []models.Subject
		if len(ids) == 0 {
			// Derive the mandatory set from the grade policy. Explicit
			// selections always win, so this runs only for blank classes.
			for _, name := range RequiredSubjectNames(class.Name, class.Section) {
				subject, ok := byLowerName[strings.ToLower(name)]
				if !ok {
					continue
				}
				if err := s.classes.AddSubject(ctx, class.ID, subject.ID); err != nil {
					return nil, nil, err
				}
				classSubjects = append(classSubjects, subject)
			}
		} else {
			for _, id := range ids {
				if subject, ok := byID[id]; ok {
					classSubjects = append(classSubjects, subject)
				}
			}
		}

		if len(classSubjects) == 0 {
			warnings = append(warnings, models.TimetableWarning{
				Code:    models.WarnClassWithoutSubject,
				Message: fmt.Sprintf("Class %s has no subjects assigned", class.Label()),
			})
			continue
		}

		names := make([]string, len(classSubjects))
		for i, subject := range classSubjects {
			names[i] = subject.Name
		}
		quotasByName := PeriodQuotas(names, len(shape.WorkingDays), shape.PeriodsPerDay)
		quotas := make(map[string]int, len(classSubjects))
		for _, subject := range classSubjects {
			quotas[subject.ID] = quotasByName[subject.Name]
		}

		plans = append(plans, classPlan{class: class, subjects: classSubjects, quotas: quotas})
	}
	return plans, warnings, nil
}

type occKey struct {
	teacherID string
	day       string
	period    int
}

type dayKey struct {
	teacherID string
	day       string
}

type daySubjectKey struct {
	teacherID string
	day       string
	subjectID string
}

type subjectKey struct {
	teacherID string
	subjectID string
}

type classSubjectKey struct {
	classID   string
	subjectID string
}

// attemptState holds every counter one attempt mutates. It is owned by a
// single attempt and discarded at the attempt boundary.
type attemptState struct {
	busy          map[occKey]string
	weekly        map[string]int
	daily         map[dayKey]int
	dailySubject  map[daySubjectKey]int
	weeklySubject map[subjectKey]int
	distinct      map[string]int
	placed        map[classSubjectKey]int
	weeklyCap     int
	periodsPerDay int
}

func newAttemptState(weeklyCap, periodsPerDay int) *attemptState {
	return &attemptState{
		busy:          map[occKey]string{},
		weekly:        map[string]int{},
		daily:         map[dayKey]int{},
		dailySubject:  map[daySubjectKey]int{},
		weeklySubject: map[subjectKey]int{},
		distinct:      map[string]int{},
		placed:        map[classSubjectKey]int{},
		weeklyCap:     weeklyCap,
		periodsPerDay: periodsPerDay,
	}
}

// allowed applies the hard constraints for assigning teacher+subject to a
// cell: free at the period, under weekly and daily caps, within variety
// limits for the subject.
func (st *attemptState) allowed(teacherID, subjectID, day string, period int) bool {
	if _, taken := st.busy[occKey{teacherID, day, period}]; taken {
		return false
	}
	if st.weekly[teacherID] >= st.weeklyCap {
		return false
	}
	maxDaily := st.periodsPerDay - 1
	if maxDaily < 0 {
		maxDaily = 0
	}
	if st.daily[dayKey{teacherID, day}] >= maxDaily {
		return false
	}
	if st.dailySubject[daySubjectKey{teacherID, day, subjectID}] >= dailySubjectLimit {
		return false
	}
	if st.weeklySubject[subjectKey{teacherID, subjectID}] >= weeklySubjectLimit {
		return false
	}
	return true
}

// baseScore is workload deviation plus daily load, the two factors shared by
// general candidates and the class-teacher preference path.
func (st *attemptState) baseScore(teacherID, day string, target float64) float64 {
	deviation := math.Abs(float64(st.weekly[teacherID]) - target)
	return deviation*2 + float64(st.daily[dayKey{teacherID, day}])*0.5
}

// score is the full candidate cost: base score, a penalty for teaching the
// same subject back to back, escalating daily-load penalties, and a small
// bonus for teachers still covering few distinct subjects.
func (st *attemptState) score(teacherID, subjectID, day string, period int, target float64) float64 {
	score := st.baseScore(teacherID, day, target)

	if period > 1 {
		if prev, ok := st.busy[occKey{teacherID, day, period - 1}]; ok && prev == subjectID {
			score += 5
		}
	}

	dailyLoad := st.daily[dayKey{teacherID, day}]
	switch {
	case dailyLoad >= 6:
		score += 10
	case dailyLoad >= 5:
		score += 5
	}

	if st.distinct[teacherID] < 3 {
		score -= 2
	}
	return score
}

func (st *attemptState) commit(classID, teacherID, subjectID, day string, period int) {
	st.busy[occKey{teacherID, day, period}] = subjectID
	st.weekly[teacherID]++
	st.daily[dayKey{teacherID, day}]++
	st.dailySubject[daySubjectKey{teacherID, day, subjectID}]++
	if st.weeklySubject[subjectKey{teacherID, subjectID}] == 0 {
		st.distinct[teacherID]++
	}
	st.weeklySubject[subjectKey{teacherID, subjectID}]++
	st.placed[classSubjectKey{classID, subjectID}]++
}

type attemptResult struct {
	slots    []models.TimetableSlot
	warnings []models.TimetableWarning
	teaching int
}

type candidate struct {
	subjectID string
	teacherID string
	score     float64
}

// runAttempt performs one full reset-and-rebuild pass. Unfillable cells are
// recorded as warnings and the traversal continues; the caller decides
// whether to retry with a different class order.
func (s *GeneratorService) runAttempt(
	shape models.WeekShape,
	schoolID, academicYear string,
	plan []classPlan,
	index map[string][]models.Teacher,
	target float64,
) (attemptResult, error) {
	st := newAttemptState(s.cfg.WeeklyTeacherCap, shape.PeriodsPerDay)
	res := attemptResult{warnings: []models.TimetableWarning{}}

	for _, cp := range plan {
		for _, day := range shape.WorkingDays {
			for period := 1; period <= shape.PeriodsPerDay; period++ {
				start, end, err := PeriodWindow(shape, period)
				if err != nil {
					return attemptResult{}, err
				}

				if br := shape.BreakAt(period); br != nil {
					name := br.Name
					res.slots = append(res.slots, models.TimetableSlot{
						SchoolID:     schoolID,
						ClassID:      cp.class.ID,
						Day:          day,
						Period:       period,
						AcademicYear: academicYear,
						IsBreak:      true,
						BreakName:    &name,
						StartTime:    start,
						EndTime:      end,
					})
					continue
				}

				available := cp.subjects[:0:0]
				for _, subject := range cp.subjects {
					if st.placed[classSubjectKey{cp.class.ID, subject.ID}] < cp.quotas[subject.ID] {
						available = append(available, subject)
					}
				}
				if len(available) == 0 {
					// Quotas exhausted; the audit reports the class as
					// incomplete if this leaves real gaps.
					continue
				}

				chosen, found := s.pickCandidate(st, cp, available, index, day, period, target)
				if !found {
					res.warnings = append(res.warnings, models.TimetableWarning{
						Code:    models.WarnUnfilledSlot,
						Message: fmt.Sprintf("Unfilled slot: %s %s P%d", cp.class.Label(), day, period),
					})
					continue
				}

				st.commit(cp.class.ID, chosen.teacherID, chosen.subjectID, day, period)
				subjectID := chosen.subjectID
				teacherID := chosen.teacherID
				res.slots = append(res.slots, models.TimetableSlot{
					SchoolID:     schoolID,
					ClassID:      cp.class.ID,
					SubjectID:    &subjectID,
					TeacherID:    &teacherID,
					Day:          day,
					Period:       period,
					AcademicYear: academicYear,
					StartTime:    start,
					EndTime:      end,
				})
				res.teaching++
			}
		}
	}
	return res, nil
}

// pickCandidate scores every feasible (subject, teacher) pair for a cell and
// returns the cheapest, preferring the class teacher for period 1 when their
// score stays within 3 points of the best general candidate.
func (s *GeneratorService) pickCandidate(
	st *attemptState,
	cp classPlan,
	available []models.Subject,
	index map[string][]models.Teacher,
	day string,
	period int,
	target float64,
) (candidate, bool) {
	best := candidate{}
	found := false
	for _, subject := range available {
		for _, teacher := range index[subject.ID] {
			if !st.allowed(teacher.ID, subject.ID, day, period) {
				continue
			}
			score := st.score(teacher.ID, subject.ID, day, period, target)
			if !found || score < best.score {
				best = candidate{subjectID: subject.ID, teacherID: teacher.ID, score: score}
				found = true
			}
		}
	}
	if !found {
		return candidate{}, false
	}

	if period == 1 && cp.class.ClassTeacherID != nil {
		classTeacherID := *cp.class.ClassTeacherID
		for _, subject := range available {
			if !teacherInIndex(index[subject.ID], classTeacherID) {
				continue
			}
			if !st.allowed(classTeacherID, subject.ID, day, period) {
				continue
			}
			preferred := candidate{
				subjectID: subject.ID,
				teacherID: classTeacherID,
				score:     st.baseScore(classTeacherID, day, target),
			}
			if preferred.score <= best.score+3 {
				return preferred, true
			}
			break
		}
	}
	return best, true
}

func teacherInIndex(teachers []models.Teacher, teacherID string) bool {
	for _, teacher := range teachers {
		if teacher.ID == teacherID {
			return true
		}
	}
	return false
}

// persist replaces the school's timetable for the academic year inside one
// transaction: delete the scope, then bulk insert the winning attempt. A
// regeneration always rewrites its own scope, so either the full new slot
// set lands or the old timetable stays untouched.
func (s *GeneratorService) persist(ctx context.Context, schoolID, academicYear string, slots []models.TimetableSlot) error {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin generation tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := s.slots.DeleteByScope(ctx, tx, schoolID, academicYear); err != nil {
		return err
	}

	if err := s.slots.BulkInsert(ctx, tx, slots); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit generation tx: %w", err)
	}
	return nil
}

func teacherNameMap(teachers []models.Teacher) map[string]string {
	names := make(map[string]string, len(teachers))
	for _, teacher := range teachers {
		names[teacher.ID] = teacher.FullName
	}
	return names
}

func classLabelMap(classes []models.ClassSection) map[string]string {
	labels := make(map[string]string, len(classes))
	for _, class := range classes {
		labels[class.ID] = class.Label()
	}
	return labels
}

func workloadSummary(slots []models.TimetableSlot, teachers []models.Teacher, target float64) []dto.TeacherWorkloadSummary {
	counts := map[string]int{}
	for _, slot := range slots {
		if slot.IsBreak || slot.TeacherID == nil {
			continue
		}
		counts[*slot.TeacherID]++
	}

	summary := make([]dto.TeacherWorkloadSummary, 0, len(teachers))
	for _, teacher := range teachers {
		periods := counts[teacher.ID]
		summary = append(summary, dto.TeacherWorkloadSummary{
			TeacherID:           teacher.ID,
			TeacherName:         teacher.FullName,
			Periods:             periods,
			DeviationFromTarget: math.Round((float64(periods)-target)*100) / 100,
		})
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].TeacherName < summary[j].TeacherName })
	return summary
}
