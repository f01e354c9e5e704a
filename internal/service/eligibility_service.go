package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/HummaSaeed/TimeTableManager/internal/models"
	apperrors "github.com/HummaSaeed/TimeTableManager/pkg/errors"
)

// DefaultWeeklyCap is the weekly period ceiling applied to every teacher.
const DefaultWeeklyCap = 25

// Catalogue of subjects auto-created for a school before generation.
var coreSubjectNames = []string{
	"English", "Urdu", "Mathematics", "Computer", "Computer Science", "General Knowledge",
	"Biology", "Chemistry", "Physics", "Islamiat", "Pakistan Studies", "Science", "Social Studies",
}

// Subjects every active teacher may cover as a secondary assignment, so
// substitution always has a candidate pool.
var crossoverSubjects = []string{"Islamiat", "Social Studies"}

// specialismSynonyms maps specialism label fragments to canonical subject
// names. Ordered so multi-word fragments win over their substrings
// ("computer science" before "science", "science" before "it").
var specialismSynonyms = []struct {
	fragment string
	subject  string
}{
	{"mathematics", "Mathematics"},
	{"math", "Mathematics"},
	{"english", "English"},
	{"eng", "English"},
	{"urdu", "Urdu"},
	{"computer science", "Computer Science"},
	{"computer", "Computer Science"},
	{"physics", "Physics"},
	{"chemistry", "Chemistry"},
	{"biology", "Biology"},
	{"bio", "Biology"},
	{"islamiat", "Islamiat"},
	{"pakistan studies", "Pakistan Studies"},
	{"social studies", "Social Studies"},
	{"science", "Science"},
	{"it", "Computer Science"},
}

// MatchSpecialism resolves a free-text specialism label to a canonical
// subject name via case-insensitive contains matching.
func MatchSpecialism(specialism string) (string, bool) {
	label := strings.ToLower(strings.TrimSpace(specialism))
	if label == "" {
		return "", false
	}
	for _, syn := range specialismSynonyms {
		if strings.Contains(label, syn.fragment) {
			return syn.subject, true
		}
	}
	return "", false
}

type eligibilitySubjectStore interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.Subject, error)
	FindByName(ctx context.Context, schoolID, name string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
}

type eligibilityTeacherLister interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.Teacher, error)
}

type eligibilityStore interface {
	ListBySchool(ctx context.Context, schoolID string) ([]models.EligibilityDetail, error)
	Upsert(ctx context.Context, row *models.TeacherSubjectEligibility) error
}

// EligibilityService normalizes the roster before scheduling: it fills in
// missing subjects and synthesizes teacher-subject assignments from
// specialism labels. Explicit assignments are never overwritten.
type EligibilityService struct {
	subjects    eligibilitySubjectStore
	teachers    eligibilityTeacherLister
	eligibility eligibilityStore
	logger      *zap.Logger
}

func NewEligibilityService(
	subjects eligibilitySubjectStore,
	teachers eligibilityTeacherLister,
	eligibility eligibilityStore,
	logger *zap.Logger,
) *EligibilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{
		subjects:    subjects,
		teachers:    teachers,
		eligibility: eligibility,
		logger:      logger,
	}
}

// EnsureCoreSubjects creates any subject from the standard catalogue the
// school does not have yet. Matching is case-insensitive; re-running is a
// no-op for subjects that already exist.
func (s *EligibilityService) EnsureCoreSubjects(ctx context.Context, schoolID string) error {
	existing, err := s.subjects.ListBySchool(ctx, schoolID)
	if err != nil {
		return fmt.Errorf("ensure core subjects: %w", err)
	}

	have := make(map[string]bool, len(existing))
	for _, subject := range existing {
		have[strings.ToLower(subject.Name)] = true
	}

	for _, name := range coreSubjectNames {
		if have[strings.ToLower(name)] {
			continue
		}
		code := strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
		if len(code) > 10 {
			code = code[:10]
		}
		subject := &models.Subject{SchoolID: schoolID, Name: name, Code: code}
		if err := s.subjects.Create(ctx, subject); err != nil {
			return fmt.Errorf("create subject %s: %w", name, err)
		}
		s.logger.Info("auto-created subject", zap.String("school_id", schoolID), zap.String("subject", name))
	}
	return nil
}

// Sync synthesizes eligibility rows from specialism labels and grants every
// active teacher secondary coverage of the crossover subjects. All writes go
// through a conflict-ignoring upsert, so the pass is idempotent.
func (s *EligibilityService) Sync(ctx context.Context, schoolID string) error {
	teachers, err := s.teachers.ListBySchool(ctx, schoolID)
	if err != nil {
		return fmt.Errorf("sync eligibility: %w", err)
	}

	for _, teacher := range teachers {
		subjectName, ok := MatchSpecialism(teacher.Specialism)
		if !ok {
			continue
		}
		subject, err := s.subjects.FindByName(ctx, schoolID, subjectName)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return fmt.Errorf("sync eligibility: %w", err)
		}
		row := &models.TeacherSubjectEligibility{
			TeacherID:         teacher.ID,
			SubjectID:         subject.ID,
			IsPrimary:         true,
			MaxPeriodsPerWeek: DefaultWeeklyCap,
		}
		if err := s.eligibility.Upsert(ctx, row); err != nil {
			return fmt.Errorf("sync eligibility: %w", err)
		}
	}

	for _, subjectName := range crossoverSubjects {
		subject, err := s.subjects.FindByName(ctx, schoolID, subjectName)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return fmt.Errorf("sync eligibility: %w", err)
		}
		for _, teacher := range teachers {
			row := &models.TeacherSubjectEligibility{
				TeacherID:         teacher.ID,
				SubjectID:         subject.ID,
				IsPrimary:         false,
				MaxPeriodsPerWeek: DefaultWeeklyCap,
			}
			if err := s.eligibility.Upsert(ctx, row); err != nil {
				return fmt.Errorf("sync eligibility: %w", err)
			}
		}
	}
	return nil
}

// BuildIndex maps each subject id to the teachers allowed to teach it,
// preserving the repository's name ordering so iteration is deterministic.
func (s *EligibilityService) BuildIndex(ctx context.Context, schoolID string, teachers []models.Teacher) (map[string][]models.Teacher, error) {
	rows, err := s.eligibility.ListBySchool(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("build eligibility index: %w", err)
	}

	byID := make(map[string]models.Teacher, len(teachers))
	for _, teacher := range teachers {
		byID[teacher.ID] = teacher
	}

	index := make(map[string][]models.Teacher)
	for _, row := range rows {
		teacher, ok := byID[row.TeacherID]
		if !ok {
			continue
		}
		index[row.SubjectID] = append(index[row.SubjectID], teacher)
	}
	return index, nil
}
