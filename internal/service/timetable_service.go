package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/HummaSaeed/TimeTableManager/internal/dto"
	"github.com/HummaSaeed/TimeTableManager/internal/models"
	"github.com/HummaSaeed/TimeTableManager/pkg/config"
	apperrors "github.com/HummaSaeed/TimeTableManager/pkg/errors"
	"github.com/HummaSaeed/TimeTableManager/pkg/export"
)

type timetableSlotReader interface {
	ListBySchool(ctx context.Context, schoolID, academicYear string) ([]models.TimetableSlotDetail, error)
	ListByClass(ctx context.Context, schoolID, classID, academicYear string) ([]models.TimetableSlotDetail, error)
}

// TimetableCache is the read-through cache for timetable queries. A nil
// value disables caching.
type TimetableCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type tableExporter interface {
	Render(data export.Dataset) ([]byte, error)
}

type titledExporter interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// TimetableService serves the read side of generated timetables: cached
// lookups, the weekly teacher workload report and exports.
type TimetableService struct {
	slots  timetableSlotReader
	cache  TimetableCache
	csv    tableExporter
	pdf    titledExporter
	cfg    config.CacheConfig
	logger *zap.Logger
}

func NewTimetableService(
	slots timetableSlotReader,
	cache TimetableCache,
	csv tableExporter,
	pdf titledExporter,
	cfg config.CacheConfig,
	logger *zap.Logger,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{slots: slots, cache: cache, csv: csv, pdf: pdf, cfg: cfg, logger: logger}
}

// SchoolTimetable returns every active slot of the school's timetable for
// the academic year, reading through the cache when enabled.
func (s *TimetableService) SchoolTimetable(ctx context.Context, schoolID, academicYear string) ([]models.TimetableSlotDetail, error) {
	key := fmt.Sprintf("timetable:%s:%s", schoolID, academicYear)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	slots, err := s.slots.ListBySchool(ctx, schoolID, academicYear)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, slots)
	return slots, nil
}

// ClassTimetable returns one class's week.
func (s *TimetableService) ClassTimetable(ctx context.Context, schoolID, classID, academicYear string) ([]models.TimetableSlotDetail, error) {
	key := fmt.Sprintf("timetable:%s:%s:class:%s", schoolID, academicYear, classID)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	slots, err := s.slots.ListByClass(ctx, schoolID, classID, academicYear)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, slots)
	return slots, nil
}

// WorkloadReport aggregates the week's teaching slots per teacher, broken
// down by day and subject.
func (s *TimetableService) WorkloadReport(ctx context.Context, schoolID, academicYear string) (*dto.WorkloadReport, error) {
	slots, err := s.SchoolTimetable(ctx, schoolID, academicYear)
	if err != nil {
		return nil, err
	}

	entries := map[string]*dto.TeacherWorkloadEntry{}
	order := []string{}
	for _, slot := range slots {
		if slot.IsBreak || slot.TeacherID == nil {
			continue
		}
		entry, ok := entries[*slot.TeacherID]
		if !ok {
			name := ""
			if slot.TeacherName != nil {
				name = *slot.TeacherName
			}
			entry = &dto.TeacherWorkloadEntry{
				TeacherID:   *slot.TeacherID,
				TeacherName: name,
				ByDay:       map[string]int{},
				BySubject:   map[string]int{},
			}
			entries[*slot.TeacherID] = entry
			order = append(order, *slot.TeacherID)
		}
		entry.TotalPeriods++
		entry.ByDay[slot.Day]++
		if slot.SubjectName != nil {
			entry.BySubject[*slot.SubjectName]++
		}
	}

	report := &dto.WorkloadReport{AcademicYear: academicYear, Teachers: make([]dto.TeacherWorkloadEntry, 0, len(order))}
	for _, id := range order {
		report.Teachers = append(report.Teachers, *entries[id])
	}
	return report, nil
}

// Export renders the school timetable as csv or pdf.
func (s *TimetableService) Export(ctx context.Context, schoolID, academicYear, format string) ([]byte, string, error) {
	slots, err := s.SchoolTimetable(ctx, schoolID, academicYear)
	if err != nil {
		return nil, "", err
	}

	dataset := timetableDataset(slots)
	switch format {
	case "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", err
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, fmt.Sprintf("Timetable %s", academicYear))
		if err != nil {
			return nil, "", err
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", apperrors.Clone(apperrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func timetableDataset(slots []models.TimetableSlotDetail) export.Dataset {
	headers := []string{"Class", "Day", "Period", "Start", "End", "Subject", "Teacher"}
	rows := make([]map[string]string, 0, len(slots))
	for _, slot := range slots {
		subject := ""
		teacher := ""
		if slot.IsBreak {
			if slot.BreakName != nil {
				subject = *slot.BreakName
			} else {
				subject = "Break"
			}
		} else {
			if slot.SubjectName != nil {
				subject = *slot.SubjectName
			}
			if slot.TeacherName != nil {
				teacher = *slot.TeacherName
			}
		}
		rows = append(rows, map[string]string{
			"Class":   slot.ClassName + "-" + slot.Section,
			"Day":     slot.Day,
			"Period":  strconv.Itoa(slot.Period),
			"Start":   slot.StartTime,
			"End":     slot.EndTime,
			"Subject": subject,
			"Teacher": teacher,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func (s *TimetableService) fromCache(ctx context.Context, key string) ([]models.TimetableSlotDetail, bool) {
	if s.cache == nil || !s.cfg.Enabled {
		return nil, false
	}
	payload, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrCacheMiss) {
			s.logger.Warn("timetable cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var slots []models.TimetableSlotDetail
	if err := json.Unmarshal(payload, &slots); err != nil {
		s.logger.Warn("timetable cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return slots, true
}

func (s *TimetableService) toCache(ctx context.Context, key string, slots []models.TimetableSlotDetail) {
	if s.cache == nil || !s.cfg.Enabled {
		return
	}
	payload, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cfg.TTL); err != nil {
		s.logger.Warn("timetable cache write failed", zap.String("key", key), zap.Error(err))
	}
}
