package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/HummaSaeed/TimeTableManager/internal/dto"
	"github.com/HummaSaeed/TimeTableManager/internal/models"
	"github.com/HummaSaeed/TimeTableManager/pkg/config"
	apperrors "github.com/HummaSaeed/TimeTableManager/pkg/errors"
	"github.com/HummaSaeed/TimeTableManager/pkg/jobs"
	"github.com/HummaSaeed/TimeTableManager/pkg/storage"
)

const exportJobType = "timetable_export"

// cleanupInterval paces the background sweep of expired export files.
const cleanupInterval = time.Hour

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	FindByID(ctx context.Context, id string) (*models.ExportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkDone(ctx context.Context, id, filePath, token string, expiresAt time.Time) error
	MarkFailed(ctx context.Context, id, message string) error
}

type exportFileStore interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type timetableRenderer interface {
	Export(ctx context.Context, schoolID, academicYear, format string) ([]byte, string, error)
}

// ExportService runs timetable exports in the background: a scheduled job is
// persisted, rendered by a worker, written to the file store and exposed
// through a signed download link that outlives the caller's session.
type ExportService struct {
	store    exportJobStore
	files    exportFileStore
	signer   *storage.URLSigner
	renderer timetableRenderer
	queue    *jobs.Queue

	apiPrefix string
	cfg       config.ExportConfig
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewExportService(
	store exportJobStore,
	files exportFileStore,
	signer *storage.URLSigner,
	renderer timetableRenderer,
	apiPrefix string,
	cfg config.ExportConfig,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if apiPrefix == "" {
		apiPrefix = "/api/v1"
	}

	s := &ExportService{
		store:     store,
		files:     files,
		signer:    signer,
		renderer:  renderer,
		apiPrefix: strings.TrimRight(apiPrefix, "/"),
		cfg:       cfg,
		validate:  validator.New(),
		logger:    logger,
	}
	s.queue = jobs.NewQueue("export", s.process, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return s
}

// Start launches the export workers and the expired-file sweeper.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	go s.cleanupLoop(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Schedule persists a new export job and hands it to the worker pool.
func (s *ExportService) Schedule(ctx context.Context, schoolID string, req dto.ExportJobRequest) (*dto.ExportJobResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid export request")
	}

	job := &models.ExportJob{
		SchoolID:     schoolID,
		AcademicYear: req.AcademicYear,
		Format:       req.Format,
		Status:       models.ExportJobQueued,
	}
	if err := s.store.Create(ctx, job); err != nil {
		return nil, err
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: exportJobType}); err != nil {
		if markErr := s.store.MarkFailed(ctx, job.ID, "export queue unavailable"); markErr != nil {
			s.logger.Error("mark export job failed", zap.String("job_id", job.ID), zap.Error(markErr))
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "export queue unavailable")
	}

	s.logger.Info("export job scheduled",
		zap.String("job_id", job.ID),
		zap.String("school_id", schoolID),
		zap.String("format", job.Format))
	return s.response(job), nil
}

// Status returns the current state of a job owned by the school.
func (s *ExportService) Status(ctx context.Context, schoolID, jobID string) (*dto.ExportJobResponse, error) {
	job, err := s.store.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.SchoolID != schoolID {
		return nil, apperrors.ErrNotFound
	}
	return s.response(job), nil
}

// Download resolves a signed token to the stored file. The caller owns the
// returned handle.
func (s *ExportService) Download(ctx context.Context, token string) (*os.File, string, string, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", "", apperrors.Wrap(err, apperrors.ErrUnauthorized.Code, apperrors.ErrUnauthorized.Status, "invalid or expired download token")
	}

	job, err := s.store.FindByID(ctx, jobID)
	if err != nil {
		return nil, "", "", err
	}
	if job.Status != models.ExportJobDone || job.FilePath == nil || *job.FilePath != relPath {
		return nil, "", "", apperrors.Clone(apperrors.ErrNotFound, "export file not available")
	}

	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, "", "", apperrors.Clone(apperrors.ErrNotFound, "export file no longer available")
	}
	return file, filepath.Base(relPath), exportContentType(job.Format), nil
}

// Cleanup removes stored files past the TTL, defaulting to the configured
// result TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.files.CleanupOlderThan(ttl)
}

// process renders one queued job. Errors bubble to the queue so transient
// failures get retried; the job row keeps the last failure message either way.
func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	record, err := s.store.FindByID(ctx, job.ID)
	if err != nil {
		return err
	}
	if record.Status == models.ExportJobDone {
		return nil
	}
	if err := s.store.MarkProcessing(ctx, record.ID); err != nil {
		return err
	}

	payload, _, err := s.renderer.Export(ctx, record.SchoolID, record.AcademicYear, record.Format)
	if err != nil {
		s.markFailed(ctx, record.ID, err)
		return err
	}

	relPath, err := s.files.Save(s.filename(record), payload)
	if err != nil {
		s.markFailed(ctx, record.ID, err)
		return err
	}

	token, expiresAt, err := s.signer.Sign(record.ID, relPath)
	if err != nil {
		s.markFailed(ctx, record.ID, err)
		return err
	}

	if err := s.store.MarkDone(ctx, record.ID, relPath, token, expiresAt); err != nil {
		return err
	}

	s.logger.Info("export job completed",
		zap.String("job_id", record.ID),
		zap.String("file", relPath),
		zap.Time("expires_at", expiresAt))
	return nil
}

func (s *ExportService) markFailed(ctx context.Context, jobID string, cause error) {
	if err := s.store.MarkFailed(ctx, jobID, cause.Error()); err != nil {
		s.logger.Error("mark export job failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (s *ExportService) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Cleanup(0)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				s.logger.Info("expired export files removed", zap.Int("count", len(removed)))
			}
		}
	}
}

func (s *ExportService) response(job *models.ExportJob) *dto.ExportJobResponse {
	resp := &dto.ExportJobResponse{
		JobID:        job.ID,
		Status:       job.Status,
		Format:       job.Format,
		AcademicYear: job.AcademicYear,
	}
	if job.ErrorMessage != nil {
		resp.Error = *job.ErrorMessage
	}
	if job.Status == models.ExportJobDone && job.DownloadToken != nil {
		resp.DownloadURL = fmt.Sprintf("%s/export/%s", s.apiPrefix, *job.DownloadToken)
		resp.ExpiresAt = job.ExpiresAt
	}
	return resp
}

func (s *ExportService) filename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	year := strings.NewReplacer(" ", "_", "/", "-").Replace(job.AcademicYear)
	return fmt.Sprintf("%s/timetable_%s_%s.%s", job.SchoolID, year, timestamp, job.Format)
}

func exportContentType(format string) string {
	if format == "pdf" {
		return "application/pdf"
	}
	return "text/csv"
}
