package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/HummaSaeed/TimeTableManager/internal/dto"
	apperrors "github.com/HummaSaeed/TimeTableManager/pkg/errors"
	"github.com/HummaSaeed/TimeTableManager/pkg/response"
)

type exportService interface {
	Schedule(ctx context.Context, schoolID string, req dto.ExportJobRequest) (*dto.ExportJobResponse, error)
	Status(ctx context.Context, schoolID, jobID string) (*dto.ExportJobResponse, error)
	Download(ctx context.Context, token string) (*os.File, string, string, error)
}

type ExportHandler struct {
	exports exportService
}

func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// CreateJob godoc
// @Summary Schedule a timetable export
// @Description Queues a background export of the school timetable. Poll the job for a signed download link.
// @Tags timetable
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ExportJobRequest true "Export parameters"
// @Success 202 {object} response.Envelope{data=dto.ExportJobResponse}
// @Failure 400 {object} response.Envelope
// @Router /timetable/export/jobs [post]
func (h *ExportHandler) CreateJob(c *gin.Context) {
	school, err := schoolID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.ExportJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid request body"))
		return
	}

	job, err := h.exports.Schedule(c.Request.Context(), school, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job)
}

// JobStatus godoc
// @Summary Export job status
// @Description Returns the state of an export job, including the signed download link once it is done.
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "Export job id"
// @Success 200 {object} response.Envelope{data=dto.ExportJobResponse}
// @Failure 404 {object} response.Envelope
// @Router /timetable/export/jobs/{jobId} [get]
func (h *ExportHandler) JobStatus(c *gin.Context) {
	school, err := schoolID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	job, err := h.exports.Status(c.Request.Context(), school, c.Param("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}

// Download godoc
// @Summary Download a rendered export
// @Description Streams a stored export file. The signed token in the path is the only credential required.
// @Tags timetable
// @Produce text/csv
// @Produce application/pdf
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, filename, contentType, err := h.exports.Download(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
