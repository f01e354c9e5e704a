package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HummaSaeed/TimeTableManager/internal/dto"
	"github.com/HummaSaeed/TimeTableManager/internal/models"
	apperrors "github.com/HummaSaeed/TimeTableManager/pkg/errors"
	"github.com/HummaSaeed/TimeTableManager/pkg/response"
)

type generatorService interface {
	Generate(ctx context.Context, schoolID string, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
}

type timetableService interface {
	SchoolTimetable(ctx context.Context, schoolID, academicYear string) ([]models.TimetableSlotDetail, error)
	ClassTimetable(ctx context.Context, schoolID, classID, academicYear string) ([]models.TimetableSlotDetail, error)
	WorkloadReport(ctx context.Context, schoolID, academicYear string) (*dto.WorkloadReport, error)
	Export(ctx context.Context, schoolID, academicYear, format string) ([]byte, string, error)
}

type TimetableHandler struct {
	generator  generatorService
	timetables timetableService
}

func NewTimetableHandler(generator generatorService, timetables timetableService) *TimetableHandler {
	return &TimetableHandler{generator: generator, timetables: timetables}
}

// Generate godoc
// @Summary Generate the weekly timetable
// @Description Builds a full weekly timetable for the authenticated school and academic year, replacing any existing one.
// @Tags timetable
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GenerateTimetableRequest true "Generation parameters"
// @Success 200 {object} response.Envelope{data=dto.GenerateTimetableResponse}
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	school, err := schoolID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid request body"))
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), school, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// List godoc
// @Summary School timetable
// @Description Returns every active slot for the school and academic year.
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param academicYear query string true "Academic year label"
// @Success 200 {object} response.Envelope{data=[]models.TimetableSlotDetail}
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	school, err := schoolID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	academicYear := c.Query("academicYear")
	if academicYear == "" {
		response.Error(c, apperrors.Clone(apperrors.ErrValidation, "academicYear query parameter is required"))
		return
	}

	slots, err := h.timetables.SchoolTimetable(c.Request.Context(), school, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, map[string]interface{}{"count": len(slots)})
}

// ByClass godoc
// @Summary Class timetable
// @Description Returns one class's weekly slots.
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param classId path string true "Class id"
// @Param academicYear query string true "Academic year label"
// @Success 200 {object} response.Envelope{data=[]models.TimetableSlotDetail}
// @Router /timetable/class/{classId} [get]
func (h *TimetableHandler) ByClass(c *gin.Context) {
	school, err := schoolID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	academicYear := c.Query("academicYear")
	if academicYear == "" {
		response.Error(c, apperrors.Clone(apperrors.ErrValidation, "academicYear query parameter is required"))
		return
	}

	slots, err := h.timetables.ClassTimetable(c.Request.Context(), school, c.Param("classId"), academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, map[string]interface{}{"count": len(slots)})
}

// Workload godoc
// @Summary Teacher workload report
// @Description Aggregates weekly teaching periods per teacher, by day and subject.
// @Tags timetable
// @Produce json
// @Security BearerAuth
// @Param academicYear query string true "Academic year label"
// @Success 200 {object} response.Envelope{data=dto.WorkloadReport}
// @Router /timetable/workload [get]
func (h *TimetableHandler) Workload(c *gin.Context) {
	school, err := schoolID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	academicYear := c.Query("academicYear")
	if academicYear == "" {
		response.Error(c, apperrors.Clone(apperrors.ErrValidation, "academicYear query parameter is required"))
		return
	}

	report, err := h.timetables.WorkloadReport(c.Request.Context(), school, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Export godoc
// @Summary Export the timetable
// @Description Streams the school timetable as CSV or PDF.
// @Tags timetable
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param academicYear query string true "Academic year label"
// @Param format query string true "Export format" Enums(csv, pdf)
// @Success 200 {file} file
// @Router /timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	school, err := schoolID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	academicYear := c.Query("academicYear")
	if academicYear == "" {
		response.Error(c, apperrors.Clone(apperrors.ErrValidation, "academicYear query parameter is required"))
		return
	}
	format := c.DefaultQuery("format", "csv")

	payload, contentType, err := h.timetables.Export(c.Request.Context(), school, academicYear, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("timetable-%s.%s", academicYear, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
