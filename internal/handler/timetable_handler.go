package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/nep-timetable-api/internal/dto"
	"github.com/noah-isme/nep-timetable-api/internal/models"
	"github.com/noah-isme/nep-timetable-api/internal/service"
	appErrors "github.com/noah-isme/nep-timetable-api/pkg/errors"
	"github.com/noah-isme/nep-timetable-api/pkg/response"
)

type timetableService interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	ListByClass(ctx context.Context, classID string) ([]models.TimetableEntry, error)
	AnalyzeClass(ctx context.Context, classID string) (*models.ComplianceReport, error)
	Analyze(ctx context.Context, req dto.ComplianceAnalysisRequest) (*models.ComplianceReport, error)
	Export(ctx context.Context, classID string, format service.ExportFormat) (*service.ExportFile, error)
}

type batchService interface {
	Submit(ctx context.Context, req dto.BatchGenerateRequest) (*dto.BatchStatusResponse, error)
	Status(ctx context.Context, batchID string) (*dto.BatchStatusResponse, error)
}

// TimetableHandler exposes generation, compliance and export endpoints.
type TimetableHandler struct {
	service timetableService
	batches batchService
	logger  *zap.Logger
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService, batches *service.BatchService, logger *zap.Logger) *TimetableHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableHandler{service: svc, batches: batches, logger: logger}
}

// Generate godoc
// @Summary Generate a NEP 2020 timetable for a class
// @Description Tries the remote generator first and falls back to the local heuristic. The response says which one produced the timetable.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("timetable generated",
		zap.String("class_id", req.ClassID),
		zap.String("requested_by", requesterID(c)),
		zap.String("source", result.Source),
		zap.Bool("persisted", result.Persisted),
	)
	response.JSON(c, http.StatusOK, result, map[string]interface{}{"source": result.Source})
}

// GenerateBatch godoc
// @Summary Queue timetable generation for several classes
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.BatchGenerateRequest true "Batch payload"
// @Success 202 {object} response.Envelope
// @Router /timetables/generate/batch [post]
func (h *TimetableHandler) GenerateBatch(c *gin.Context) {
	var req dto.BatchGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}
	status, err := h.batches.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, status)
}

// BatchStatus godoc
// @Summary Get batch generation status
// @Tags Timetable
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/batches/{id} [get]
func (h *TimetableHandler) BatchStatus(c *gin.Context) {
	status, err := h.batches.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status)
}

// ClassTimetable godoc
// @Summary Get the stored timetable of a class
// @Tags Timetable
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{classId}/timetable [get]
func (h *TimetableHandler) ClassTimetable(c *gin.Context) {
	entries, err := h.service.ListByClass(c.Request.Context(), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, map[string]interface{}{"total": len(entries)})
}

// ClassCompliance godoc
// @Summary Score the stored timetable of a class
// @Tags Compliance
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{classId}/compliance [get]
func (h *TimetableHandler) ClassCompliance(c *gin.Context) {
	report, err := h.service.AnalyzeClass(c.Request.Context(), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

// Analyze godoc
// @Summary Score an ad hoc timetable
// @Tags Compliance
// @Accept json
// @Produce json
// @Param payload body dto.ComplianceAnalysisRequest true "Timetable to score"
// @Success 200 {object} response.Envelope
// @Router /timetables/compliance [post]
func (h *TimetableHandler) Analyze(c *gin.Context) {
	var req dto.ComplianceAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid analysis payload"))
		return
	}
	report, err := h.service.Analyze(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, report)
}

// Export godoc
// @Summary Export the stored timetable of a class
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Param classId path string true "Class ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /classes/{classId}/timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	format := service.ExportFormat(strings.TrimSpace(c.DefaultQuery("format", string(service.ExportCSV))))
	file, err := h.service.Export(c.Request.Context(), c.Param("classId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
