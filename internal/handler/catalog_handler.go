package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/nep-timetable-api/internal/models"
	"github.com/noah-isme/nep-timetable-api/internal/service"
	appErrors "github.com/noah-isme/nep-timetable-api/pkg/errors"
	"github.com/noah-isme/nep-timetable-api/pkg/response"
)

type catalogService interface {
	ListSubjects(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
	ListTeachers(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error)
	ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error)
}

// CatalogHandler serves the read-only reference data used for generation.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// Subjects godoc
// @Summary List subjects
// @Tags Catalog
// @Produce json
// @Param category query string false "NEP category"
// @Param priority query string false "NEP priority"
// @Param search query string false "Search keyword"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *CatalogHandler) Subjects(c *gin.Context) {
	filter := models.SubjectFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Priority: strings.TrimSpace(c.Query("priority")),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	subjects, err := h.service.ListSubjects(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, map[string]interface{}{"total": len(subjects)})
}

// Teachers godoc
// @Summary List teachers of a school
// @Tags Catalog
// @Produce json
// @Param school_id query string true "School ID"
// @Param nep_trained query bool false "Only NEP trained teachers"
// @Param search query string false "Search keyword"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *CatalogHandler) Teachers(c *gin.Context) {
	filter := models.TeacherFilter{
		SchoolID: strings.TrimSpace(c.Query("school_id")),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	if raw := c.Query("nep_trained"); raw != "" {
		trained, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "nep_trained must be a boolean"))
			return
		}
		filter.NEPTrained = &trained
	}
	teachers, err := h.service.ListTeachers(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, map[string]interface{}{"total": len(teachers)})
}

// TimeSlots godoc
// @Summary List time slots
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /time-slots [get]
func (h *CatalogHandler) TimeSlots(c *gin.Context) {
	slots, err := h.service.ListTimeSlots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, map[string]interface{}{"total": len(slots)})
}
