package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hostel-allocation-api/internal/dto"
	"github.com/noah-isme/hostel-allocation-api/internal/middleware"
	"github.com/noah-isme/hostel-allocation-api/internal/models"
	"github.com/noah-isme/hostel-allocation-api/internal/service"
	appErrors "github.com/noah-isme/hostel-allocation-api/pkg/errors"
	"github.com/noah-isme/hostel-allocation-api/pkg/response"
)

type allocationService interface {
	StudentAllocation(ctx context.Context, studentID string) (*dto.StudentAllocationResponse, error)
	PreCheck(ctx context.Context) (*dto.PreCheckResponse, bool, error)
	Status() models.AllocationStatus
	StartAllocation(ctx context.Context, req dto.StartAllocationRequest) (*dto.StartAllocationResponse, error)
	LastResult(ctx context.Context) (*models.AllocationResult, error)
	ListAllocations(ctx context.Context) ([]dto.AllocationRecord, error)
}

type allocationReporter interface {
	Generate(ctx context.Context, id, format string) (*service.ReportFile, error)
}

// AllocationHandler exposes the allocation run controller and its queries over HTTP.
type AllocationHandler struct {
	service  allocationService
	reporter allocationReporter
}

// NewAllocationHandler constructs the handler.
func NewAllocationHandler(service allocationService, reporter allocationReporter) *AllocationHandler {
	return &AllocationHandler{service: service, reporter: reporter}
}

// MyAllocation godoc
// @Summary Current student's room allocation
// @Tags Allocation
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /allocation/my-allocation [get]
func (h *AllocationHandler) MyAllocation(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	allocation, err := h.service.StudentAllocation(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, allocation)
}

// PreCheck godoc
// @Summary Compare eligible students against free beds
// @Tags Allocation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /allocation/pre-check [get]
func (h *AllocationHandler) PreCheck(c *gin.Context) {
	start := time.Now()
	summary, cacheHit, err := h.service.PreCheck(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := responseMeta(c)
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, summary, meta)
}

// Status godoc
// @Summary Allocation run status
// @Tags Allocation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /allocation/status [get]
func (h *AllocationHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Status())
}

// Start godoc
// @Summary Start an allocation run in the background
// @Tags Allocation
// @Accept json
// @Produce json
// @Param payload body dto.StartAllocationRequest false "Optional run id"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /allocation/start [post]
func (h *AllocationHandler) Start(c *gin.Context) {
	var req dto.StartAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	req.RunID = strings.TrimSpace(req.RunID)

	started, err := h.service.StartAllocation(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, started)
}

// LastResult godoc
// @Summary Most recent allocation result
// @Tags Allocation
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /allocation/last-result [get]
func (h *AllocationHandler) LastResult(c *gin.Context) {
	result, err := h.service.LastResult(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Report godoc
// @Summary Download an allocation report
// @Tags Allocation
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Result ID"
// @Param format query string true "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /allocation/report/{id} [get]
func (h *AllocationHandler) Report(c *gin.Context) {
	var query dto.ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	file, err := h.reporter.Generate(c.Request.Context(), c.Param("id"), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// All godoc
// @Summary List every stored allocation
// @Tags Allocation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /allocation/all [get]
func (h *AllocationHandler) All(c *gin.Context) {
	records, err := h.service.ListAllocations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}
