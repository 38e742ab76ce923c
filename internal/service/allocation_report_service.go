package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/hostel-allocation-api/internal/models"
	appErrors "github.com/noah-isme/hostel-allocation-api/pkg/errors"
	"github.com/noah-isme/hostel-allocation-api/pkg/export"
)

// Report formats.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

var allocationReportHeaders = []string{"Student Name", "Matric Number", "Block", "Room Number"}

type lastResultProvider interface {
	LastResult(ctx context.Context) (*models.AllocationResult, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
	ContentType() string
}

// ReportFile is a rendered allocation report.
type ReportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// AllocationReportService renders the most recent allocation result.
type AllocationReportService struct {
	results lastResultProvider
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewAllocationReportService constructs the report service.
func NewAllocationReportService(results lastResultProvider, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *AllocationReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &AllocationReportService{results: results, csv: csv, pdf: pdf, logger: logger}
}

// Generate renders the result with the given id. Only the latest result is retrievable.
func (s *AllocationReportService) Generate(ctx context.Context, id, format string) (*ReportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.ErrInvalidReportFormat
	}

	result, err := s.results.LastResult(ctx)
	if err != nil || result == nil || result.ID != id {
		return nil, appErrors.ErrResultNotFound
	}

	table := export.Dataset{Headers: allocationReportHeaders}
	for _, a := range result.Allocations {
		table.AddRow(a.StudentName, a.MatricNumber, a.Block, a.RoomNumber)
	}

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case ReportFormatCSV:
		payload, err = s.csv.Render(table)
		contentType = s.csv.ContentType()
	default:
		payload, err = s.pdf.Render(export.Document{
			Title: fmt.Sprintf("Room Allocation Report (%s)", result.ID),
			Summary: []string{
				fmt.Sprintf("Generated: %s", result.Timestamp.Format("2006-01-02 15:04:05 MST")),
				fmt.Sprintf("Status: %s", strings.ToUpper(string(result.Status))),
				fmt.Sprintf("Total Students Processed: %d", result.TotalStudents),
				fmt.Sprintf("Successfully Allocated: %d", result.StudentsAllocated),
				fmt.Sprintf("Unallocated / Conflicts: %d", result.StudentsUnallocated),
			},
			Table: table,
		})
		contentType = s.pdf.ContentType()
	}
	if err != nil {
		s.logger.Error("failed to render allocation report", zap.String("result_id", id), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	return &ReportFile{
		Filename:    fmt.Sprintf("allocation-report-%s.%s", result.ID, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}
