package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hostel-allocation-api/internal/models"
	appErrors "github.com/noah-isme/hostel-allocation-api/pkg/errors"
	"github.com/noah-isme/hostel-allocation-api/pkg/export"
)

type lastResultStub struct {
	result *models.AllocationResult
}

func (s *lastResultStub) LastResult(ctx context.Context) (*models.AllocationResult, error) {
	if s.result == nil {
		return nil, appErrors.ErrNoResults
	}
	return s.result, nil
}

type failingCSV struct{}

func (failingCSV) Render(export.Dataset) ([]byte, error) { return nil, errors.New("disk full") }
func (failingCSV) ContentType() string { return "text/csv" }

func sampleResult() *models.AllocationResult {
	return &models.AllocationResult{
		ID:                "alloc-1",
		Timestamp:         time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC),
		Status:            models.ResultCompleted,
		StudentsAllocated: 1,
		TotalStudents:     1,
		Allocations: []models.AllocationView{
			{StudentID: "s1", StudentName: "Ada Obi", MatricNumber: "M001", Block: "A", RoomNumber: "101"},
		},
	}
}

func TestAllocationReportCSV(t *testing.T) {
	svc := NewAllocationReportService(&lastResultStub{result: sampleResult()}, nil, nil, nil)

	file, err := svc.Generate(context.Background(), "alloc-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "allocation-report-alloc-1.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "Student Name,Matric Number,Block,Room Number\nAda Obi,M001,A,101\n", string(file.Payload))
}

func TestAllocationReportPDF(t *testing.T) {
	svc := NewAllocationReportService(&lastResultStub{result: sampleResult()}, nil, nil, nil)

	file, err := svc.Generate(context.Background(), "alloc-1", "PDF")
	require.NoError(t, err)
	assert.Equal(t, "allocation-report-alloc-1.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "%PDF", string(file.Payload[:4]))
}

func TestAllocationReportUnknownID(t *testing.T) {
	svc := NewAllocationReportService(&lastResultStub{result: sampleResult()}, nil, nil, nil)

	_, err := svc.Generate(context.Background(), "alloc-0", "csv")
	assert.ErrorIs(t, err, appErrors.ErrResultNotFound)

	empty := NewAllocationReportService(&lastResultStub{}, nil, nil, nil)
	_, err = empty.Generate(context.Background(), "alloc-1", "csv")
	assert.ErrorIs(t, err, appErrors.ErrResultNotFound)
}

func TestAllocationReportInvalidFormat(t *testing.T) {
	svc := NewAllocationReportService(&lastResultStub{}, nil, nil, nil)

	_, err := svc.Generate(context.Background(), "whatever", "xlsx")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidReportFormat)
	assert.Equal(t, "Invalid format. Use 'csv' or 'pdf'", appErrors.FromError(err).Message)
}

func TestAllocationReportRenderFailure(t *testing.T) {
	svc := NewAllocationReportService(&lastResultStub{result: sampleResult()}, failingCSV{}, nil, nil)

	_, err := svc.Generate(context.Background(), "alloc-1", "csv")
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
