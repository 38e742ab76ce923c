package dto

import "time"

// BlockAvailability summarises free beds per block for the pre-check screen.
type BlockAvailability struct {
	Block             string `json:"block"`
	AvailableSpaces   int    `json:"availableSpaces"`
	EstimatedStudents int    `json:"estimatedStudents"`
}

// PreCheckResponse is returned by GET /allocation/pre-check.
type PreCheckResponse struct {
	ApprovedStudents  int                 `json:"approvedStudents"`
	AvailableSpaces   int                 `json:"availableSpaces"`
	CanAllocateAll    bool                `json:"canAllocateAll"`
	Warnings          []string            `json:"warnings"`
	BlockAvailability []BlockAvailability `json:"blockAvailability"`
}

// StartAllocationRequest optionally names the run.
type StartAllocationRequest struct {
	RunID string `json:"runId" validate:"omitempty,max=64,printascii"`
}

// StartAllocationResponse acknowledges a background run.
type StartAllocationResponse struct {
	Message string `json:"message"`
	RunID   string `json:"runId"`
}

// ReportQuery selects the download format.
type ReportQuery struct {
	Format string `form:"format"`
}

// StudentAllocationResponse is a student's own placement.
type StudentAllocationResponse struct {
	StudentID    string    `json:"studentId"`
	StudentName  string    `json:"studentName"`
	MatricNumber string    `json:"matricNumber"`
	RoomID       string    `json:"roomId"`
	Block        string    `json:"block"`
	RoomNumber   string    `json:"roomNumber"`
	AllocatedAt  time.Time `json:"allocatedAt"`
}

// AllocationRecord is one row of the admin allocation listing.
type AllocationRecord struct {
	ID          string    `json:"id"`
	AllocatedAt time.Time `json:"allocatedAt"`
	Student     struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		MatricNumber string `json:"matricNumber"`
	} `json:"student"`
	Room struct {
		ID         string `json:"id"`
		Block      string `json:"block"`
		RoomNumber string `json:"roomNumber"`
		Capacity   int    `json:"capacity"`
	} `json:"room"`
}
