package models

import "time"

// ResultStatus is the terminal state of an allocation run.
type ResultStatus string

const (
	ResultCompleted ResultStatus = "completed"
	ResultPartial   ResultStatus = "partial"
	ResultFailed    ResultStatus = "failed"
)

// Conflict issues.
const (
	IssueNoRoomsInBlocks = "No available rooms in designated block(s)."
	IssueNoSuitableRoom  = "Could not find a suitable room matching constraints."
)

// Assignment pairs a student with the room the solver picked.
type Assignment struct {
	StudentID string `db:"student_id" json:"studentId"`
	RoomID    string `db:"room_id" json:"roomId"`
}

// Allocation is a persisted assignment row.
type Allocation struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"studentId"`
	RoomID      string    `db:"room_id" json:"roomId"`
	AllocatedAt time.Time `db:"allocated_at" json:"allocatedAt"`
}

// AllocationDetail joins an allocation with student and room display fields.
type AllocationDetail struct {
	Allocation
	FirstName    string `db:"firstname" json:"-"`
	LastName     string `db:"lastname" json:"-"`
	MatricNumber string `db:"matric_number" json:"matricNumber"`
	Block        string `db:"block" json:"block"`
	RoomNumber   string `db:"room_number" json:"roomNumber"`
	Capacity     int    `db:"capacity" json:"capacity"`
}

// Conflict records a student the solver could not place.
type Conflict struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	Issue       string `json:"issue"`
}

// AllocationView is one placed student as shown in results and reports.
type AllocationView struct {
	StudentID    string `json:"studentId"`
	StudentName  string `json:"studentName"`
	MatricNumber string `json:"matricNumber"`
	Block        string `json:"block"`
	RoomNumber   string `json:"roomNumber"`
}

// AllocationResult is the immutable outcome of one run.
type AllocationResult struct {
	ID                  string           `json:"id"`
	Timestamp           time.Time        `json:"timestamp"`
	Status              ResultStatus     `json:"status"`
	StudentsAllocated   int              `json:"studentsAllocated"`
	StudentsUnallocated int              `json:"studentsUnallocated"`
	TotalStudents       int              `json:"totalStudents"`
	Errors              []string         `json:"errors"`
	Conflicts           []Conflict       `json:"conflicts"`
	Allocations         []AllocationView `json:"allocations"`
}

// FailedResult builds the terminal record stored when a run aborts.
func FailedResult(id string, at time.Time, message string) *AllocationResult {
	return &AllocationResult{
		ID:          id,
		Timestamp:   at,
		Status:      ResultFailed,
		Errors:      []string{message},
		Conflicts:   []Conflict{},
		Allocations: []AllocationView{},
	}
}

// AllocationStatus is the progress snapshot of the allocation job.
type AllocationStatus struct {
	IsRunning   bool       `json:"isRunning"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep"`
	StartTime   *time.Time `json:"startTime,omitempty"`
}

// Progress checkpoints.
const (
	ProgressStarted  = 0
	ProgressFetching = 10
	ProgressSaving   = 85
	ProgressDone     = 100
)

// Step labels.
const (
	StepIdle         = "Idle"
	StepInitializing = "Initializing..."
	StepFetching     = "Fetching students and rooms..."
	StepSaving       = "Saving allocations to database..."
	StepCompleted    = "Completed"
	StepFailedPrefix = "Failed: "
)
