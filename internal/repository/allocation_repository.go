package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hostel-allocation-api/internal/models"
)

// AllocationRepository persists room allocations.
type AllocationRepository struct {
	db *sqlx.DB
}

// NewAllocationRepository constructs an AllocationRepository.
func NewAllocationRepository(db *sqlx.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

func (r *AllocationRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateBatch inserts assignments, skipping students that already hold an allocation.
// It returns the number of rows actually inserted.
func (r *AllocationRepository) CreateBatch(ctx context.Context, exec sqlx.ExtContext, assignments []models.Assignment) (int, error) {
	if len(assignments) == 0 {
		return 0, nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO allocations (id, student_id, room_id, allocated_at)
VALUES (:id, :student_id, :room_id, :allocated_at)
ON CONFLICT (student_id) DO NOTHING`

	inserted := 0
	for _, a := range assignments {
		row := models.Allocation{
			ID:          uuid.NewString(),
			StudentID:   a.StudentID,
			RoomID:      a.RoomID,
			AllocatedAt: now,
		}
		res, err := sqlx.NamedExecContext(ctx, target, query, row)
		if err != nil {
			return inserted, fmt.Errorf("insert allocation for student %s: %w", a.StudentID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, nil
}

const allocationDetailColumns = `SELECT a.id, a.student_id, a.room_id, a.allocated_at,
        s.firstname, s.lastname, s.matric_number,
        r.block, r.room_number, r.capacity
        FROM allocations a
        JOIN students s ON s.id = a.student_id
        JOIN rooms r ON r.id = a.room_id`

// FindByStudent returns the student's allocation or sql.ErrNoRows.
func (r *AllocationRepository) FindByStudent(ctx context.Context, studentID string) (*models.AllocationDetail, error) {
	query := allocationDetailColumns + ` WHERE a.student_id = $1`
	var detail models.AllocationDetail
	if err := r.db.GetContext(ctx, &detail, query, studentID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListDetailed returns every allocation ordered by block then room number.
func (r *AllocationRepository) ListDetailed(ctx context.Context) ([]models.AllocationDetail, error) {
	query := allocationDetailColumns + ` ORDER BY r.block ASC, r.room_number ASC`
	var details []models.AllocationDetail
	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return details, nil
}
