package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/hostel-allocation-api/internal/models"
)

// StudentRepository reads the student directory for allocation.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// The status match is case-insensitive: older registrations were stored upper-case.
const eligibleFilter = `FROM students s
        JOIN registrations r ON r.student_id = s.id
        WHERE LOWER(r.status) = $1
          AND EXISTS (SELECT 1 FROM documents d WHERE d.student_id = s.id AND d.status = $2)
          AND NOT EXISTS (SELECT 1 FROM allocations a WHERE a.student_id = s.id)`

// ListEligible returns students with a submitted registration, a verified document and no allocation.
// A student with several registrations appears once, with the preference of the latest one.
func (r *StudentRepository) ListEligible(ctx context.Context) ([]models.EligibleStudent, error) {
	query := `SELECT DISTINCT ON (s.id) s.id, s.firstname, s.lastname, s.matric_number, s.level, r.preferred_block
        ` + eligibleFilter + `
        ORDER BY s.id ASC, r.id DESC`
	var students []models.EligibleStudent
	if err := r.db.SelectContext(ctx, &students, query, models.RegistrationSubmitted, models.DocumentVerified); err != nil {
		return nil, fmt.Errorf("list eligible students: %w", err)
	}
	return students, nil
}

// CountEligible counts the students ListEligible would return.
func (r *StudentRepository) CountEligible(ctx context.Context) (int, error) {
	query := `SELECT COUNT(DISTINCT s.id) ` + eligibleFilter
	var total int
	if err := r.db.GetContext(ctx, &total, query, models.RegistrationSubmitted, models.DocumentVerified); err != nil {
		return 0, fmt.Errorf("count eligible students: %w", err)
	}
	return total, nil
}

// ListDisplayByIDs re-reads names and matric numbers for the given students.
func (r *StudentRepository) ListDisplayByIDs(ctx context.Context, ids []string) ([]models.StudentDisplay, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, firstname, lastname, matric_number FROM students WHERE id = ANY($1)`
	var students []models.StudentDisplay
	if err := r.db.SelectContext(ctx, &students, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list students by ids: %w", err)
	}
	return students, nil
}
