package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hostel-allocation-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func TestStudentRepositoryListEligible(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "firstname", "lastname", "matric_number", "level", "preferred_block"}).
		AddRow("s1", "Ada", "Obi", "M001", 100, nil).
		AddRow("s2", "Bola", "Ade", "M002", 200, "B")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT ON (s.id) s.id, s.firstname, s.lastname, s.matric_number, s.level, r.preferred_block")).
		WithArgs(models.RegistrationSubmitted, models.DocumentVerified).
		WillReturnRows(rows)

	students, err := repo.ListEligible(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Nil(t, students[0].PreferredBlock)
	require.NotNil(t, students[1].PreferredBlock)
	assert.Equal(t, "B", *students[1].PreferredBlock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCountEligible(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT s.id) FROM students s")).
		WithArgs(models.RegistrationSubmitted, models.DocumentVerified).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.CountEligible(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListDisplayByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	empty, err := repo.ListDisplayByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, firstname, lastname, matric_number FROM students WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "firstname", "lastname", "matric_number"}).AddRow("s1", "Ada", "Obi", "M001"))

	students, err := repo.ListDisplayByIDs(context.Background(), []string{"s1"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Ada Obi", students[0].Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryEligibilityIgnoresStatusCase(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	// A registration stored as SUBMITTED must still match the lower-case argument.
	mock.ExpectQuery(`SELECT DISTINCT ON \(s\.id\) .* WHERE LOWER\(r\.status\) = \$1 .* ORDER BY s\.id ASC, r\.id DESC`).
		WithArgs("submitted", "verified").
		WillReturnRows(sqlmock.NewRows([]string{"id", "firstname", "lastname", "matric_number", "level", "preferred_block"}).
			AddRow("s1", "Ada", "Obi", "M001", 100, "A"))
	mock.ExpectQuery(`SELECT COUNT\(DISTINCT s\.id\) FROM students s .* WHERE LOWER\(r\.status\) = \$1`).
		WithArgs("submitted", "verified").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, err := repo.ListEligible(context.Background())
	require.NoError(t, err)
	total, err := repo.CountEligible(context.Background())
	require.NoError(t, err)

	assert.Len(t, students, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
