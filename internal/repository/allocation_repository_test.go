package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hostel-allocation-api/internal/models"
)

func TestAllocationRepositoryCreateBatchSkipsDuplicates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAllocationRepository(db)

	mock.ExpectExec("INSERT INTO allocations").
		WithArgs(sqlmock.AnyArg(), "s1", "r1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO allocations").
		WithArgs(sqlmock.AnyArg(), "s2", "r1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.CreateBatch(context.Background(), nil, []models.Assignment{
		{StudentID: "s1", RoomID: "r1"},
		{StudentID: "s2", RoomID: "r1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocationRepositoryCreateBatchEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAllocationRepository(db)

	inserted, err := repo.CreateBatch(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocationRepositoryFindByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAllocationRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.student_id = $1")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "room_id", "allocated_at", "firstname", "lastname", "matric_number", "block", "room_number", "capacity"}).
			AddRow("a1", "s1", "r1", now, "Ada", "Obi", "M001", "A", "101", 2))

	detail, err := repo.FindByStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "A", detail.Block)
	assert.Equal(t, "r1", detail.RoomID)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.student_id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByStudent(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocationRepositoryListDetailed(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAllocationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY r.block ASC, r.room_number ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "room_id", "allocated_at", "firstname", "lastname", "matric_number", "block", "room_number", "capacity"}).
			AddRow("a1", "s1", "r1", time.Now(), "Ada", "Obi", "M001", "A", "101", 2).
			AddRow("a2", "s2", "r2", time.Now(), "Bola", "Ade", "M002", "B", "201", 4))

	details, err := repo.ListDetailed(context.Background())
	require.NoError(t, err)
	assert.Len(t, details, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
