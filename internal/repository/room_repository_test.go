package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, block, room_number, capacity FROM rooms ORDER BY block ASC, room_number ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "block", "room_number", "capacity"}).
			AddRow("r1", "A", "101", 2).
			AddRow("r2", "B", "201", 4))

	rooms, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "A-101", rooms[0].Key())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryListOccupants(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.room_id, s.id AS student_id")).
		WillReturnRows(sqlmock.NewRows([]string{"room_id", "student_id", "firstname", "lastname", "matric_number", "level"}).
			AddRow("r1", "s9", "Old", "Timer", "M009", 300))

	occupants, err := repo.ListOccupants(context.Background())
	require.NoError(t, err)
	require.Len(t, occupants, 1)
	assert.Equal(t, 300, occupants[0].AsStudent().Level)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryListOccupancyError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT r.id, r.block, r.room_number, r.capacity, COUNT(a.id) AS allocated")).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.ListOccupancy(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list room occupancy")
	assert.NoError(t, mock.ExpectationsWereMet())
}
