package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/hostel-allocation-api/internal/models"
)

// RoomRepository reads rooms and their current occupants.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns every room ordered by block then room number.
func (r *RoomRepository) List(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, block, room_number, capacity FROM rooms ORDER BY block ASC, room_number ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ListOccupants returns the students currently allocated to any room.
func (r *RoomRepository) ListOccupants(ctx context.Context) ([]models.Occupant, error) {
	const query = `SELECT a.room_id, s.id AS student_id, s.firstname, s.lastname, s.matric_number, s.level
FROM allocations a JOIN students s ON s.id = a.student_id
ORDER BY a.allocated_at ASC`
	var occupants []models.Occupant
	if err := r.db.SelectContext(ctx, &occupants, query); err != nil {
		return nil, fmt.Errorf("list room occupants: %w", err)
	}
	return occupants, nil
}

// ListOccupancy returns rooms with their allocation counts.
func (r *RoomRepository) ListOccupancy(ctx context.Context) ([]models.RoomOccupancy, error) {
	const query = `SELECT r.id, r.block, r.room_number, r.capacity, COUNT(a.id) AS allocated
FROM rooms r LEFT JOIN allocations a ON a.room_id = r.id
GROUP BY r.id, r.block, r.room_number, r.capacity
ORDER BY r.block ASC, r.room_number ASC`
	var rooms []models.RoomOccupancy
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list room occupancy: %w", err)
	}
	return rooms, nil
}
