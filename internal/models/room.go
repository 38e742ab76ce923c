package models

// Room is a dormitory room row.
type Room struct {
	ID         string `db:"id" json:"id"`
	Block      string `db:"block" json:"block"`
	RoomNumber string `db:"room_number" json:"roomNumber"`
	Capacity   int    `db:"capacity" json:"capacity"`
}

// Key identifies a room by its human-facing coordinates.
func (r Room) Key() string {
	return RoomKey(r.Block, r.RoomNumber)
}

// RoomKey builds the block/room-number lookup key.
func RoomKey(block, roomNumber string) string {
	return block + "-" + roomNumber
}

// RoomOccupancy is a room together with its current allocation count.
type RoomOccupancy struct {
	Room
	Allocated int `db:"allocated" json:"allocated"`
}

// RoomState is a room with its mutable occupant list during one solver run.
type RoomState struct {
	ID         string `validate:"required"`
	Block      string `validate:"required"`
	RoomNumber string `validate:"required"`
	Capacity   int    `validate:"gte=0"`
	Occupants  []EligibleStudent
}

// HasSpace reports whether another occupant fits.
func (r *RoomState) HasSpace() bool {
	return len(r.Occupants) < r.Capacity
}

// Add appends an occupant.
func (r *RoomState) Add(s EligibleStudent) {
	r.Occupants = append(r.Occupants, s)
}

// Occupant is a student already placed in a room, as read from storage.
type Occupant struct {
	RoomID    string `db:"room_id"`
	StudentID string `db:"student_id"`
	FirstName string `db:"firstname"`
	LastName  string `db:"lastname"`
	Matric    string `db:"matric_number"`
	Level     int    `db:"level"`
}

// AsStudent converts the occupant row into the solver's student shape.
func (o Occupant) AsStudent() EligibleStudent {
	return EligibleStudent{
		ID:           o.StudentID,
		FirstName:    o.FirstName,
		LastName:     o.LastName,
		MatricNumber: o.Matric,
		Level:        o.Level,
	}
}
