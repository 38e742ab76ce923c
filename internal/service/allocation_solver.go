package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-allocation-api/internal/models"
	appErrors "github.com/noah-isme/hostel-allocation-api/pkg/errors"
)

// Room scoring weights.
const (
	scoreBase           = 100
	scorePreferredBlock = 20
	scorePerSameLevel   = 10
	penaltyPerOccupant  = 5
)

type studentDirectory interface {
	ListEligible(ctx context.Context) ([]models.EligibleStudent, error)
	ListDisplayByIDs(ctx context.Context, ids []string) ([]models.StudentDisplay, error)
}

type roomDirectory interface {
	List(ctx context.Context) ([]models.Room, error)
	ListOccupants(ctx context.Context) ([]models.Occupant, error)
}

// Snapshot is the per-run view of eligible students and rooms.
type Snapshot struct {
	Students []models.EligibleStudent
	Rooms    []*models.RoomState
}

// EligibilityFetcher loads and validates the solver inputs.
type EligibilityFetcher struct {
	students  studentDirectory
	rooms     roomDirectory
	validator *validator.Validate
}

// NewEligibilityFetcher constructs a fetcher.
func NewEligibilityFetcher(students studentDirectory, rooms roomDirectory, validate *validator.Validate) *EligibilityFetcher {
	if validate == nil {
		validate = validator.New()
	}
	return &EligibilityFetcher{students: students, rooms: rooms, validator: validate}
}

// Fetch returns eligible students in fetch order and every room with its current occupants.
// It fails with ErrNoEligibleStudents before touching rooms when nobody is eligible.
func (f *EligibilityFetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	students, err := f.students.ListEligible(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load eligible students")
	}
	if len(students) == 0 {
		return nil, appErrors.ErrNoEligibleStudents
	}
	for i := range students {
		if err := f.validator.Struct(students[i]); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("invalid student record %q", students[i].ID))
		}
	}

	rooms, err := f.rooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	occupants, err := f.rooms.ListOccupants(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room occupants")
	}
	byRoom := lo.GroupBy(occupants, func(o models.Occupant) string { return o.RoomID })

	states := make([]*models.RoomState, 0, len(rooms))
	for _, room := range rooms {
		state := &models.RoomState{
			ID:         room.ID,
			Block:      room.Block,
			RoomNumber: room.RoomNumber,
			Capacity:   room.Capacity,
			Occupants:  lo.Map(byRoom[room.ID], func(o models.Occupant, _ int) models.EligibleStudent { return o.AsStudent() }),
		}
		if err := f.validator.Struct(state); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("invalid room record %q", room.ID))
		}
		states = append(states, state)
	}

	return &Snapshot{Students: students, Rooms: states}, nil
}

// CohortGroup is a cohort and the students that fall in it, in fetch order.
type CohortGroup struct {
	Cohort   models.Cohort
	Students []models.EligibleStudent
}

// Categorize splits students by the first cohort whose level band contains them.
// Students matched by no cohort are returned separately.
func Categorize(students []models.EligibleStudent, policy models.CohortPolicy) ([]CohortGroup, []models.EligibleStudent) {
	groups := lo.Map(policy, func(c models.Cohort, _ int) CohortGroup { return CohortGroup{Cohort: c} })
	var unmatched []models.EligibleStudent
	for _, student := range students {
		_, idx, found := lo.FindIndexOf(policy, func(c models.Cohort) bool { return c.Contains(student.Level) })
		if !found {
			unmatched = append(unmatched, student)
			continue
		}
		groups[idx].Students = append(groups[idx].Students, student)
	}
	return groups, unmatched
}

// CandidateRooms returns rooms with space in the given blocks, block by block in list order.
func CandidateRooms(rooms []*models.RoomState, blocks []string) []*models.RoomState {
	return lo.FlatMap(blocks, func(block string, _ int) []*models.RoomState {
		return lo.Filter(rooms, func(r *models.RoomState, _ int) bool {
			return r.Block == block && r.HasSpace()
		})
	})
}

// ScoreRoom rates a room for a student against its current occupants.
func ScoreRoom(room *models.RoomState, student models.EligibleStudent) int {
	score := scoreBase
	if student.Prefers(room.Block) {
		score += scorePreferredBlock
	}
	sameLevel := lo.CountBy(room.Occupants, func(o models.EligibleStudent) bool { return o.Level == student.Level })
	score += scorePerSameLevel * sameLevel
	score -= penaltyPerOccupant * len(room.Occupants)
	return score
}

// BestRoom picks the first room with the strictly highest score among rooms that still have space.
// Any room with space qualifies, however low its score.
func BestRoom(rooms []*models.RoomState, student models.EligibleStudent) *models.RoomState {
	var (
		best      *models.RoomState
		bestScore int
	)
	for _, room := range rooms {
		if !room.HasSpace() {
			continue
		}
		if score := ScoreRoom(room, student); best == nil || score > bestScore {
			best, bestScore = room, score
		}
	}
	return best
}

type placement struct {
	student models.EligibleStudent
	room    *models.RoomState
}

// matchCohort places students in order, mutating room occupancy as it goes.
func matchCohort(students []models.EligibleStudent, candidates []*models.RoomState) ([]placement, []models.Conflict) {
	if len(students) == 0 {
		return nil, nil
	}
	if len(candidates) == 0 {
		return nil, lo.Map(students, func(s models.EligibleStudent, _ int) models.Conflict {
			return models.Conflict{StudentID: s.ID, StudentName: s.Name(), Issue: models.IssueNoRoomsInBlocks}
		})
	}

	var (
		placed    []placement
		conflicts []models.Conflict
	)
	for _, student := range students {
		room := BestRoom(candidates, student)
		if room == nil {
			conflicts = append(conflicts, models.Conflict{StudentID: student.ID, StudentName: student.Name(), Issue: models.IssueNoSuitableRoom})
			continue
		}
		room.Add(student)
		placed = append(placed, placement{student: student, room: room})
	}
	return placed, conflicts
}

// AllocationSolver runs one full pass of the allocation heuristic.
type AllocationSolver struct {
	fetcher  *EligibilityFetcher
	students studentDirectory
	policy   models.CohortPolicy
	logger   *zap.Logger
	now      func() time.Time
}

// NewAllocationSolver constructs a solver. A nil or empty policy falls back to DefaultCohortPolicy.
func NewAllocationSolver(fetcher *EligibilityFetcher, students studentDirectory, policy models.CohortPolicy, logger *zap.Logger) *AllocationSolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(policy) == 0 {
		policy = models.DefaultCohortPolicy()
	}
	return &AllocationSolver{fetcher: fetcher, students: students, policy: policy, logger: logger, now: time.Now}
}

// Solve fetches inputs, matches every cohort against its blocks and builds the result.
// Nothing is persisted here.
func (s *AllocationSolver) Solve(ctx context.Context, runID string) (*models.AllocationResult, error) {
	snapshot, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	groups, unmatched := Categorize(snapshot.Students, s.policy)

	var (
		placed    []placement
		conflicts []models.Conflict
		errs      []string
	)
	for _, student := range unmatched {
		errs = append(errs, fmt.Sprintf("No cohort covers level %d (student %s).", student.Level, student.ID))
	}

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidates := CandidateRooms(snapshot.Rooms, group.Cohort.Blocks)
		p, c := matchCohort(group.Students, candidates)
		s.logger.Debug("cohort matched",
			zap.String("run_id", runID),
			zap.String("cohort", group.Cohort.Name),
			zap.Int("students", len(group.Students)),
			zap.Int("candidate_rooms", len(candidates)),
			zap.Int("placed", len(p)),
			zap.Int("conflicts", len(c)),
		)
		placed = append(placed, p...)
		conflicts = append(conflicts, c...)
	}

	views, err := s.buildViews(ctx, placed)
	if err != nil {
		return nil, err
	}

	total := len(snapshot.Students)
	status := models.ResultCompleted
	if len(conflicts) > 0 || len(errs) > 0 {
		status = models.ResultPartial
	}

	return &models.AllocationResult{
		ID:                  runID,
		Timestamp:           s.now().UTC(),
		Status:              status,
		StudentsAllocated:   len(placed),
		StudentsUnallocated: len(conflicts) + (total - len(placed) - len(conflicts)),
		TotalStudents:       total,
		Errors:              lo.Ternary(errs == nil, []string{}, errs),
		Conflicts:           lo.Ternary(conflicts == nil, []models.Conflict{}, conflicts),
		Allocations:         views,
	}, nil
}

// buildViews re-reads display fields for placed students, keeping placement order.
func (s *AllocationSolver) buildViews(ctx context.Context, placed []placement) ([]models.AllocationView, error) {
	views := make([]models.AllocationView, 0, len(placed))
	if len(placed) == 0 {
		return views, nil
	}

	ids := lo.Map(placed, func(p placement, _ int) string { return p.student.ID })
	display, err := s.students.ListDisplayByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocated students")
	}
	byID := lo.KeyBy(display, func(d models.StudentDisplay) string { return d.ID })

	for _, p := range placed {
		name, matric := p.student.Name(), p.student.MatricNumber
		if d, ok := byID[p.student.ID]; ok {
			name, matric = d.Name(), d.MatricNumber
		}
		views = append(views, models.AllocationView{
			StudentID:    p.student.ID,
			StudentName:  name,
			MatricNumber: matric,
			Block:        p.room.Block,
			RoomNumber:   p.room.RoomNumber,
		})
	}
	return views, nil
}
