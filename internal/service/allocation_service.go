package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/hostel-allocation-api/internal/dto"
	"github.com/noah-isme/hostel-allocation-api/internal/models"
	"github.com/noah-isme/hostel-allocation-api/pkg/database"
	appErrors "github.com/noah-isme/hostel-allocation-api/pkg/errors"
	"github.com/noah-isme/hostel-allocation-api/pkg/jobs"
	"github.com/noah-isme/hostel-allocation-api/pkg/logger"
)

// Cache keys.
const (
	cacheKeyPreCheck   = "allocation:precheck"
	cacheKeyLastResult = "allocation:last_result"
)

const jobTypeAllocation = "allocation.run"

type allocationSolver interface {
	Solve(ctx context.Context, runID string) (*models.AllocationResult, error)
}

type eligibilityCounter interface {
	CountEligible(ctx context.Context) (int, error)
}

type roomCatalog interface {
	List(ctx context.Context) ([]models.Room, error)
	ListOccupancy(ctx context.Context) ([]models.RoomOccupancy, error)
}

type allocationStore interface {
	CreateBatch(ctx context.Context, exec sqlx.ExtContext, assignments []models.Assignment) (int, error)
	FindByStudent(ctx context.Context, studentID string) (*models.AllocationDetail, error)
	ListDetailed(ctx context.Context) ([]models.AllocationDetail, error)
}

type allocationNotifier interface {
	NotifyAllocated(ctx context.Context, allocations []models.AllocationView) error
}

// AllocationServiceConfig tunes the run controller.
type AllocationServiceConfig struct {
	// RunTimeout bounds a background run. Zero means no deadline.
	RunTimeout     time.Duration
	PreCheckTTL    time.Duration
	ResultCacheTTL time.Duration
	Notify         bool
}

// AllocationServiceParams groups constructor dependencies.
type AllocationServiceParams struct {
	DB          database.TxBeginner
	Solver      allocationSolver
	Students    eligibilityCounter
	Rooms       roomCatalog
	Allocations allocationStore
	Notifier    allocationNotifier
	Cache       *CacheService
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
	Config      AllocationServiceConfig
}

// AllocationService drives allocation runs one at a time and answers allocation queries.
type AllocationService struct {
	db          database.TxBeginner
	solver      allocationSolver
	students    eligibilityCounter
	rooms       roomCatalog
	allocations allocationStore
	notifier    allocationNotifier
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         AllocationServiceConfig

	state *runState
	queue *jobs.Queue
	now   func() time.Time
}

// NewAllocationService constructs the service and its single-worker run queue.
func NewAllocationService(params AllocationServiceParams) *AllocationService {
	cfg := params.Config
	if cfg.PreCheckTTL <= 0 {
		cfg.PreCheckTTL = time.Minute
	}
	if cfg.ResultCacheTTL <= 0 {
		cfg.ResultCacheTTL = 24 * time.Hour
	}
	log := params.Logger
	if log == nil {
		log = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	s := &AllocationService{
		db:          params.DB,
		solver:      params.Solver,
		students:    params.Students,
		rooms:       params.Rooms,
		allocations: params.Allocations,
		notifier:    params.Notifier,
		cache:       params.Cache,
		metrics:     params.Metrics,
		validator:   validate,
		logger:      log,
		cfg:         cfg,
		state:       newRunState(),
		now:         time.Now,
	}
	s.queue = jobs.NewQueue("allocation", s.runJob, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 1,
		Timeout:    cfg.RunTimeout,
		Logger:     log,
	})
	return s
}

// StartWorker launches the background run worker.
func (s *AllocationService) StartWorker(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop cancels any in-flight run and stops the worker.
func (s *AllocationService) Stop() {
	s.queue.Stop()
}

// Status returns a snapshot of the current run status.
func (s *AllocationService) Status() models.AllocationStatus {
	return s.state.snapshot()
}

// StartAllocation flips the status to running and submits the run in the background.
func (s *AllocationService) StartAllocation(ctx context.Context, req dto.StartAllocationRequest) (*dto.StartAllocationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start payload")
	}
	now := s.now().UTC()
	if !s.state.tryStart(now) {
		return nil, appErrors.ErrAllocationRunning
	}

	runID := req.RunID
	if runID == "" {
		runID = fmt.Sprintf("alloc-%d", now.UnixMilli())
	}

	handle, err := s.queue.Enqueue(jobs.Job{ID: runID, Type: jobTypeAllocation, Enqueued: now})
	if err != nil {
		s.finishFailed(ctx, runID, now, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit allocation run")
	}
	s.state.attach(handle)

	s.logger.Info("allocation run started", zap.String("run_id", runID))
	return &dto.StartAllocationResponse{Message: "Allocation process started successfully.", RunID: runID}, nil
}

// Wait blocks until the in-flight run, if any, has finished and returns its error.
func (s *AllocationService) Wait(ctx context.Context) error {
	h := s.state.current()
	if h == nil {
		return nil
	}
	return h.Wait(ctx)
}

// Cancel aborts the in-flight run. It reports whether there was one.
func (s *AllocationService) Cancel() bool {
	h := s.state.current()
	if h == nil {
		return false
	}
	select {
	case <-h.Done():
		return false
	default:
	}
	h.Cancel()
	return true
}

// LastResult returns the most recent run result, falling back to the cached mirror after a restart.
func (s *AllocationService) LastResult(ctx context.Context) (*models.AllocationResult, error) {
	if result := s.state.lastResult(); result != nil {
		return result, nil
	}
	var cached models.AllocationResult
	if hit, err := s.cache.Get(ctx, cacheKeyLastResult, &cached); err == nil && hit {
		return &cached, nil
	}
	return nil, appErrors.ErrNoResults
}

func (s *AllocationService) runJob(ctx context.Context, job jobs.Job) (err error) {
	log := logger.ForRun(s.logger, job.ID)
	started := s.now()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("allocation run panicked: %v", p)
		}
		if err != nil {
			log.Error("allocation run failed", zap.Error(err))
			s.finishFailed(ctx, job.ID, started, err)
		}
	}()

	s.state.advance(models.ProgressFetching, models.StepFetching)
	result, err := s.solver.Solve(ctx, job.ID)
	if err != nil {
		return err
	}

	s.state.advance(models.ProgressSaving, models.StepSaving)
	if err := s.persist(ctx, log, result); err != nil {
		return err
	}

	s.state.complete(result)
	log.Info("allocation run completed",
		zap.String("status", string(result.Status)),
		zap.Int("allocated", result.StudentsAllocated),
		zap.Int("unallocated", result.StudentsUnallocated),
		zap.Int("total", result.TotalStudents),
	)
	s.afterRun(ctx, result, s.now().Sub(started))
	s.notify(ctx, log, result)
	return nil
}

func (s *AllocationService) finishFailed(ctx context.Context, runID string, started time.Time, cause error) {
	now := s.now().UTC()
	failed := models.FailedResult(fmt.Sprintf("alloc-fail-%d", now.UnixMilli()), now, failureMessage(cause))
	s.state.fail(failed, failureMessage(cause))
	s.afterRun(ctx, failed, now.Sub(started))
	s.logger.Warn("allocation run recorded as failed", zap.String("run_id", runID), zap.String("result_id", failed.ID))
}

func failureMessage(err error) string {
	if err == nil {
		return "An unknown error occurred."
	}
	return err.Error()
}

// persist maps solved rooms back to ids and writes every assignment in one transaction.
// A room that disappeared aborts the whole batch.
func (s *AllocationService) persist(ctx context.Context, log *zap.Logger, result *models.AllocationResult) error {
	if len(result.Allocations) == 0 {
		return nil
	}

	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	roomIDs := lo.SliceToMap(rooms, func(r models.Room) (string, string) { return r.Key(), r.ID })

	assignments := make([]models.Assignment, 0, len(result.Allocations))
	for _, view := range result.Allocations {
		roomID, ok := roomIDs[models.RoomKey(view.Block, view.RoomNumber)]
		if !ok {
			return appErrors.Clone(appErrors.ErrRoomNotFound, fmt.Sprintf("Room not found: %s %s", view.Block, view.RoomNumber))
		}
		assignments = append(assignments, models.Assignment{StudentID: view.StudentID, RoomID: roomID})
	}

	start := time.Now()
	var inserted int
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		n, err := s.allocations.CreateBatch(ctx, tx, assignments)
		inserted = n
		return err
	})
	s.metrics.ObserveDBQuery("allocations_batch_insert", time.Since(start))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save allocations")
	}
	if skipped := len(assignments) - inserted; skipped > 0 {
		log.Info("skipped students allocated since fetch", zap.Int("skipped", skipped))
	}
	return nil
}

// afterRun runs once per finished run. The run context may already be cancelled.
func (s *AllocationService) afterRun(ctx context.Context, result *models.AllocationResult, took time.Duration) {
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	_ = s.cache.Invalidate(bg, cacheKeyPreCheck)
	_ = s.cache.Set(bg, cacheKeyLastResult, result, s.cfg.ResultCacheTTL)
	s.metrics.ObserveAllocationRun(string(result.Status), took, result.StudentsAllocated, result.StudentsUnallocated)
}

func (s *AllocationService) notify(ctx context.Context, log *zap.Logger, result *models.AllocationResult) {
	if !s.cfg.Notify || s.notifier == nil || len(result.Allocations) == 0 {
		return
	}
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := s.notifier.NotifyAllocated(bg, result.Allocations); err != nil {
		log.Warn("failed to notify allocated students", zap.Error(err))
	}
}

// PreCheck summarises eligible students against free beds and reports whether it came from cache.
func (s *AllocationService) PreCheck(ctx context.Context) (*dto.PreCheckResponse, bool, error) {
	var cached dto.PreCheckResponse
	if hit, err := s.cache.Get(ctx, cacheKeyPreCheck, &cached); err == nil && hit {
		return &cached, true, nil
	}

	approved, err := s.students.CountEligible(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count eligible students")
	}
	rooms, err := s.rooms.ListOccupancy(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room occupancy")
	}

	summary := BuildPreCheck(approved, rooms)
	_ = s.cache.Set(ctx, cacheKeyPreCheck, summary, s.cfg.PreCheckTTL)
	return summary, false, nil
}

// BuildPreCheck computes the pre-check summary. The total sums raw free space per room while
// block figures clamp each room at zero.
func BuildPreCheck(approved int, rooms []models.RoomOccupancy) *dto.PreCheckResponse {
	available := lo.SumBy(rooms, func(r models.RoomOccupancy) int { return r.Capacity - r.Allocated })

	blocks := make([]dto.BlockAvailability, 0)
	index := make(map[string]int)
	for _, room := range rooms {
		free := max(0, room.Capacity-room.Allocated)
		if i, ok := index[room.Block]; ok {
			blocks[i].AvailableSpaces += free
			continue
		}
		index[room.Block] = len(blocks)
		blocks = append(blocks, dto.BlockAvailability{Block: room.Block, AvailableSpaces: free})
	}
	if available > 0 {
		for i := range blocks {
			share := float64(blocks[i].AvailableSpaces) / float64(available)
			blocks[i].EstimatedStudents = int(math.Round(float64(approved) * share))
		}
	}

	warnings := make([]string, 0)
	if approved > available {
		warnings = append(warnings, fmt.Sprintf("Not enough space: %d eligible students for %d available spaces.", approved, available))
	}
	if approved == 0 {
		warnings = append(warnings, "No eligible students found for allocation.")
	}
	if available == 0 {
		warnings = append(warnings, "No available hostel spaces found.")
	}

	return &dto.PreCheckResponse{
		ApprovedStudents:  approved,
		AvailableSpaces:   available,
		CanAllocateAll:    approved <= available,
		Warnings:          warnings,
		BlockAvailability: blocks,
	}
}

// StudentAllocation returns the caller's own room.
func (s *AllocationService) StudentAllocation(ctx context.Context, studentID string) (*dto.StudentAllocationResponse, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing student identity")
	}
	detail, err := s.allocations.FindByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrAllocationNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load allocation")
	}
	return &dto.StudentAllocationResponse{
		StudentID:    detail.StudentID,
		StudentName:  studentName(detail),
		MatricNumber: detail.MatricNumber,
		RoomID:       detail.RoomID,
		Block:        detail.Block,
		RoomNumber:   detail.RoomNumber,
		AllocatedAt:  detail.AllocatedAt,
	}, nil
}

// ListAllocations returns every persisted allocation with student and room fields.
func (s *AllocationService) ListAllocations(ctx context.Context) ([]dto.AllocationRecord, error) {
	details, err := s.allocations.ListDetailed(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list allocations")
	}
	records := lo.Map(details, func(d models.AllocationDetail, _ int) dto.AllocationRecord {
		var rec dto.AllocationRecord
		rec.ID = d.ID
		rec.AllocatedAt = d.AllocatedAt
		rec.Student.ID = d.StudentID
		rec.Student.Name = studentName(&d)
		rec.Student.MatricNumber = d.MatricNumber
		rec.Room.ID = d.RoomID
		rec.Room.Block = d.Block
		rec.Room.RoomNumber = d.RoomNumber
		rec.Room.Capacity = d.Capacity
		return rec
	})
	return records, nil
}

func studentName(d *models.AllocationDetail) string {
	return models.StudentDisplay{FirstName: d.FirstName, LastName: d.LastName}.Name()
}
