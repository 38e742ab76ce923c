package models

// Cohort names.
const (
	CohortFreshmen  = "freshmen"
	CohortFinalists = "finalists"
	CohortReturning = "returning"
)

// Cohort binds an academic level band to the blocks its students may be placed in.
// MaxLevel zero means unbounded.
type Cohort struct {
	Name     string
	MinLevel int
	MaxLevel int
	Blocks   []string
}

// Contains reports whether level falls inside the band.
func (c Cohort) Contains(level int) bool {
	if level < c.MinLevel {
		return false
	}
	return c.MaxLevel == 0 || level <= c.MaxLevel
}

// CohortPolicy is the ordered list of cohorts; cohorts are processed in this order.
type CohortPolicy []Cohort

// DefaultCohortPolicy is the hostel's fixed level-to-block binding.
func DefaultCohortPolicy() CohortPolicy {
	return CohortPolicy{
		{Name: CohortFreshmen, MinLevel: 100, MaxLevel: 100, Blocks: []string{"A"}},
		{Name: CohortFinalists, MinLevel: 400, Blocks: []string{"D"}},
		{Name: CohortReturning, MinLevel: 101, MaxLevel: 399, Blocks: []string{"B", "C"}},
	}
}
