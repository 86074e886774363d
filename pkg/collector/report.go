package collector

import (
	"sync"
	"time"
)

// UserSkip records one user excluded from a run and why.
type UserSkip struct {
	UserID string
	Reason string
}

// Report summarizes one batch run. Safe for concurrent updates from
// parallel user passes.
type Report struct {
	RunID    string
	Mode     Mode
	Started  time.Time
	Finished time.Time

	mu                  sync.Mutex
	usersProcessed      int
	usersSkipped        int
	activitiesProcessed int
	activitiesSkipped   int
	rowsWritten         int
	skips               []UserSkip
}

func newReport(runID string, mode Mode) *Report {
	return &Report{
		RunID:   runID,
		Mode:    mode,
		Started: time.Now(),
	}
}

func (r *Report) recordUser(stats UserStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.usersProcessed++
	r.activitiesProcessed += stats.Activities
	r.activitiesSkipped += stats.ActivitiesSkipped
	r.rowsWritten += stats.Rows
}

func (r *Report) recordSkip(userID string, reason error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.usersSkipped++
	r.skips = append(r.skips, UserSkip{UserID: userID, Reason: reason.Error()})
}

func (r *Report) finish() {
	r.Finished = time.Now()
}

func (r *Report) UsersProcessed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usersProcessed
}

func (r *Report) UsersSkipped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usersSkipped
}

func (r *Report) ActivitiesProcessed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activitiesProcessed
}

func (r *Report) ActivitiesSkipped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activitiesSkipped
}

func (r *Report) RowsWritten() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rowsWritten
}

// Skips returns the per-user skip records in arrival order.
func (r *Report) Skips() []UserSkip {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]UserSkip, len(r.skips))
	copy(out, r.skips)
	return out
}
