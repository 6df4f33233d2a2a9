package downloader

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// TaskGroup runs independent tasks with a cap on how many run at once.
// A failing task never cancels its siblings; Wait reports every task's
// error in submission order.
type TaskGroup struct {
	g    errgroup.Group
	mu   sync.Mutex
	errs []error
}

// NewTaskGroup returns a TaskGroup running at most limit tasks at a time.
// A non-positive limit means no cap.
func NewTaskGroup(limit int) *TaskGroup {
	tg := &TaskGroup{}
	if limit > 0 {
		tg.g.SetLimit(limit)
	}
	return tg
}

// Go schedules fn, blocking while the group is at its limit.
func (tg *TaskGroup) Go(fn func() error) {
	tg.mu.Lock()
	idx := len(tg.errs)
	tg.errs = append(tg.errs, nil)
	tg.mu.Unlock()

	tg.g.Go(func() error {
		err := fn()
		if err != nil {
			tg.mu.Lock()
			tg.errs[idx] = err
			tg.mu.Unlock()
		}
		// Siblings keep running regardless of this task's outcome.
		return nil
	})
}

// Wait blocks until every scheduled task has returned and yields one
// entry per task, nil for success.
func (tg *TaskGroup) Wait() []error {
	_ = tg.g.Wait()

	tg.mu.Lock()
	defer tg.mu.Unlock()
	out := make([]error, len(tg.errs))
	copy(out, tg.errs)
	return out
}
