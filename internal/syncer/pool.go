package syncer

import "sync"

// FanOut runs independent tasks on a fixed-size worker pool and joins
// them with all-settle semantics: every task runs to completion and a
// failing task never cancels the others.
type FanOut struct {
	workers int
}

// NewFanOut creates a fan-out with the given worker count.
func NewFanOut(workers int) *FanOut {
	if workers <= 0 {
		workers = 1
	}
	return &FanOut{workers: workers}
}

// Run executes all tasks and returns one error slot per task, in task
// order. It blocks until every task has settled.
func (f *FanOut) Run(tasks []func() error) []error {
	if len(tasks) == 0 {
		return nil
	}

	errs := make([]error, len(tasks))
	indexes := make(chan int)

	var wg sync.WaitGroup
	workers := f.workers
	if workers > len(tasks) {
		workers = len(tasks)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				errs[i] = tasks[i]()
			}
		}()
	}

	for i := range tasks {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return errs
}
