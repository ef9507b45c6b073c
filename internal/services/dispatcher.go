package services

import (
	"fmt"
	"sync"

	"gym_club_backend/pkg/utils"
)

// Dispatcher runs side effects after the primary write has been persisted.
// A failing task is logged and never reported back to the caller.
type Dispatcher struct {
	wg  sync.WaitGroup
	sem chan struct{}
}

// NewDispatcher caps the number of tasks running at once.
func NewDispatcher(concurrency int) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Dispatcher{sem: make(chan struct{}, concurrency)}
}

// Go queues fn. name identifies the task in logs.
func (d *Dispatcher) Go(name string, fn func() error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.sem <- struct{}{}
		defer func() { <-d.sem }()
		defer func() {
			if r := recover(); r != nil {
				utils.LogError(fmt.Errorf("task %s: panic: %v", name, r), "background task panicked")
			}
		}()

		if err := fn(); err != nil {
			utils.LogWarn(err, "background task failed", map[string]interface{}{"task": name})
		}
	}()
}

// Wait blocks until every queued task has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
