package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/runoshun/git-relay/internal/domain"
)

const watchLogCategory = "watcher"

// TaskEventSource produces actionable task events until its context is canceled.
type TaskEventSource interface {
	Run(ctx context.Context) error
	Events() <-chan domain.TaskEvent
}

// TaskProcessor processes one dispatched task.
type TaskProcessor interface {
	Execute(ctx context.Context, in ProcessTaskInput) (*ProcessTaskOutput, error)
}

// WatchTasksOutput summarizes a watch session.
type WatchTasksOutput struct {
	Processed int // Tasks that reached a terminal status
	Refused   int // Events whose task could not be processed
}

// WatchTasks dispatches every actionable task to the processor.
// Each task runs in its own goroutine so that a task waiting for a human
// decision does not hold up discovery or processing of other tasks.
type WatchTasks struct {
	source    TaskEventSource
	processor TaskProcessor
	logger    domain.Logger
}

// NewWatchTasks creates a new WatchTasks use case.
func NewWatchTasks(source TaskEventSource, processor TaskProcessor, logger domain.Logger) *WatchTasks {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &WatchTasks{
		source:    source,
		processor: processor,
		logger:    logger,
	}
}

// Execute watches until ctx is canceled and all in-flight tasks have finished.
// Cancellation is a normal shutdown and is not returned as an error.
func (uc *WatchTasks) Execute(ctx context.Context) (*WatchTasksOutput, error) {
	runErr := make(chan error, 1)
	go func() {
		runErr <- uc.source.Run(ctx)
	}()

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out WatchTasksOutput
	)
	for ev := range uc.source.Events() {
		wg.Add(1)
		go func(ev domain.TaskEvent) {
			defer wg.Done()
			res, err := uc.processor.Execute(ctx, ProcessTaskInput{Path: ev.Path})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Refused++
				uc.logger.Warn(ev.TaskID, watchLogCategory, fmt.Sprintf("not processed: %v", err))
				return
			}
			out.Processed++
			uc.logger.Debug(res.Task.ID, watchLogCategory, "pass finished with "+string(res.Task.Status))
		}(ev)
	}
	wg.Wait()

	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return &out, fmt.Errorf("watch tasks: %w", err)
	}
	return &out, nil
}
