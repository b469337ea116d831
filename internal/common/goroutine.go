package common

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"

	"github.com/ternarybob/arbor"
)

// TaskStats counts background tasks launched through SafeGo.
type TaskStats struct {
	Started  int64 `json:"started"`
	Running  int64 `json:"running"`
	Panicked int64 `json:"panicked"`
}

var (
	tasksStarted  atomic.Int64
	tasksRunning  atomic.Int64
	tasksPanicked atomic.Int64
)

// BackgroundTaskStats returns a snapshot of the SafeGo counters
func BackgroundTaskStats() TaskStats {
	return TaskStats{
		Started:  tasksStarted.Load(),
		Running:  tasksRunning.Load(),
		Panicked: tasksPanicked.Load(),
	}
}

// SafeGo runs fn on its own goroutine and returns immediately. A panic in fn
// is recovered and logged under name; it never reaches the caller or the process.
//
//	common.SafeGo(logger, "generate-report-"+id, func() {
//	    service.Generate(context.Background(), id, ticker)
//	})
func SafeGo(logger arbor.ILogger, name string, fn func()) {
	tasksStarted.Add(1)
	tasksRunning.Add(1)

	go func() {
		defer tasksRunning.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				tasksPanicked.Add(1)
				logTaskPanic(logger, name, r)
			}
		}()

		fn()
	}()
}

func logTaskPanic(logger arbor.ILogger, name string, r interface{}) {
	stack := string(debug.Stack())
	if logger == nil {
		fmt.Fprintf(os.Stderr, "panic in background task %s: %v\n%s\n", name, r, stack)
		return
	}
	logger.Error().
		Str("task", name).
		Str("panic", fmt.Sprintf("%v", r)).
		Str("stack", stack).
		Msg("Background task panicked")
}
