// Package driver wires the reader, scheduler, and emitter together:
// pull a job, schedule it, echo it, repeat, and retire everything at
// end-of-stream. It is the only place that advances logical time.
package driver

import (
	"errors"
	"io"

	"github.com/trace-sched/queuesim/internal/emitter"
	"github.com/trace-sched/queuesim/internal/reader"
	"github.com/trace-sched/queuesim/internal/record"
	"github.com/trace-sched/queuesim/internal/scheduler"
)

// Scheduler is the subset of scheduler.Manager the driver depends on,
// so tests can supply a stub.
type Scheduler interface {
	Schedule(job *record.Job) error
	Shutdown(at record.Timestamp) error
}

var _ Scheduler = (*scheduler.Manager)(nil)

// Run reads jobs from r until EOF, scheduling and echoing each one,
// then shuts the scheduler down at the last seen timestamp. It returns
// the first error encountered (parse, unknown queue, placement
// failure, or a write error from em), leaving em unflushed so the
// caller can still flush/close whatever it owns.
func Run(r *reader.Reader, sched Scheduler, em *emitter.Emitter) error {
	var last record.Timestamp
	seenAny := false

	for {
		job, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if err := sched.Schedule(job); err != nil {
			return err
		}
		if err := em.Job(job); err != nil {
			return err
		}

		last = job.Arrival
		seenAny = true
	}

	if seenAny {
		if err := sched.Shutdown(last); err != nil {
			return err
		}
	}
	return em.Flush()
}
