// Package record defines the value types shared by every layer of
// queuesim: timestamps, queue identifiers, job records, and the VM
// lifecycle commands the scheduler emits.
package record

import (
	"fmt"
	"time"
)

// Queue is one of the three fixed workload classes. There is no
// cross-queue sharing of VMs.
type Queue string

const (
	QueueExport  Queue = "export"
	QueueURL     Queue = "url"
	QueueGeneral Queue = "general"
)

// Queues lists every valid queue identifier, in a fixed order used for
// warm-up and shutdown so output is deterministic.
var Queues = []Queue{QueueExport, QueueURL, QueueGeneral}

// Valid reports whether q is one of the fixed queue identifiers.
func (q Queue) Valid() bool {
	switch q {
	case QueueExport, QueueURL, QueueGeneral:
		return true
	default:
		return false
	}
}

// Timestamp is an absolute point in time with second resolution,
// derived from a "YYYY-MM-DD HH:MM:SS" pair. Arithmetic is done in
// seconds; the underlying representation is a plain time.Time in UTC
// so that duration math never has to account for a location.
type Timestamp struct {
	t time.Time
}

const timeLayout = "2006-01-02 15:04:05"

// ParseTimestamp parses a "YYYY-MM-DD" date and "HH:MM:SS" time pair.
func ParseTimestamp(date, clock string) (Timestamp, error) {
	t, err := time.Parse(timeLayout, date+" "+clock)
	if err != nil {
		return Timestamp{}, fmt.Errorf("parse timestamp %q %q: %w", date, clock, err)
	}
	return Timestamp{t: t.UTC()}, nil
}

// Add returns t advanced by d seconds (may be fractional, may be negative).
func (t Timestamp) Add(d float64) Timestamp {
	return Timestamp{t: t.t.Add(time.Duration(d * float64(time.Second)))}
}

// AddSeconds returns t advanced by n whole seconds.
func (t Timestamp) AddSeconds(n int) Timestamp {
	return Timestamp{t: t.t.Add(time.Duration(n) * time.Second)}
}

// Sub returns t-u in seconds.
func (t Timestamp) Sub(u Timestamp) float64 {
	return t.t.Sub(u.t).Seconds()
}

// Before reports whether t is strictly before u.
func (t Timestamp) Before(u Timestamp) bool { return t.t.Before(u.t) }

// After reports whether t is strictly after u.
func (t Timestamp) After(u Timestamp) bool { return t.t.After(u.t) }

// Max returns the later of t and u.
func Max(t, u Timestamp) Timestamp {
	if u.After(t) {
		return u
	}
	return t
}

// Date returns the "YYYY-MM-DD" component.
func (t Timestamp) Date() string { return t.t.Format("2006-01-02") }

// Clock returns the "HH:MM:SS" component.
func (t Timestamp) Clock() string { return t.t.Format("15:04:05") }

func (t Timestamp) String() string { return t.Date() + " " + t.Clock() }

// IsZero reports whether t is the zero Timestamp.
func (t Timestamp) IsZero() bool { return t.t.IsZero() }

// Job is an arriving unit of work. It is immutable after construction
// except for StartTime, which Place sets exactly once.
type Job struct {
	UID           string
	Queue         Queue
	Arrival       Timestamp
	LengthSeconds float64
	// LengthRaw is the exact token the length field was parsed from,
	// preserved so the job echoes byte-for-byte identical to its input
	// line (spec section 8's round-trip property) regardless of how
	// float64 would otherwise reformat it.
	LengthRaw string
	startTime Timestamp
	placed    bool
}

// NewJob constructs a Job from its wire fields.
func NewJob(uid string, queue Queue, arrival Timestamp, lengthSeconds float64, lengthRaw string) *Job {
	return &Job{UID: uid, Queue: queue, Arrival: arrival, LengthSeconds: lengthSeconds, LengthRaw: lengthRaw}
}

// Place sets the job's start time. It fails if called twice, sealing
// the job against accidental re-assignment.
func (j *Job) Place(at Timestamp) error {
	if j.placed {
		return fmt.Errorf("job %s: already placed at %s", j.UID, j.startTime)
	}
	j.startTime = at
	j.placed = true
	return nil
}

// Placed reports whether Place has been called.
func (j *Job) Placed() bool { return j.placed }

// StartTime returns the timestamp set by Place. Call only if Placed().
func (j *Job) StartTime() Timestamp { return j.startTime }

// CompletionTime returns StartTime + LengthSeconds. Call only if Placed().
func (j *Job) CompletionTime() Timestamp { return j.startTime.Add(j.LengthSeconds) }

// CommandKind distinguishes VM lifecycle commands.
type CommandKind string

const (
	CommandLaunch    CommandKind = "launch"
	CommandTerminate CommandKind = "terminate"
)

// Command is a VM lifecycle event: a launch or a terminate, timestamped
// and addressed to a queue.
type Command struct {
	Kind  CommandKind
	At    Timestamp
	Queue Queue
}
