// Package vmpool implements the per-VM state machine and the ordered,
// per-queue pool of VMs that the scheduler places jobs onto and grows
// or shrinks in response to load.
package vmpool

import (
	"github.com/google/uuid"

	"github.com/trace-sched/queuesim/internal/record"
)

// State is a VM's position in its lifecycle.
type State int

const (
	// Booting: launched but not yet past its boot delay.
	Booting State = iota
	// Idle: boot-complete (or job finished) and holding no job.
	Idle
	// Running: executing an assigned job.
	Running
	// Retired: terminal state, removed from its pool.
	Retired
)

func (s State) String() string {
	switch s {
	case Booting:
		return "booting"
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Retired:
		return "retired"
	default:
		return "unknown"
	}
}

// VM is a simulated worker. Its queue is fixed at construction; its
// current job, if any, is resolved lazily on every query (see free_at
// in spec section 4.3) rather than through a separate completion
// event, since a per-job walk of the pool is cheap and a priority
// queue of completion times is unnecessary overhead for this design.
type VM struct {
	ID           uuid.UUID
	Queue        record.Queue
	CreationTime record.Timestamp
	bootSeconds  int

	state State
	job   *record.Job
}

// New constructs a VM in the Booting state.
func New(queue record.Queue, creationTime record.Timestamp, bootSeconds int) *VM {
	return &VM{
		ID:           uuid.New(),
		Queue:        queue,
		CreationTime: creationTime,
		bootSeconds:  bootSeconds,
		state:        Booting,
	}
}

// BootCompleteAt returns creation_time + BOOT_SECONDS.
func (v *VM) BootCompleteAt() record.Timestamp {
	return v.CreationTime.AddSeconds(v.bootSeconds)
}

// resolve advances Running -> Idle and Booting -> Idle as of t. It
// never mutates state in any other direction and is safe to call on
// every query.
func (v *VM) resolve(t record.Timestamp) {
	if v.state == Running {
		if !t.Before(v.job.CompletionTime()) {
			v.job = nil
			v.state = Idle
		}
	}
	if v.state == Booting && !t.Before(v.BootCompleteAt()) {
		v.state = Idle
	}
}

// FreeAt returns the earliest time >= t at which this VM can start a
// new job.
func (v *VM) FreeAt(t record.Timestamp) record.Timestamp {
	v.resolve(t)
	if v.state == Running {
		return v.job.CompletionTime()
	}
	return record.Max(t, v.BootCompleteAt())
}

// FreeNow reports whether the VM has no running job at t. With
// ignoreBoot false it additionally requires the VM to be boot-complete.
func (v *VM) FreeNow(t record.Timestamp, ignoreBoot bool) bool {
	v.resolve(t)
	if v.state == Running {
		return false
	}
	if ignoreBoot {
		return true
	}
	return !t.Before(v.BootCompleteAt())
}

// MinutesLeftInHour returns the whole minutes remaining in the VM's
// current billing hour, in [1, 60]. Computed in integer seconds to
// avoid floating-point drift in the modulus.
func (v *VM) MinutesLeftInHour(t record.Timestamp) int {
	elapsed := int(t.Sub(v.CreationTime))
	if elapsed < 0 {
		elapsed = 0
	}
	secondsIntoHour := elapsed % 3600
	minutesElapsed := secondsIntoHour / 60
	return 60 - minutesElapsed
}

// State returns the VM's current lifecycle state as of t, resolving
// any pending lazy transition first.
func (v *VM) State(t record.Timestamp) State {
	v.resolve(t)
	return v.state
}

// Assign attaches job to the VM, setting the job's start time to
// free_at(now) and transitioning the VM to Running. If the VM is idle,
// free_at(now) is max(now, boot_complete_at); if the VM is still
// running a job, free_at(now) is that job's completion time — the
// placement-slack case from spec section 4.4 step 3, where the
// scheduler deliberately selects a not-yet-free VM as its target
// because it frees within PLACEMENT_SLACK_SECONDS. Assign trusts that
// selection and always attaches the job rather than re-validating it.
func (v *VM) Assign(job *record.Job, now record.Timestamp) error {
	start := v.FreeAt(now)
	if err := job.Place(start); err != nil {
		return err
	}
	v.job = job
	v.state = Running
	return nil
}

// retire transitions the VM to Retired. Only the owning Pool calls this.
func (v *VM) retire() {
	v.state = Retired
	v.job = nil
}
