package vmpool

import (
	"sort"

	"github.com/trace-sched/queuesim/internal/record"
)

// Pool is the ordered collection of live VMs for one queue. Iteration
// order is insertion order (FIFO of launches); the scheduler depends
// on this being stable to pick the first placement-eligible VM.
type Pool struct {
	queue                 record.Queue
	floor                 int
	bootSeconds           int
	retireDeadlineMinutes int
	vms                   []*VM

	// onCommand, if set, receives every launch/terminate this pool emits.
	// A non-nil error (e.g. a broken downstream pipe) aborts whichever
	// pool operation triggered it.
	onCommand func(record.Command) error
}

// NewPool constructs an empty pool for queue with the given floor,
// boot delay, and retirement deadline (spec section 4.1/4.5).
func NewPool(queue record.Queue, floor, bootSeconds, retireDeadlineMinutes int, onCommand func(record.Command) error) *Pool {
	return &Pool{
		queue:                 queue,
		floor:                 floor,
		bootSeconds:           bootSeconds,
		retireDeadlineMinutes: retireDeadlineMinutes,
		onCommand:             onCommand,
	}
}

// Len returns the current pool size.
func (p *Pool) Len() int { return len(p.vms) }

// VMs returns the pool's VMs in insertion order. Callers must not retain
// the slice across a mutating call.
func (p *Pool) VMs() []*VM { return p.vms }

// Launch constructs a VM with creation_time = at, appends it to the
// pool, and emits a launch command. The VM is kept in the pool even if
// the emit fails, since it has already been decided to exist.
func (p *Pool) Launch(at record.Timestamp) (*VM, error) {
	vm := New(p.queue, at, p.bootSeconds)
	p.vms = append(p.vms, vm)
	if err := p.emit(record.Command{Kind: record.CommandLaunch, At: at, Queue: p.queue}); err != nil {
		return vm, err
	}
	return vm, nil
}

// Retire retires up to n VMs, using the bucket-by-minutes-left policy
// from spec section 4.5, and never reduces the pool below its floor.
// It is not an error for n to exceed the stoppable count: it retires
// as many as allowed and returns how many that was. If emitting a
// terminate fails partway through, Retire stops there, returning the
// number of VMs removed from the pool (including the one whose
// terminate failed) and the error.
func (p *Pool) Retire(at record.Timestamp, n int) (int, error) {
	stoppable := len(p.vms) - p.floor
	if stoppable < 0 {
		stoppable = 0
	}
	if n > stoppable {
		n = stoppable
	}
	if n <= 0 {
		return 0, nil
	}

	// Only VMs strictly under the retirement deadline are candidates;
	// bucket them by minutes-left and, within a bucket, keep pool
	// insertion order (sort.SliceStable preserves it).
	candidates := make([]*VM, 0, len(p.vms))
	for _, vm := range p.vms {
		if vm.MinutesLeftInHour(at) < p.retireDeadlineMinutes {
			candidates = append(candidates, vm)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MinutesLeftInHour(at) < candidates[j].MinutesLeftInHour(at)
	})
	if len(candidates) < n {
		n = len(candidates)
	}
	if n == 0 {
		return 0, nil
	}

	// Emit terminates in ascending-bucket order (spec section 4.5 step 3).
	toRetire := make(map[*VM]bool, n)
	done := 0
	var emitErr error
	for _, vm := range candidates[:n] {
		vm.retire()
		toRetire[vm] = true
		done++
		if err := p.emit(record.Command{Kind: record.CommandTerminate, At: at, Queue: p.queue}); err != nil {
			emitErr = err
			break
		}
	}

	remaining := p.vms[:0]
	for _, vm := range p.vms {
		if !toRetire[vm] {
			remaining = append(remaining, vm)
		}
	}
	p.vms = remaining
	return done, emitErr
}

// Shutdown retires every remaining VM in the pool, emitting a
// terminate for each, ignoring the floor. It stops at the first emit
// error and returns it without emptying the pool: every VM, including
// those already marked retired, stays in the pool's tracked set.
func (p *Pool) Shutdown(at record.Timestamp) error {
	for _, vm := range p.vms {
		vm.retire()
		if err := p.emit(record.Command{Kind: record.CommandTerminate, At: at, Queue: p.queue}); err != nil {
			return err
		}
	}
	p.vms = nil
	return nil
}

func (p *Pool) emit(cmd record.Command) error {
	if p.onCommand == nil {
		return nil
	}
	return p.onCommand(cmd)
}

// Counters walks the pool once, computing the quantities the
// controller in spec section 4.4 needs: the count of VMs free
// ignoring boot, the count of VMs free respecting boot (free_real),
// and the first placement-eligible VM for a job arriving at now within
// slackSeconds.
type Counters struct {
	FreeIgnoringBoot int
	FreeReal         int
	Target           *VM
}

func (p *Pool) Counters(now record.Timestamp, slackSeconds int) Counters {
	var c Counters
	deadline := now.AddSeconds(slackSeconds)
	for _, vm := range p.vms {
		if vm.FreeNow(now, true) {
			c.FreeIgnoringBoot++
		}
		if vm.FreeNow(now, false) {
			c.FreeReal++
		}
		if c.Target == nil && vm.FreeAt(now).Before(deadline) {
			c.Target = vm
		}
	}
	return c
}
