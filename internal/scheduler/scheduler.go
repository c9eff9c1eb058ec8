package scheduler

import (
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/trace-sched/queuesim/internal/config"
	"github.com/trace-sched/queuesim/internal/metrics"
	"github.com/trace-sched/queuesim/internal/record"
	"github.com/trace-sched/queuesim/internal/schederr"
	"github.com/trace-sched/queuesim/internal/vmpool"
	"github.com/trace-sched/queuesim/pkg/log"
)

// LogSink receives the optional per-tick utilization line from spec
// section 4.4 step 7 / section 6.2.
type LogSink interface {
	Log(date, clock string, queue record.Queue, poolSize, freeReal, minIdleCount int) error
}

// Manager owns the three queue pools and implements the placement and
// controller logic of spec section 4.4/4.5. It is an explicit value —
// never a package-level global — so a process can run more than one
// independent instance, e.g. concurrently in tests.
type Manager struct {
	tunables config.Tunables
	logger   zerolog.Logger
	sink     LogSink

	mu       sync.Mutex
	pools    map[record.Queue]*vmpool.Pool
	runStart record.Timestamp
	warmedUp bool
}

// New constructs a Manager. emit receives every launch/terminate
// command in emission order and may fail (e.g. a broken downstream
// pipe); sink, if non-nil, receives the per-job utilization log line.
func New(tunables config.Tunables, emit func(record.Command) error, sink LogSink) *Manager {
	m := &Manager{
		tunables: tunables,
		logger:   log.WithComponent("scheduler"),
		sink:     sink,
		pools:    make(map[record.Queue]*vmpool.Pool, len(record.Queues)),
	}
	for _, q := range record.Queues {
		m.pools[q] = vmpool.NewPool(q, tunables.Floor, tunables.BootSeconds, tunables.RetireDeadlineMinutes, emit)
	}
	return m
}

// Schedule places job on its queue's pool and runs the launch/retire
// controller, per spec section 4.4.
func (m *Manager) Schedule(job *record.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.PlacementDuration)

	now := job.Arrival

	if !job.Queue.Valid() {
		return &schederr.UnknownQueueError{Queue: string(job.Queue)}
	}

	log.WithQueue(string(job.Queue)).Debug().
		Str("job_uid", job.UID).
		Msg("scheduling job")

	if !m.warmedUp {
		m.runStart = now
		for _, q := range record.Queues {
			for i := 0; i < m.tunables.Floor; i++ {
				if _, err := m.pools[q].Launch(now); err != nil {
					return err
				}
				metrics.VMsLaunched.WithLabelValues(string(q)).Inc()
			}
		}
		m.warmedUp = true
	}

	pool := m.pools[job.Queue]

	counters := pool.Counters(now, m.tunables.PlacementSlackSeconds)

	if counters.Target != nil {
		target := counters.Target
		if err := target.Assign(job, now); err != nil {
			return err
		}
		log.WithVMID(target.ID.String()).Debug().
			Str("job_uid", job.UID).
			Msg("job placed")
	} else {
		withinGrace := !now.After(m.runStart.AddSeconds(m.tunables.WarmupGraceSeconds))
		if withinGrace {
			m.logger.Warn().
				Str("job_uid", job.UID).
				Str("queue", string(job.Queue)).
				Msg("no eligible VM during warm-up grace; job not placed")
		} else {
			metrics.PlacementFailures.WithLabelValues(string(job.Queue)).Inc()
			return &schederr.PlacementFailureError{JobUID: job.UID, Queue: string(job.Queue), At: now.String()}
		}
	}

	if err := m.controlPool(job.Queue, now, counters.FreeIgnoringBoot); err != nil {
		return err
	}

	final := pool.Counters(now, m.tunables.PlacementSlackSeconds)
	size := pool.Len()
	minIdleCount := int(math.Floor(m.tunables.MinIdleFraction * float64(size)))

	if m.sink != nil {
		if err := m.sink.Log(now.Date(), now.Clock(), job.Queue, size, final.FreeReal, minIdleCount); err != nil {
			return err
		}
	}

	metrics.PoolSize.WithLabelValues(string(job.Queue)).Set(float64(size))
	metrics.FreeReal.WithLabelValues(string(job.Queue)).Set(float64(final.FreeReal))
	if size > 0 {
		metrics.IdleFraction.WithLabelValues(string(job.Queue)).Set(float64(final.FreeIgnoringBoot) / float64(size))
	}

	return nil
}

// controlPool runs the three controller steps from spec section 4.4
// steps 4-6: retire surplus, raise to floor, raise to MinIdleFraction.
func (m *Manager) controlPool(q record.Queue, now record.Timestamp, freeIgnoringBoot int) error {
	pool := m.pools[q]
	size := pool.Len()

	// Step 4: retire surplus.
	if size > 0 && float64(freeIgnoringBoot)/float64(size) > m.tunables.MaxIdleFraction {
		n := int(math.Ceil(float64(freeIgnoringBoot) - m.tunables.MaxIdleFraction*float64(size)))
		if n > 0 && freeIgnoringBoot-n > m.tunables.Floor {
			retired, err := pool.Retire(now, n)
			if retired > 0 {
				metrics.VMsRetired.WithLabelValues(string(q)).Add(float64(retired))
				freeIgnoringBoot -= retired
				size -= retired
			}
			if err != nil {
				return err
			}
		}
	}

	// Step 5: raise to floor.
	if freeIgnoringBoot < m.tunables.Floor {
		toLaunch := m.tunables.Floor - freeIgnoringBoot
		for i := 0; i < toLaunch; i++ {
			if _, err := pool.Launch(now); err != nil {
				return err
			}
			metrics.VMsLaunched.WithLabelValues(string(q)).Inc()
		}
		size += toLaunch
		freeIgnoringBoot = m.tunables.Floor
	}

	// Step 6: raise to MinIdleFraction, evaluated against the
	// post-floor-raise pool size.
	if size > 0 && float64(freeIgnoringBoot)/float64(size) < m.tunables.MinIdleFraction {
		toLaunch := int(math.Ceil(m.tunables.MinIdleFraction*float64(size) - float64(freeIgnoringBoot)))
		for i := 0; i < toLaunch; i++ {
			if _, err := pool.Launch(now); err != nil {
				return err
			}
			metrics.VMsLaunched.WithLabelValues(string(q)).Inc()
		}
	}
	return nil
}

// Shutdown retires every remaining VM in every pool, emitting a
// terminate for each, in fixed queue order.
func (m *Manager) Shutdown(at record.Timestamp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range record.Queues {
		if err := m.pools[q].Shutdown(at); err != nil {
			return err
		}
	}
	return nil
}

// PoolSize returns the current size of queue q's pool. Exposed for tests.
func (m *Manager) PoolSize(q record.Queue) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pools[q].Len()
}
