package vmpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trace-sched/queuesim/internal/record"
)

func mustTS(t *testing.T, date, clock string) record.Timestamp {
	t.Helper()
	ts, err := record.ParseTimestamp(date, clock)
	require.NoError(t, err)
	return ts
}

func TestVMBootingUntilBootComplete(t *testing.T) {
	creation := mustTS(t, "2024-01-15", "00:00:00")
	vm := New(record.QueueExport, creation, 120)

	assert.Equal(t, Booting, vm.State(creation.AddSeconds(60)))
	assert.Equal(t, Idle, vm.State(creation.AddSeconds(120)))
	assert.Equal(t, Idle, vm.State(creation.AddSeconds(121)))
}

func TestVMFreeAtRespectsBootDelay(t *testing.T) {
	creation := mustTS(t, "2024-01-15", "00:00:00")
	vm := New(record.QueueExport, creation, 120)

	now := creation.AddSeconds(10)
	assert.Equal(t, creation.AddSeconds(120), vm.FreeAt(now))

	later := creation.AddSeconds(200)
	assert.Equal(t, later, vm.FreeAt(later))
}

func TestVMFreeNowIgnoreBootVsReal(t *testing.T) {
	creation := mustTS(t, "2024-01-15", "00:00:00")
	vm := New(record.QueueExport, creation, 120)

	now := creation.AddSeconds(10)
	assert.True(t, vm.FreeNow(now, true))
	assert.False(t, vm.FreeNow(now, false))

	afterBoot := creation.AddSeconds(120)
	assert.True(t, vm.FreeNow(afterBoot, true))
	assert.True(t, vm.FreeNow(afterBoot, false))
}

func TestVMAssignSetsStartAndRunning(t *testing.T) {
	creation := mustTS(t, "2024-01-15", "00:00:00")
	vm := New(record.QueueExport, creation, 120)

	job := record.NewJob("job-1", record.QueueExport, creation.AddSeconds(150), 300, "300")
	now := creation.AddSeconds(150)

	require.NoError(t, vm.Assign(job, now))
	assert.Equal(t, now, job.StartTime())
	assert.Equal(t, Running, vm.State(now))

	// A VM assigned before boot-complete starts no earlier than boot-complete.
	vm2 := New(record.QueueExport, creation, 120)
	job2 := record.NewJob("job-2", record.QueueExport, creation.AddSeconds(10), 60, "60")
	require.NoError(t, vm2.Assign(job2, creation.AddSeconds(10)))
	assert.Equal(t, creation.AddSeconds(120), job2.StartTime())
}

func TestVMAssignOntoRunningVMWithinSlackSucceeds(t *testing.T) {
	creation := mustTS(t, "2024-01-15", "00:00:00")
	vm := New(record.QueueExport, creation, 0)

	now := creation.AddSeconds(1)
	job1 := record.NewJob("job-1", record.QueueExport, now, 8, "8")
	require.NoError(t, vm.Assign(job1, now))

	// job2 arrives while job1 is still running; the scheduler only
	// selects this VM as a placement target when it frees within
	// PLACEMENT_SLACK_SECONDS of job2's arrival (pool.go Counters), so
	// Assign trusts that and pushes job2's start to job1's completion.
	arrival := now.AddSeconds(5)
	job2 := record.NewJob("job-2", record.QueueExport, arrival, 10, "10")
	require.NoError(t, vm.Assign(job2, arrival))

	assert.Equal(t, job1.CompletionTime(), job2.StartTime())
	assert.Equal(t, Running, vm.State(job1.CompletionTime()))
}

func TestVMResolvesRunningToIdleAtCompletion(t *testing.T) {
	creation := mustTS(t, "2024-01-15", "00:00:00")
	vm := New(record.QueueExport, creation, 0)

	now := creation
	job := record.NewJob("job-1", record.QueueExport, now, 100, "100")
	require.NoError(t, vm.Assign(job, now))

	assert.Equal(t, Running, vm.State(now.AddSeconds(50)))
	assert.Equal(t, Idle, vm.State(now.AddSeconds(100)))
	assert.Equal(t, Idle, vm.State(now.AddSeconds(150)))
}

func TestVMMinutesLeftInHour(t *testing.T) {
	creation := mustTS(t, "2024-01-15", "00:00:00")
	vm := New(record.QueueExport, creation, 0)

	assert.Equal(t, 60, vm.MinutesLeftInHour(creation))
	assert.Equal(t, 59, vm.MinutesLeftInHour(creation.AddSeconds(60)))
	assert.Equal(t, 1, vm.MinutesLeftInHour(creation.AddSeconds(59*60)))
	// Wraps into the next billing hour.
	assert.Equal(t, 60, vm.MinutesLeftInHour(creation.AddSeconds(60*60)))
}
