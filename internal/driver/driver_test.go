package driver

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trace-sched/queuesim/internal/config"
	"github.com/trace-sched/queuesim/internal/emitter"
	"github.com/trace-sched/queuesim/internal/reader"
	"github.com/trace-sched/queuesim/internal/record"
	"github.com/trace-sched/queuesim/internal/scheduler"
)

// Scenario 6: the subsequence of output lines with the five-field job
// shape equals the input file line-for-line.
func TestRunEchoesJobsInOrder(t *testing.T) {
	input := "2013-03-01 00:00:27 uid1 export 10.999\n" +
		"2013-03-01 00:00:28 uid2 url 5\n" +
		"2013-03-01 00:00:29 uid3 general 7.5\n"

	var out bytes.Buffer
	em := emitter.New(&out)
	r := reader.New(strings.NewReader(input))
	mgr := scheduler.New(config.Default(), em.Command, nil)

	require.NoError(t, Run(r, mgr, em))

	var jobLines []string
	for _, line := range strings.Split(strings.TrimRight(out.String(), "\n"), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 5 && record.Queue(fields[3]).Valid() {
			jobLines = append(jobLines, line)
		}
	}
	require.Len(t, jobLines, 3)
	assert.Equal(t, "2013-03-01 00:00:27 uid1 export 10.999", jobLines[0])
	assert.Equal(t, "2013-03-01 00:00:28 uid2 url 5", jobLines[1])
	assert.Equal(t, "2013-03-01 00:00:29 uid3 general 7.5", jobLines[2])
}

func TestRunEmitsShutdownBurstAtEOF(t *testing.T) {
	input := "2013-03-01 00:00:00 uid1 export 5\n"

	var out bytes.Buffer
	em := emitter.New(&out)
	r := reader.New(strings.NewReader(input))
	mgr := scheduler.New(config.Default(), em.Command, nil)

	require.NoError(t, Run(r, mgr, em))

	launches := strings.Count(out.String(), " launch export\n") +
		strings.Count(out.String(), " launch url\n") +
		strings.Count(out.String(), " launch general\n")
	terminates := strings.Count(out.String(), " terminate export\n") +
		strings.Count(out.String(), " terminate url\n") +
		strings.Count(out.String(), " terminate general\n")
	assert.Equal(t, 120, launches)
	assert.Equal(t, 120, terminates)
}

func TestRunEmptyInputProducesNoShutdownBurst(t *testing.T) {
	var out bytes.Buffer
	em := emitter.New(&out)
	r := reader.New(strings.NewReader(""))
	mgr := scheduler.New(config.Default(), em.Command, nil)

	require.NoError(t, Run(r, mgr, em))
	assert.Empty(t, out.String())
}
