package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueValid(t *testing.T) {
	tests := []struct {
		name  string
		queue Queue
		want  bool
	}{
		{"export", QueueExport, true},
		{"url", QueueURL, true},
		{"general", QueueGeneral, true},
		{"unknown", Queue("batch"), false},
		{"empty", Queue(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.queue.Valid())
		})
	}
}

func TestParseTimestampRoundTrip(t *testing.T) {
	ts, err := ParseTimestamp("2024-01-15", "08:30:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", ts.Date())
	assert.Equal(t, "08:30:00", ts.Clock())
	assert.Equal(t, "2024-01-15 08:30:00", ts.String())
}

func TestParseTimestampInvalid(t *testing.T) {
	_, err := ParseTimestamp("not-a-date", "08:30:00")
	assert.Error(t, err)
}

func TestTimestampArithmetic(t *testing.T) {
	base, err := ParseTimestamp("2024-01-15", "00:00:00")
	require.NoError(t, err)

	later := base.AddSeconds(3661)
	assert.Equal(t, "01:01:01", later.Clock())
	assert.True(t, later.After(base))
	assert.True(t, base.Before(later))
	assert.InDelta(t, 3661.0, later.Sub(base), 0.0001)

	fractional := base.Add(0.5)
	assert.InDelta(t, 0.5, fractional.Sub(base), 0.0001)
}

func TestTimestampMax(t *testing.T) {
	base, err := ParseTimestamp("2024-01-15", "00:00:00")
	require.NoError(t, err)
	later := base.AddSeconds(100)

	assert.Equal(t, later, Max(base, later))
	assert.Equal(t, later, Max(later, base))
}

func TestJobPlaceOnce(t *testing.T) {
	arrival, err := ParseTimestamp("2024-01-15", "00:00:00")
	require.NoError(t, err)
	job := NewJob("job-1", QueueExport, arrival, 120.5, "120.5")

	assert.False(t, job.Placed())

	start := arrival.AddSeconds(5)
	require.NoError(t, job.Place(start))
	assert.True(t, job.Placed())
	assert.Equal(t, start, job.StartTime())
	assert.InDelta(t, 120.5, job.CompletionTime().Sub(start), 0.0001)

	err = job.Place(start)
	assert.Error(t, err)
}

func TestJobLengthRawPreserved(t *testing.T) {
	arrival, err := ParseTimestamp("2024-01-15", "00:00:00")
	require.NoError(t, err)
	job := NewJob("job-1", QueueURL, arrival, 100, "100.000")
	assert.Equal(t, "100.000", job.LengthRaw)
	assert.Equal(t, 100.0, job.LengthSeconds)
}
