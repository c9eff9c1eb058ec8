package scheduler

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/trace-sched/queuesim/internal/record"
)

// FileSink is a LogSink that appends the per-job utilization line (spec
// section 6.2) to a file through a buffered writer; buffered lines reach
// the file when the buffer fills or on Close.
type FileSink struct {
	f *os.File
	w *bufio.Writer
}

// NewFileSink creates (or truncates) path and wraps it in a FileSink.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open log sink %q: %w", path, err)
	}
	return &FileSink{f: f, w: bufio.NewWriter(f)}, nil
}

// Log writes "<date> <time> <queue> <pool_size> <free_real> <min_idle_count>".
func (s *FileSink) Log(date, clock string, queue record.Queue, poolSize, freeReal, minIdleCount int) error {
	_, err := fmt.Fprintf(s.w, "%s %s %s %d %d %d\n", date, clock, string(queue), poolSize, freeReal, minIdleCount)
	if err != nil {
		return fmt.Errorf("write log sink: %w", err)
	}
	return nil
}

// Close flushes buffered output and closes the underlying file. Safe to
// call exactly once, from whichever shutdown path (clean EOF, signal,
// or broken pipe) the run takes.
func (s *FileSink) Close() error {
	if err := s.w.Flush(); err != nil {
		_ = s.f.Close()
		return fmt.Errorf("flush log sink: %w", err)
	}
	return s.f.Close()
}

var _ io.Closer = (*FileSink)(nil)
