// Package reader tokenizes the whitespace-separated job-record input
// format. It is deliberately trivial — the scheduling engine, not the
// line reader, is the subject of this program.
package reader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/trace-sched/queuesim/internal/record"
	"github.com/trace-sched/queuesim/internal/schederr"
)

// Reader pulls job records, one per line, from an underlying io.Reader.
type Reader struct {
	scanner *bufio.Scanner
}

// New wraps r.
func New(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next parsed job, or io.EOF when the stream is exhausted.
func (r *Reader) Next() (*record.Job, error) {
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		job, err := parseLine(line)
		if err != nil {
			if _, ok := err.(*schederr.UnknownQueueError); ok {
				return nil, err
			}
			return nil, &schederr.ParseError{Line: line, Err: err}
		}
		return job, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return nil, io.EOF
}

func parseLine(line string) (*record.Job, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return nil, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}
	date, clock, uid, queueField, lengthRaw := fields[0], fields[1], fields[2], fields[3], fields[4]

	arrival, err := record.ParseTimestamp(date, clock)
	if err != nil {
		return nil, err
	}

	queue := record.Queue(queueField)
	if !queue.Valid() {
		return nil, &schederr.UnknownQueueError{Queue: queueField}
	}

	length, err := strconv.ParseFloat(lengthRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid length %q: %w", lengthRaw, err)
	}
	if length < 0 {
		return nil, fmt.Errorf("negative length %q", lengthRaw)
	}

	return record.NewJob(uid, queue, arrival, length, lengthRaw), nil
}
