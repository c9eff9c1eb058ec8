// Package emitter writes command and job records to an output stream
// in strict emission order.
package emitter

import (
	"bufio"
	"fmt"
	"io"

	"github.com/trace-sched/queuesim/internal/record"
)

// Emitter is the sink for command records and echoed job records. It
// never reorders what it is given; ordering is the caller's contract
// to uphold (see spec section 4.6).
type Emitter struct {
	w *bufio.Writer
}

// New wraps w in a buffered emitter. Output reaches w only when the
// buffer fills or Flush is called.
func New(w io.Writer) *Emitter {
	return &Emitter{w: bufio.NewWriter(w)}
}

// Command writes a launch/terminate line: <date> <time> <launch|terminate> <queue>.
func (e *Emitter) Command(cmd record.Command) error {
	_, err := fmt.Fprintf(e.w, "%s %s %s %s\n", cmd.At.Date(), cmd.At.Clock(), string(cmd.Kind), string(cmd.Queue))
	return wrapf(err, "write command")
}

// Job echoes a job record verbatim, identical to the input tokens.
func (e *Emitter) Job(j *record.Job) error {
	_, err := fmt.Fprintf(e.w, "%s %s %s %s %s\n",
		j.Arrival.Date(), j.Arrival.Clock(), j.UID, string(j.Queue), j.LengthRaw)
	return wrapf(err, "write job")
}

// Flush flushes any buffered output. Callers must check its error:
// a broken pipe surfaces here.
func (e *Emitter) Flush() error {
	return wrapf(e.w.Flush(), "flush output")
}

func wrapf(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
