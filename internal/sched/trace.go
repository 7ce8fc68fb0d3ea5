package sched

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"sync"
	"time"
)

// CSVRecorder writes dispatch history as CSV. Idle passes are skipped so the
// file stays readable.
type CSVRecorder struct {
	mu     sync.Mutex
	closer io.Closer
	w      *csv.Writer
	now    func() time.Time
	err    error
}

// NewCSVRecorder creates the file at path and writes the header.
func NewCSVRecorder(path string) (*CSVRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	rec, err := NewCSVRecorderWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	rec.closer = f

	return rec, nil
}

// NewCSVRecorderWriter records into w. Close only flushes unless w came from
// NewCSVRecorder.
func NewCSVRecorderWriter(w io.Writer) (*CSVRecorder, error) {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"timestamp", "pass", "tick", "event", "task_index", "task"}); err != nil {
		return nil, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}

	return &CSVRecorder{
		w:   cw,
		now: time.Now,
	}, nil
}

func (r *CSVRecorder) Observe(ev StatusEvent) {
	if ev.Kind == StatusIdle {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return
	}

	rec := []string{
		r.now().Format(time.RFC3339Nano),
		strconv.FormatUint(ev.Pass, 10),
		strconv.FormatUint(uint64(ev.Tick), 10),
		ev.Kind.String(),
		strconv.Itoa(ev.Index),
		ev.Task,
	}
	if err := r.w.Write(rec); err != nil {
		r.err = err
	}
}

// Err returns the first write error, if any.
func (r *CSVRecorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.err
}

// Close flushes buffered rows and closes the file it created.
func (r *CSVRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.w.Flush()
	if err := r.w.Error(); err != nil && r.err == nil {
		r.err = err
	}

	if r.closer != nil {
		if err := r.closer.Close(); err != nil && r.err == nil {
			r.err = err
		}
		r.closer = nil
	}

	return r.err
}
