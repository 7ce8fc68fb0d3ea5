package board

import (
	"fmt"
	"io"
	"sync"

	"github.com/emirpasic/gods/queues/circularbuffer"
)

// Serial is a UART-like port: received bytes land in a fixed ring buffer
// (oldest overwritten when full), output goes straight to a writer.
type Serial struct {
	mu      sync.Mutex
	rx      *circularbuffer.Queue
	out     io.Writer
	dropped uint64
}

// NewSerial creates a port with an rxSize byte receive buffer.
func NewSerial(rxSize int, out io.Writer) *Serial {
	if rxSize < 1 {
		rxSize = 1
	}
	if out == nil {
		out = io.Discard
	}

	return &Serial{
		rx:  circularbuffer.New(rxSize),
		out: out,
	}
}

// Write feeds received bytes, so an io.Reader can be copied into the port.
// It never fails; overflow silently replaces the oldest bytes.
func (s *Serial) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range p {
		if s.rx.Full() {
			s.dropped++
		}
		s.rx.Enqueue(c)
	}
	return len(p), nil
}

// Available returns the number of buffered bytes.
func (s *Serial) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rx.Size()
}

// ReadByte pops the oldest buffered byte.
func (s *Serial) ReadByte() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.rx.Dequeue()
	if !ok {
		return 0, io.EOF
	}
	return v.(byte), nil
}

// Dropped returns how many received bytes were overwritten before being read.
func (s *Serial) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dropped
}

// Print writes str to the output.
func (s *Serial) Print(str string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	io.WriteString(s.out, str)
}

// Println writes str and a line break to the output.
func (s *Serial) Println(str string) {
	s.Print(str + "\r\n")
}

// Printf formats to the output.
func (s *Serial) Printf(format string, args ...any) {
	s.Print(fmt.Sprintf(format, args...))
}
