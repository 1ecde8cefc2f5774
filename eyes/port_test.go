package eyes

import (
	"bytes"
	"errors"
	"time"
)

// fakePort replays canned reads and records writes.
// An exhausted read queue behaves like a read timeout.
type fakePort struct {
	reads      [][]byte
	written    [][]byte
	writeErr   error
	timeoutErr error
	timeout    time.Duration
	closed     bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.closed {
		return 0, errors.New("port closed")
	}
	if len(p.reads) == 0 {
		return 0, nil
	}

	n := copy(b, p.reads[0])
	if n < len(p.reads[0]) {
		p.reads[0] = p.reads[0][n:]
	} else {
		p.reads = p.reads[1:]
	}
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.written = append(p.written, bytes.Clone(b))
	return len(b), nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	if p.timeoutErr != nil {
		return p.timeoutErr
	}
	p.timeout = t
	return nil
}

func (p *fakePort) ResetInputBuffer() error  { return nil }
func (p *fakePort) ResetOutputBuffer() error { return nil }

func (p *fakePort) trace() []string {
	var frames []string
	for _, w := range p.written {
		frames = append(frames, string(w))
	}
	return frames
}
