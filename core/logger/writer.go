package logger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// asyncWriter fans log lines out to its sinks from one goroutine, which owns
// the buffers. A sink that fails is dropped and the rest keep receiving lines.
type asyncWriter struct {
	lines chan []byte
	flush chan chan error
	done  chan struct{}

	// mu guards closed against concurrent Write and Close.
	mu     sync.RWMutex
	closed bool

	sinks []*sink

	errMu sync.Mutex
	errs  []error
	alive int
}

type sink struct {
	idx int
	buf *bufio.Writer
	bad bool
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	aw := &asyncWriter{
		lines: make(chan []byte, 256),
		flush: make(chan chan error),
		done:  make(chan struct{}),
	}
	for i, w := range writers {
		if w == nil {
			continue
		}
		aw.sinks = append(aw.sinks, &sink{idx: i, buf: bufio.NewWriterSize(w, bufSize)})
	}
	aw.alive = len(aw.sinks)
	go aw.loop()
	return aw
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				w.flushSinks()
				return
			}
			w.writeSinks(line)
		case ack := <-w.flush:
			w.drain()
			ack <- w.flushSinks()
		}
	}
}

// drain writes the lines queued before a flush request.
func (w *asyncWriter) drain() {
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				return
			}
			w.writeSinks(line)
		default:
			return
		}
	}
}

// Write queues a copy of p. It blocks while the queue is full and fails
// only once every sink is broken or the writer is closed.
func (w *asyncWriter) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := w.deadErr(); err != nil {
		return err
	}
	line := append([]byte(nil), p...)

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.lines <- line
	return nil
}

// Flush blocks until queued lines reach the sinks.
func (w *asyncWriter) Flush() error {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return w.sinkErr()
	}
	ack := make(chan error, 1)
	w.flush <- ack
	w.mu.RUnlock()
	return <-ack
}

// Close drains the queue and returns the sink failures seen so far.
func (w *asyncWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.lines)
	}
	w.mu.Unlock()
	<-w.done
	return w.sinkErr()
}

func (w *asyncWriter) writeSinks(line []byte) {
	for _, s := range w.sinks {
		if s.bad {
			continue
		}
		if _, err := s.buf.Write(line); err != nil {
			w.fail(s, err)
			continue
		}
		if err := s.buf.Flush(); err != nil {
			w.fail(s, err)
		}
	}
}

func (w *asyncWriter) flushSinks() error {
	for _, s := range w.sinks {
		if s.bad {
			continue
		}
		if err := s.buf.Flush(); err != nil {
			w.fail(s, err)
		}
	}
	return w.sinkErr()
}

func (w *asyncWriter) fail(s *sink, err error) {
	s.bad = true
	w.errMu.Lock()
	defer w.errMu.Unlock()
	w.errs = append(w.errs, fmt.Errorf("log sink %d: %w", s.idx, err))
	w.alive--
}

func (w *asyncWriter) sinkErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return errors.Join(w.errs...)
}

// deadErr is non-nil once no sink is left.
func (w *asyncWriter) deadErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if len(w.sinks) > 0 && w.alive == 0 {
		return errors.Join(w.errs...)
	}
	return nil
}
