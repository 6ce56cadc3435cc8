package exec

import (
	"bytes"
	"io"
	"sync"
)

// multiWriter fans writes out to several writers.
type multiWriter struct {
	writers []io.Writer
	mu      sync.Mutex
}

func newMultiWriter(writers ...io.Writer) *multiWriter {
	return &multiWriter{writers: writers}
}

// Write writes p to every writer and stops at the first failure.
func (mw *multiWriter) Write(p []byte) (int, error) {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	for _, w := range mw.writers {
		n, err := w.Write(p)
		if err != nil {
			return n, err
		}
		if n != len(p) {
			return n, io.ErrShortWrite
		}
	}
	return len(p), nil
}

// outputCapture buffers one output stream, optionally teeing it to a
// passthrough writer.
type outputCapture struct {
	buffer      *bytes.Buffer
	passthrough io.Writer
	mu          sync.Mutex
}

func newOutputCapture(passthrough io.Writer) *outputCapture {
	return &outputCapture{
		buffer:      &bytes.Buffer{},
		passthrough: passthrough,
	}
}

// Writer returns the writer the process should write into.
func (oc *outputCapture) Writer() io.Writer {
	if oc.passthrough != nil {
		return newMultiWriter(&lockedWriter{mu: &oc.mu, w: oc.buffer}, oc.passthrough)
	}
	return &lockedWriter{mu: &oc.mu, w: oc.buffer}
}

// String returns the captured output.
func (oc *outputCapture) String() string {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.buffer.String()
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// combinedWriter interleaves stdout and stderr into one buffer.
type combinedWriter struct {
	buffer *bytes.Buffer
	mu     sync.Mutex
}

func newCombinedWriter() *combinedWriter {
	return &combinedWriter{buffer: &bytes.Buffer{}}
}

func (cw *combinedWriter) Write(p []byte) (int, error) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.buffer.Write(p)
}

func (cw *combinedWriter) String() string {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	return cw.buffer.String()
}
