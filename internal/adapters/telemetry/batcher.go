// Package telemetry adapts OpenTelemetry spans to the polybuild renderer.
package telemetry

import (
	"bytes"
	"sync"
	"time"

	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// DefaultChunkSize is the buffered size that forces a flush.
	DefaultChunkSize = 4096
	// DefaultFlushDelay bounds how long output may sit in the buffer.
	DefaultFlushDelay = 50 * time.Millisecond
)

// Batcher coalesces small writes from a running command into larger chunks.
// A chunk is delivered when it reaches the size limit, when the delay since
// the first buffered byte elapses, or on Close. It is safe for concurrent use.
type Batcher struct {
	size    int
	delay   time.Duration
	deliver func([]byte)

	mu     sync.Mutex
	buf    bytes.Buffer
	timer  *time.Timer
	closed bool
}

// NewBatcher returns a Batcher that hands chunks to deliver.
// Non-positive limits fall back to the defaults.
func NewBatcher(size int, delay time.Duration, deliver func([]byte)) *Batcher {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if delay <= 0 {
		delay = DefaultFlushDelay
	}
	return &Batcher{size: size, delay: delay, deliver: deliver}
}

// Write buffers p.
func (b *Batcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, zerr.Wrap(domain.ErrSpanClosed, "write after close")
	}

	n, _ := b.buf.Write(p)
	switch {
	case b.buf.Len() >= b.size:
		b.flushLocked()
	case b.timer == nil:
		b.timer = time.AfterFunc(b.delay, b.Flush)
	}
	return n, nil
}

// Flush delivers whatever is buffered.
func (b *Batcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
}

// Close delivers the remainder and rejects further writes.
func (b *Batcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.flushLocked()
	b.closed = true
	return nil
}

// flushLocked must be called with mu held. Delivery happens under the lock
// so chunks of one span stay ordered.
func (b *Batcher) flushLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if b.buf.Len() == 0 || b.deliver == nil {
		b.buf.Reset()
		return
	}
	chunk := bytes.Clone(b.buf.Bytes())
	b.buf.Reset()
	b.deliver(chunk)
}
