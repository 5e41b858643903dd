package ratelimit

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// minBurst keeps small limits from degenerating into tiny reads
const minBurst = 64 * 1024

// Limiter caps the aggregate read throughput of every reader it wraps.
// A nil *Limiter means unlimited.
type Limiter struct {
	bytesPerSecond int64
	bucket         *rate.Limiter
}

// NewLimiter creates a limiter allowing bytesPerSecond with a one second burst
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	burst := bytesPerSecond
	if burst < minBurst {
		burst = minBurst
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		bucket:         rate.NewLimiter(rate.Limit(bytesPerSecond), int(burst)),
	}
}

// BytesPerSecond returns the configured limit
func (l *Limiter) BytesPerSecond() int64 {
	if l == nil {
		return 0
	}
	return l.bytesPerSecond
}

// Burst returns the largest single read the limiter admits
func (l *Limiter) Burst() int {
	if l == nil {
		return 0
	}
	return l.bucket.Burst()
}

// ReadCloser wraps an io.ReadCloser with rate limiting
type ReadCloser struct {
	rc      io.ReadCloser
	limiter *Limiter
	ctx     context.Context
}

// NewReadCloser wraps rc; with a nil limiter rc is returned unchanged
func NewReadCloser(ctx context.Context, rc io.ReadCloser, limiter *Limiter) io.ReadCloser {
	if limiter == nil {
		return rc
	}
	return &ReadCloser{rc: rc, limiter: limiter, ctx: ctx}
}

// Read reserves tokens for at most one burst before reading
func (r *ReadCloser) Read(p []byte) (int, error) {
	toRead := len(p)
	if burst := r.limiter.bucket.Burst(); toRead > burst {
		toRead = burst
	}
	if toRead == 0 {
		return r.rc.Read(p)
	}

	if err := r.limiter.bucket.WaitN(r.ctx, toRead); err != nil {
		return 0, err
	}

	return r.rc.Read(p[:toRead])
}

// Close implements io.Closer
func (r *ReadCloser) Close() error {
	return r.rc.Close()
}
