package ratelimit

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestNewLimiter(t *testing.T) {
	t.Run("ValidBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024)
		if limiter == nil {
			t.Fatal("NewLimiter() returned nil for valid input")
		}
		if limiter.BytesPerSecond() != 1024*1024 {
			t.Errorf("BytesPerSecond() = %d, want %d", limiter.BytesPerSecond(), 1024*1024)
		}
		if limiter.Burst() != 1024*1024 {
			t.Errorf("Burst() = %d, want %d", limiter.Burst(), 1024*1024)
		}
	})

	t.Run("ZeroMeansUnlimited", func(t *testing.T) {
		if NewLimiter(0) != nil {
			t.Error("NewLimiter(0) should return nil (no limiting)")
		}
		if NewLimiter(-100) != nil {
			t.Error("NewLimiter(-100) should return nil (no limiting)")
		}
	})

	t.Run("SmallLimitKeepsMinimumBurst", func(t *testing.T) {
		limiter := NewLimiter(1000)
		if limiter.Burst() != minBurst {
			t.Errorf("Burst() = %d, want %d", limiter.Burst(), minBurst)
		}
	})

	t.Run("NilLimiterAccessors", func(t *testing.T) {
		var limiter *Limiter
		if limiter.BytesPerSecond() != 0 || limiter.Burst() != 0 {
			t.Error("nil limiter should report zero")
		}
	})
}

func TestNewReadCloser(t *testing.T) {
	t.Run("NilLimiterReturnsOriginal", func(t *testing.T) {
		rc := &closeRecorder{Reader: strings.NewReader("data")}
		wrapped := NewReadCloser(context.Background(), rc, nil)
		if wrapped != io.ReadCloser(rc) {
			t.Error("NewReadCloser(nil limiter) should return the original reader")
		}
	})

	t.Run("ReadsAllData", func(t *testing.T) {
		data := bytes.Repeat([]byte("x"), 200*1024)
		rc := &closeRecorder{Reader: bytes.NewReader(data)}
		wrapped := NewReadCloser(context.Background(), rc, NewLimiter(100*1024*1024))

		got, err := io.ReadAll(wrapped)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("read %d bytes, want %d", len(got), len(data))
		}

		if err := wrapped.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if !rc.closed {
			t.Error("Close() should close the underlying reader")
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rc := &closeRecorder{Reader: strings.NewReader("data")}
		wrapped := NewReadCloser(ctx, rc, NewLimiter(1024))

		buf := make([]byte, 4)
		_, err := wrapped.Read(buf)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Read() error = %v, want context.Canceled", err)
		}
	})
}

func TestRateLimiting(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timing test in short mode")
	}

	// The first second's worth is served from the full bucket, the rest waits
	limiter := NewLimiter(128 * 1024)
	data := bytes.Repeat([]byte("y"), 256*1024)
	rc := &closeRecorder{Reader: bytes.NewReader(data)}
	wrapped := NewReadCloser(context.Background(), rc, limiter)

	start := time.Now()
	if _, err := io.ReadAll(wrapped); err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	elapsed := time.Since(start)

	if elapsed < 500*time.Millisecond {
		t.Errorf("read finished in %v, expected throttling", elapsed)
	}
}
