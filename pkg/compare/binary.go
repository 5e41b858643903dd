package compare

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sdejongh/doppelganger/pkg/storage"
)

// BinaryComparator compares two files byte-by-byte with streaming reads.
// It never holds more than two buffers per comparison in memory, so it is
// the path taken for files too large to key by content.
type BinaryComparator struct {
	backend       storage.Backend
	bufferSize    int
	bufferPool    *sync.Pool
	readerWrapper ReaderWrapper
}

// NewBinaryComparator creates a new byte-by-byte comparator reading through backend
func NewBinaryComparator(backend storage.Backend, bufferSize int) *BinaryComparator {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &BinaryComparator{
		backend:    backend,
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// SetReaderWrapper sets a function to wrap readers (e.g., for rate limiting)
func (c *BinaryComparator) SetReaderWrapper(wrapper ReaderWrapper) {
	c.readerWrapper = wrapper
}

// Equal reports whether a and b have identical content. A failure to open or
// read either file is returned as a *ReadError naming that file.
func (c *BinaryComparator) Equal(ctx context.Context, a, b string) (bool, error) {
	aInfo, err := c.backend.Stat(ctx, a)
	if err != nil {
		return false, &ReadError{Path: a, Err: err}
	}
	bInfo, err := c.backend.Stat(ctx, b)
	if err != nil {
		return false, &ReadError{Path: b, Err: err}
	}
	if aInfo.Size != bInfo.Size {
		return false, nil
	}

	aReader, err := c.open(ctx, a)
	if err != nil {
		return false, err
	}
	defer aReader.Close()

	bReader, err := c.open(ctx, b)
	if err != nil {
		return false, err
	}
	defer bReader.Close()

	aBufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(aBufPtr)
	aBuf := *aBufPtr

	bBufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bBufPtr)
	bBuf := *bBufPtr

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}

		// ReadFull keeps both sides aligned even when a reader returns short
		aN, aErr := io.ReadFull(aReader, aBuf)
		bN, bErr := io.ReadFull(bReader, bBuf)

		if aErr != nil && !isEOF(aErr) {
			return false, &ReadError{Path: a, Err: aErr}
		}
		if bErr != nil && !isEOF(bErr) {
			return false, &ReadError{Path: b, Err: bErr}
		}

		if aN != bN || !bytes.Equal(aBuf[:aN], bBuf[:bN]) {
			return false, nil
		}

		aDone, bDone := isEOF(aErr), isEOF(bErr)
		if aDone && bDone {
			return true, nil
		}
		if aDone != bDone {
			// Size changed between Stat and Read
			return false, nil
		}
	}
}

func (c *BinaryComparator) open(ctx context.Context, path string) (io.ReadCloser, error) {
	reader, err := c.backend.Read(ctx, path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if c.readerWrapper != nil {
		reader = c.readerWrapper(reader)
	}
	return reader, nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// Name returns the comparator name
func (c *BinaryComparator) Name() string {
	return "binary"
}
