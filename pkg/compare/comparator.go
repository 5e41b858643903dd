package compare

import (
	"fmt"
	"io"
)

// ReaderWrapper wraps a freshly opened reader (e.g. for rate limiting)
type ReaderWrapper func(io.ReadCloser) io.ReadCloser

// ReadError reports which side of a comparison could not be read
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
