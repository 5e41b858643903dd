// Package fingerprint reduces file content to a 64-bit value used to bucket
// candidate duplicates. The hash is not collision resistant; equal
// fingerprints only nominate files for byte-exact verification.
package fingerprint

import (
	"context"
	"fmt"
	"hash"
	"io"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/sdejongh/doppelganger/pkg/models"
	"github.com/sdejongh/doppelganger/pkg/storage"
)

// HeaderSize is the number of leading bytes handed to the Classifier
const HeaderSize = 262

// HashFunc builds a fresh 64-bit hash state
type HashFunc func() hash.Hash64

// ReaderWrapper wraps a freshly opened reader (e.g. for rate limiting)
type ReaderWrapper func(io.ReadCloser) io.ReadCloser

// ReadError is returned when a file cannot be opened or read to the end
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("fingerprint %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Fingerprinter streams files through a pooled buffer into a 64-bit hash
type Fingerprinter struct {
	backend       storage.Backend
	newHash       HashFunc
	classifier    Classifier
	bufferSize    int
	bufferPool    *sync.Pool
	readerWrapper ReaderWrapper
}

// Option customises a Fingerprinter
type Option func(*Fingerprinter)

// WithHash replaces the default xxhash state
func WithHash(fn HashFunc) Option {
	return func(f *Fingerprinter) {
		if fn != nil {
			f.newHash = fn
		}
	}
}

// WithClassifier replaces the default MIME-based classifier
func WithClassifier(c Classifier) Option {
	return func(f *Fingerprinter) {
		if c != nil {
			f.classifier = c
		}
	}
}

// WithReaderWrapper wraps every opened file
func WithReaderWrapper(w ReaderWrapper) Option {
	return func(f *Fingerprinter) {
		f.readerWrapper = w
	}
}

// New creates a Fingerprinter reading through backend
func New(backend storage.Backend, bufferSize int, opts ...Option) *Fingerprinter {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	f := &Fingerprinter{
		backend:    backend,
		newHash:    func() hash.Hash64 { return xxhash.New() },
		classifier: MediaClassifier{},
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fingerprint reads the whole file at path and returns its record
func (f *Fingerprinter) Fingerprint(ctx context.Context, path string) (models.FileRecord, error) {
	reader, err := f.backend.Read(ctx, path)
	if err != nil {
		return models.FileRecord{}, &ReadError{Path: path, Err: err}
	}
	defer reader.Close()

	if f.readerWrapper != nil {
		reader = f.readerWrapper(reader)
	}

	hasher := f.newHash()

	bufPtr := f.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer f.bufferPool.Put(bufPtr)

	header := make([]byte, 0, HeaderSize)
	var totalRead int64

	for {
		select {
		case <-ctx.Done():
			return models.FileRecord{}, ctx.Err()
		default:
		}

		n, err := reader.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
			totalRead += int64(n)

			if missing := HeaderSize - len(header); missing > 0 {
				header = append(header, buffer[:min(n, missing)]...)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.FileRecord{}, &ReadError{Path: path, Err: err}
		}
	}

	return models.FileRecord{
		Path:        path,
		Fingerprint: hasher.Sum64(),
		Size:        totalRead,
		Previewable: f.classifier.Previewable(header),
	}, nil
}
