// Package verify confirms candidate clusters by exact content comparison.
package verify

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sdejongh/doppelganger/pkg/compare"
	"github.com/sdejongh/doppelganger/pkg/logging"
	"github.com/sdejongh/doppelganger/pkg/models"
	"github.com/sdejongh/doppelganger/pkg/storage"
)

// DefaultMemoryLimit is the largest file keyed by its full content (16MB)
const DefaultMemoryLimit = 16 * 1024 * 1024

// Outcome is the result of verifying one candidate cluster
type Outcome struct {
	// Confirmed holds one cluster per distinct content shared by two or
	// more members; every member of a confirmed cluster is byte-identical
	Confirmed []*models.Cluster

	// Failures lists members excluded because they could not be read
	Failures []models.HuntError
}

// group collects members with identical content
type group struct {
	members []models.FileRecord
}

// Verifier re-reads cluster members and partitions them by content
type Verifier struct {
	backend       storage.Backend
	comparator    *compare.BinaryComparator
	memoryLimit   int64
	readerWrapper compare.ReaderWrapper
	logger        logging.Logger
}

// Config holds verifier settings
type Config struct {
	// MemoryLimit is the largest member size held in memory; larger members
	// are streamed against group representatives. Zero streams everything.
	MemoryLimit int64

	BufferSize    int
	ReaderWrapper compare.ReaderWrapper
	Logger        logging.Logger
}

// New creates a verifier reading through backend
func New(backend storage.Backend, cfg Config) *Verifier {
	comparator := compare.NewBinaryComparator(backend, cfg.BufferSize)
	if cfg.ReaderWrapper != nil {
		comparator.SetReaderWrapper(cfg.ReaderWrapper)
	}
	return &Verifier{
		backend:       backend,
		comparator:    comparator,
		memoryLimit:   cfg.MemoryLimit,
		readerWrapper: cfg.ReaderWrapper,
		logger:        logging.OrNull(cfg.Logger).WithFields(logging.Fields{"phase": string(models.PhaseVerify)}),
	}
}

// Verify partitions cluster members by exact byte equality. Unreadable
// members are reported in Failures and left out. The returned error is
// non-nil only when ctx is done.
func (v *Verifier) Verify(ctx context.Context, cluster *models.Cluster) (Outcome, error) {
	var (
		outcome Outcome
		groups  []*group
		byKey   = make(map[string]*group)
	)

	for _, member := range cluster.Members {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		if member.Size <= v.memoryLimit {
			content, err := v.readAll(ctx, member.Path)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return Outcome{}, ctxErr
				}
				outcome.Failures = append(outcome.Failures, v.failure(ctx, member.Path, err))
				continue
			}

			key := string(content)
			if g, ok := byKey[key]; ok {
				g.members = append(g.members, member)
				continue
			}
			g := &group{members: []models.FileRecord{member}}
			byKey[key] = g
			groups = append(groups, g)
			continue
		}

		placed, err := v.placeStreamed(ctx, groups, member)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Outcome{}, ctxErr
			}
			outcome.Failures = append(outcome.Failures, v.failure(ctx, member.Path, err))
			continue
		}
		if placed == nil {
			groups = append(groups, &group{members: []models.FileRecord{member}})
		}
	}

	for _, g := range groups {
		if len(g.members) < 2 {
			continue
		}
		outcome.Confirmed = append(outcome.Confirmed, &models.Cluster{
			Fingerprint: cluster.Fingerprint,
			Members:     g.members,
		})
	}

	if len(outcome.Confirmed) == 0 {
		v.logger.Debug(ctx, "fingerprint collision dropped", logging.Fields{
			"fingerprint": cluster.Fingerprint,
			"members":     cluster.Len(),
		})
	}

	return outcome, nil
}

// placeStreamed appends member to the first streamed group of equal size and
// content. It returns nil when no group matched.
func (v *Verifier) placeStreamed(ctx context.Context, groups []*group, member models.FileRecord) (*group, error) {
	for _, g := range groups {
		if g.members[0].Size != member.Size || g.members[0].Size <= v.memoryLimit {
			continue
		}

		equal, err := v.matchGroup(ctx, g, member)
		if err != nil {
			return nil, err
		}
		if equal {
			g.members = append(g.members, member)
			return g, nil
		}
	}

	// Member must itself be readable to seed a new group
	reader, err := v.backend.Read(ctx, member.Path)
	if err != nil {
		return nil, &compare.ReadError{Path: member.Path, Err: err}
	}
	reader.Close()
	return nil, nil
}

// matchGroup compares member with the first readable member of g. Members
// that can no longer be read stay in g; if none is readable g never matches.
func (v *Verifier) matchGroup(ctx context.Context, g *group, member models.FileRecord) (bool, error) {
	for _, rep := range g.members {
		equal, err := v.comparator.Equal(ctx, rep.Path, member.Path)
		if err == nil {
			return equal, nil
		}

		var readErr *compare.ReadError
		if errors.As(err, &readErr) && readErr.Path == rep.Path {
			continue
		}
		return false, err
	}
	return false, nil
}

func (v *Verifier) readAll(ctx context.Context, path string) ([]byte, error) {
	reader, err := v.backend.Read(ctx, path)
	if err != nil {
		return nil, &compare.ReadError{Path: path, Err: err}
	}
	defer reader.Close()

	if v.readerWrapper != nil {
		reader = v.readerWrapper(reader)
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, &compare.ReadError{Path: path, Err: err}
	}
	return content, nil
}

func (v *Verifier) failure(ctx context.Context, path string, err error) models.HuntError {
	v.logger.Warn(ctx, "excluding unreadable file", logging.Fields{
		"path":  path,
		"error": err.Error(),
	})
	return models.HuntError{
		Path:      path,
		Phase:     models.PhaseVerify,
		Error:     err.Error(),
		Timestamp: time.Now(),
	}
}
