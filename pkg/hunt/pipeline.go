package hunt

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/doppelganger/pkg/compare"
	"github.com/sdejongh/doppelganger/pkg/fingerprint"
	"github.com/sdejongh/doppelganger/pkg/index"
	"github.com/sdejongh/doppelganger/pkg/logging"
	"github.com/sdejongh/doppelganger/pkg/models"
	"github.com/sdejongh/doppelganger/pkg/output"
	"github.com/sdejongh/doppelganger/pkg/scan"
	"github.com/sdejongh/doppelganger/pkg/verify"
)

// keyWidthSetter is implemented by indexes that size their keys up front
type keyWidthSetter interface {
	SetKeyWidth(width int)
}

// fingerprintResult carries one worker outcome to the index consumer
type fingerprintResult struct {
	path   string
	record models.FileRecord
	err    error
}

// verifyResult carries one cluster outcome to the report consumer
type verifyResult struct {
	candidate *models.Cluster
	outcome   verify.Outcome
}

// pipeline holds the state of a single run
type pipeline struct {
	engine    *Engine
	operation *models.HuntOperation
	logger    logging.Logger
	formatter output.Formatter
	index     index.Index
	wrap      compare.ReaderWrapper

	report *models.HuntReport
}

func newPipeline(e *Engine, idx index.Index, wrap compare.ReaderWrapper) *pipeline {
	return &pipeline{
		engine:    e,
		operation: e.operation,
		logger:    e.logger,
		formatter: e.formatter,
		index:     idx,
		wrap:      wrap,
	}
}

func (p *pipeline) run(ctx context.Context) (*models.HuntReport, error) {
	p.report = &models.HuntReport{
		OperationID: p.operation.ID,
		Root:        p.operation.Root,
		IndexKind:   p.operation.IndexKind,
		StartTime:   time.Now(),
		Status:      models.StatusSuccess,
	}

	p.logger.Info(ctx, "Starting hunt", logging.Fields{
		"operation_id": p.operation.ID,
		"root":         p.operation.Root,
		"index":        string(p.operation.IndexKind),
		"max_workers":  p.operation.MaxWorkers,
		"skip_hidden":  p.operation.SkipHidden,
	})

	if p.operation.DeleteDuplicates {
		p.logger.Info(ctx, "Delete requested; duplicates are reported and left in place", nil)
	}

	if p.formatter != nil {
		p.formatter.Start(nil, p.operation.MaxWorkers)
	}

	traverser := scan.NewTraverser(p.engine.backend, scan.Options{
		SkipHidden: p.operation.SkipHidden,
		Exclude:    p.operation.Exclude,
	}, p.logger)

	// Phases 1 and 2: traversal feeds the fingerprint pool, which feeds the index
	p.fingerprintPhase(ctx, traverser)
	if err := ctx.Err(); err != nil {
		return p.fail(ctx, err)
	}

	// Barrier: every record is in the index
	candidates := p.indexPhase(ctx, traverser.MaxPathLength())
	if err := ctx.Err(); err != nil {
		return p.fail(ctx, err)
	}

	// Phase 3: byte-exact verification, one task per candidate cluster
	p.verifyPhase(ctx, candidates)
	if err := ctx.Err(); err != nil {
		return p.fail(ctx, err)
	}

	p.finish(ctx)
	return p.report, nil
}

// fingerprintPhase drains the traverser through a bounded worker pool.
// A single consumer owns the index so Add never runs concurrently.
func (p *pipeline) fingerprintPhase(ctx context.Context, traverser *scan.Traverser) {
	p.progress(output.ProgressUpdate{Type: output.UpdatePhaseStart, Phase: models.PhaseFingerprint})

	fp := fingerprint.New(p.engine.backend, p.operation.BufferSize,
		fingerprint.WithHash(p.engine.hashFunc),
		fingerprint.WithClassifier(p.engine.classifier),
		fingerprint.WithReaderWrapper(fingerprint.ReaderWrapper(p.wrap)),
	)

	results := make(chan fingerprintResult, p.operation.MaxWorkers*2)
	consumed := make(chan struct{})

	go func() {
		defer close(consumed)
		done := 0
		for r := range results {
			done++
			if r.err != nil {
				if ctx.Err() == nil {
					p.recordError(ctx, r.path, models.PhaseFingerprint, r.err)
				}
				p.progress(output.ProgressUpdate{
					Type:     output.UpdateFileError,
					Phase:    models.PhaseFingerprint,
					FilePath: r.path,
					Current:  done,
					Error:    r.err,
				})
				continue
			}
			p.index.Add(r.record)
			p.report.Stats.FilesFingerprinted++
			p.report.Stats.BytesRead += r.record.Size
			p.progress(output.ProgressUpdate{
				Type:     output.UpdateFileDone,
				Phase:    models.PhaseFingerprint,
				FilePath: r.path,
				Bytes:    r.record.Size,
				Current:  done,
			})
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.operation.MaxWorkers)

	for path := range traverser.Paths(gctx) {
		g.Go(func() error {
			record, err := fp.Fingerprint(gctx, path)
			results <- fingerprintResult{path: path, record: record, err: err}
			return nil
		})
	}

	_ = g.Wait()
	close(results)
	<-consumed

	p.report.Stats.FilesDiscovered = traverser.Discovered()
	p.report.Stats.MaxPathLength = traverser.MaxPathLength()
	p.report.Errors = append(p.report.Errors, traverser.Errors()...)

	// A walk cut short by the backend leaves the files found so far in play
	if err := traverser.Err(); err != nil && ctx.Err() == nil {
		p.recordError(ctx, p.operation.Root, models.PhaseTraverse, err)
	}

	p.logger.Info(ctx, "Fingerprinting complete", logging.Fields{
		"discovered":    p.report.Stats.FilesDiscovered,
		"fingerprinted": p.report.Stats.FilesFingerprinted,
		"bytes_read":    p.report.Stats.BytesRead,
	})
	p.progress(output.ProgressUpdate{
		Type:    output.UpdatePhaseComplete,
		Phase:   models.PhaseFingerprint,
		Current: p.report.Stats.FilesFingerprinted,
		Total:   p.report.Stats.FilesDiscovered,
	})
}

// indexPhase extracts candidate clusters. An index failure is recorded and
// the hunt continues with no candidates.
func (p *pipeline) indexPhase(ctx context.Context, maxPathLength int) []*models.Cluster {
	if sizer, ok := p.index.(keyWidthSetter); ok {
		sizer.SetKeyWidth(maxPathLength)
	}

	candidates, err := p.index.Clusters(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.recordError(ctx, p.operation.Root, models.PhaseIndex, err)
		}
		return nil
	}

	p.report.Stats.CandidateClusters = len(candidates)
	p.logger.Debug(ctx, "Candidate clusters extracted", logging.Fields{
		"candidates": len(candidates),
		"index":      string(p.operation.IndexKind),
	})
	return candidates
}

// verifyPhase checks every candidate concurrently; confirmed clusters are
// appended by a single consumer in completion order
func (p *pipeline) verifyPhase(ctx context.Context, candidates []*models.Cluster) {
	p.progress(output.ProgressUpdate{Type: output.UpdatePhaseStart, Phase: models.PhaseVerify, Total: len(candidates)})

	verifier := verify.New(p.engine.backend, verify.Config{
		MemoryLimit:   p.operation.VerifyMemoryLimit,
		BufferSize:    p.operation.BufferSize,
		ReaderWrapper: p.wrap,
		Logger:        p.logger,
	})

	results := make(chan verifyResult, p.operation.MaxWorkers)
	consumed := make(chan struct{})

	go func() {
		defer close(consumed)
		done := 0
		for r := range results {
			done++
			confirmedMembers := 0
			for _, c := range r.outcome.Confirmed {
				p.report.Clusters = append(p.report.Clusters, c)
				confirmedMembers += c.Len()
			}
			p.report.Errors = append(p.report.Errors, r.outcome.Failures...)
			p.report.Stats.CollisionsDropped += r.candidate.Len() - confirmedMembers - len(r.outcome.Failures)
			p.progress(output.ProgressUpdate{
				Type:    output.UpdateClusterDone,
				Phase:   models.PhaseVerify,
				Current: done,
				Total:   len(candidates),
			})
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.operation.MaxWorkers)

	for _, candidate := range candidates {
		g.Go(func() error {
			outcome, err := verifier.Verify(gctx, candidate)
			if err != nil {
				return err
			}
			results <- verifyResult{candidate: candidate, outcome: outcome}
			return nil
		})
	}

	_ = g.Wait()
	close(results)
	<-consumed

	p.progress(output.ProgressUpdate{
		Type:    output.UpdatePhaseComplete,
		Phase:   models.PhaseVerify,
		Current: len(candidates),
		Total:   len(candidates),
	})
}

func (p *pipeline) finish(ctx context.Context) {
	r := p.report
	r.Stats.ConfirmedClusters = len(r.Clusters)
	r.Stats.DuplicateFiles = r.DuplicatePaths()
	r.Stats.WastedBytes = 0
	for _, c := range r.Clusters {
		r.Stats.WastedBytes += c.WastedBytes()
	}
	for _, e := range r.Errors {
		if e.Phase != models.PhaseIndex {
			r.Stats.FilesErrored++
		}
	}

	if len(r.Errors) > 0 {
		r.Status = models.StatusPartial
	}

	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)

	if p.formatter != nil {
		p.formatter.Complete(r)
	}

	p.logger.Info(ctx, "Hunt completed", logging.Fields{
		"duration":           r.Duration.String(),
		"status":             string(r.Status),
		"confirmed_clusters": r.Stats.ConfirmedClusters,
		"duplicate_files":    r.Stats.DuplicateFiles,
		"wasted_bytes":       r.Stats.WastedBytes,
		"errors":             len(r.Errors),
	})
}

// fail closes out a cancelled run
func (p *pipeline) fail(ctx context.Context, err error) (*models.HuntReport, error) {
	p.report.Status = models.StatusFailed
	p.report.EndTime = time.Now()
	p.report.Duration = p.report.EndTime.Sub(p.report.StartTime)
	if p.formatter != nil {
		p.formatter.Error(err)
	}
	p.logger.Error(ctx, "Hunt aborted", err, nil)
	return p.report, err
}

func (p *pipeline) recordError(ctx context.Context, path string, phase models.Phase, err error) {
	p.logger.Warn(ctx, "Recovered error", logging.Fields{
		"path":  path,
		"phase": string(phase),
		"error": err.Error(),
	})
	p.report.Errors = append(p.report.Errors, models.HuntError{
		Path:      path,
		Phase:     phase,
		Error:     err.Error(),
		Timestamp: time.Now(),
	})
}

func (p *pipeline) progress(update output.ProgressUpdate) {
	if p.formatter != nil {
		p.formatter.Progress(update)
	}
}
