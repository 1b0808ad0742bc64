// Package batch runs the per-file pipeline (identity, classification,
// reading, extraction) over a list of test files and accumulates the
// results into batch-level tables. Failures are isolated per file: a bad
// file is logged and skipped, never aborting the batch or contributing a
// partial row.
package batch

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"camcli/internal/cloud"
	"camcli/internal/config"
	"camcli/internal/features"
	"camcli/internal/files"
	"camcli/internal/identity"
	"camcli/internal/protocol"
	"camcli/pkg/contracts/domain"
)

// ProcessedFile describes one successfully processed input file.
type ProcessedFile struct {
	Path   string
	Sample domain.Sample
}

// FileFailure describes one skipped input file.
type FileFailure struct {
	Path string
	Err  error
}

// Result accumulates the per-file feature rows of a batch run. SampleIDs
// is in exact row-append order: entry i belongs to Summary row i, and for
// cycle-life files also to the Detail row appended for the same file.
type Result struct {
	Summary   *Table
	Detail    *Table
	SampleIDs []string
	Processed []ProcessedFile
	Failures  []FileFailure
}

// DetailSampleIDs returns the sample IDs of the cycle-life rows, in Detail
// row order.
func (r *Result) DetailSampleIDs() []string {
	var ids []string
	for _, p := range r.Processed {
		if p.Sample.Protocol == domain.ProtocolCycleLife {
			ids = append(ids, p.Sample.ID)
		}
	}
	return ids
}

// Orchestrator owns a batch run: it drives the per-file pipeline and is
// the only writer of the accumulated tables.
type Orchestrator struct {
	logger     *slog.Logger
	reader     cloud.Reader
	classifier *protocol.Classifier

	checkpointCycle int
	detailMaxCycle  int
	workers         int
}

// NewOrchestrator creates an orchestrator. reader may be nil, in which
// case each file's reader is chosen by extension.
func NewOrchestrator(logger *slog.Logger, reader cloud.Reader, classifier *protocol.Classifier, cfg config.BatchConfig) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		logger:          logger,
		reader:          reader,
		classifier:      classifier,
		checkpointCycle: cfg.CheckpointCycle,
		detailMaxCycle:  cfg.DetailMaxCycle,
		workers:         workers,
	}
}

// fileOutcome is everything a successfully processed file contributes.
type fileOutcome struct {
	sample  domain.Sample
	summary *features.FeatureSet
	detail  *features.FeatureSet
}

// Run processes every file independently and returns the accumulated
// tables. With Workers > 1 the files are processed by a bounded pool;
// outcomes are indexed by input position and appended in input order
// afterwards, so row order and the sample ID list stay in lockstep with
// the input regardless of completion order. The returned error is non-nil
// only for batch-level problems (context cancellation); per-file errors
// land in Result.Failures.
func (o *Orchestrator) Run(ctx context.Context, paths []string) (*Result, error) {
	o.logger.InfoContext(ctx, "starting batch run",
		slog.Int("file_count", len(paths)),
		slog.Int("workers", o.workers))

	outcomes := make([]*fileOutcome, len(paths))
	failures := make([]error, len(paths))

	if o.workers <= 1 {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes[i], failures[i] = o.processFile(ctx, path)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.workers)
		for i, path := range paths {
			i, path := i, path
			g.Go(func() error {
				outcomes[i], failures[i] = o.processFile(gctx, path)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	result := &Result{
		Summary: NewTable(),
		Detail:  NewTable(),
	}
	for i, path := range paths {
		if failures[i] != nil {
			o.logger.ErrorContext(ctx, "skipping file after processing failure",
				slog.String("file", path),
				slog.String("error", failures[i].Error()))
			result.Failures = append(result.Failures, FileFailure{Path: path, Err: failures[i]})
			continue
		}

		outcome := outcomes[i]
		result.Summary.AppendRow(outcome.summary)
		if outcome.detail != nil {
			result.Detail.AppendRow(outcome.detail)
		}
		result.SampleIDs = append(result.SampleIDs, outcome.sample.ID)
		result.Processed = append(result.Processed, ProcessedFile{Path: path, Sample: outcome.sample})
	}

	o.logger.InfoContext(ctx, "batch run finished",
		slog.Int("processed", len(result.Processed)),
		slog.Int("failed", len(result.Failures)))

	return result, nil
}

// processFile runs the full per-file pipeline. Any error fails the whole
// file; no partially built feature set escapes.
func (o *Orchestrator) processFile(ctx context.Context, path string) (*fileOutcome, error) {
	filename := files.Stem(path)

	o.logger.DebugContext(ctx, "processing file", slog.String("filename", filename))

	sampleID, err := identity.ResolveID(filename)
	if err != nil {
		return nil, err
	}

	mass, extracted := identity.ExtractMass(filename)
	if !extracted {
		o.logger.DebugContext(ctx, "mass not found in filename, using default",
			slog.String("filename", filename),
			slog.Float64("mass", mass))
	}

	proto, err := o.classifier.Classify(ctx, filename)
	if err != nil {
		return nil, err
	}

	reader := o.reader
	if reader == nil {
		if reader, err = cloud.ForFile(path); err != nil {
			return nil, err
		}
	}
	record, err := reader.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	outcome := &fileOutcome{
		sample: domain.Sample{
			ID:            sampleID,
			Mass:          mass,
			MassExtracted: extracted,
			Protocol:      proto,
		},
	}

	if outcome.summary, err = features.ForProtocol(proto, record, mass, o.checkpointCycle); err != nil {
		return nil, err
	}
	if proto == domain.ProtocolCycleLife {
		if outcome.detail, err = features.CycleLifeDetailFeatures(record, mass, o.detailMaxCycle); err != nil {
			return nil, err
		}
	}

	o.logger.DebugContext(ctx, "file processed",
		slog.String("filename", filename),
		slog.String("sample_id", sampleID),
		slog.String("protocol", string(proto)))

	return outcome, nil
}
