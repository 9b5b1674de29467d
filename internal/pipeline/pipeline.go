package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/paragen/pkg/types"
)

// Generator produces the paraphrase set for one tag.
type Generator interface {
	Generate(ctx context.Context, answer, tag string, examples []string) (questions []string, attempts int, err error)
}

// ExampleSource supplies the ordered work list, canonical answers, and
// example draws.
type ExampleSource interface {
	Tags() []string
	Answer(tag string) (string, bool)
	Sample(tag string, k int) []string
}

// CheckpointStore persists the resume cursor.
type CheckpointStore interface {
	Read() (int, error)
	Write(ordinal int) error
	Reset() error
}

// ArtifactWriter persists one tag's generated output.
type ArtifactWriter interface {
	Write(tag string, questions []string) error
}

// Recorder receives per-item outcomes for the run history. Implementations
// must treat recording as advisory; a recorder error never stops the run.
type Recorder interface {
	RecordItem(ctx context.Context, runID string, result types.ItemResult) error
}

// Sleeper abstracts the post-success pause so tests run without delays.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Options configures an orchestrator run.
type Options struct {
	// ExampleCount is the number of example questions drawn per tag.
	ExampleCount int

	// SuccessPause is the delay inserted after each successful item to stay
	// under external rate limits. No delay follows a skip or failure.
	SuccessPause time.Duration

	// TestCount limits the run to the first N tags when > 0.
	TestCount int
}

// Orchestrator runs the generation state machine over the work list.
type Orchestrator struct {
	source   ExampleSource
	gen      Generator
	ckpt     CheckpointStore
	writer   ArtifactWriter
	recorder Recorder // optional
	opts     Options
	logger   *zap.Logger
	sleeper  Sleeper
	now      func() time.Time
}

// New creates an orchestrator. recorder may be nil.
func New(source ExampleSource, gen Generator, ckpt CheckpointStore, writer ArtifactWriter, recorder Recorder, opts Options, logger *zap.Logger) *Orchestrator {
	if opts.ExampleCount <= 0 {
		opts.ExampleCount = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		source:   source,
		gen:      gen,
		ckpt:     ckpt,
		writer:   writer,
		recorder: recorder,
		opts:     opts,
		logger:   logger,
		sleeper:  realSleeper{},
		now:      time.Now,
	}
}

// SetSleeper replaces the pause implementation. Intended for tests.
func (o *Orchestrator) SetSleeper(s Sleeper) {
	o.sleeper = s
}

// Run processes the work list from the resume point to the end and returns
// the run tallies. The returned stats cover only items attempted in this
// invocation. runID tags ledger entries and may be empty when no recorder is
// configured.
func (o *Orchestrator) Run(ctx context.Context, runID string) (types.RunStats, error) {
	var stats types.RunStats

	items := o.source.Tags()
	if o.opts.TestCount > 0 && o.opts.TestCount < len(items) {
		items = items[:o.opts.TestCount]
		o.logger.Info("test mode: limiting work list", zap.Int("tags", len(items)))
	}
	total := len(items)
	if total == 0 {
		o.logger.Warn("no tags to process")
		return stats, nil
	}

	start, err := o.resumeIndex(total)
	if err != nil {
		return stats, err
	}
	if start > 0 {
		o.logger.Info("resuming from checkpoint",
			zap.Int("start_index", start),
			zap.Int("already_processed", start))
	}

	startTime := o.now()

	for i := start; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		tag := items[i]
		result := o.processItem(ctx, i, tag)
		stats.Record(result.Outcome)
		o.record(ctx, runID, result)

		// The artifact write (inside processItem) has already finished for
		// successful items, so advancing the checkpoint here keeps the
		// write-before-checkpoint ordering.
		if err := o.ckpt.Write(i); err != nil {
			return stats, fmt.Errorf("checkpoint item %d: %w", i, err)
		}

		o.logProgress(i, total, start, startTime, tag, result, stats)

		if result.Outcome == types.OutcomeSuccess && o.opts.SuccessPause > 0 {
			if err := o.sleeper.Sleep(ctx, o.opts.SuccessPause); err != nil {
				return stats, err
			}
		}
	}

	o.logger.Info("processing complete",
		zap.Int("total", total),
		zap.Int("success", stats.Success),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped))
	return stats, nil
}

// resumeIndex derives the first ordinal to process. A stored cursor that no
// longer fits the work list means the input shrank between runs; the cursor
// is reset so no valid work gets skipped.
func (o *Orchestrator) resumeIndex(total int) (int, error) {
	last, err := o.ckpt.Read()
	if err != nil {
		return 0, err
	}

	start := last + 1
	if start >= total {
		if last >= 0 {
			o.logger.Warn("stale checkpoint: input shrank, restarting from the beginning",
				zap.Int("stored", last),
				zap.Int("work_items", total))
		}
		if err := o.ckpt.Reset(); err != nil {
			return 0, err
		}
		return 0, nil
	}
	return start, nil
}

// processItem runs the per-item state machine: skip on missing answer, skip
// on missing examples, otherwise generate and persist.
func (o *Orchestrator) processItem(ctx context.Context, ordinal int, tag string) types.ItemResult {
	started := o.now()
	result := types.ItemResult{Ordinal: ordinal, Tag: tag}

	answer, ok := o.source.Answer(tag)
	if !ok {
		o.logger.Info("skipped: no answer for tag", zap.String("tag", tag))
		result.Outcome = types.OutcomeSkipped
		result.Duration = o.now().Sub(started)
		return result
	}

	examples := o.source.Sample(tag, o.opts.ExampleCount)
	if len(examples) == 0 {
		o.logger.Info("skipped: no example questions for tag", zap.String("tag", tag))
		result.Outcome = types.OutcomeSkipped
		result.Duration = o.now().Sub(started)
		return result
	}

	o.logger.Info("generating",
		zap.String("tag", tag),
		zap.Int("examples", len(examples)))

	questions, attempts, err := o.gen.Generate(ctx, answer, tag, examples)
	result.Attempts = attempts
	if err != nil {
		o.logger.Warn("failed: generation exhausted its attempts",
			zap.String("tag", tag),
			zap.Error(err))
		result.Outcome = types.OutcomeFailed
		result.Err = err
		result.Duration = o.now().Sub(started)
		return result
	}

	if err := o.writer.Write(tag, questions); err != nil {
		// A write failure is a local disk problem, not a service fault.
		// The item counts as failed and the checkpoint still advances.
		o.logger.Error("failed: could not persist artifact",
			zap.String("tag", tag),
			zap.Error(err))
		result.Outcome = types.OutcomeFailed
		result.Err = err
		result.Duration = o.now().Sub(started)
		return result
	}

	o.logger.Info("saved artifact",
		zap.String("tag", tag),
		zap.Int("questions", len(questions)))
	result.Outcome = types.OutcomeSuccess
	result.Duration = o.now().Sub(started)
	return result
}

func (o *Orchestrator) record(ctx context.Context, runID string, result types.ItemResult) {
	if o.recorder == nil || runID == "" {
		return
	}
	if err := o.recorder.RecordItem(ctx, runID, result); err != nil {
		o.logger.Warn("could not record item in ledger", zap.Error(err))
	}
}

// logProgress emits the running tallies and an elapsed-time ETA. The ETA is
// advisory only.
func (o *Orchestrator) logProgress(i, total, start int, startTime time.Time, tag string, result types.ItemResult, stats types.RunStats) {
	fields := []zap.Field{
		zap.String("tag", tag),
		zap.String("outcome", string(result.Outcome)),
		zap.String("progress", fmt.Sprintf("%d/%d", i+1, total)),
		zap.Float64("pct", float64(i+1)/float64(total)*100),
		zap.Int("success", stats.Success),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
	}

	processed := i - start + 1
	if processed > 1 {
		elapsed := o.now().Sub(startTime)
		avg := elapsed / time.Duration(processed)
		remaining := avg * time.Duration(total-(i+1))
		fields = append(fields, zap.Duration("eta", remaining.Round(time.Second)))
	}

	o.logger.Info("item done", fields...)
}
