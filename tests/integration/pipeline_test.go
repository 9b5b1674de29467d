package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dshills/paragen/internal/artifact"
	"github.com/dshills/paragen/internal/checkpoint"
	"github.com/dshills/paragen/internal/dataset"
	"github.com/dshills/paragen/internal/generator"
	"github.com/dshills/paragen/internal/ledger"
	"github.com/dshills/paragen/internal/merge"
	"github.com/dshills/paragen/internal/pipeline"
)

const targetCount = 10

// PipelineTestSuite exercises the full generate-then-merge flow with real
// dataset, checkpoint, artifact, and ledger components around a mock provider.
type PipelineTestSuite struct {
	suite.Suite
	ctx       context.Context
	workDir   string
	store     *dataset.Store
	provider  *MockProvider
	ckpt      *checkpoint.Store
	writer    *artifact.Writer
	ledgerDB  *ledger.Ledger
	artifacts string
}

func (s *PipelineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.workDir = s.T().TempDir()

	examples := filepath.Join(s.workDir, "queries_tags.csv")
	answers := filepath.Join(s.workDir, "tags_answers.csv")
	s.Require().NoError(os.WriteFile(examples, []byte(
		"query,tag\n"+
			"how do I vote,voting\n"+
			"where do I vote,voting\n"+
			"how to get an nid card,nid_card\n"+
			"what is half of ten,fraction\n"), 0o644))
	s.Require().NoError(os.WriteFile(answers, []byte(
		"tag,answer\n"+
			"voting,Visit your local election office.\n"+
			"nid_card,Apply at the registration center.\n"), 0o644))

	store, err := dataset.Load(examples, answers, "fraction")
	s.Require().NoError(err)
	s.store = store

	s.provider = NewMockProvider(targetCount)
	s.ckpt = checkpoint.New(filepath.Join(s.workDir, "progress.txt"))
	s.artifacts = filepath.Join(s.workDir, "individual_tags")
	writer, err := artifact.NewWriter(s.artifacts)
	s.Require().NoError(err)
	s.writer = writer

	ldb, err := ledger.Open(filepath.Join(s.workDir, "paragen.db"))
	s.Require().NoError(err)
	s.ledgerDB = ldb
}

func (s *PipelineTestSuite) TearDownTest() {
	if s.ledgerDB != nil {
		_ = s.ledgerDB.Close()
	}
}

func (s *PipelineTestSuite) newOrchestrator() *pipeline.Orchestrator {
	client := generator.NewClient(s.provider, generator.Options{
		TargetCount:    targetCount,
		MaxAttempts:    3,
		ShortfallDelay: time.Millisecond,
		FaultDelay:     time.Millisecond,
	}, nil)
	o := pipeline.New(s.store, client, s.ckpt, s.writer, s.ledgerDB, pipeline.Options{
		ExampleCount: 30,
	}, nil)
	return o
}

func (s *PipelineTestSuite) TestFullRunAndMerge() {
	runID, err := s.ledgerDB.StartRun(s.ctx, "generate", "mock", "mock-v1")
	s.Require().NoError(err)

	stats, err := s.newOrchestrator().Run(s.ctx, runID)
	s.Require().NoError(err)
	s.Equal(2, stats.Success)
	s.Equal(0, stats.Failed)
	s.Equal(0, stats.Skipped)
	s.Require().NoError(s.ledgerDB.FinishRun(s.ctx, runID, stats))

	// Both artifacts exist with the full question count.
	paths, err := artifact.List(s.artifacts)
	s.Require().NoError(err)
	s.Require().Len(paths, 2)
	for _, path := range paths {
		rows, err := artifact.Read(path)
		s.Require().NoError(err)
		s.Len(rows, targetCount)
	}

	// Checkpoint points at the last ordinal.
	last, err := s.ckpt.Read()
	s.Require().NoError(err)
	s.Equal(1, last)

	// Merge produces the combined dataset and validation passes.
	out := filepath.Join(s.workDir, "merged.csv")
	count, err := merge.Merge(s.ctx, s.artifacts, out)
	s.Require().NoError(err)
	s.Equal(2*targetCount, count)

	report, err := merge.Validate(out, count, targetCount)
	s.Require().NoError(err)
	s.True(report.OK(), report.Summary())

	// The ledger recorded the run and every item.
	runs, err := s.ledgerDB.ListRuns(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(runs, 1)
	s.Equal(2, runs[0].Success)

	items, err := s.ledgerDB.ListItems(s.ctx, runID)
	s.Require().NoError(err)
	s.Len(items, 2)
}

func (s *PipelineTestSuite) TestRestartAfterCompletedRun() {
	// First run completes both items.
	o := s.newOrchestrator()
	_, err := o.Run(s.ctx, "")
	s.Require().NoError(err)
	callsAfterFirst := s.provider.Calls()
	s.Equal(2, callsAfterFirst)

	// The finished cursor now points past the end, so a second run resets
	// it and rebuilds everything from scratch.
	stats, err := s.newOrchestrator().Run(s.ctx, "")
	s.Require().NoError(err)
	s.Equal(2, stats.Total(), "full restart after cursor passed the end")
	s.Equal(callsAfterFirst+2, s.provider.Calls())
}

func (s *PipelineTestSuite) TestMidRunResume() {
	// Simulate a crash after item 0 by pre-setting the checkpoint.
	s.Require().NoError(s.ckpt.Write(0))

	stats, err := s.newOrchestrator().Run(s.ctx, "")
	s.Require().NoError(err)
	s.Equal(1, stats.Total(), "only the unfinished item runs")
	s.Equal(1, s.provider.Calls())

	paths, err := artifact.List(s.artifacts)
	s.Require().NoError(err)
	s.Len(paths, 1, "only the resumed item produced an artifact")
}

func (s *PipelineTestSuite) TestPersistentShortfallFailsItem() {
	// Every completion for the voting tag comes back one question short.
	s.provider.FailShort("Visit your local election office.")

	stats, err := s.newOrchestrator().Run(s.ctx, "")
	s.Require().NoError(err)
	s.Equal(1, stats.Success)
	s.Equal(1, stats.Failed)

	// The failed tag left no artifact; the run still finished and the
	// checkpoint covers both items.
	paths, err := artifact.List(s.artifacts)
	s.Require().NoError(err)
	s.Require().Len(paths, 1)
	s.Equal("nid_card.csv", filepath.Base(paths[0]))

	last, err := s.ckpt.Read()
	s.Require().NoError(err)
	s.Equal(1, last)
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}
