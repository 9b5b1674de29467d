// Package types provides shared type definitions for the paragen pipeline.
//
// This package defines domain types used across multiple components of
// paragen, including dataset rows, per-item outcomes, and tag accuracy
// statistics.
//
// # Core Types
//
// QuestionRow is the two-column schema shared by per-tag artifacts and the
// merged dataset:
//
//	row := types.QuestionRow{
//	    Question: "How do I register as a voter?",
//	    Tag:      "voter_registration",
//	}
//
// ItemResult records the outcome of processing one work item:
//
//	result := types.ItemResult{
//	    Ordinal: 3,
//	    Tag:     "nid_card",
//	    Outcome: types.OutcomeFailed,
//	}
//
// TagStat holds per-tag prediction accuracy for the report stage:
//
//	stat := types.TagStat{Tag: "voting", Right: 42, Wrong: 3}
//	stat.Accuracy() // 93.33...
//
// # Outcome Model
//
// Every work item ends in exactly one of three outcomes: success (artifact
// written), failed (generation exhausted its attempts), or skipped (no answer
// or no examples for the tag). Skips are data gaps, not errors.
package types
