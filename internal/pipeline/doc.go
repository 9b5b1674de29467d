// Package pipeline drives the resumable batch generation run.
//
// The orchestrator enumerates work items (tags in stable order), consults
// the checkpoint store to find the resume point, and processes one item at
// a time: look up the answer, draw examples, call the generation client,
// persist the artifact on success, then advance the checkpoint. Processing
// is deliberately sequential to respect external-service rate limits and to
// keep the checkpoint/artifact ordering crash-safe without locking.
//
// # Outcome model
//
// Each item ends success, failed, or skipped, and the checkpoint advances
// after every item regardless of outcome. The one invariant that makes a
// kill-and-restart safe: the checkpoint for ordinal i is written if and only
// if processing of ordinal i fully finished, including any artifact write.
// A restart therefore always begins at a clean item boundary.
//
// A failed item is not retried across runs; only rewinding the checkpoint
// by hand re-includes its ordinal.
//
// # Stale checkpoints
//
// If the stored ordinal no longer fits the current work list (the input
// shrank between runs), the cursor is reset to the beginning rather than
// silently treating the run as complete.
package pipeline
