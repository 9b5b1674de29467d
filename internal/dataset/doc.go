// Package dataset loads and indexes the source CSVs for a generation run.
//
// Two inputs are consumed: an examples file mapping user questions to tags,
// and an answers file mapping each tag to its canonical answer. The store
// exposes the deduplicated tag list in case-insensitive ascending order;
// the resume checkpoint's numeric cursor depends on this ordering being
// stable across runs.
//
// A configured sentinel tag and rows with empty question text are excluded
// at load time.
package dataset
