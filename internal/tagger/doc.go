// Package tagger turns a raw (query, answer, id) dataset into the two CSVs
// the generation pipeline consumes. Queries sharing a group ID get one
// short, human-readable topic tag, produced by asking the generation
// provider for a 2-4 word snake_case label. Tagging is a single stateless
// pass per group with no retry or resume state; a provider failure falls
// back to a deterministic tag derived from the group ID.
package tagger
