package types

// QuestionRow represents one (question, tag) pair in a per-tag artifact or
// the merged dataset.
type QuestionRow struct {
	Question string
	Tag      string
}

// Valid reports whether both fields are populated. Validation of merged
// output counts empty-field rows via this check.
func (r QuestionRow) Valid() bool {
	return r.Question != "" && r.Tag != ""
}

// SourceRow represents one row of the raw input dataset before tagging:
// a user query, its canonical answer, and the group ID linking semantically
// similar queries.
type SourceRow struct {
	Query  string
	Answer string
	ID     string
}
