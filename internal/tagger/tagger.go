package tagger

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/paragen/internal/generator"
	"github.com/dshills/paragen/pkg/types"
)

// Columns configures the input CSV column names.
type Columns struct {
	Query  string
	Answer string
	ID     string
}

// DefaultColumns returns the conventional column names.
func DefaultColumns() Columns {
	return Columns{Query: "query", Answer: "answer", ID: "id"}
}

// Processor groups source rows by ID and assigns a generated topic tag to
// each group.
type Processor struct {
	provider generator.Provider
	logger   *zap.Logger

	data        []types.SourceRow
	idToQueries map[string][]string
	idToAnswer  map[string]string
	idOrder     []string // Group IDs in first-seen order
	idToTag     map[string]string
}

// New creates a tagger processor around a generation provider.
func New(provider generator.Provider, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		provider:    provider,
		logger:      logger,
		idToQueries: make(map[string][]string),
		idToAnswer:  make(map[string]string),
		idToTag:     make(map[string]string),
	}
}

// LoadCSV reads the input dataset, validating that the configured columns
// exist. Rows with any empty field are dropped.
func (p *Processor) LoadCSV(path string, cols Columns) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(all) == 0 {
		return fmt.Errorf("%w: %s is empty", types.ErrEmptyDataset, path)
	}

	header := all[0]
	for i, col := range header {
		header[i] = strings.ToLower(strings.TrimSpace(col))
	}

	queryIdx, err := findColumn(header, cols.Query, path)
	if err != nil {
		return err
	}
	answerIdx, err := findColumn(header, cols.Answer, path)
	if err != nil {
		return err
	}
	idIdx, err := findColumn(header, cols.ID, path)
	if err != nil {
		return err
	}

	for _, record := range all[1:] {
		row := types.SourceRow{}
		if queryIdx < len(record) {
			row.Query = strings.TrimSpace(record[queryIdx])
		}
		if answerIdx < len(record) {
			row.Answer = strings.TrimSpace(record[answerIdx])
		}
		if idIdx < len(record) {
			row.ID = strings.TrimSpace(record[idIdx])
		}
		if row.Query == "" || row.Answer == "" || row.ID == "" {
			continue
		}

		p.data = append(p.data, row)
		if _, seen := p.idToQueries[row.ID]; !seen {
			p.idOrder = append(p.idOrder, row.ID)
			// All queries with the same ID share one answer; first wins.
			p.idToAnswer[row.ID] = row.Answer
		}
		p.idToQueries[row.ID] = append(p.idToQueries[row.ID], row.Query)
	}

	if len(p.data) == 0 {
		return fmt.Errorf("%w: %s has no usable rows", types.ErrEmptyDataset, path)
	}

	p.logger.Info("loaded source dataset",
		zap.String("path", path),
		zap.Int("rows", len(p.data)),
		zap.Int("groups", len(p.idOrder)))
	return nil
}

func findColumn(header []string, name, path string) (int, error) {
	for i, col := range header {
		if col == strings.ToLower(name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q in %s (available: %s)",
		types.ErrMissingColumn, name, path, strings.Join(header, ", "))
}

// GenerateTags asks the provider for a topic tag per group, sanitizing and
// uniquifying the results. Provider failures fall back to tag_<id>.
func (p *Processor) GenerateTags(ctx context.Context) error {
	if len(p.data) == 0 {
		return fmt.Errorf("%w: no data loaded", types.ErrEmptyDataset)
	}

	used := make(map[string]bool)
	for i, id := range p.idOrder {
		tag := p.tagForGroup(ctx, id)

		// Uniquify with a numeric suffix.
		base := tag
		for n := 1; used[tag]; n++ {
			tag = fmt.Sprintf("%s_%d", base, n)
		}
		used[tag] = true
		p.idToTag[id] = tag

		if (i+1)%10 == 0 || i+1 == len(p.idOrder) {
			p.logger.Info("tagging groups",
				zap.String("progress", fmt.Sprintf("%d/%d", i+1, len(p.idOrder))))
		}
	}
	return nil
}

func (p *Processor) tagForGroup(ctx context.Context, id string) string {
	queries := p.idToQueries[id]
	answer := p.idToAnswer[id]

	raw, err := p.provider.Complete(ctx, buildTagPrompt(queries, answer))
	if err != nil {
		p.logger.Warn("tag generation failed, using fallback",
			zap.String("group", id),
			zap.Error(err))
		return "tag_" + id
	}

	tag := SanitizeTag(raw)
	if tag == "" {
		return "tag_" + id
	}
	return tag
}

// buildTagPrompt asks for a short snake_case label given up to five sample
// queries and a truncated answer.
func buildTagPrompt(queries []string, answer string) string {
	sample := queries
	if len(sample) > 5 {
		sample = sample[:5]
	}

	const answerLimit = 500
	truncated := answer
	if len(truncated) > answerLimit {
		truncated = truncated[:answerLimit] + "..."
	}

	var b strings.Builder
	b.WriteString("Based on the following similar queries and their answer, generate a short, descriptive tag (2-4 words) that captures the main topic or intent.\n\nSample Queries:\n")
	for _, q := range sample {
		fmt.Fprintf(&b, "- %s\n", q)
	}
	fmt.Fprintf(&b, "\nAnswer:\n%s\n\n", truncated)
	b.WriteString("Requirements:\n")
	b.WriteString("- The tag should be 2-4 words maximum\n")
	b.WriteString("- Use lowercase with underscores between words (e.g., \"voter_registration_process\")\n")
	b.WriteString("- Do not include special characters except underscores\n")
	b.WriteString("- Output ONLY the tag, nothing else\n\nTag:")
	return b.String()
}

// SanitizeTag normalizes a raw provider response into a usable tag:
// lowercase, spaces and hyphens collapsed to underscores, everything except
// letters, digits, and underscores dropped.
func SanitizeTag(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	tag = strings.ReplaceAll(tag, " ", "_")
	tag = strings.ReplaceAll(tag, "-", "_")

	var b strings.Builder
	for _, r := range tag {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "_")
}

// Split writes the two pipeline input files: queries_tags.csv (query, tag)
// in source-row order and tags_answers.csv (tag, answer) in group order.
// Returns the two output paths.
func (p *Processor) Split(outputDir string) (string, string, error) {
	if len(p.idToTag) == 0 {
		return "", "", fmt.Errorf("no tags generated; call GenerateTags first")
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output directory: %w", err)
	}

	queriesPath := filepath.Join(outputDir, "queries_tags.csv")
	answersPath := filepath.Join(outputDir, "tags_answers.csv")

	queryRows := [][]string{{"query", "tag"}}
	for _, row := range p.data {
		queryRows = append(queryRows, []string{row.Query, p.idToTag[row.ID]})
	}
	if err := writeCSV(queriesPath, queryRows); err != nil {
		return "", "", err
	}

	answerRows := [][]string{{"tag", "answer"}}
	for _, id := range p.idOrder {
		answerRows = append(answerRows, []string{p.idToTag[id], p.idToAnswer[id]})
	}
	if err := writeCSV(answersPath, answerRows); err != nil {
		return "", "", err
	}

	p.logger.Info("wrote pipeline inputs",
		zap.String("queries", queriesPath),
		zap.Int("query_rows", len(p.data)),
		zap.String("answers", answersPath),
		zap.Int("answer_rows", len(p.idOrder)))
	return queriesPath, answersPath, nil
}

// Tags returns the id → tag assignment after GenerateTags.
func (p *Processor) Tags() map[string]string {
	out := make(map[string]string, len(p.idToTag))
	for id, tag := range p.idToTag {
		out[id] = tag
	}
	return out
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
