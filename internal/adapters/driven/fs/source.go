// Package fs loads the knowledge base from a directory of markdown and JSON
// files described by a metadata manifest.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
)

// Ensure Source implements DocumentSource
var _ driven.DocumentSource = (*Source)(nil)

// manifestName is the file listing the documents of the knowledge directory.
const manifestName = "metadata.json"

// manifestEntry is one document in the manifest. File accepts a single path
// or a list of paths whose contents are concatenated.
type manifestEntry struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Tags    []string        `json:"tags"`
	Summary string          `json:"summary"`
	File    json.RawMessage `json:"file"`
}

// Source reads documents from a knowledge directory. JSON files contribute
// both flattened text content and entries in the structured fact table;
// markdown files contribute raw text. Unreadable or malformed files are
// skipped with a log line, never failing the whole load.
type Source struct {
	dir    string
	logger *slog.Logger
}

// New creates a Source reading from dir.
func New(dir string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{dir: dir, logger: logger}
}

// Load reads the manifest and every referenced file, returning the documents
// and the structured fact table accumulated from JSON files.
func (s *Source) Load(ctx context.Context) ([]domain.Document, domain.FactTable, error) {
	manifest, err := os.ReadFile(filepath.Join(s.dir, manifestName))
	if err != nil {
		return nil, nil, fmt.Errorf("read knowledge manifest: %w", err)
	}

	var entries []manifestEntry
	if err := json.Unmarshal(manifest, &entries); err != nil {
		return nil, nil, fmt.Errorf("parse knowledge manifest: %w", err)
	}

	tree := make(map[string]any)
	documents := make([]domain.Document, 0, len(entries))
	for _, entry := range entries {
		var parts []string
		for _, file := range entryFiles(entry.File) {
			content, ok := s.loadContent(file, tree)
			if ok && content != "" {
				parts = append(parts, content)
			}
		}

		documents = append(documents, domain.Document{
			ID:      entry.ID,
			Title:   entry.Title,
			Tags:    entry.Tags,
			Summary: entry.Summary,
			Content: strings.Join(parts, "\n\n"),
		})
	}

	return documents, domain.FlattenTree(tree), nil
}

// loadContent reads one referenced file. JSON files are merged into the
// structured tree and rendered as "path: value" lines; anything else is
// returned verbatim.
func (s *Source) loadContent(relative string, tree map[string]any) (string, bool) {
	path := filepath.Join(s.dir, relative)

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("skipping unreadable knowledge file", "file", relative, "error", err)
		return "", false
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var parsed map[string]any
		if err := json.Unmarshal(data, &parsed); err != nil {
			s.logger.Warn("skipping malformed knowledge file", "file", relative, "error", err)
			return "", false
		}
		domain.MergeTree(tree, parsed)
		return domain.FlattenTree(parsed).Lines(), true
	}

	return string(data), true
}

// entryFiles decodes the manifest file field: a string or a list of strings.
func entryFiles(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}
