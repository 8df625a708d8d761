// Package ingest bulk-creates entities in a case from CSV or JSON
// files: one-shot imports and a drop-folder watch mode.
package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghostlock/console/internal/model"
)

// EntityCreator is the remote surface needed to import entities.
// *remote.Client satisfies this.
type EntityCreator interface {
	CreateEntity(ctx context.Context, caseID int64, name, kind, description string) (*model.Entity, error)
}

// Row is one entity candidate parsed from an import file. The "type"
// column is accepted as an alias for "kind".
type Row struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Result summarizes one import: how many rows were created and
// per-row errors for the rest.
type Result struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// Message renders the summary line shown to the user.
func (r Result) Message() string {
	msg := fmt.Sprintf("Successfully imported %d entities", r.Imported)
	if len(r.Errors) > 0 {
		msg += fmt.Sprintf(" with %d errors", len(r.Errors))
	}
	return msg
}

// Importer creates entities from files.
type Importer struct {
	creator EntityCreator
	logger  *log.Logger
}

// NewImporter constructs an importer.
func NewImporter(creator EntityCreator, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.New(log.Writer(), "[import] ", log.LstdFlags)
	}
	return &Importer{creator: creator, logger: logger}
}

// ImportFile imports one .json or .csv file into the given case.
func (im *Importer) ImportFile(ctx context.Context, caseID int64, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	var rows []Row
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		rows, err = parseJSON(f)
	case ".csv":
		rows, err = parseCSV(f)
	default:
		return nil, fmt.Errorf("file must be .csv or .json: %s", path)
	}
	if err != nil {
		return nil, err
	}

	return im.importRows(ctx, caseID, rows)
}

func (im *Importer) importRows(ctx context.Context, caseID int64, rows []Row) (*Result, error) {
	result := &Result{}
	for i, row := range rows {
		name := strings.TrimSpace(row.Name)
		kind := strings.TrimSpace(row.Kind)
		if kind == "" {
			kind = strings.TrimSpace(row.Type)
		}
		description := strings.TrimSpace(row.Description)

		if name == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing name", i+1))
			continue
		}
		if kind == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing kind/type", i+1))
			continue
		}

		if _, err := im.creator.CreateEntity(ctx, caseID, name, kind, description); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.Imported++
	}

	im.logger.Printf("imported %d entities into case %d (%d errors)", result.Imported, caseID, len(result.Errors))
	return result, nil
}

// parseJSON expects a top-level array of entity objects.
func parseJSON(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return rows, nil
}

// parseCSV expects a header row naming at least "name" and one of
// "kind"/"type". Unknown columns are ignored.
func parseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, Row{
			Name:        field(record, "name"),
			Kind:        field(record, "kind"),
			Type:        field(record, "type"),
			Description: field(record, "description"),
		})
	}
	return rows, nil
}
