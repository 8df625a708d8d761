// Package export serializes one case and its scoped entities and
// relationships from the cache snapshot into JSON or CSV. Only
// relationships with both endpoints inside the case are exported,
// matching what the graph view shows.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ghostlock/console/internal/cache"
	"github.com/ghostlock/console/internal/model"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want json or csv)", s)
	}
}

// Document is the JSON export shape.
type Document struct {
	Case          model.Case           `json:"case"`
	Entities      []model.Entity       `json:"entities"`
	Relationships []model.Relationship `json:"relationships"`
}

// Collect gathers the export document for one case from the snapshot.
func Collect(snap *cache.Snapshot, caseID int64) (*Document, error) {
	c, ok := snap.CaseByID(caseID)
	if !ok {
		return nil, fmt.Errorf("case %d is not in the cache", caseID)
	}

	doc := &Document{Case: c, Entities: []model.Entity{}, Relationships: []model.Relationship{}}

	ids := make(map[int64]bool)
	for _, e := range snap.Entities() {
		if e.CaseID != caseID {
			continue
		}
		ids[e.ID] = true
		doc.Entities = append(doc.Entities, e)
	}
	for _, r := range snap.Relationships() {
		if !ids[r.SourceEntityID] || !ids[r.TargetEntityID] {
			continue
		}
		doc.Relationships = append(doc.Relationships, r)
	}
	return doc, nil
}

// Write encodes the document to w in the requested format.
func Write(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to write JSON export: %w", err)
		}
		return nil
	case FormatCSV:
		return writeCSV(w, doc)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func writeCSV(w io.Writer, doc *Document) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"type", "id", "name", "kind", "description", "source_entity_id", "target_entity_id", "relation"},
		{"case", strconv.FormatInt(doc.Case.ID, 10), doc.Case.Name, "", doc.Case.Description, "", "", ""},
	}
	for _, e := range doc.Entities {
		rows = append(rows, []string{
			"entity", strconv.FormatInt(e.ID, 10), e.Name, e.Kind, e.Description, "", "", "",
		})
	}
	for _, r := range doc.Relationships {
		rows = append(rows, []string{
			"relationship", strconv.FormatInt(r.ID, 10), "", "", "",
			strconv.FormatInt(r.SourceEntityID, 10), strconv.FormatInt(r.TargetEntityID, 10), r.Relation,
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV export: %w", err)
	}
	return nil
}
