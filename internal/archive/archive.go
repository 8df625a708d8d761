// Package archive snapshots cases into a local SQLite file for
// offline evidence retention. Snapshots are immutable: each run writes
// a new snapshot row plus a frozen copy of the case's entities,
// relationships and comments at that moment.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ghostlock/console/internal/model"
)

// Store is the SQLite-backed archive.
type Store struct {
	db *sql.DB
}

// Snapshot is one archived view of a case.
type Snapshot struct {
	ID            string    `json:"id"`
	CaseID        int64     `json:"case_id"`
	CaseName      string    `json:"case_name"`
	Entities      int       `json:"entities"`
	Relationships int       `json:"relationships"`
	Comments      int       `json:"comments"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewStore opens (and migrates) the archive database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open(sqliteDriver, dbPath+"?_journal_mode=WAL&_foreign_keys=off")
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate archive database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			case_id INTEGER NOT NULL,
			case_name TEXT NOT NULL,
			case_description TEXT,
			created_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS snapshot_entities (
			snapshot_id TEXT NOT NULL,
			entity_id INTEGER NOT NULL,
			case_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			kind TEXT,
			description TEXT,
			FOREIGN KEY (snapshot_id) REFERENCES snapshots(id)
		)`,

		`CREATE TABLE IF NOT EXISTS snapshot_relationships (
			snapshot_id TEXT NOT NULL,
			relationship_id INTEGER NOT NULL,
			source_entity_id INTEGER NOT NULL,
			target_entity_id INTEGER NOT NULL,
			relation TEXT,
			FOREIGN KEY (snapshot_id) REFERENCES snapshots(id)
		)`,

		`CREATE TABLE IF NOT EXISTS snapshot_comments (
			snapshot_id TEXT NOT NULL,
			comment_id INTEGER NOT NULL,
			entity_id INTEGER NOT NULL,
			text TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (snapshot_id) REFERENCES snapshots(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_snapshots_case_id ON snapshots(case_id)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_entities ON snapshot_entities(snapshot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_relationships ON snapshot_relationships(snapshot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_comments ON snapshot_comments(snapshot_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// SaveSnapshot archives one case with its scoped records and returns
// the snapshot id.
func (s *Store) SaveSnapshot(ctx context.Context, c model.Case, entities []model.Entity, rels []model.Relationship, comments []model.Comment) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.New().String()
	now := time.Now()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, case_id, case_name, case_description, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, c.ID, c.Name, c.Description, now.Unix())
	if err != nil {
		return "", fmt.Errorf("failed to save snapshot: %w", err)
	}

	for _, e := range entities {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snapshot_entities (snapshot_id, entity_id, case_id, name, kind, description) VALUES (?, ?, ?, ?, ?, ?)`,
			id, e.ID, e.CaseID, e.Name, e.Kind, e.Description)
		if err != nil {
			return "", fmt.Errorf("failed to save entity %d: %w", e.ID, err)
		}
	}

	for _, r := range rels {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snapshot_relationships (snapshot_id, relationship_id, source_entity_id, target_entity_id, relation) VALUES (?, ?, ?, ?, ?)`,
			id, r.ID, r.SourceEntityID, r.TargetEntityID, r.Relation)
		if err != nil {
			return "", fmt.Errorf("failed to save relationship %d: %w", r.ID, err)
		}
	}

	for _, cm := range comments {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snapshot_comments (snapshot_id, comment_id, entity_id, text, created_at) VALUES (?, ?, ?, ?, ?)`,
			id, cm.ID, cm.EntityID, cm.Text, cm.CreatedAt.Unix())
		if err != nil {
			return "", fmt.Errorf("failed to save comment %d: %w", cm.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return id, nil
}

// ListSnapshots returns all snapshots, newest-first, with record counts.
func (s *Store) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.case_id, s.case_name, s.created_at,
			(SELECT COUNT(*) FROM snapshot_entities e WHERE e.snapshot_id = s.id),
			(SELECT COUNT(*) FROM snapshot_relationships r WHERE r.snapshot_id = s.id),
			(SELECT COUNT(*) FROM snapshot_comments c WHERE c.snapshot_id = s.id)
		FROM snapshots s
		ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var snap Snapshot
		var createdAt int64
		if err := rows.Scan(&snap.ID, &snap.CaseID, &snap.CaseName, &createdAt,
			&snap.Entities, &snap.Relationships, &snap.Comments); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap.CreatedAt = time.Unix(createdAt, 0)
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// LoadSnapshot rehydrates one snapshot's records.
func (s *Store) LoadSnapshot(ctx context.Context, id string) (model.Case, []model.Entity, []model.Relationship, []model.Comment, error) {
	var c model.Case
	err := s.db.QueryRowContext(ctx,
		`SELECT case_id, case_name, COALESCE(case_description, '') FROM snapshots WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Description)
	if err == sql.ErrNoRows {
		return c, nil, nil, nil, fmt.Errorf("snapshot %s not found", id)
	}
	if err != nil {
		return c, nil, nil, nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var entities []model.Entity
	rows, err := s.db.QueryContext(ctx,
		`SELECT entity_id, case_id, name, COALESCE(kind, ''), COALESCE(description, '') FROM snapshot_entities WHERE snapshot_id = ?`, id)
	if err != nil {
		return c, nil, nil, nil, fmt.Errorf("failed to load entities: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e model.Entity
		if err := rows.Scan(&e.ID, &e.CaseID, &e.Name, &e.Kind, &e.Description); err != nil {
			return c, nil, nil, nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return c, nil, nil, nil, err
	}

	var rels []model.Relationship
	relRows, err := s.db.QueryContext(ctx,
		`SELECT relationship_id, source_entity_id, target_entity_id, COALESCE(relation, '') FROM snapshot_relationships WHERE snapshot_id = ?`, id)
	if err != nil {
		return c, nil, nil, nil, fmt.Errorf("failed to load relationships: %w", err)
	}
	defer relRows.Close()
	for relRows.Next() {
		var r model.Relationship
		if err := relRows.Scan(&r.ID, &r.SourceEntityID, &r.TargetEntityID, &r.Relation); err != nil {
			return c, nil, nil, nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		rels = append(rels, r)
	}
	if err := relRows.Err(); err != nil {
		return c, nil, nil, nil, err
	}

	var comments []model.Comment
	cmRows, err := s.db.QueryContext(ctx,
		`SELECT comment_id, entity_id, text, created_at FROM snapshot_comments WHERE snapshot_id = ?`, id)
	if err != nil {
		return c, nil, nil, nil, fmt.Errorf("failed to load comments: %w", err)
	}
	defer cmRows.Close()
	for cmRows.Next() {
		var cm model.Comment
		var created int64
		if err := cmRows.Scan(&cm.ID, &cm.EntityID, &cm.Text, &created); err != nil {
			return c, nil, nil, nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		cm.CreatedAt = time.Unix(created, 0)
		comments = append(comments, cm)
	}

	return c, entities, rels, comments, cmRows.Err()
}
