package world

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	// Registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/oshokin/clearmob/internal/domain/entity"
	"github.com/oshokin/clearmob/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	custom_name TEXT NOT NULL DEFAULT ''
)`

// SQLite is a world stored in a SQLite table the host keeps up to date.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the world database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	path = filepath.Clean(path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLite{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Spawn inserts an entity, assigning a random ID when it has none.
func (s *SQLite) Spawn(ctx context.Context, e entity.Entity) (entity.Entity, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entities (id, kind, custom_name) VALUES (?, ?, ?)`,
		e.ID, string(e.Kind), e.CustomName)
	if err != nil {
		return entity.Entity{}, fmt.Errorf("insert entity: %w", err)
	}

	return e, nil
}

// List returns every row whose kind is catalogued. Unknown kinds are logged and skipped.
func (s *SQLite) List(ctx context.Context) ([]entity.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, kind, custom_name FROM entities ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	var entities []entity.Entity

	for rows.Next() {
		var id, rawKind, customName string
		if err := rows.Scan(&id, &rawKind, &customName); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}

		kind, err := entity.ParseKind(rawKind)
		if err != nil {
			logger.WarnKV(ctx, "Skipping world entity of unknown kind", "id", id, "kind", rawKind)
			continue
		}

		entities = append(entities, entity.Entity{ID: id, Kind: kind, CustomName: customName})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}

	return entities, nil
}

// Remove deletes the row with the given ID.
func (s *SQLite) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entity %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entity %s: %w", id, err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return nil
}

// Path returns the database location.
func (s *SQLite) Path() string {
	return s.path
}

// compile-time interface checks.
var (
	_ Source = (*Memory)(nil)
	_ Source = (*SQLite)(nil)
)
