package programdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store persists program sources in a sqlite database so a program can be
// loaded by name without its YAML file.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Item kinds as stored in the items table.
const (
	itemTrait   = "trait"
	itemStruct  = "struct"
	itemEnum    = "enum"
	itemImpl    = "impl"
	itemFn      = "fn"
	itemClosure = "closure"
	itemGoal    = "goal"
)

// OpenStore creates or opens a program store.
func OpenStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS programs (
		name TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- One row per declaration, body is the JSON-encoded declaration
	CREATE TABLE IF NOT EXISTS items (
		program TEXT NOT NULL,
		seq INTEGER NOT NULL,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		body TEXT NOT NULL,
		PRIMARY KEY (program, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_items_kind ON items(program, kind);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save replaces the stored program called name with src.
func (s *Store) Save(ctx context.Context, name string, src *Source) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE program = ?`, name); err != nil {
		return fmt.Errorf("failed to clear program %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO programs (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("failed to register program %s: %w", name, err)
	}

	seq := 0
	insert := func(kind, itemName string, decl any) error {
		body, err := json.Marshal(decl)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s: %w", kind, itemName, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO items (program, seq, kind, name, body) VALUES (?, ?, ?, ?, ?)`,
			name, seq, kind, itemName, string(body))
		if err != nil {
			return fmt.Errorf("failed to insert %s %s: %w", kind, itemName, err)
		}
		seq++
		return nil
	}

	for _, d := range src.Traits {
		if err := insert(itemTrait, d.Name, d); err != nil {
			return err
		}
	}
	for _, d := range src.Structs {
		if err := insert(itemStruct, d.Name, d); err != nil {
			return err
		}
	}
	for _, d := range src.Enums {
		if err := insert(itemEnum, d.Name, d); err != nil {
			return err
		}
	}
	for _, d := range src.Impls {
		if err := insert(itemImpl, d.Trait+" for "+d.For, d); err != nil {
			return err
		}
	}
	for _, d := range src.Fns {
		if err := insert(itemFn, d.Name, d); err != nil {
			return err
		}
	}
	for _, d := range src.Closures {
		if err := insert(itemClosure, d.Name, d); err != nil {
			return err
		}
	}
	for _, d := range src.Goals {
		if err := insert(itemGoal, d.Name, d); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit program %s: %w", name, err)
	}
	return nil
}

// Load reads the program called name back into a Source. Declarations come
// back in the order they were saved.
func (s *Store) Load(ctx context.Context, name string) (*Source, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM programs WHERE name = ?`, name).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up program %s: %w", name, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("program %s not found", name)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, name, body FROM items WHERE program = ? ORDER BY seq`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query program %s: %w", name, err)
	}
	defer rows.Close()

	src := &Source{}
	for rows.Next() {
		var kind, itemName, body string
		if err := rows.Scan(&kind, &itemName, &body); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if err := src.decodeItem(kind, []byte(body)); err != nil {
			return nil, fmt.Errorf("failed to decode %s %s: %w", kind, itemName, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program %s: %w", name, err)
	}
	return src, nil
}

func (src *Source) decodeItem(kind string, body []byte) error {
	switch kind {
	case itemTrait:
		var d TraitDecl
		if err := json.Unmarshal(body, &d); err != nil {
			return err
		}
		src.Traits = append(src.Traits, d)
	case itemStruct:
		var d StructDecl
		if err := json.Unmarshal(body, &d); err != nil {
			return err
		}
		src.Structs = append(src.Structs, d)
	case itemEnum:
		var d EnumDecl
		if err := json.Unmarshal(body, &d); err != nil {
			return err
		}
		src.Enums = append(src.Enums, d)
	case itemImpl:
		var d ImplDecl
		if err := json.Unmarshal(body, &d); err != nil {
			return err
		}
		src.Impls = append(src.Impls, d)
	case itemFn:
		var d FnDecl
		if err := json.Unmarshal(body, &d); err != nil {
			return err
		}
		src.Fns = append(src.Fns, d)
	case itemClosure:
		var d ClosureDecl
		if err := json.Unmarshal(body, &d); err != nil {
			return err
		}
		src.Closures = append(src.Closures, d)
	case itemGoal:
		var d GoalDecl
		if err := json.Unmarshal(body, &d); err != nil {
			return err
		}
		src.Goals = append(src.Goals, d)
	default:
		return fmt.Errorf("unknown item kind %q", kind)
	}
	return nil
}

// Programs lists stored program names.
func (s *Store) Programs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM programs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan program name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
