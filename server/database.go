package main

import (
	"database/sql"
	"encoding/json"

	_ "modernc.org/sqlite"
)

// DB wraps the terrain-map store (SPEC_FULL §4.9, §6 `GET /api/terrain-maps`,
// `changeTerrainMap`). The teacher's players/stats/matches accounts schema
// is dropped — this spec has no persistent-accounts feature — and the
// WAL-mode pure-Go-driver shape is re-wired to a domain-appropriate table.
type DB struct {
	conn *sql.DB
}

// TerrainMapRow is one named, persisted terrain configuration.
type TerrainMapRow struct {
	ID    string
	Name  string
	Tree  TreeParams
	Patch PatchParams
}

// OpenDB opens (or creates) the SQLite database and seeds each built-in
// terrain map whose id is not yet in the table.
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := db.seedBuiltinMaps(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS terrain_maps (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		tree_params_json TEXT NOT NULL,
		patch_params_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Error("terrain map schema migration failed", err, nil)
	}
	return err
}

// builtinTerrainMaps are the maps seeded on first run so the server works
// with zero operator setup (SPEC_FULL §11 domain stack).
func builtinTerrainMaps() []TerrainMapRow {
	def := DefaultTreeParams()
	defPatch := DefaultPatchParams()

	forest := def
	forest.MinTrees, forest.MaxTrees = 60, 90
	forest.Clustering = 70

	open := def
	open.MinTrees, open.MaxTrees = 4, 10
	open.Clustering = 10

	return []TerrainMapRow{
		{ID: "default", Name: "Default", Tree: def, Patch: defPatch},
		{ID: "forest", Name: "Forest", Tree: forest, Patch: defPatch},
		{ID: "open", Name: "Open Field", Tree: open, Patch: defPatch},
	}
}

func (db *DB) seedBuiltinMaps() error {
	for _, m := range builtinTerrainMaps() {
		var count int
		if err := db.conn.QueryRow("SELECT COUNT(*) FROM terrain_maps WHERE id = ?", m.ID).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.UpsertTerrainMap(m); err != nil {
			return err
		}
	}
	return nil
}

// UpsertTerrainMap inserts or replaces one terrain map definition.
func (db *DB) UpsertTerrainMap(m TerrainMapRow) error {
	treeJSON, err := json.Marshal(m.Tree)
	if err != nil {
		return err
	}
	patchJSON, err := json.Marshal(m.Patch)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(
		`INSERT INTO terrain_maps (id, name, tree_params_json, patch_params_json)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name,
			tree_params_json=excluded.tree_params_json,
			patch_params_json=excluded.patch_params_json`,
		m.ID, m.Name, string(treeJSON), string(patchJSON),
	)
	return err
}

// GetTerrainMap returns one terrain map by id.
func (db *DB) GetTerrainMap(id string) (*TerrainMapRow, error) {
	row := db.conn.QueryRow("SELECT id, name, tree_params_json, patch_params_json FROM terrain_maps WHERE id = ?", id)
	var m TerrainMapRow
	var treeJSON, patchJSON string
	if err := row.Scan(&m.ID, &m.Name, &treeJSON, &patchJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(treeJSON), &m.Tree); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(patchJSON), &m.Patch); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListTerrainMaps returns every persisted terrain map, ordered by id.
func (db *DB) ListTerrainMaps() ([]TerrainMapRow, error) {
	rows, err := db.conn.Query("SELECT id, name, tree_params_json, patch_params_json FROM terrain_maps ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TerrainMapRow
	for rows.Next() {
		var m TerrainMapRow
		var treeJSON, patchJSON string
		if err := rows.Scan(&m.ID, &m.Name, &treeJSON, &patchJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(treeJSON), &m.Tree); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(patchJSON), &m.Patch); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// lookupTerrainMap resolves a terrain map by id, falling back to the
// in-memory built-in map with that id when db is nil (e.g. in tests) or
// has no such row.
func lookupTerrainMap(db *DB, id string) (TerrainMapRow, bool) {
	if db != nil {
		if m, err := db.GetTerrainMap(id); err == nil && m != nil {
			return *m, true
		}
	}
	for _, m := range builtinTerrainMaps() {
		if m.ID == id {
			return m, true
		}
	}
	return TerrainMapRow{}, false
}
