// Package sqlite implements the SQLite storage backend for ladder.
package sqlite

// currentSchemaVersion is stored in PRAGMA user_version after migrations.
const currentSchemaVersion = 1

// Schema DDL. The partial unique index on rank is the hard backstop for
// rank density: no two committed active todos can hold the same rank, no
// matter how they got written.
const (
	createTodos = `CREATE TABLE IF NOT EXISTS todos (
    todo_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL,
    rank INTEGER,
    due_date TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// Index DDL for rank uniqueness and the common scans.
const (
	idxTodosActiveRank = `CREATE UNIQUE INDEX IF NOT EXISTS idx_todos_active_rank ON todos(rank) WHERE status = 'active';`
	idxTodosRank       = `CREATE INDEX IF NOT EXISTS idx_todos_rank ON todos(rank);`
	idxTodosStatus     = `CREATE INDEX IF NOT EXISTS idx_todos_status ON todos(status);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createTodos,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxTodosActiveRank,
	idxTodosRank,
	idxTodosStatus,
}
