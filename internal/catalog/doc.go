// Package catalog persists songs and their workflow state in SQLite.
//
// The Store manages database connections, schema migrations, song records,
// per-stage status rows, checklist items, and the append-only transition
// log. Stage status rows spring into existence on first write (an upsert at
// the persistence boundary) and are mutated in place afterwards; transition
// records are never updated or deleted.
//
// Treat this package as the single source of truth for catalog semantics;
// when you add columns or tables, add a migration file and keep the scan
// helpers in sync.
package catalog
