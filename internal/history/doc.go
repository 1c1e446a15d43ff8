// Package history persists analysis results in SQLite.
//
// Each row is keyed by project folder, document path and scan run, so the
// same document can be compared across runs. Writers that record a whole
// scan take an exclusive file lock next to the database first; readers never
// lock. The schema is embedded and versioned; a database created by another
// schema version is rejected rather than migrated.
package history
