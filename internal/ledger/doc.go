// Package ledger records labprep runs in SQLite: which songs were segmented
// into which files, the advisory drift findings of each validation pass, and
// per-song failures.
//
// The ledger is history, not state. Nothing reads it back to make decisions;
// the report command and tests query it. Schema changes bump schemaVersion in
// schema.go and users delete the ledger file to adopt them.
package ledger
