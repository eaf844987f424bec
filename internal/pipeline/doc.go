// Package pipeline drives labprep commands over an out_dir.
//
// Every command holds an exclusive lock on the out_dir state directory,
// gets a run id, and records its outcome in the ledger when one is attached.
// Run validates the whole batch first (a barrier: structural mismatches abort
// before anything is segmented) and then segments songs concurrently. Each
// song fails on its own; with fail_fast set no new songs start after the
// first failure, and segments already written for other songs stay on disk.
package pipeline
