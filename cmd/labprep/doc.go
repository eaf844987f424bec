// Package main hosts the labprep CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration, runs preflight checks on
// out_dir, and hands each command to the pipeline package: validation and
// segmentation of the four label streams, train list generation, label
// finalization, and ledger reports.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
