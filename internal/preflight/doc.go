// Package preflight checks that the directories a command reads and writes
// exist with the permissions it needs before any label is touched.
//
// The CLI runs the checks for the command being executed and refuses to start
// when one fails, so a missing input directory is reported up front instead
// of midway through a batch.
package preflight
