// Package label models time-aligned phoneme label data (HTS-style .lab files).
//
// A Record carries the minimal shape every algorithm needs (symbol, start and
// end in 100ns ticks) plus an opaque context payload that full-context labels
// keep intact. Streams of records are grouped four at a time into a Group, the
// unit that validation and segmentation slice in lockstep.
//
// Parsing and serialization are lossless: loading a stream and writing it back
// without modification reproduces the original records.
package label
