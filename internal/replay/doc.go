// Package replay folds an ordered stream of RFC events into a Specification.
//
// The engine is a two-state machine. Idle is the initial state; a
// BatchCommitStarted moves it to InBatch and the matching BatchCommitEnded
// records a BatchCommit and returns it to Idle. Data events (contributions,
// naming and git state) are applied immediately in either state. While a
// batch is open their zero-based stream positions are collected as the
// batch's members; batch markers are not members.
//
// Batches do not nest. A second start while a batch is open, an end with a
// different id, an end with no open batch and a stream that finishes with a
// batch still open are all BatchErrors. The first error poisons the engine
// and the partial specification is discarded.
package replay
