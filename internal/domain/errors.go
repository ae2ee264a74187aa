package domain

import "errors"

var (
	// ErrInvalidTimeWindow is returned when a query names an unknown window.
	ErrInvalidTimeWindow = errors.New("invalid time window")

	// ErrNoCheckpoint is returned when no scan checkpoint row exists yet.
	ErrNoCheckpoint = errors.New("no checkpoint stored")

	// ErrNoEvents is returned by queries that need at least one ledger row.
	ErrNoEvents = errors.New("no events recorded")

	// ErrNotSale marks a raw log whose transaction carries no resolvable
	// sale detail; enrichment skips the entry without failing the batch.
	ErrNotSale = errors.New("log is not a resolvable sale")
)
