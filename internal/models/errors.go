package models

import "errors"

var (
	// ErrInsufficientHistory means fewer observations than the scan
	// minimum were available. Non-fatal: the symbol is skipped.
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrProviderFailure means a history or quote fetch failed or timed
	// out. Non-fatal: the symbol is skipped and its stale cache entry
	// retained.
	ErrProviderFailure = errors.New("data provider failure")

	// ErrComputationFault means an unexpected numeric failure inside the
	// indicator/signal/scoring pipeline. Caught at the per-symbol
	// boundary.
	ErrComputationFault = errors.New("computation fault")

	// ErrInvalidWeights is a configuration fault: it is surfaced to the
	// caller immediately rather than swallowed per symbol.
	ErrInvalidWeights = errors.New("invalid signal weights")

	ErrInvalidSymbol    = errors.New("invalid symbol")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidBar       = errors.New("invalid bar (high < low)")
	ErrInvalidVolume    = errors.New("invalid volume")
)
