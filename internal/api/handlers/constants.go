package handlers

const (
	// Response status values
	statusHealthy = "healthy"

	// Upper bound on note names accepted by the interval endpoint
	maxNoteNameLength = 8
	// Upper bound on chord symbols accepted by the chord endpoint
	maxChordSymbolLength = 32

	// Non-standard status for requests the client abandoned (nginx convention)
	statusClientClosedRequest = 499
)
