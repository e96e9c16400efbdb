package domain

import "fmt"

// ValidationError reports malformed or missing required input. Detected
// before any simulation work begins, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnknownStrategyError reports a strategy id with no registered
// implementation.
type UnknownStrategyError struct {
	StrategyID string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown strategy: %s", e.StrategyID)
}

// NoCandidatesError reports that there is nothing to rank.
type NoCandidatesError struct {
	Reason string
}

func (e *NoCandidatesError) Error() string {
	return fmt.Sprintf("no candidates: %s", e.Reason)
}

// DataUnavailableError reports that an external collaborator returned no
// data. Surfaced unchanged rather than masked with a default, since a
// substituted default would corrupt performance metrics.
type DataUnavailableError struct {
	Source string
	Key    string
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("no data from %s for %s", e.Source, e.Key)
}
