package query

import (
	"tramboard/internal/departure"
	"tramboard/internal/resolver"
)

// State is the lifecycle position of a query.
type State int

const (
	Idle State = iota
	Resolving
	Fetching
	Succeeded
	Failed
)

var stateNames = [...]string{"idle", "resolving", "fetching", "succeeded", "failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Kind tags the outcome of a query.
type Kind int

const (
	None Kind = iota
	EmptyTerm
	NoMatch
	InvalidSelection
	NetworkError
	EmptyResult
)

var kindNames = [...]string{"none", "empty_term", "no_match", "invalid_selection", "network_error", "empty_result"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Result is what a query hands back for display.
type Result struct {
	Stop       resolver.Stop         `json:"stop"`
	Departures []departure.Departure `json:"departures"`
	Kind       Kind                  `json:"kind"`
	Message    string                `json:"message,omitempty"`
	Candidates []string              `json:"candidates,omitempty"` // set for InvalidSelection
	Stale      bool                  `json:"stale,omitempty"`
}

// Failed reports whether the query ended in an error. EmptyResult is not one.
func (r Result) Failed() bool {
	return r.Kind != None && r.Kind != EmptyResult
}
