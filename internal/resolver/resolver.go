// Package resolver turns a free-text search term into exactly one stop.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"tramboard/internal/directory"
)

// ErrEmptyTerm is returned for blank search terms.
var ErrEmptyTerm = errors.New("empty search term")

// ErrInvalidSelection is matched by every *SelectionError.
var ErrInvalidSelection = errors.New("invalid stop selection")

// NoMatchError reports a term that matched no stop.
type NoMatchError struct {
	Term string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no stop matches %q", e.Term)
}

// SelectionError reports that disambiguation did not produce one of the candidates.
type SelectionError struct {
	Candidates []string
	Choice     string
	Err        error // error from the disambiguator, if any
}

func (e *SelectionError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("stop selection abandoned: %v", e.Err)
	case e.Choice == "":
		return "no stop selected"
	default:
		return fmt.Sprintf("%q is not one of the matching stops", e.Choice)
	}
}

func (e *SelectionError) Is(target error) bool { return target == ErrInvalidSelection }

func (e *SelectionError) Unwrap() error { return e.Err }

// Stop is a resolved directory entry.
type Stop struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Disambiguator picks one stop name out of several candidates.
// An empty name means nothing was chosen. Implementations may block
// (for example on user input) until a choice is made or ctx is done.
type Disambiguator interface {
	Disambiguate(ctx context.Context, candidates []string) (string, error)
}

// DisambiguatorFunc adapts a function to Disambiguator.
type DisambiguatorFunc func(ctx context.Context, candidates []string) (string, error)

func (f DisambiguatorFunc) Disambiguate(ctx context.Context, candidates []string) (string, error) {
	return f(ctx, candidates)
}

// Choice returns a Disambiguator that always answers name. Used when the
// selection was made up front, e.g. a form field or a command-line flag.
func Choice(name string) Disambiguator {
	return DisambiguatorFunc(func(context.Context, []string) (string, error) {
		return strings.TrimSpace(name), nil
	})
}

// Resolve finds the stop for term. With a single candidate d is never called;
// with several it is called exactly once with all of them.
func Resolve(ctx context.Context, term string, dir *directory.Directory, d Disambiguator) (Stop, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Stop{}, ErrEmptyTerm
	}

	candidates := dir.Match(term)
	switch len(candidates) {
	case 0:
		return Stop{}, &NoMatchError{Term: term}
	case 1:
		id, _ := dir.Lookup(candidates[0])
		return Stop{Name: candidates[0], ID: id}, nil
	}

	if d == nil {
		return Stop{}, &SelectionError{Candidates: candidates}
	}
	choice, err := d.Disambiguate(ctx, slices.Clone(candidates))
	if err != nil {
		return Stop{}, &SelectionError{Candidates: candidates, Err: err}
	}
	if choice == "" || !slices.Contains(candidates, choice) {
		return Stop{}, &SelectionError{Candidates: candidates, Choice: choice}
	}
	id, _ := dir.Lookup(choice)
	return Stop{Name: choice, ID: id}, nil
}
