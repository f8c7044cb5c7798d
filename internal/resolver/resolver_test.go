package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tramboard/internal/directory"
)

// scripted records every call and answers with a fixed choice.
type scripted struct {
	choice string
	err    error
	calls  [][]string
}

func (s *scripted) Disambiguate(_ context.Context, candidates []string) (string, error) {
	s.calls = append(s.calls, candidates)
	return s.choice, s.err
}

func testDirectory(t *testing.T) *directory.Directory {
	t.Helper()
	d, err := directory.New([]directory.Entry{
		{Name: "Borstei", ID: "de:09184:460"},
		{Name: "Hauptbahnhof", ID: "de:09162:6"},
		{Name: "Hauptbahnhof Nord", ID: "de:09162:7"},
		{Name: "Hauptbahnhof Süd", ID: "de:09162:8"},
	})
	require.NoError(t, err)
	return d
}

func TestResolve_SingleMatchSkipsDisambiguation(t *testing.T) {
	d := &scripted{choice: "Hauptbahnhof"}

	stop, err := Resolve(context.Background(), "  bors ", testDirectory(t), d)
	require.NoError(t, err)
	assert.Equal(t, Stop{Name: "Borstei", ID: "de:09184:460"}, stop)
	assert.Empty(t, d.calls, "disambiguator must not run for a single candidate")
}

func TestResolve_MultipleMatchesAskOnce(t *testing.T) {
	d := &scripted{choice: "Hauptbahnhof Nord"}

	stop, err := Resolve(context.Background(), "hauptbahnhof", testDirectory(t), d)
	require.NoError(t, err)
	assert.Equal(t, Stop{Name: "Hauptbahnhof Nord", ID: "de:09162:7"}, stop)

	require.Len(t, d.calls, 1)
	assert.Equal(t, []string{"Hauptbahnhof", "Hauptbahnhof Nord", "Hauptbahnhof Süd"}, d.calls[0])
}

func TestResolve_EmptyTerm(t *testing.T) {
	for _, term := range []string{"", "   ", "\t\n"} {
		_, err := Resolve(context.Background(), term, testDirectory(t), nil)
		assert.ErrorIs(t, err, ErrEmptyTerm, "term %q", term)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	_, err := Resolve(context.Background(), " Marienplatz ", testDirectory(t), nil)

	var nm *NoMatchError
	require.ErrorAs(t, err, &nm)
	assert.Equal(t, "Marienplatz", nm.Term)
}

func TestResolve_InvalidSelection(t *testing.T) {
	tests := []struct {
		name string
		d    *scripted
	}{
		{"none", &scripted{choice: ""}},
		{"not a candidate", &scripted{choice: "Borstei"}},
		{"wrong case", &scripted{choice: "hauptbahnhof nord"}},
		{"aborted", &scripted{err: errors.New("user aborted")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(context.Background(), "haupt", testDirectory(t), tt.d)
			assert.ErrorIs(t, err, ErrInvalidSelection)

			var se *SelectionError
			require.ErrorAs(t, err, &se)
			assert.Len(t, se.Candidates, 3)
			assert.Len(t, tt.d.calls, 1)
		})
	}
}

func TestResolve_NilDisambiguator(t *testing.T) {
	_, err := Resolve(context.Background(), "haupt", testDirectory(t), nil)
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestChoice(t *testing.T) {
	stop, err := Resolve(context.Background(), "haupt", testDirectory(t), Choice(" Hauptbahnhof Süd "))
	require.NoError(t, err)
	assert.Equal(t, "de:09162:8", stop.ID)
}
