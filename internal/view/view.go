// Package view projects the session state onto what the terminal shows.
package view

import (
	"strconv"

	"github.com/spigell/resume-analyzer/internal/gateway"
	"github.com/spigell/resume-analyzer/internal/session"
)

type Kind int

const (
	KindEmpty Kind = iota
	KindPopulated
)

const (
	TriggerIdle      = "Execute Prediction"
	TriggerBusy      = "Processing NLP..."
	EmptyPlaceholder = "Awaiting Data Input for Prediction Analysis"
	NoMatchesMarker  = "No direct matches found"
	NoGapsMarker     = "No major gaps detected"
)

// Model is everything needed to draw the trigger and the result area.
type Model struct {
	Kind           Kind
	TriggerLabel   string
	TriggerEnabled bool

	Score    string
	Verdict  string
	FileName string
	Matching []string
	Gaps     []string
	// NoMatches and NoGaps replace the corresponding empty tag list.
	NoMatches bool
	NoGaps    bool
}

// Render is a pure function of the state. While a request is in flight or
// after a failure the last successful report stays on screen.
func Render(state session.State) Model {
	m := Model{
		Kind:           KindEmpty,
		TriggerLabel:   TriggerIdle,
		TriggerEnabled: true,
	}

	if state.Phase == session.InFlight {
		m.TriggerLabel = TriggerBusy
		m.TriggerEnabled = false
	}

	if state.Result != nil {
		populate(&m, state.Result)
	}

	return m
}

func populate(m *Model, r *gateway.Result) {
	m.Kind = KindPopulated
	m.Score = FormatScore(r.MatchScore)
	m.Verdict = r.Verdict
	m.FileName = r.FileName
	m.Matching = append([]string(nil), r.MatchingSkills...)
	m.Gaps = append([]string(nil), r.MissingSkills...)
	m.NoMatches = len(r.MatchingSkills) == 0
	m.NoGaps = len(r.MissingSkills) == 0
}

// FormatScore prints the score as a percentage without trailing zeros.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64) + "%"
}
