package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/spigell/resume-analyzer/internal/intake"
)

const (
	intakePlaceholder = "Drag & Drop Resume (PDF/DOCX) or Click to Browse"
	matchesTitle      = "Identified Core Skills"
	gapsTitle         = "Technical Skill Gaps"
	scoreLabel        = "Match Score"
	verdictLabel      = "Verdict"
)

type Options struct {
	Color bool
}

type styles struct {
	title   func(any) string
	score   func(any) string
	match   func(any) string
	gap     func(any) string
	faint   func(any) string
	verdict func(any) string
}

func newStyles(color bool) styles {
	if !color {
		plain := func(v any) string { return fmt.Sprint(v) }
		return styles{title: plain, score: plain, match: plain, gap: plain, faint: plain, verdict: plain}
	}

	return styles{
		title:   promptui.Styler(promptui.FGBold),
		score:   promptui.Styler(promptui.FGCyan, promptui.FGBold),
		match:   promptui.Styler(promptui.FGGreen),
		gap:     promptui.Styler(promptui.FGRed),
		faint:   promptui.Styler(promptui.FGFaint),
		verdict: promptui.Styler(promptui.FGYellow, promptui.FGBold),
	}
}

// IntakeLine describes the current résumé selection.
func IntakeLine(selected *intake.File, dragActive bool) string {
	line := intakePlaceholder
	if selected != nil {
		line = "Resume: " + selected.Name
	}

	if dragActive {
		line += " (drop to select)"
	}

	return line
}

// Write draws the result area of m.
func Write(w io.Writer, m Model, opts Options) error {
	st := newStyles(opts.Color)

	var b strings.Builder
	if m.Kind == KindEmpty {
		fmt.Fprintf(&b, "%s\n", st.faint(EmptyPlaceholder))
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "%s: %s\n", st.title(scoreLabel), st.score(m.Score))
	fmt.Fprintf(&b, "%s: %s\n", st.title(verdictLabel), st.verdict(m.Verdict))
	if m.FileName != "" {
		fmt.Fprintf(&b, "%s\n", st.faint("Analysed file: "+m.FileName))
	}

	fmt.Fprintf(&b, "\n%s\n", st.title(matchesTitle))
	if m.NoMatches {
		fmt.Fprintf(&b, "  %s\n", st.faint(NoMatchesMarker))
	} else {
		fmt.Fprintf(&b, "  %s\n", tags(m.Matching, "", st.match))
	}

	fmt.Fprintf(&b, "\n%s\n", st.title(gapsTitle))
	if m.NoGaps {
		fmt.Fprintf(&b, "  %s\n", st.match(NoGapsMarker))
	} else {
		fmt.Fprintf(&b, "  %s\n", tags(m.Gaps, "+", st.gap))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func tags(items []string, prefix string, style func(any) string) string {
	rendered := make([]string, 0, len(items))
	for _, item := range items {
		rendered = append(rendered, style("["+prefix+item+"]"))
	}

	return strings.Join(rendered, " ")
}
