package tui

import (
	"context"
	"strings"
	"testing"

	"promptforge/internal/app"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	application, err := app.NewApplication(context.Background(), app.DefaultConfig(), true)
	if err != nil {
		t.Fatalf("NewApplication: %v", err)
	}
	t.Cleanup(application.Close)
	m := NewModel(application)
	t.Cleanup(m.Close)
	return m
}

func TestProgressBarBounds(t *testing.T) {
	if got := progressBar(0); strings.Contains(got, "█") {
		t.Errorf("empty bar should have no fill: %q", got)
	}
	if got := progressBar(100); strings.Contains(got, "░") {
		t.Errorf("full bar should have no gaps: %q", got)
	}
	if got := progressBar(50); !strings.Contains(got, "█") || !strings.Contains(got, "░") {
		t.Errorf("half bar should mix fill and gaps: %q", got)
	}
}

func TestPhaseLabelsCoverEveryPhase(t *testing.T) {
	phases := []app.Phase{
		app.PhaseIdle, app.PhaseProcessingAttachments, app.PhaseGeneratingBasePrompt,
		app.PhaseCustomizingArchs, app.PhaseAwaitingArchSelection, app.PhaseGeneratingDossier,
		app.PhaseRefiningPrompt, app.PhaseEvaluatingPrompt, app.PhaseSuccess,
		app.PhaseTestingPrompt, app.PhaseOptimizingPrompt, app.PhaseAuditingCode, app.PhaseError,
	}
	for _, p := range phases {
		if phaseLabels[p] == "" {
			t.Errorf("phase %s has no label", p)
		}
	}
}

func TestRenderBodyIdleListsAttachments(t *testing.T) {
	m := newTestModel(t)
	m.st.Attachments = []app.Attachment{{ID: "1", Name: "notes.txt", MIMEType: "text/plain"}}
	body := m.renderBody()
	if !strings.Contains(body, "notes.txt") {
		t.Errorf("attachment name missing: %q", body)
	}
	if !strings.Contains(body, "context") {
		t.Errorf("usage mode missing: %q", body)
	}
}

func TestRenderBodyArchSelection(t *testing.T) {
	m := newTestModel(t)
	m.st.Phase = app.PhaseAwaitingArchSelection
	m.st.BasePrompt = "the base"
	body := m.renderBody()
	if !strings.Contains(body, "the base") {
		t.Errorf("base prompt missing: %q", body)
	}
	for _, key := range app.ArchitectureKeys {
		if !strings.Contains(body, app.Architectures[key].Title) {
			t.Errorf("architecture %s missing from list", key)
		}
	}
}

func TestRenderBodyError(t *testing.T) {
	m := newTestModel(t)
	m.st.Phase = app.PhaseError
	m.st.ErrMsg = "backend unreachable"
	if body := m.renderBody(); !strings.Contains(body, "backend unreachable") {
		t.Errorf("error message missing: %q", body)
	}
}

func TestRenderBodySuccessShowsScores(t *testing.T) {
	m := newTestModel(t)
	m.st.Phase = app.PhaseSuccess
	m.st.FinalPrompt = "final prompt text"
	m.st.Evaluation = &app.Evaluation{Clarity: 9, Efficiency: 8, Robustness: 7, Summary: "tight"}
	body := m.renderBody()
	for _, want := range []string{"final prompt text", "9/10", "8/10", "7/10", "tight"} {
		if !strings.Contains(body, want) {
			t.Errorf("success view missing %q: %q", want, body)
		}
	}
}
