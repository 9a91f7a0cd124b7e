package tui

import (
	"fmt"
	"strings"

	"promptforge/internal/app"
)

var phaseLabels = map[app.Phase]string{
	app.PhaseIdle:                  "ready",
	app.PhaseProcessingAttachments: "processing attachments",
	app.PhaseGeneratingBasePrompt:  "analyzing request",
	app.PhaseCustomizingArchs:      "customizing architectures",
	app.PhaseAwaitingArchSelection: "pick an architecture",
	app.PhaseGeneratingDossier:     "generating dossier",
	app.PhaseRefiningPrompt:        "refining champion",
	app.PhaseEvaluatingPrompt:      "evaluating",
	app.PhaseSuccess:               "done",
	app.PhaseTestingPrompt:         "running playground",
	app.PhaseOptimizingPrompt:      "optimizing",
	app.PhaseAuditingCode:          "code audit",
	app.PhaseError:                 "error",
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.theme.Pane.Width(m.width - 2).Render(m.body.View()))
	b.WriteString("\n")
	if line := m.renderStatusLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.theme.InputBoxF.Width(m.width - 2).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	title := m.theme.TopBarTitle.Render("PromptForge")
	backend := m.theme.TopBarMeta.Render("backend: " + m.application.Config.Backend)
	label := phaseLabels[m.st.Phase]
	if m.st.Phase.Busy() {
		label = spinnerFrames[m.spinFrame] + " " + label
	}
	badge := m.theme.PhaseBadge.Render(label)
	return m.theme.TopBar.Render(title + "  " + backend + "  " + badge)
}

func (m *Model) renderStatusLine() string {
	if m.st.Notice != "" {
		return m.theme.Notice.Render(m.st.Notice)
	}
	if m.status != "" {
		return m.theme.Footer.Render(m.status)
	}
	return ""
}

func (m *Model) renderFooter() string {
	var hint string
	switch m.st.Phase {
	case app.PhaseAwaitingArchSelection:
		hint = "↑/↓ select • enter confirm"
	case app.PhaseProcessingAttachments:
		hint = "esc cancel"
	case app.PhaseSuccess:
		hint = "enter test prompt • /opt refine • /export save • esc reset"
	case app.PhaseError:
		hint = "esc reset"
	case app.PhaseAuditingCode:
		hint = "esc close report"
	default:
		hint = "enter send • /help commands • ctrl+c quit"
	}
	return m.theme.Footer.Render(hint)
}

// renderBody builds the viewport content for the current phase.
func (m *Model) renderBody() string {
	w := m.body.Width
	switch m.st.Phase {
	case app.PhaseIdle:
		return m.renderIdle()
	case app.PhaseProcessingAttachments:
		return m.renderTickets()
	case app.PhaseGeneratingBasePrompt:
		return "Distilling your request into a base prompt..."
	case app.PhaseCustomizingArchs:
		return "Base prompt:\n\n" + m.st.BasePrompt + "\n\nTailoring architecture descriptions..."
	case app.PhaseAwaitingArchSelection:
		return m.renderArchList()
	case app.PhaseGeneratingDossier, app.PhaseRefiningPrompt:
		return m.markdown.Render(m.st.Dossier, w)
	case app.PhaseEvaluatingPrompt:
		return m.markdown.Render(m.st.Dossier, w) + "\n\nScoring the final prompt..."
	case app.PhaseSuccess:
		return m.renderSuccess()
	case app.PhaseTestingPrompt, app.PhaseOptimizingPrompt:
		return m.renderPlayground()
	case app.PhaseAuditingCode:
		if m.st.AuditReport == "" {
			return "Auditing the source..."
		}
		return m.markdown.Render(m.st.AuditReport, w)
	case app.PhaseError:
		return m.theme.ErrText.Render("Something went wrong") + "\n\n" + m.st.ErrMsg
	}
	return ""
}

func (m *Model) renderIdle() string {
	var b strings.Builder
	b.WriteString("Describe what you need and press enter to forge a prompt dossier.\n")
	if len(m.st.Attachments) > 0 {
		b.WriteString("\nAttachments (mode: " + string(m.st.UsageMode) + "):\n")
		for i, a := range m.st.Attachments {
			fmt.Fprintf(&b, "  %d. %s (%s)\n", i+1, a.Name, a.MIMEType)
		}
	}
	return b.String()
}

func (m *Model) renderTickets() string {
	var b strings.Builder
	b.WriteString("Processing attachments...\n\n")
	for _, t := range m.st.Tickets {
		b.WriteString(progressBar(t.Progress))
		fmt.Fprintf(&b, " %3d%%  %s\n", t.Progress, t.Name)
	}
	return b.String()
}

func progressBar(pct int) string {
	const cells = 20
	filled := pct * cells / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", cells-filled) + "]"
}

func (m *Model) renderArchList() string {
	var b strings.Builder
	b.WriteString("Base prompt:\n\n" + m.st.BasePrompt + "\n\nChoose a prompt architecture:\n\n")
	for i, key := range app.ArchitectureKeys {
		arch := app.Architectures[key]
		cursor := "  "
		titleStyle := m.theme.Unselect
		if i == m.archCursor {
			cursor = "▸ "
			titleStyle = m.theme.Selected
		}
		b.WriteString(cursor + titleStyle.Render(arch.Title) + "\n")
		b.WriteString("    " + m.st.ArchDescription(key) + "\n\n")
	}
	return b.String()
}

func (m *Model) renderSuccess() string {
	var b strings.Builder
	if m.st.FinalPrompt == "" {
		b.WriteString("The dossier produced no extractable prompt.\n\n")
		b.WriteString(m.markdown.Render(m.st.Dossier, m.body.Width))
		return b.String()
	}
	b.WriteString(m.theme.OKText.Render("Final prompt ready") + "\n\n")
	b.WriteString(m.markdown.Highlight(m.st.FinalPrompt, "") + "\n")
	if e := m.st.Evaluation; e != nil {
		b.WriteString("\n" + m.theme.ScoreText.Render(
			fmt.Sprintf("clarity %d/10 • efficiency %d/10 • robustness %d/10", e.Clarity, e.Efficiency, e.Robustness)) + "\n")
		b.WriteString(m.theme.Footer.Render(e.Summary) + "\n")
	}
	if m.st.PlaygroundOutput != "" {
		b.WriteString("\nPlayground output:\n\n")
		b.WriteString(m.markdown.Render(m.st.PlaygroundOutput, m.body.Width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderPlayground() string {
	var b strings.Builder
	if m.st.Phase == app.PhaseOptimizingPrompt {
		b.WriteString("Rewriting the prompt...\n")
		return b.String()
	}
	b.WriteString("Running the prompt...\n\n")
	b.WriteString(m.markdown.Render(m.st.PlaygroundOutput, m.body.Width))
	return b.String()
}
