package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"promptforge/internal/app"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Model is the Bubble Tea view over the workflow controller. It holds no
// workflow state of its own: every render is a function of the last
// published snapshot plus purely local concerns (cursor, scroll, status
// line).
type Model struct {
	application *app.Application
	ctrl        *app.Controller

	st          app.State
	states      chan app.State
	unsubscribe func()

	theme    Theme
	markdown *MarkdownRenderer
	input    textarea.Model
	body     viewport.Model

	archCursor  int
	spinFrame   int
	width       int
	height      int
	status      string
	localModels []string
}

type stateMsg struct{ state app.State }

type spinMsg struct{}

type modelsMsg struct {
	names []string
	err   error
}

type exportMsg struct {
	path string
	err  error
}

// NewModel wires a model to the application's controller. The caller
// must invoke Close when done.
func NewModel(application *app.Application) *Model {
	theme := NewTheme()

	ta := textarea.New()
	ta.Placeholder = "Describe your need or goal... (/help for commands)"
	ta.Focus()
	ta.CharLimit = 8000
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.Prompt = "▍ "
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()

	m := &Model{
		application: application,
		ctrl:        application.Controller,
		st:          application.Controller.State(),
		states:      make(chan app.State, 64),
		theme:       theme,
		markdown:    NewMarkdownRenderer(theme),
		input:       ta,
		body:        viewport.New(80, 16),
		width:       80,
		height:      24,
	}
	m.unsubscribe = m.ctrl.Subscribe(m.publish)
	return m
}

// Close detaches the model from the controller.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// publish hands a snapshot to the Bubble Tea loop, dropping the oldest
// pending one when the buffer is full so renders coalesce under load.
func (m *Model) publish(s app.State) {
	for {
		select {
		case m.states <- s:
			return
		default:
			select {
			case <-m.states:
			default:
			}
		}
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitState())
}

func (m *Model) waitState() tea.Cmd {
	return func() tea.Msg { return stateMsg{state: <-m.states} }
}

func (m *Model) spinCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg { return spinMsg{} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(msg.Width - 6)
		m.body.Width = msg.Width - 4
		m.body.Height = msg.Height - 12
		if m.body.Height < 4 {
			m.body.Height = 4
		}
		m.body.SetContent(m.renderBody())
		return m, nil

	case stateMsg:
		wasBusy := m.st.Phase.Busy()
		prevPhase := m.st.Phase
		m.st = msg.state
		if prevPhase != app.PhaseAwaitingArchSelection && m.st.Phase == app.PhaseAwaitingArchSelection {
			m.archCursor = 0
		}
		m.body.SetContent(m.renderBody())
		if m.st.Phase.Busy() {
			m.body.GotoBottom()
		}
		cmds := []tea.Cmd{m.waitState()}
		if !wasBusy && m.st.Phase.Busy() {
			cmds = append(cmds, m.spinCmd())
		}
		return m, tea.Batch(cmds...)

	case spinMsg:
		if m.st.Phase.Busy() {
			m.spinFrame = (m.spinFrame + 1) % len(spinnerFrames)
			return m, m.spinCmd()
		}
		return m, nil

	case modelsMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Local backend unreachable: %v", msg.err)
		} else {
			m.localModels = msg.names
			m.status = "Local models: " + strings.Join(msg.names, ", ")
		}
		return m, nil

	case exportMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Export failed: %v", msg.err)
		} else {
			m.status = "Saved to " + msg.path
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		switch m.st.Phase {
		case app.PhaseProcessingAttachments:
			m.ctrl.Dispatch(app.CancelIngest{})
		case app.PhaseAuditingCode:
			m.ctrl.Dispatch(app.CloseAudit{})
		case app.PhaseSuccess, app.PhaseError:
			m.ctrl.Dispatch(app.Reset{})
		}
		return m, nil
	}

	if m.st.Phase == app.PhaseAwaitingArchSelection {
		switch msg.String() {
		case "up", "k":
			if m.archCursor > 0 {
				m.archCursor--
			}
			m.body.SetContent(m.renderBody())
			return m, nil
		case "down", "j":
			if m.archCursor < len(app.ArchitectureKeys)-1 {
				m.archCursor++
			}
			m.body.SetContent(m.renderBody())
			return m, nil
		case "enter":
			m.ctrl.Dispatch(app.SelectArchitecture{Key: app.ArchitectureKeys[m.archCursor]})
			return m, nil
		}
	}

	switch msg.String() {
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			return m, nil
		}
		m.input.Reset()
		m.status = ""
		if strings.HasPrefix(value, "/") {
			return m, m.runCommand(value)
		}
		switch m.st.Phase {
		case app.PhaseIdle:
			m.ctrl.Dispatch(app.Submit{Input: value})
		case app.PhaseSuccess:
			m.ctrl.Dispatch(app.RunPlayground{Prompt: value})
		default:
			m.status = "Busy. Wait for the current step to finish."
		}
		return m, nil

	case "pgup":
		m.body.HalfViewUp()
		return m, nil
	case "pgdown":
		m.body.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) runCommand(line string) tea.Cmd {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/attach":
		if len(args) == 0 {
			m.status = "Usage: /attach <path> [path...]"
			return nil
		}
		var files []app.File
		for _, path := range args {
			f, err := app.FileFromPath(path)
			if err != nil {
				m.status = fmt.Sprintf("Cannot attach %s: %v", path, err)
				return nil
			}
			files = append(files, f)
		}
		m.ctrl.Dispatch(app.SelectFiles{Files: files})

	case "/rm":
		if len(args) != 1 {
			m.status = "Usage: /rm <number>"
			return nil
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(m.st.Attachments) {
			m.status = "No such attachment."
			return nil
		}
		m.ctrl.Dispatch(app.RemoveAttachment{ID: m.st.Attachments[n-1].ID})

	case "/mode":
		if len(args) != 1 {
			m.status = "Usage: /mode context|style_source|structural_example|fact_check"
			return nil
		}
		m.ctrl.Dispatch(app.SetUsageMode{Mode: app.UsageMode(args[0])})

	case "/test":
		prompt := m.st.PlaygroundPrompt
		if len(args) > 0 {
			prompt = strings.Join(args, " ")
		}
		m.ctrl.Dispatch(app.RunPlayground{Prompt: prompt})

	case "/opt":
		if len(args) == 0 {
			m.status = "Usage: /opt <refinement instruction>"
			return nil
		}
		m.ctrl.Dispatch(app.Optimize{
			Prompt:      m.st.PlaygroundPrompt,
			Instruction: strings.Join(args, " "),
		})

	case "/audit":
		m.ctrl.Dispatch(app.StartAudit{})
	case "/closeaudit":
		m.ctrl.Dispatch(app.CloseAudit{})
	case "/cancel":
		m.ctrl.Dispatch(app.CancelIngest{})
	case "/reset":
		m.ctrl.Dispatch(app.Reset{})

	case "/export":
		prompt := m.st.FinalPrompt
		dir := m.application.Config.ExportDir
		return func() tea.Msg {
			path, err := app.ExportFinalPrompt(dir, prompt)
			return exportMsg{path: path, err: err}
		}

	case "/models":
		local := m.application.Local
		if local == nil {
			m.status = "Local backend is not configured."
			return nil
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			names, err := local.ListModels(ctx)
			return modelsMsg{names: names, err: err}
		}

	case "/serve":
		shell := m.application.Shell
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if shell.CheckBackendRunning(ctx) {
				return modelsMsg{names: []string{"(already running)"}}
			}
			if err := shell.StartBackendProcess(ctx); err != nil {
				return modelsMsg{err: err}
			}
			return modelsMsg{names: []string{"(started)"}}
		}

	case "/help":
		m.status = "Commands: /attach /rm /mode /test /opt /audit /closeaudit /export /models /serve /cancel /reset"

	default:
		m.status = "Unknown command " + cmd
	}
	return nil
}
