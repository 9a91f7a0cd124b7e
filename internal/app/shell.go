package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Shell is the host-side contract: probing and starting the local model
// server and showing blocking dialogs. The TUI supplies its own dialog
// rendering, so ExecShell only covers the process side there.
type Shell interface {
	CheckBackendRunning(ctx context.Context) bool
	StartBackendProcess(ctx context.Context) error
	ShowErrorDialog(title, message string)
	ShowInfoDialog(title, message string)
}

// NoopShell degrades gracefully: the backend always reads as down and
// dialogs vanish.
type NoopShell struct{}

func (NoopShell) CheckBackendRunning(context.Context) bool  { return false }
func (NoopShell) StartBackendProcess(context.Context) error { return fmt.Errorf("no shell available") }
func (NoopShell) ShowErrorDialog(string, string)            {}
func (NoopShell) ShowInfoDialog(string, string)             {}

// ExecShell probes the local server over HTTP and starts it by spawning
// the serve command detached from the current process.
type ExecShell struct {
	BaseURL string
	Command string
	Args    []string
	log     *Logger
}

func NewExecShell(baseURL string, log *Logger) *ExecShell {
	if baseURL == "" {
		baseURL = DefaultLocalURL
	}
	return &ExecShell{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Command: "ollama",
		Args:    []string{"serve"},
		log:     log,
	}
}

func (s *ExecShell) CheckBackendRunning(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (s *ExecShell) StartBackendProcess(ctx context.Context) error {
	cmd := exec.Command(s.Command, s.Args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("could not start %s: %w", s.Command, err)
	}
	s.log.Info("local backend started", map[string]any{"pid": cmd.Process.Pid})
	go func() { _ = cmd.Wait() }()

	// Give the server a moment to come up before callers re-probe.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s.CheckBackendRunning(ctx) {
			return nil
		}
		time.Sleep(250 * time.Millisecond)
	}
	return fmt.Errorf("%s did not become reachable", s.Command)
}

func (s *ExecShell) ShowErrorDialog(title, message string) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", title, message)
}

func (s *ExecShell) ShowInfoDialog(title, message string) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", title, message)
}
