package app

import (
	"bytes"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForPhase(t *testing.T, c *Controller, want Phase) State {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		s := c.State()
		if s.Phase == want {
			return s
		}
		if s.Phase == PhaseError && want != PhaseError {
			t.Fatalf("landed on error phase: %s", s.ErrMsg)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for phase %s, at %s", want, c.State().Phase)
	return State{}
}

func memFile(name, mimeType, content string) File {
	return File{
		Name:     name,
		MIMEType: mimeType,
		Size:     int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte(content))), nil
		},
	}
}

func TestFullPipelineAgainstMock(t *testing.T) {
	c := NewController(NewMockGateway(), nil)
	defer c.Close()

	c.Dispatch(Submit{Input: "summarize quarterly earnings reports"})
	waitForPhase(t, c, PhaseAwaitingArchSelection)

	s := c.State()
	assert.NotEmpty(t, s.BasePrompt)
	// The mock tailors every catalog entry.
	for _, key := range ArchitectureKeys {
		assert.Contains(t, s.ArchDescription(key), key)
	}

	c.Dispatch(SelectArchitecture{Key: "react"})
	s = waitForPhase(t, c, PhaseSuccess)

	assert.NotEmpty(t, s.FinalPrompt)
	assert.NotEmpty(t, s.Dossier)
	require.NotNil(t, s.Evaluation)
	assert.Equal(t, 8, s.Evaluation.Clarity)
	assert.Equal(t, s.FinalPrompt, s.PlaygroundPrompt)
}

func TestPlaygroundAndOptimizeAgainstMock(t *testing.T) {
	gw := NewMockGateway()
	c := NewController(gw, nil)
	defer c.Close()

	c.Dispatch(Submit{Input: "draft a release announcement"})
	waitForPhase(t, c, PhaseAwaitingArchSelection)
	c.Dispatch(SelectArchitecture{Key: "zero_shot"})
	waitForPhase(t, c, PhaseSuccess)

	c.Dispatch(RunPlayground{Prompt: "run exactly this"})
	s := waitForPhase(t, c, PhaseSuccess)
	assert.NotEmpty(t, s.PlaygroundOutput)
	assert.Equal(t, "run exactly this", s.PlaygroundPrompt)

	c.Dispatch(Optimize{Prompt: s.PlaygroundPrompt, Instruction: "make it shorter"})
	s = waitForPhase(t, c, PhaseSuccess)
	assert.NotEmpty(t, s.FinalPrompt)
}

func TestAttachmentsFlowThroughController(t *testing.T) {
	c := NewController(NewMockGateway(), nil)
	defer c.Close()

	c.Dispatch(SelectFiles{Files: []File{
		memFile("notes.txt", "text/plain", "some notes"),
		memFile("data.csv", "text/csv", "a,b\n1,2"),
	}})
	s := waitForPhase(t, c, PhaseIdle)
	require.Len(t, s.Attachments, 2)
	for _, a := range s.Attachments {
		assert.NotEmpty(t, a.ID)
		assert.NotEmpty(t, a.Payload)
	}

	c.Dispatch(RemoveAttachment{ID: s.Attachments[0].ID})
	assert.Len(t, c.State().Attachments, 1)
}

func TestBatchFailureTerminatesWorker(t *testing.T) {
	c := NewController(NewMockGateway(), nil)
	defer c.Close()

	c.Dispatch(SelectFiles{Files: []File{
		memFile("ok.txt", "text/plain", "fine"),
		memFile("weird.bin", "application/octet-stream", "nope"),
	}})
	s := waitForPhase(t, c, PhaseError)
	assert.Contains(t, s.ErrMsg, "weird.bin")
	assert.Empty(t, s.Attachments)

	// A fresh batch after the failure gets a fresh worker.
	c.Dispatch(Reset{})
	c.Dispatch(SelectFiles{Files: []File{memFile("ok.txt", "text/plain", "fine")}})
	s = waitForPhase(t, c, PhaseIdle)
	assert.Len(t, s.Attachments, 1)
}

type stallReader struct{ release chan struct{} }

func (r *stallReader) Read(p []byte) (int, error) {
	<-r.release
	return 0, io.EOF
}

func (r *stallReader) Close() error { return nil }

func TestWatchdogFiresOnStalledIngestion(t *testing.T) {
	c := NewController(NewMockGateway(), nil, WithIngestTimeout(30*time.Millisecond))
	defer c.Close()

	release := make(chan struct{})
	defer close(release)
	stalled := File{
		Name:     "slow.txt",
		MIMEType: "text/plain",
		Size:     10,
		Open:     func() (io.ReadCloser, error) { return &stallReader{release: release}, nil },
	}
	c.Dispatch(SelectFiles{Files: []File{stalled}})
	s := waitForPhase(t, c, PhaseError)
	assert.Contains(t, s.ErrMsg, "took too long")
}

func TestConcurrentDispatchDeliversNewestStateLast(t *testing.T) {
	c := NewController(NewMockGateway(), nil)
	defer c.Close()

	var mu sync.Mutex
	var last State
	unsub := c.Subscribe(func(s State) {
		mu.Lock()
		last = s
		mu.Unlock()
	})
	defer unsub()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(m UsageMode) {
			defer wg.Done()
			c.Dispatch(SetUsageMode{Mode: m})
		}(UsageModes[i%len(UsageModes)])
	}
	wg.Wait()

	mu.Lock()
	got := last.UsageMode
	mu.Unlock()
	assert.Equal(t, c.State().UsageMode, got)
}

func TestSubscribePublishesEveryTransition(t *testing.T) {
	c := NewController(NewMockGateway(), nil)
	defer c.Close()

	seen := make(chan Phase, 128)
	unsub := c.Subscribe(func(s State) { seen <- s.Phase })
	defer unsub()

	c.Dispatch(Submit{Input: "anything"})
	waitForPhase(t, c, PhaseAwaitingArchSelection)

	phases := map[Phase]bool{}
	for {
		select {
		case p := <-seen:
			phases[p] = true
		default:
			goto done
		}
	}
done:
	assert.True(t, phases[PhaseGeneratingBasePrompt])
	assert.True(t, phases[PhaseCustomizingArchs])
	assert.True(t, phases[PhaseAwaitingArchSelection])
}
