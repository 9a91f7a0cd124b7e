package app

// Phase is the single mutually exclusive mode the application is in.
// Rendering is a deterministic function of the phase plus the payload
// fields on State.
type Phase string

const (
	PhaseIdle                   Phase = "idle"
	PhaseProcessingAttachments  Phase = "processingAttachments"
	PhaseGeneratingBasePrompt   Phase = "generatingBasePrompt"
	PhaseCustomizingArchs       Phase = "customizingArchitectures"
	PhaseAwaitingArchSelection  Phase = "awaitingArchitectureSelection"
	PhaseGeneratingDossier      Phase = "generatingDossier"
	PhaseRefiningPrompt         Phase = "refiningPrompt"
	PhaseEvaluatingPrompt       Phase = "evaluatingPrompt"
	PhaseSuccess                Phase = "success"
	PhaseTestingPrompt          Phase = "testingPrompt"
	PhaseOptimizingPrompt       Phase = "optimizingPrompt"
	PhaseAuditingCode           Phase = "auditingCode"
	PhaseError                  Phase = "error"
)

// Busy reports whether a pipeline or ingestion operation is in flight.
// The view derives control enablement from this.
func (p Phase) Busy() bool {
	switch p {
	case PhaseIdle, PhaseAwaitingArchSelection, PhaseSuccess, PhaseError:
		return false
	}
	return true
}

// UsageMode selects how attachments are woven into the composed prompt.
type UsageMode string

const (
	UsageContext           UsageMode = "context"
	UsageStyleSource       UsageMode = "style_source"
	UsageStructuralExample UsageMode = "structural_example"
	UsageFactCheck         UsageMode = "fact_check"
)

// UsageModes lists every mode in display order.
var UsageModes = []UsageMode{UsageContext, UsageStyleSource, UsageStructuralExample, UsageFactCheck}

// Attachment is an ingested file, immutable once constructed. ID is a
// synthetic identifier assigned at ingestion time; names are not unique.
type Attachment struct {
	ID       string
	Name     string
	MIMEType string
	Payload  string // base64, no data-URI header
}

// IngestTicket tracks per-file progress for the in-flight batch. Tickets
// are discarded when the batch resolves.
type IngestTicket struct {
	Name     string
	Progress int
	Err      string
}

// Evaluation is the structured best-effort scoring of the final prompt.
type Evaluation struct {
	Clarity    int    `json:"clarity"`
	Efficiency int    `json:"efficiency"`
	Robustness int    `json:"robustness"`
	Summary    string `json:"summary"`
}

// State is the whole application state. It is a value: every transition
// produces a new State and the previous one is never mutated in place.
type State struct {
	Phase Phase

	UserInput   string
	Attachments []Attachment
	UsageMode   UsageMode

	BasePrompt   string
	Tailored     map[string]string // architecture key -> tailored description
	SelectedArch string

	Dossier     string // accumulates during streaming
	FinalPrompt string
	Evaluation  *Evaluation

	PlaygroundPrompt string
	PlaygroundOutput string

	AuditReport string

	ErrMsg string

	// Notice carries a synchronous validation message. It never changes
	// the phase and is cleared by the next accepted event.
	Notice string

	// Ingestion bookkeeping. Batch is empty when no batch is in flight;
	// events tagged with a different batch id are stale and ignored.
	IngestBatch string
	Tickets     []IngestTicket
	pending     []Attachment
}

// NewState returns the process-start state.
func NewState() State {
	return State{Phase: PhaseIdle, UsageMode: UsageContext}
}

// ArchDescription resolves the description shown for an architecture,
// preferring the tailored one when the best-effort customization succeeded.
func (s State) ArchDescription(key string) string {
	if d, ok := s.Tailored[key]; ok && d != "" {
		return d
	}
	if a, ok := Architectures[key]; ok {
		return a.Description
	}
	return ""
}

// batchComplete reports whether every file in the in-flight batch has
// produced its completion record.
func (s State) batchComplete() bool {
	return s.IngestBatch != "" && len(s.pending) == len(s.Tickets)
}
