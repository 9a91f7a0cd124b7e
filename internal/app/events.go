package app

// Event is anything the reducer can consume: user intents dispatched by
// the view, plus internal completion events raised by the controller when
// an effect resolves.
type Event interface{ isEvent() }

// --- user intents ---

type Submit struct{ Input string }

type SelectArchitecture struct{ Key string }

type SelectFiles struct{ Files []File }

type CancelIngest struct{}

type RemoveAttachment struct{ ID string }

type SetUsageMode struct{ Mode UsageMode }

type RunPlayground struct{ Prompt string }

type Optimize struct {
	Prompt      string
	Instruction string
}

type StartAudit struct{}

type CloseAudit struct{}

type Reset struct{}

func (Submit) isEvent()             {}
func (SelectArchitecture) isEvent() {}
func (SelectFiles) isEvent()        {}
func (CancelIngest) isEvent()       {}
func (RemoveAttachment) isEvent()   {}
func (SetUsageMode) isEvent()       {}
func (RunPlayground) isEvent()      {}
func (Optimize) isEvent()           {}
func (StartAudit) isEvent()         {}
func (CloseAudit) isEvent()         {}
func (Reset) isEvent()              {}

// --- internal completions ---

type basePromptDone struct {
	Text string
	Err  error
}

type tailoredDone struct {
	Descriptions map[string]string
	Err          error
}

type dossierChunk struct{ Text string }

type dossierDone struct {
	Text string
	Err  error
}

type evaluationDone struct {
	Target string
	Eval   *Evaluation
	Err    error
}

type playgroundChunk struct{ Text string }

type playgroundDone struct {
	Text string
	Err  error
}

type optimizeDone struct {
	NewPrompt string
	Err       error
}

type auditDone struct {
	Report string
	Err    error
}

type ingestProgress struct {
	Batch    string
	Name     string
	Progress int
}

type ingestFileDone struct {
	Batch      string
	Attachment Attachment
}

type ingestFileFailed struct {
	Batch string
	Name  string
	Msg   string
}

type ingestTimedOut struct{ Batch string }

func (basePromptDone) isEvent()   {}
func (tailoredDone) isEvent()     {}
func (dossierChunk) isEvent()     {}
func (dossierDone) isEvent()      {}
func (evaluationDone) isEvent()   {}
func (playgroundChunk) isEvent()  {}
func (playgroundDone) isEvent()   {}
func (optimizeDone) isEvent()     {}
func (auditDone) isEvent()        {}
func (ingestProgress) isEvent()   {}
func (ingestFileDone) isEvent()   {}
func (ingestFileFailed) isEvent() {}
func (ingestTimedOut) isEvent()   {}

// Effect is a side effect requested by the reducer and executed by the
// controller. Effects resolve by dispatching internal completion events.
type Effect interface{ isEffect() }

type fxGenerateBase struct {
	Prompt      string
	Attachments []Attachment
}

type fxTailorDescriptions struct{ BasePrompt string }

type fxStreamDossier struct {
	Prompt      string
	Attachments []Attachment
}

type fxEvaluate struct{ Target string }

type fxStreamPlayground struct {
	Prompt      string
	Attachments []Attachment
}

type fxOptimize struct {
	Prompt      string
	Instruction string
}

type fxAudit struct{}

type fxStartIngest struct {
	Batch string
	Files []File
}

type fxArmWatchdog struct{ Batch string }

type fxStopWatchdog struct{}

type fxTerminateIngest struct{}

func (fxGenerateBase) isEffect()       {}
func (fxTailorDescriptions) isEffect() {}
func (fxStreamDossier) isEffect()      {}
func (fxEvaluate) isEffect()           {}
func (fxStreamPlayground) isEffect()   {}
func (fxOptimize) isEffect()           {}
func (fxAudit) isEffect()              {}
func (fxStartIngest) isEffect()        {}
func (fxArmWatchdog) isEffect()        {}
func (fxStopWatchdog) isEffect()       {}
func (fxTerminateIngest) isEffect()    {}
