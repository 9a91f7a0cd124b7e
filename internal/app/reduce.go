package app

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Reduce is the transition function of the workflow state machine. It is
// pure apart from batch-id generation: given the current state and an
// event it returns the next state plus the effects the controller must
// run. Events that are not valid for the current phase return the state
// untouched with no effects.
func Reduce(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case Submit:
		return reduceSubmit(s, ev)
	case SelectArchitecture:
		return reduceSelectArchitecture(s, ev)
	case SelectFiles:
		return reduceSelectFiles(s, ev)
	case CancelIngest:
		if s.Phase != PhaseProcessingAttachments {
			return s, nil
		}
		s.Phase = PhaseIdle
		s.Notice = ""
		clearBatch(&s)
		return s, []Effect{fxStopWatchdog{}, fxTerminateIngest{}}
	case RemoveAttachment:
		if s.Phase == PhaseProcessingAttachments {
			return s, nil
		}
		kept := make([]Attachment, 0, len(s.Attachments))
		for _, a := range s.Attachments {
			if a.ID != ev.ID {
				kept = append(kept, a)
			}
		}
		s.Attachments = kept
		s.Notice = ""
		return s, nil
	case SetUsageMode:
		if s.Phase != PhaseIdle && s.Phase != PhaseProcessingAttachments {
			return s, nil
		}
		if !validUsageMode(ev.Mode) {
			return s, nil
		}
		s.UsageMode = ev.Mode
		s.Notice = ""
		return s, nil
	case RunPlayground:
		return reduceRunPlayground(s, ev)
	case Optimize:
		return reduceOptimize(s, ev)
	case StartAudit:
		if s.Phase != PhaseIdle && s.Phase != PhaseSuccess {
			return s, nil
		}
		s.Phase = PhaseAuditingCode
		s.AuditReport = ""
		s.Notice = ""
		return s, []Effect{fxAudit{}}
	case CloseAudit:
		if s.Phase != PhaseAuditingCode {
			return s, nil
		}
		s.Phase = PhaseIdle
		s.AuditReport = ""
		return s, nil
	case Reset:
		if s.Phase != PhaseSuccess && s.Phase != PhaseError {
			return s, nil
		}
		return NewState(), nil

	case basePromptDone:
		return reduceBasePromptDone(s, ev)
	case tailoredDone:
		if s.Phase != PhaseCustomizingArchs {
			return s, nil
		}
		// Tailoring is best-effort: on failure the static catalog
		// descriptions stand.
		if ev.Err == nil {
			s.Tailored = ev.Descriptions
		}
		s.Phase = PhaseAwaitingArchSelection
		return s, nil
	case dossierChunk:
		if s.Phase != PhaseGeneratingDossier && s.Phase != PhaseRefiningPrompt {
			return s, nil
		}
		s.Dossier = ev.Text
		return s, nil
	case dossierDone:
		return reduceDossierDone(s, ev)
	case evaluationDone:
		if s.Phase != PhaseEvaluatingPrompt {
			return s, nil
		}
		// Evaluation is best-effort; a failure still lands on success.
		s.Phase = PhaseSuccess
		s.FinalPrompt = ev.Target
		s.Evaluation = nil
		if ev.Err == nil {
			s.Evaluation = ev.Eval
		}
		s.PlaygroundPrompt = ev.Target
		return s, nil
	case playgroundChunk:
		if s.Phase != PhaseTestingPrompt {
			return s, nil
		}
		s.PlaygroundOutput = ev.Text
		return s, nil
	case playgroundDone:
		if s.Phase != PhaseTestingPrompt {
			return s, nil
		}
		// A playground failure renders inline; the phase still resolves
		// to success so the controls never stay stuck busy.
		s.Phase = PhaseSuccess
		if ev.Err != nil {
			s.PlaygroundOutput = fmt.Sprintf("Prompt execution failed: %v", ev.Err)
		} else {
			s.PlaygroundOutput = ev.Text
		}
		return s, nil
	case optimizeDone:
		if s.Phase != PhaseOptimizingPrompt {
			return s, nil
		}
		if ev.Err != nil {
			return toError(s, fmt.Sprintf("Prompt optimization failed: %v", ev.Err))
		}
		s.PlaygroundPrompt = strings.TrimSpace(ev.NewPrompt)
		return beginEvaluation(s)
	case auditDone:
		if s.Phase != PhaseAuditingCode {
			return s, nil
		}
		if ev.Err != nil {
			s.AuditReport = fmt.Sprintf("Could not produce the audit report: %v", ev.Err)
		} else {
			s.AuditReport = ev.Report
		}
		return s, nil

	case ingestProgress:
		if !liveBatch(s, ev.Batch) {
			return s, nil
		}
		tickets := make([]IngestTicket, len(s.Tickets))
		copy(tickets, s.Tickets)
		for i := range tickets {
			if tickets[i].Name == ev.Name && tickets[i].Progress < ev.Progress {
				tickets[i].Progress = ev.Progress
			}
		}
		s.Tickets = tickets
		return s, nil
	case ingestFileDone:
		return reduceIngestFileDone(s, ev)
	case ingestFileFailed:
		if !liveBatch(s, ev.Batch) {
			return s, nil
		}
		// Batch-fatal policy: the first per-file error aborts the
		// whole batch.
		clearBatch(&s)
		next, fx := toError(s, ev.Msg)
		return next, append(fx, fxStopWatchdog{}, fxTerminateIngest{})
	case ingestTimedOut:
		if !liveBatch(s, ev.Batch) {
			return s, nil
		}
		clearBatch(&s)
		next, fx := toError(s, "Attachment processing took too long and was canceled.")
		return next, append(fx, fxTerminateIngest{})
	}
	return s, nil
}

func reduceSubmit(s State, ev Submit) (State, []Effect) {
	if s.Phase != PhaseIdle {
		return s, nil
	}
	input := strings.TrimSpace(ev.Input)
	if input == "" {
		s.Notice = "Describe your need or goal first."
		return s, nil
	}
	s.Phase = PhaseGeneratingBasePrompt
	s.UserInput = input
	s.Notice = ""
	s.BasePrompt = ""
	s.Tailored = nil
	s.SelectedArch = ""
	s.Dossier = ""
	s.FinalPrompt = ""
	s.Evaluation = nil
	s.PlaygroundPrompt = ""
	s.PlaygroundOutput = ""
	composed := ComposeUserPrompt(input, s.Attachments, s.UsageMode)
	return s, []Effect{fxGenerateBase{Prompt: BuildDistillPrompt(composed), Attachments: s.Attachments}}
}

func reduceBasePromptDone(s State, ev basePromptDone) (State, []Effect) {
	if s.Phase != PhaseGeneratingBasePrompt {
		return s, nil
	}
	if ev.Err != nil {
		return toError(s, fmt.Sprintf("Initial analysis failed: %v", ev.Err))
	}
	s.Phase = PhaseCustomizingArchs
	s.BasePrompt = strings.TrimSpace(ev.Text)
	return s, []Effect{fxTailorDescriptions{BasePrompt: s.BasePrompt}}
}

func reduceSelectArchitecture(s State, ev SelectArchitecture) (State, []Effect) {
	if s.Phase != PhaseAwaitingArchSelection {
		return s, nil
	}
	if _, ok := Architectures[ev.Key]; !ok {
		return s, nil
	}
	s.Phase = PhaseGeneratingDossier
	s.SelectedArch = ev.Key
	s.Dossier = ""
	s.Notice = ""
	composed := ComposeUserPrompt(s.UserInput, s.Attachments, s.UsageMode)
	prompt := BuildMasterPrompt(composed, ev.Key, s.ArchDescription(ev.Key))
	return s, []Effect{fxStreamDossier{Prompt: prompt, Attachments: s.Attachments}}
}

func reduceDossierDone(s State, ev dossierDone) (State, []Effect) {
	switch s.Phase {
	case PhaseGeneratingDossier:
		if ev.Err != nil {
			return toError(s, fmt.Sprintf("Dossier generation failed: %v", ev.Err))
		}
		s.Dossier = ev.Text
		champion := ExtractChampionPrompt(ev.Text)
		if champion == "" {
			// No champion to refine: evaluate the dossier as-is.
			return beginEvaluation(s)
		}
		s.Phase = PhaseRefiningPrompt
		s.Dossier = ""
		return s, []Effect{fxStreamDossier{Prompt: BuildRefinementPrompt(champion), Attachments: s.Attachments}}
	case PhaseRefiningPrompt:
		if ev.Err != nil {
			return toError(s, fmt.Sprintf("Prompt refinement failed: %v", ev.Err))
		}
		s.Dossier = ev.Text
		return beginEvaluation(s)
	}
	return s, nil
}

// beginEvaluation selects the evaluation target with the documented
// precedence (playground text over the dossier's last code block) and
// either starts the structured evaluation call or, with nothing to
// evaluate, lands directly on success.
func beginEvaluation(s State) (State, []Effect) {
	target := strings.TrimSpace(s.PlaygroundPrompt)
	if target == "" {
		target = LastFencedBlock(s.Dossier)
	}
	if target == "" {
		s.Phase = PhaseSuccess
		s.FinalPrompt = ""
		s.Evaluation = nil
		return s, nil
	}
	s.Phase = PhaseEvaluatingPrompt
	return s, []Effect{fxEvaluate{Target: target}}
}

func reduceRunPlayground(s State, ev RunPlayground) (State, []Effect) {
	if s.Phase != PhaseSuccess {
		return s, nil
	}
	prompt := strings.TrimSpace(ev.Prompt)
	if prompt == "" {
		s.Notice = "The prompt must not be empty."
		return s, nil
	}
	s.Phase = PhaseTestingPrompt
	s.PlaygroundPrompt = prompt
	s.PlaygroundOutput = ""
	s.Notice = ""
	return s, []Effect{fxStreamPlayground{Prompt: prompt, Attachments: s.Attachments}}
}

func reduceOptimize(s State, ev Optimize) (State, []Effect) {
	if s.Phase != PhaseSuccess {
		return s, nil
	}
	prompt := strings.TrimSpace(ev.Prompt)
	instruction := strings.TrimSpace(ev.Instruction)
	if instruction == "" {
		s.Notice = "Provide a refinement instruction."
		return s, nil
	}
	if prompt == "" {
		s.Notice = "The current prompt is empty."
		return s, nil
	}
	s.Phase = PhaseOptimizingPrompt
	s.PlaygroundPrompt = prompt
	s.Notice = ""
	return s, []Effect{fxOptimize{Prompt: prompt, Instruction: instruction}}
}

func reduceSelectFiles(s State, ev SelectFiles) (State, []Effect) {
	// Additional selections during an in-flight batch join it; anything
	// else outside idle is rejected.
	if s.Phase != PhaseIdle && s.Phase != PhaseProcessingAttachments {
		return s, nil
	}
	if len(ev.Files) == 0 {
		return s, nil
	}
	if s.IngestBatch == "" {
		s.IngestBatch = uuid.NewString()
		s.Tickets = nil
		s.pending = nil
	}
	s.Phase = PhaseProcessingAttachments
	s.Notice = ""
	tickets := make([]IngestTicket, len(s.Tickets), len(s.Tickets)+len(ev.Files))
	copy(tickets, s.Tickets)
	for _, f := range ev.Files {
		tickets = append(tickets, IngestTicket{Name: f.Name})
	}
	s.Tickets = tickets
	return s, []Effect{
		fxStartIngest{Batch: s.IngestBatch, Files: ev.Files},
		fxArmWatchdog{Batch: s.IngestBatch},
	}
}

func reduceIngestFileDone(s State, ev ingestFileDone) (State, []Effect) {
	if !liveBatch(s, ev.Batch) {
		return s, nil
	}
	tickets := make([]IngestTicket, len(s.Tickets))
	copy(tickets, s.Tickets)
	for i := range tickets {
		if tickets[i].Name == ev.Attachment.Name && tickets[i].Progress < 100 {
			tickets[i].Progress = 100
			break
		}
	}
	s.Tickets = tickets
	pending := make([]Attachment, len(s.pending), len(s.pending)+1)
	copy(pending, s.pending)
	s.pending = append(pending, ev.Attachment)

	if !s.batchComplete() {
		return s, nil
	}
	// Whole batch succeeded: merge in arrival order and go back to idle.
	atts := make([]Attachment, len(s.Attachments), len(s.Attachments)+len(s.pending))
	copy(atts, s.Attachments)
	s.Attachments = append(atts, s.pending...)
	clearBatch(&s)
	s.Phase = PhaseIdle
	return s, []Effect{fxStopWatchdog{}}
}

func liveBatch(s State, batch string) bool {
	return s.Phase == PhaseProcessingAttachments && s.IngestBatch != "" && s.IngestBatch == batch
}

func clearBatch(s *State) {
	s.IngestBatch = ""
	s.Tickets = nil
	s.pending = nil
}

func toError(s State, msg string) (State, []Effect) {
	s.Phase = PhaseError
	s.ErrMsg = msg
	return s, nil
}

func validUsageMode(m UsageMode) bool {
	for _, v := range UsageModes {
		if v == m {
			return true
		}
	}
	return false
}
