package app

import (
	"fmt"
	"strings"
)

// ComposeUserPrompt weaves the user's goal and the attachment roster into
// a single request block according to the usage mode. Context and
// fact-check modes append an instruction; style and structure modes wrap
// the goal in a directive about the attachments.
func ComposeUserPrompt(input string, atts []Attachment, mode UsageMode) string {
	if len(atts) == 0 {
		return input
	}
	names := make([]string, len(atts))
	for i, a := range atts {
		names[i] = a.Name
	}
	roster := strings.Join(names, ", ")

	switch mode {
	case UsageStyleSource:
		return fmt.Sprintf(
			"Study the writing style, voice and register of the attached files (%s). "+
				"The prompt you produce must instruct the model to replicate that style.\n\nGoal: %s",
			roster, input)
	case UsageStructuralExample:
		return fmt.Sprintf(
			"Treat the attached files (%s) as a structural template. "+
				"The prompt you produce must make outputs follow their structure and layout.\n\nGoal: %s",
			roster, input)
	case UsageFactCheck:
		return fmt.Sprintf(
			"%s\n\nVerify every factual claim against the attached files (%s) and flag anything they do not support.",
			input, roster)
	default: // UsageContext
		return fmt.Sprintf("%s\n\nUse the attached files (%s) as source context.", input, roster)
	}
}

// BuildDistillPrompt asks for the phase-1 base prompt: the user's raw
// request distilled into one clean instruction.
func BuildDistillPrompt(composed string) string {
	return fmt.Sprintf(`You are an elite prompt engineer. Distill the request below into a single, clean base prompt: one precise instruction that captures the user's real goal, stripped of noise.

Return only the base prompt text, nothing else.

Request:
%s`, composed)
}

// BuildTailorPrompt asks for a JSON object mapping every architecture
// key to a one-sentence description tailored to this goal.
func BuildTailorPrompt(basePrompt string) string {
	var b strings.Builder
	b.WriteString("For the goal below, rewrite the description of each prompt architecture so it says what that architecture would concretely do for THIS goal. One sentence each.\n\nArchitectures:\n")
	for _, key := range ArchitectureKeys {
		a := Architectures[key]
		fmt.Fprintf(&b, "- %s: %s\n", key, a.Description)
	}
	b.WriteString("\nGoal:\n")
	b.WriteString(basePrompt)
	return b.String()
}

// TailorSchema constrains the tailoring call to one string per catalog key.
func TailorSchema() *Schema {
	props := make(map[string]*Schema, len(ArchitectureKeys))
	for _, key := range ArchitectureKeys {
		props[key] = &Schema{Type: "string", Description: "tailored one-sentence description"}
	}
	return &Schema{Type: "object", Properties: props, Required: ArchitectureKeys}
}

// BuildMasterPrompt produces the dossier-generating prompt: evolve the
// goal through the selected architecture, run a candidate tournament,
// and emit the champion behind the final marker.
func BuildMasterPrompt(composed, archKey, archDescription string) string {
	arch := Architectures[archKey]
	title := arch.Title
	if title == "" {
		title = archKey
	}
	return fmt.Sprintf(`You are an elite prompt engineer producing a complete prompt engineering dossier in Markdown.

The user's goal:
%s

Selected architecture: %s
%s

Work through these phases, writing each as a Markdown section:

## Phase 1: Base Prompt
Distill the goal into a clean base prompt.

## Phase 2: Architecture Application
%s

## Phase 3: Candidate Tournament
Produce two distinct evolved candidates, compare them ruthlessly against the goal, and declare a champion with justification.

## Phase 4: Champion
Close the dossier with the line

%s

followed by the champion prompt inside a fenced code block. The fenced block must contain only the prompt itself, ready to paste.`,
		composed, title, archDescription, arch.Evolution, championMarker)
}

// BuildRefinementPrompt runs the champion through a nine-step hardening
// pass and asks for the refined prompt behind the same marker.
func BuildRefinementPrompt(champion string) string {
	return fmt.Sprintf(`You are an elite prompt engineer hardening a champion prompt. Apply these nine refinement steps, reporting briefly on each:

1. Tighten the role definition.
2. Make the deliverable and its format explicit.
3. Surface hidden assumptions as stated constraints.
4. Remove redundant or conflicting instructions.
5. Add guardrails against the most likely failure mode.
6. Specify how to handle missing or ambiguous input.
7. Calibrate tone and audience.
8. Compress without losing precision.
9. Final coherence read-through.

Write the report in Markdown, then close with the line

%s

followed by the refined prompt inside a fenced code block. The fenced block must contain only the prompt itself.

Champion prompt:
%s`, championMarker, champion)
}

// BuildOptimizationPrompt rewrites a prompt per the user's instruction.
// The response must be only the new prompt text.
func BuildOptimizationPrompt(prompt, instruction string) string {
	return fmt.Sprintf(`Rewrite the prompt below according to the instruction. Preserve everything the instruction does not touch. Return only the rewritten prompt, with no commentary and no code fences.

Instruction: %s

Prompt:
%s`, instruction, prompt)
}

// BuildEvaluationPrompt asks for the structured scoring of a prompt.
func BuildEvaluationPrompt(target string) string {
	return fmt.Sprintf(`Evaluate the following prompt as a prompt-engineering artifact. Score clarity, efficiency and robustness from 1 to 10 and write a two-sentence summary of its strengths and weaknesses.

Prompt:
%s`, target)
}

// EvaluationSchema constrains the evaluation call to the scoring shape.
func EvaluationSchema() *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"clarity":    {Type: "integer", Description: "1 to 10", Minimum: floatPtr(1), Maximum: floatPtr(10)},
			"efficiency": {Type: "integer", Description: "1 to 10", Minimum: floatPtr(1), Maximum: floatPtr(10)},
			"robustness": {Type: "integer", Description: "1 to 10", Minimum: floatPtr(1), Maximum: floatPtr(10)},
			"summary":    {Type: "string", Description: "two-sentence assessment"},
		},
		Required: []string{"clarity", "efficiency", "robustness", "summary"},
	}
}

// ValidateEvaluation rejects out-of-range scores and empty summaries.
func ValidateEvaluation(e Evaluation) error {
	for name, v := range map[string]int{"clarity": e.Clarity, "efficiency": e.Efficiency, "robustness": e.Robustness} {
		if v < 1 || v > 10 {
			return fmt.Errorf("%s score %d out of range", name, v)
		}
	}
	if strings.TrimSpace(e.Summary) == "" {
		return fmt.Errorf("empty summary")
	}
	return nil
}

// BuildAuditPrompt produces the code-audit overlay prompt against the
// given source listing.
func BuildAuditPrompt(source string) string {
	return fmt.Sprintf(`You are a meticulous senior code auditor. Review the source below and produce a Markdown report with three sections: Architecture, Risks, and Concrete Recommendations. Point at specific functions and lines; do not pad.

Source:
%s`, source)
}
