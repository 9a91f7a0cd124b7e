package app

// Architecture is one entry of the static catalog shown after the base
// prompt is distilled. Evolution holds the phase-3 instructions injected
// into the master prompt when this architecture is chosen.
type Architecture struct {
	Key         string
	Title       string
	Description string
	Evolution   string
}

// ArchitectureKeys fixes the display order of the catalog.
var ArchitectureKeys = []string{
	"zero_shot",
	"few_shot",
	"chain_of_thought",
	"react",
	"rag",
	"rollback_instructions",
	"conditional_prompting",
}

// Architectures is the catalog of prompt architectures the user picks
// from. Descriptions here are the static fallback; a best-effort
// structured call tailors them to the user's goal.
var Architectures = map[string]Architecture{
	"zero_shot": {
		Key:         "zero_shot",
		Title:       "Zero-Shot",
		Description: "A direct, self-contained instruction with no examples. Best when the task is common and the model already knows the pattern.",
		Evolution: "Evolve the base prompt into a single self-sufficient instruction. " +
			"Sharpen the role, the deliverable and the constraints until no example is needed. " +
			"Remove every ambiguity a model could exploit.",
	},
	"few_shot": {
		Key:         "few_shot",
		Title:       "Few-Shot",
		Description: "The instruction plus two or three worked input/output examples that pin down format and tone.",
		Evolution: "Evolve the base prompt by adding two or three compact input/output example pairs " +
			"that demonstrate the exact expected format, tone and level of detail. " +
			"Examples must be realistic for this goal, not generic placeholders.",
	},
	"chain_of_thought": {
		Key:         "chain_of_thought",
		Title:       "Chain of Thought",
		Description: "Forces the model to reason step by step before answering. Best for analysis, math and multi-stage decisions.",
		Evolution: "Evolve the base prompt so the model must reason in explicit numbered steps before " +
			"producing its conclusion, and must separate the reasoning section from the final answer.",
	},
	"react": {
		Key:         "react",
		Title:       "ReAct",
		Description: "Interleaves reasoning with actions and observations. Best when the task involves tools or iterative lookups.",
		Evolution: "Evolve the base prompt into a Thought / Action / Observation loop: the model states a " +
			"thought, names the action it would take, records the observation, and repeats until it can answer.",
	},
	"rag": {
		Key:         "rag",
		Title:       "Retrieval-Augmented",
		Description: "Grounds the answer strictly in supplied reference material. Best when accuracy against sources matters more than fluency.",
		Evolution: "Evolve the base prompt to take a CONTEXT block of retrieved material and to answer " +
			"only from it, citing which passage supports each claim and saying so when the context is insufficient.",
	},
	"rollback_instructions": {
		Key:         "rollback_instructions",
		Title:       "Rollback Instructions",
		Description: "Builds self-checks and recovery paths into the prompt so a bad intermediate result gets corrected, not propagated.",
		Evolution: "Evolve the base prompt with explicit checkpoints: after each stage the model verifies its " +
			"own output against stated criteria and, on failure, rolls back to the last good stage and retries differently.",
	},
	"conditional_prompting": {
		Key:         "conditional_prompting",
		Title:       "Conditional Prompting",
		Description: "Branches the instructions on properties of the input. Best when one prompt must cover several distinct cases.",
		Evolution: "Evolve the base prompt into an explicit decision tree: enumerate the input cases that " +
			"matter for this goal and give each branch its own precise instructions and output format.",
	},
}
