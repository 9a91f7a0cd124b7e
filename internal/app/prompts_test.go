package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeUserPromptModes(t *testing.T) {
	atts := []Attachment{{Name: "report.pdf"}, {Name: "style.txt"}}

	plain := ComposeUserPrompt("my goal", nil, UsageContext)
	assert.Equal(t, "my goal", plain)

	byMode := map[UsageMode]string{}
	for _, mode := range UsageModes {
		byMode[mode] = ComposeUserPrompt("my goal", atts, mode)
	}
	// Every mode produces a distinct composition mentioning the files.
	seen := map[string]bool{}
	for mode, composed := range byMode {
		assert.Contains(t, composed, "report.pdf", "mode %s", mode)
		assert.Contains(t, composed, "my goal", "mode %s", mode)
		assert.False(t, seen[composed], "mode %s duplicates another composition", mode)
		seen[composed] = true
	}

	// Append modes keep the goal first; wrap modes lead with the directive.
	assert.True(t, len(byMode[UsageContext]) > 0 && byMode[UsageContext][:7] == "my goal")
	assert.True(t, byMode[UsageFactCheck][:7] == "my goal")
	assert.False(t, byMode[UsageStyleSource][:7] == "my goal")
	assert.False(t, byMode[UsageStructuralExample][:7] == "my goal")
}

func TestBuildMasterPromptIncludesArchitecture(t *testing.T) {
	p := BuildMasterPrompt("goal", "react", "tailored description")
	assert.Contains(t, p, "ReAct")
	assert.Contains(t, p, "tailored description")
	assert.Contains(t, p, championMarker)
	assert.Contains(t, p, Architectures["react"].Evolution)
}

func TestBuildRefinementPromptEmbedsChampion(t *testing.T) {
	p := BuildRefinementPrompt("the champion text")
	assert.Contains(t, p, "the champion text")
	assert.Contains(t, p, championMarker)
	assert.Contains(t, p, "9.")
}

func TestTailorSchemaCoversCatalog(t *testing.T) {
	s := TailorSchema()
	assert.Equal(t, "object", s.Type)
	for _, key := range ArchitectureKeys {
		assert.Contains(t, s.Properties, key)
	}
	assert.Len(t, s.Required, len(ArchitectureKeys))
}

func TestValidateEvaluation(t *testing.T) {
	ok := Evaluation{Clarity: 1, Efficiency: 10, Robustness: 5, Summary: "fine"}
	assert.NoError(t, ValidateEvaluation(ok))

	bad := ok
	bad.Clarity = 0
	assert.Error(t, ValidateEvaluation(bad))

	bad = ok
	bad.Robustness = 11
	assert.Error(t, ValidateEvaluation(bad))

	bad = ok
	bad.Summary = "  "
	assert.Error(t, ValidateEvaluation(bad))
}

func TestArchitectureCatalogComplete(t *testing.T) {
	assert.Len(t, ArchitectureKeys, 7)
	for _, key := range ArchitectureKeys {
		arch, ok := Architectures[key]
		assert.True(t, ok, key)
		assert.NotEmpty(t, arch.Title, key)
		assert.NotEmpty(t, arch.Description, key)
		assert.NotEmpty(t, arch.Evolution, key)
	}
}
