package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastFencedBlockPicksLast(t *testing.T) {
	doc := "intro\n\n```\nfirst\n```\n\nmiddle\n\n```go\nsecond block\nwith two lines\n```\n\noutro\n"
	assert.Equal(t, "second block\nwith two lines", LastFencedBlock(doc))
}

func TestLastFencedBlockEmptyDoc(t *testing.T) {
	assert.Empty(t, LastFencedBlock("just prose, no code at all"))
	assert.Empty(t, LastFencedBlock(""))
}

func TestExtractChampionPrefersCodeBlock(t *testing.T) {
	doc := "## Dossier\n\nFINAL VECTOR (ready for use):\n\n```\nthe champion\n```\n"
	assert.Equal(t, "the champion", ExtractChampionPrompt(doc))
}

func TestExtractChampionMarkerFallback(t *testing.T) {
	// Inside an HTML block goldmark parses no code block at all, so only
	// the marker regex can recover the fence.
	doc := "<div>\nFINAL VECTOR (ready for use):\n```\nreal fallback\n```\n</div>"
	assert.Empty(t, LastFencedBlock(doc))
	assert.Equal(t, "real fallback", ExtractChampionPrompt(doc))
}

func TestExtractChampionNothingFound(t *testing.T) {
	assert.Empty(t, ExtractChampionPrompt("a dossier with no fences and no marker"))
}
