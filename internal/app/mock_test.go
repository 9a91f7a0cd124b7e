package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The dossier prompt carries the champion marker itself, so the mock has
// to tell the two stream phases apart by their instructions.
func TestMockStreamServesDossierThenRefinement(t *testing.T) {
	gw := NewMockGateway()

	dossier, err := gw.GenerateStream(context.Background(),
		BuildMasterPrompt("summarize the goal", "react", ""), nil, nil)
	require.NoError(t, err)
	assert.Contains(t, dossier, "Prompt Engineering Dossier")
	assert.NotContains(t, dossier, "Refinement Report")

	refined, err := gw.GenerateStream(context.Background(),
		BuildRefinementPrompt(ExtractChampionPrompt(dossier)), nil, nil)
	require.NoError(t, err)
	assert.Contains(t, refined, "Refinement Report")
}
