package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptFilename(t *testing.T) {
	cases := []struct {
		prompt string
		want   string
	}{
		{"Act as a senior data analyst and report", "act_as_a_senior_data.txt"},
		{"One two", "one_two.txt"},
		{"Résumé à jour, s'il vous plaît!", "résumé_à_jour_sil_vous.txt"},
		{"!!! ??? ...", "prompt.txt"},
		{"", "prompt.txt"},
		{"word1, word2; word3: word4 (word5) word6", "word1_word2_word3_word4_word5.txt"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PromptFilename(tc.prompt), "prompt %q", tc.prompt)
	}
}

func TestExportFinalPrompt(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportFinalPrompt(dir, "Act as a reviewer")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "act_as_a_reviewer.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Act as a reviewer", string(data))
}

func TestExportRejectsEmptyPrompt(t *testing.T) {
	_, err := ExportFinalPrompt(t.TempDir(), "   ")
	assert.ErrorIs(t, err, ErrValidation)
}
