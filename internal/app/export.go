package app

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var filenameStrip = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// PromptFilename derives a file name from a prompt: the first five words
// after stripping everything but letters, digits and spaces, lowercased
// and joined with underscores, plus a .txt extension. Letters keep their
// diacritics. An empty derivation falls back to prompt.txt.
func PromptFilename(prompt string) string {
	clean := filenameStrip.ReplaceAllString(prompt, "")
	words := strings.Fields(clean)
	if len(words) > 5 {
		words = words[:5]
	}
	name := strings.ToLower(strings.Join(words, "_"))
	if name == "" {
		return "prompt.txt"
	}
	return name + ".txt"
}

// ExportFinalPrompt writes the prompt to dir under its derived name and
// returns the full path.
func ExportFinalPrompt(dir, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: nothing to export", ErrValidation)
	}
	path := filepath.Join(dir, PromptFilename(prompt))
	if err := os.WriteFile(path, []byte(prompt), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
