package app

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// championMarker is the sentinel line the dossier prompts place right
// before the final fenced prompt.
const championMarker = "FINAL VECTOR (ready for use):"

var markerFencePattern = regexp.MustCompile(
	`(?s)FINAL VECTOR \(ready for use\):\s*` + "```" + `[\w-]*\n(.*?)` + "```")

// LastFencedBlock returns the content of the last code block in a
// Markdown document, or "" when there is none.
func LastFencedBlock(markdown string) string {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	var last ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			last = n
		}
		return ast.WalkContinue, nil
	})
	if last == nil {
		return ""
	}

	var b strings.Builder
	lines := last.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return strings.TrimRight(b.String(), "\n")
}

// ExtractChampionPrompt pulls the champion prompt out of a dossier. The
// last code block wins; when the document has none the marker line
// followed by a fence is tried as a fallback. Returns "" when neither
// yields anything.
func ExtractChampionPrompt(dossier string) string {
	if block := LastFencedBlock(dossier); strings.TrimSpace(block) != "" {
		return strings.TrimSpace(block)
	}
	if m := markerFencePattern.FindStringSubmatch(dossier); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
