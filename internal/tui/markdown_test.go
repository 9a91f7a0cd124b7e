package tui

import (
	"strings"
	"testing"
)

func TestRenderPlainParagraph(t *testing.T) {
	r := NewMarkdownRenderer(newNoColorTheme())
	out := r.Render("hello world", 80)
	if !strings.Contains(out, "hello world") {
		t.Errorf("expected paragraph text to survive, got %q", out)
	}
}

func TestRenderHeadingAndList(t *testing.T) {
	r := NewMarkdownRenderer(newNoColorTheme())
	out := r.Render("# Title\n\n- first\n- second\n", 80)
	if !strings.Contains(out, "Title") {
		t.Errorf("heading text missing: %q", out)
	}
	if !strings.Contains(out, "• first") || !strings.Contains(out, "• second") {
		t.Errorf("list items missing: %q", out)
	}
}

func TestRenderCodeBlockKeepsContent(t *testing.T) {
	r := NewMarkdownRenderer(newNoColorTheme())
	out := r.Render("```go\nfunc main() {}\n```", 80)
	if !strings.Contains(out, "main") {
		t.Errorf("code content missing: %q", out)
	}
}

func TestRenderInvalidWidthClamped(t *testing.T) {
	r := NewMarkdownRenderer(newNoColorTheme())
	out := r.Render("```\nx\n```", 1)
	if out == "" {
		t.Error("expected output even at tiny width")
	}
}

func TestHighlightFallsBackToPlainText(t *testing.T) {
	r := NewMarkdownRenderer(newNoColorTheme())
	out := r.Highlight("not really code", "")
	if !strings.Contains(out, "not really code") {
		t.Errorf("fallback lost the content: %q", out)
	}
}

func TestDecodeEntities(t *testing.T) {
	got := decodeEntities("&lt;a&gt; &amp; &quot;b&quot;")
	want := `<a> & "b"`
	if got != want {
		t.Errorf("decodeEntities = %q, want %q", got, want)
	}
}
