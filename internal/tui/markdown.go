package tui

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdCodeBlockRe = regexp.MustCompile(`(?s)<pre><code(?: class="language-([a-zA-Z0-9_-]+)")?>(.*?)</code></pre>`)
	mdHeadingRe   = regexp.MustCompile(`<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	mdStrongRe    = regexp.MustCompile(`<strong>(.*?)</strong>`)
	mdEmRe        = regexp.MustCompile(`<em>(.*?)</em>`)
	mdInlineCode  = regexp.MustCompile(`<code>([^<]+)</code>`)
	mdListItemRe  = regexp.MustCompile(`<li>(.*?)</li>`)
	mdTagRe       = regexp.MustCompile(`<[^>]+>`)
	mdBlankRunRe  = regexp.MustCompile(`\n{3,}`)
)

// MarkdownRenderer turns dossier Markdown into styled terminal text.
// Goldmark renders to HTML, a regex pass rewrites the handful of tags
// the dossiers actually use, chroma highlights the code blocks.
type MarkdownRenderer struct {
	md        goldmark.Markdown
	theme     Theme
	formatter chroma.Formatter
	style     *chroma.Style
}

func NewMarkdownRenderer(theme Theme) *MarkdownRenderer {
	return &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		theme:     theme,
		formatter: formatters.Get("terminal256"),
		style:     styles.Get("friendly"),
	}
}

// Render converts Markdown to terminal output clipped to width.
func (r *MarkdownRenderer) Render(content string, width int) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return r.rewrite(buf.String(), width)
}

func (r *MarkdownRenderer) rewrite(doc string, width int) string {
	if width < 24 {
		width = 24
	}

	var fences []string
	doc = mdCodeBlockRe.ReplaceAllStringFunc(doc, func(m string) string {
		sub := mdCodeBlockRe.FindStringSubmatch(m)
		code := decodeEntities(sub[2])
		block := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(r.theme.Border).
			Padding(0, 1).
			Width(width - 4).
			Render(r.Highlight(code, sub[1]))
		fences = append(fences, block)
		return fmt.Sprintf("\n{{FENCE_%d}}\n", len(fences)-1)
	})

	doc = mdInlineCode.ReplaceAllStringFunc(doc, func(m string) string {
		sub := mdInlineCode.FindStringSubmatch(m)
		return lipgloss.NewStyle().Foreground(r.theme.Accent).Render(decodeEntities(sub[1]))
	})

	doc = mdHeadingRe.ReplaceAllStringFunc(doc, func(m string) string {
		sub := mdHeadingRe.FindStringSubmatch(m)
		style := lipgloss.NewStyle().Bold(true).Foreground(r.theme.Accent)
		if sub[1] != "1" && sub[1] != "2" {
			style = lipgloss.NewStyle().Bold(true).Foreground(r.theme.TextPrimary)
		}
		return "\n" + style.Render(mdTagRe.ReplaceAllString(sub[2], "")) + "\n"
	})

	doc = mdStrongRe.ReplaceAllStringFunc(doc, func(m string) string {
		sub := mdStrongRe.FindStringSubmatch(m)
		return lipgloss.NewStyle().Bold(true).Render(sub[1])
	})
	doc = mdEmRe.ReplaceAllStringFunc(doc, func(m string) string {
		sub := mdEmRe.FindStringSubmatch(m)
		return lipgloss.NewStyle().Italic(true).Render(sub[1])
	})
	doc = mdListItemRe.ReplaceAllStringFunc(doc, func(m string) string {
		sub := mdListItemRe.FindStringSubmatch(m)
		return "  • " + mdTagRe.ReplaceAllString(sub[1], "") + "\n"
	})

	doc = strings.NewReplacer("<p>", "", "</p>", "\n", "<br>", "\n", "<br/>", "\n", "<br />", "\n").Replace(doc)
	doc = mdTagRe.ReplaceAllString(doc, "")
	doc = decodeEntities(doc)

	for i, fence := range fences {
		doc = strings.ReplaceAll(doc, fmt.Sprintf("{{FENCE_%d}}", i), fence)
	}

	doc = mdBlankRunRe.ReplaceAllString(doc, "\n\n")
	return strings.TrimSpace(doc)
}

// Highlight runs chroma over a code snippet, falling back to plain text.
func (r *MarkdownRenderer) Highlight(code, lang string) string {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

func decodeEntities(s string) string {
	return strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&#x27;", "'",
		"&#x60;", "`",
		"&nbsp;", " ",
	).Replace(s)
}
