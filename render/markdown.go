// Copyright (c) Microsoft. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// DefaultWidth is the wrap width used when none is given.
const DefaultWidth = 80

// Markdown parses src and returns ANSI-styled terminal output. Paragraphs and
// list items are wrapped to width; code blocks are left as they are.
func Markdown(src string, width int) string {
	if src == "" {
		return ""
	}
	if width <= 0 {
		width = DefaultWidth
	}
	return newMarkdownRenderer().render([]byte(src), width)
}

type markdownRenderer struct {
	bold      lipgloss.Style
	italic    lipgloss.Style
	heading   lipgloss.Style
	muted     lipgloss.Style
	underline lipgloss.Style
	code      lipgloss.Style
}

func newMarkdownRenderer() *markdownRenderer {
	return &markdownRenderer{
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		heading:   lipgloss.NewStyle().Foreground(colorCyan).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(colorGray).Faint(true),
		underline: lipgloss.NewStyle().Underline(true),
		code:      lipgloss.NewStyle().Foreground(colorYellow),
	}
}

func (r *markdownRenderer) render(src []byte, width int) string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	r.walkBlock(doc, src, width, &buf)
	return strings.TrimRight(buf.String(), "\n")
}

func (r *markdownRenderer) walkBlock(node ast.Node, src []byte, width int, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderBlock(c, src, width, buf)
	}
}

func (r *markdownRenderer) renderBlock(node ast.Node, src []byte, width int, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		r.writeWrapped(buf, r.collectInline(n, src), width)

	case *ast.Heading:
		r.writeWrapped(buf, r.heading.Render(r.collectInline(n, src)), width)

	case *ast.FencedCodeBlock:
		if lang := string(n.Language(src)); lang != "" {
			buf.WriteString(r.muted.Render(lang) + "\n")
		}
		r.writeCode(buf, n, src)

	case *ast.CodeBlock:
		r.writeCode(buf, n, src)

	case *ast.List:
		r.renderList(n, src, width, buf, 0)

	case *ast.ThematicBreak:
		buf.WriteString(r.muted.Render(strings.Repeat("─", min(width, ruleWidth))) + "\n")

	case *ast.Blockquote:
		var inner bytes.Buffer
		r.walkBlock(n, src, width-2, &inner)
		bar := r.muted.Render("│") + " "
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			buf.WriteString(bar + line + "\n")
		}

	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return

	default:
		r.walkBlock(node, src, width, buf)
		return
	}

	if node.NextSibling() != nil {
		buf.WriteString("\n")
	}
}

func (r *markdownRenderer) writeWrapped(buf *bytes.Buffer, s string, width int) {
	buf.WriteString(lipgloss.NewStyle().Width(width).Render(s))
	buf.WriteString("\n")
}

func (r *markdownRenderer) writeCode(buf *bytes.Buffer, node ast.Node, src []byte) {
	gutter := r.muted.Render("│") + " "
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.WriteString(gutter + strings.TrimRight(string(line.Value(src)), "\n") + "\n")
	}
}

func (r *markdownRenderer) renderList(node *ast.List, src []byte, width int, buf *bytes.Buffer, depth int) {
	n := node.Start
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		indent := strings.Repeat("  ", depth)
		marker := "• "
		if node.IsOrdered() {
			marker = fmt.Sprintf("%d. ", n)
			n++
		}

		var itemBuf bytes.Buffer
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				itemBuf.WriteString(r.collectInline(in, src))
			case *ast.List:
				if itemBuf.Len() > 0 {
					r.writeListItem(buf, indent, marker, itemBuf.String(), width)
					itemBuf.Reset()
				}
				r.renderList(in, src, width, buf, depth+1)
				marker = strings.Repeat(" ", lipgloss.Width(marker))
			default:
				r.renderBlock(ic, src, width, &itemBuf)
			}
		}
		if itemBuf.Len() > 0 {
			r.writeListItem(buf, indent, marker, itemBuf.String(), width)
		}
	}
}

// writeListItem indents continuation lines under the item's first line.
func (r *markdownRenderer) writeListItem(buf *bytes.Buffer, indent, marker, content string, width int) {
	prefix := indent + marker
	prefixWidth := lipgloss.Width(prefix)
	itemWidth := max(width-prefixWidth, 10)

	wrapped := lipgloss.NewStyle().Width(itemWidth).Render(content)
	continuation := strings.Repeat(" ", prefixWidth)
	for i, line := range strings.Split(wrapped, "\n") {
		if i == 0 {
			buf.WriteString(prefix + line + "\n")
		} else {
			buf.WriteString(continuation + line + "\n")
		}
	}
}

func (r *markdownRenderer) collectInline(node ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderInline(c, src, &buf)
	}
	return buf.String()
}

func (r *markdownRenderer) renderInline(node ast.Node, src []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(src))
		if n.HardLineBreak() {
			buf.WriteByte('\n')
		} else if n.SoftLineBreak() {
			buf.WriteByte(' ')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		inner := r.collectInline(n, src)
		if n.Level == 1 {
			buf.WriteString(r.italic.Render(inner))
		} else {
			buf.WriteString(r.bold.Render(inner))
		}

	case *ast.CodeSpan:
		buf.WriteString(r.code.Render(r.collectInline(n, src)))

	case *ast.Link:
		buf.WriteString(r.underline.Render(r.collectInline(n, src)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.AutoLink:
		buf.WriteString(r.underline.Render(string(n.URL(src))))

	case *ast.Image:
		buf.WriteString(r.underline.Render(r.collectInline(n, src)))
		buf.WriteString(" " + r.muted.Render("("+string(n.Destination)+")"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(src))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.renderInline(c, src, buf)
		}
	}
}
