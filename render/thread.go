// Copyright (c) Microsoft. All rights reserved.

// Package render prints thread messages to a terminal.
//
//	msgs, _ := client.ListMessages(ctx, threadID)
//	render.Thread(os.Stdout, msgs, render.WithWidth(100))
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/microsoft/foundry-agent-runs/go/agents"
)

const ruleWidth = 60

var (
	colorBlue   = lipgloss.Color("4")
	colorGreen  = lipgloss.Color("2")
	colorYellow = lipgloss.Color("3")
	colorCyan   = lipgloss.Color("6")
	colorGray   = lipgloss.Color("8")
)

type threadConfig struct {
	width int
	icons bool
}

// Option configures [Thread].
type Option func(*threadConfig)

// WithWidth sets the wrap width of message bodies.
func WithWidth(width int) Option {
	return func(c *threadConfig) { c.width = width }
}

// WithIcons prefixes role headers with an emoji.
func WithIcons(enabled bool) Option {
	return func(c *threadConfig) { c.icons = enabled }
}

// Thread writes msgs in order, each under a colored role header, with
// citation markers replaced by footnote numbers and the cited sources listed
// after the body.
func Thread(w io.Writer, msgs []agents.ThreadMessage, opts ...Option) error {
	cfg := &threadConfig{width: DefaultWidth}
	for _, o := range opts {
		o(cfg)
	}

	var b strings.Builder
	for i := range msgs {
		writeMessage(&b, &msgs[i], cfg)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeMessage(b *strings.Builder, m *agents.ThreadMessage, cfg *threadConfig) {
	color := colorGreen
	icon := "🤖"
	if m.Role == agents.RoleUser {
		color = colorBlue
		icon = "👤"
	}
	style := lipgloss.NewStyle().Foreground(color)

	title := strings.ToUpper(string(m.Role))
	if cfg.icons {
		title = icon + " " + title
	}
	b.WriteString("\n" + style.Render(title) + "\n")
	b.WriteString(style.Render(strings.Repeat("-", ruleWidth)) + "\n")

	var citations []agents.Citation
	for _, content := range m.Contents {
		body, cs := agents.ResolveCitations(content)
		citations = append(citations, cs...)
		if md := Markdown(body, cfg.width); md != "" {
			b.WriteString(md + "\n")
		}
	}

	if len(citations) > 0 {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(colorYellow).Render("Citations:") + "\n")
		for _, c := range citations {
			fmt.Fprintln(b, c.String())
		}
	}
}
