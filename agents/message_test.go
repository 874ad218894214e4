// Copyright (c) Microsoft. All rights reserved.

package agents_test

import (
	"testing"

	"github.com/microsoft/foundry-agent-runs/go/agents"
)

func intp(i int) *int { return &i }

func TestResolveCitations(t *testing.T) {
	text := agents.MessageText{
		Value: "Stockholm is cold【3:0†source】 and Oslo is wet【3:1†source】.",
		Annotations: []agents.Annotation{
			{
				Type:        agents.AnnotationURLCitation,
				Text:        "【3:0†source】",
				StartIndex:  intp(17),
				EndIndex:    intp(29),
				URLCitation: &agents.URLCitation{Title: "SMHI", URL: "https://smhi.se"},
			},
			{
				Type:        agents.AnnotationURLCitation,
				Text:        "【3:1†source】",
				StartIndex:  intp(45),
				EndIndex:    intp(57),
				URLCitation: &agents.URLCitation{Title: "Yr", URL: "https://yr.no"},
			},
		},
	}

	got, citations := agents.ResolveCitations(text)

	want := "Stockholm is cold[2] and Oslo is wet[1]."
	if got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
	if len(citations) != 2 {
		t.Fatalf("citations = %+v", citations)
	}
	if citations[0].String() != "1. Yr: https://yr.no" {
		t.Errorf("citations[0] = %q", citations[0].String())
	}
	if citations[1].String() != "2. SMHI: https://smhi.se" {
		t.Errorf("citations[1] = %q", citations[1].String())
	}
}

func TestResolveCitations_EdgeCases(t *testing.T) {
	tests := []struct {
		name          string
		text          agents.MessageText
		want          string
		wantCitations int
	}{
		{
			name: "no annotations",
			text: agents.MessageText{Value: "plain"},
			want: "plain",
		},
		{
			name: "citation without span",
			text: agents.MessageText{
				Value: "hello",
				Annotations: []agents.Annotation{{
					URLCitation: &agents.URLCitation{Title: "t", URL: "u"},
				}},
			},
			want:          "hello",
			wantCitations: 1,
		},
		{
			name: "span out of range",
			text: agents.MessageText{
				Value: "short",
				Annotations: []agents.Annotation{{
					Text:       "x",
					StartIndex: intp(3),
					EndIndex:   intp(99),
				}},
			},
			want: "short",
		},
		{
			name: "span with empty text",
			text: agents.MessageText{
				Value: "XXXXX rest",
				Annotations: []agents.Annotation{{
					Type:        agents.AnnotationURLCitation,
					StartIndex:  intp(0),
					EndIndex:    intp(5),
					URLCitation: &agents.URLCitation{Title: "t", URL: "u"},
				}},
			},
			want:          "[1] rest",
			wantCitations: 1,
		},
		{
			name: "span without citation",
			text: agents.MessageText{
				Value: "see [src] here",
				Annotations: []agents.Annotation{{
					Type:       agents.AnnotationFileCitation,
					Text:       "[src]",
					StartIndex: intp(4),
					EndIndex:   intp(9),
				}},
			},
			want: "see [1] here",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, citations := agents.ResolveCitations(tc.text)
			if got != tc.want {
				t.Errorf("text = %q, want %q", got, tc.want)
			}
			if len(citations) != tc.wantCitations {
				t.Errorf("citations = %d, want %d", len(citations), tc.wantCitations)
			}
		})
	}
}

func TestThreadMessage_Text(t *testing.T) {
	m := agents.ThreadMessage{
		Role: agents.RoleAssistant,
		Contents: []agents.MessageText{
			{Value: "Hello, "},
			{Value: "world"},
		},
	}
	if m.Text() != "Hello, world" {
		t.Errorf("Text = %q", m.Text())
	}
}
