// Copyright (c) Microsoft. All rights reserved.

package agents

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Role identifies the author of a [ThreadMessage].
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// AnnotationType identifies the kind of an [Annotation].
type AnnotationType string

const (
	AnnotationURLCitation  AnnotationType = "url_citation"
	AnnotationFileCitation AnnotationType = "file_citation"
	AnnotationFilePath     AnnotationType = "file_path"
)

// ThreadMessage is a message stored in a service-managed thread.
type ThreadMessage struct {
	ID        string
	ThreadID  string
	RunID     string
	Role      Role
	Contents  []MessageText
	CreatedAt time.Time
}

// Text returns the concatenated text of all contents, with citation
// markers left as the service wrote them.
func (m *ThreadMessage) Text() string {
	var b strings.Builder
	for _, c := range m.Contents {
		b.WriteString(c.Value)
	}
	return b.String()
}

// MessageText is a text content part of a [ThreadMessage].
type MessageText struct {
	Value       string
	Annotations []Annotation
}

// Annotation marks a span of a [MessageText] that cites a source.
// StartIndex and EndIndex count characters, not bytes.
type Annotation struct {
	Type        AnnotationType
	Text        string
	StartIndex  *int
	EndIndex    *int
	URLCitation *URLCitation
}

// URLCitation is the web source behind an annotation.
type URLCitation struct {
	URL   string
	Title string
}

// Citation is a numbered footnote produced by [ResolveCitations].
type Citation struct {
	Number int
	Title  string
	URL    string
}

func (c Citation) String() string {
	return strconv.Itoa(c.Number) + ". " + c.Title + ": " + c.URL
}

// ResolveCitations replaces annotated spans of t with footnote markers and
// returns the rewritten text with its citations.
//
// Annotations are numbered from 1 in order of descending start index, so
// that replacing a span never shifts the spans still to be replaced. An
// annotation with both indices has its span replaced by "[n]", even when its
// Text is empty; an annotation with a URL citation contributes Citation n.
// Spans outside the text are left alone.
func ResolveCitations(t MessageText) (string, []Citation) {
	if len(t.Annotations) == 0 {
		return t.Value, nil
	}

	ordered := make([]Annotation, len(t.Annotations))
	copy(ordered, t.Annotations)
	sort.SliceStable(ordered, func(i, j int) bool {
		return indexOf(ordered[i].StartIndex) > indexOf(ordered[j].StartIndex)
	})

	text := []rune(t.Value)
	var citations []Citation
	for i, a := range ordered {
		n := i + 1
		if a.StartIndex != nil && a.EndIndex != nil {
			start, end := *a.StartIndex, *a.EndIndex
			if start >= 0 && start <= end && end <= len(text) {
				marker := []rune("[" + strconv.Itoa(n) + "]")
				replaced := make([]rune, 0, len(text)-(end-start)+len(marker))
				replaced = append(replaced, text[:start]...)
				replaced = append(replaced, marker...)
				replaced = append(replaced, text[end:]...)
				text = replaced
			}
		}
		if a.URLCitation != nil {
			citations = append(citations, Citation{
				Number: n,
				Title:  a.URLCitation.Title,
				URL:    a.URLCitation.URL,
			})
		}
	}
	return string(text), citations
}

func indexOf(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}
