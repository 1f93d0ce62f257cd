// Package pipeline wires segmentation, parsing and rendering together, and
// runs file conversions as background jobs.
package pipeline

import (
	"crypto/sha256"
	"fmt"

	"github.com/dgallion1/lessonfmt/internal/doctree"
	"github.com/dgallion1/lessonfmt/internal/parser"
	"github.com/dgallion1/lessonfmt/internal/question"
	"github.com/dgallion1/lessonfmt/internal/render"
	"github.com/dgallion1/lessonfmt/internal/segment"
)

// AutoSessions asks Build to take the session count from the highest
// "Pertemuan N" marker in the text.
const AutoSessions = -1

// Input is one piece of generated lesson or assessment content.
type Input struct {
	Title    string           `json:"title,omitempty"`
	Text     string           `json:"text"`
	Sessions int              `json:"sessions"` // 0 keeps the text unpartitioned
	Context  question.Context `json:"-"`
}

// Build segments the text into sessions and parses each one. Step numbering
// restarts at 1 in every session.
func Build(in Input) (render.Document, error) {
	doc := render.Document{Title: in.Title}

	n := in.Sessions
	if n == AutoSessions {
		n = segment.Highest(in.Text)
	}
	if n == 0 {
		doc.Sessions = []doctree.Session{{Nodes: question.Format(in.Text, in.Context)}}
		return doc, nil
	}

	set, err := segment.Split(in.Text, n)
	if err != nil {
		return render.Document{}, err
	}
	doc.Sessions = make([]doctree.Session, len(set))
	for i, text := range set {
		nodes, _ := question.FormatFrom(text, in.Context, parser.State{})
		doc.Sessions[i] = doctree.Session{Number: i + 1, Nodes: nodes}
	}
	return doc, nil
}

// Result is a built and rendered document.
type Result struct {
	Document    render.Document  `json:"document"`
	Fragments   render.Fragments `json:"fragments"`
	ContentHash string           `json:"content_hash"`
}

// Run builds in and renders it with r.
func Run(r *render.Renderer, in Input) (Result, error) {
	doc, err := Build(in)
	if err != nil {
		return Result{}, fmt.Errorf("build document: %w", err)
	}
	return newResult(doc, r.Render(doc)), nil
}

func newResult(doc render.Document, frags render.Fragments) Result {
	return Result{
		Document:    doc,
		Fragments:   frags,
		ContentHash: ContentHashHex([]byte(frags.Preview + frags.Print + frags.Export)),
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
