package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/lessonfmt/internal/doctree"
	"github.com/dgallion1/lessonfmt/internal/pipeline"
	"github.com/dgallion1/lessonfmt/internal/question"
	"github.com/dgallion1/lessonfmt/internal/render"
	"github.com/dgallion1/lessonfmt/internal/segment"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// contentRequest is the body shared by the parse, render and export
// endpoints. Sessions is 0 for unpartitioned text and -1 to count the
// "Pertemuan N" markers.
type contentRequest struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	Sessions int    `json:"sessions"`
	Format   string `json:"format"`
	Subtype  string `json:"subtype"`
	Hint     string `json:"hint"`
	Surface  string `json:"surface"`
}

func (c contentRequest) input() pipeline.Input {
	return pipeline.Input{
		Title:    c.Title,
		Text:     c.Text,
		Sessions: c.Sessions,
		Context:  questionContext(c.Format, c.Subtype, c.Hint),
	}
}

func questionContext(format, subtype, hint string) question.Context {
	return question.Context{
		Format:  question.ParseFormat(format),
		Subtype: question.ParseSubtype(subtype),
		Hint:    hint,
	}
}

// nodeView tags a node with its kind so clients can tell the union apart.
type nodeView struct {
	Type doctree.Kind `json:"type"`
	Node doctree.Node `json:"node"`
}

type sessionView struct {
	Number int        `json:"number"`
	Label  string     `json:"label,omitempty"`
	Nodes  []nodeView `json:"nodes"`
	Text   string     `json:"text"` // plain text, one node per line
}

func sessionViews(doc render.Document) []sessionView {
	out := make([]sessionView, len(doc.Sessions))
	for i, s := range doc.Sessions {
		nodes := make([]nodeView, len(s.Nodes))
		for j, n := range s.Nodes {
			nodes[j] = nodeView{Type: n.Kind(), Node: n}
		}
		out[i] = sessionView{Number: s.Number, Label: s.Label(), Nodes: nodes, Text: doctree.PlainText(s.Nodes)}
	}
	return out
}

// decodeJSON reads the request body into v and writes the error response
// itself when it fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// buildError maps a pipeline error to a response.
func buildError(w http.ResponseWriter, err error) {
	if errors.Is(err, segment.ErrInvalidSessionCount) {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	jsonError(w, err.Error(), http.StatusInternalServerError)
}

func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Sessions int    `json:"sessions"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	set, err := segment.Split(req.Text, req.Sessions)
	if err != nil {
		buildError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"meetings": []string(set),
		"markers":  segment.Count(req.Text),
		"text":     set.Join(),
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := pipeline.Build(req.input())
	if err != nil {
		buildError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title":    doc.Title,
		"sessions": sessionViews(doc),
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	surface, err := render.ParseSurface(req.Surface)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := pipeline.Run(s.renderer, req.input())
	if err != nil {
		buildError(w, err)
		return
	}
	s.stats.Since("render", start)

	etag := `"` + res.ContentHash + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"title":        res.Document.Title,
		"sessions":     len(res.Document.Sessions),
		"content_hash": res.ContentHash,
		"fragments":    res.Fragments.Only(surface),
	})
}

func (s *Server) handleExportDOCX(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := pipeline.Build(req.input())
	if err != nil {
		buildError(w, err)
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := s.renderer.WriteDOCX(&buf, doc); err != nil {
		s.log.Error("docx export failed", "error", err)
		jsonError(w, "docx export failed", http.StatusInternalServerError)
		return
	}
	s.stats.Since("docx", start)

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, docxFilename(doc.Title)))
	w.Write(buf.Bytes())
}

// docxFilename derives an attachment name from a document title.
func docxFilename(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '"' || r == '\\' || r == '/' || r < 0x20:
			return -1
		case r == ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "lesson"
	}
	return name + ".docx"
}
