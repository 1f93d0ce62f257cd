package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/lessonfmt/internal/config"
	"github.com/dgallion1/lessonfmt/internal/pipeline"
	"github.com/dgallion1/lessonfmt/internal/render"
	"github.com/fumiama/go-docx"
)

const testKey = "test-key"

const lesson = `Pertemuan 1:
A. MEMAHAMI
1. Guru menyapa siswa. Berkesadaran.
2. Siswa membaca teks.
Pertemuan 2:
1. Siswa berdiskusi.`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:         testKey,
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		MaxTextBytes:   4096,
		JobTTL:         time.Hour,
		StatsWindow:    100,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, render.New(render.DefaultTheme()), log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, nil, log, cfg)
}

func doJSON(t *testing.T, s *Server, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Authorization", "Bearer "+testKey)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func doUpload(t *testing.T, s *Server, path, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func doGet(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("expected ok status, got %q", rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"wrong key", "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/segment", strings.NewReader(`{}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected json error, got content type %q", ct)
			}
		})
	}
}

func TestSegment(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, "/api/segment", map[string]any{"text": "Pertemuan 1: foo Pertemuan 2: bar", "sessions": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Meetings []string `json:"meetings"`
		Markers  int      `json:"markers"`
		Text     string   `json:"text"`
	}
	decode(t, rec, &got)
	if len(got.Meetings) != 2 || got.Meetings[0] != "foo" || got.Meetings[1] != "bar" {
		t.Errorf("expected [foo bar], got %q", got.Meetings)
	}
	if got.Markers != 2 {
		t.Errorf("expected 2 markers, got %d", got.Markers)
	}
	if want := "Pertemuan 1:\nfoo\n\nPertemuan 2:\nbar"; got.Text != want {
		t.Errorf("expected joined text %q, got %q", want, got.Text)
	}

	rec = doJSON(t, s, "/api/segment", map[string]any{"text": "x", "sessions": 0})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for zero sessions, got %d", rec.Code)
	}
}

func TestSegment_BadJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/segment", strings.NewReader(`{"text":`))
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestTextLimit(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, "/api/render", map[string]any{"text": strings.Repeat("a", 8192)})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestParse(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, "/api/parse", map[string]any{"text": lesson, "sessions": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Sessions []struct {
			Number int    `json:"number"`
			Label  string `json:"label"`
			Text   string `json:"text"`
			Nodes  []struct {
				Type string          `json:"type"`
				Node json.RawMessage `json:"node"`
			} `json:"nodes"`
		} `json:"sessions"`
	}
	decode(t, rec, &got)
	if len(got.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(got.Sessions))
	}
	first := got.Sessions[0]
	if first.Label != "Pertemuan 1" {
		t.Errorf("expected label %q, got %q", "Pertemuan 1", first.Label)
	}
	if !strings.Contains(first.Text, "1. Guru menyapa siswa.") {
		t.Errorf("expected plain text with numbered step, got %q", first.Text)
	}
	var types []string
	for _, n := range first.Nodes {
		types = append(types, n.Type)
	}
	if strings.Join(types, ",") != "section_header,step,step" {
		t.Errorf("expected header and two steps, got %v", types)
	}
	if !strings.Contains(string(first.Nodes[1].Node), `"Berkesadaran"`) {
		t.Errorf("expected tag on first step, got %s", first.Nodes[1].Node)
	}
}

func TestRender_ETagAndSurface(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{"text": lesson, "sessions": 2}

	rec := doJSON(t, s, "/api/render", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}
	var got struct {
		ContentHash string           `json:"content_hash"`
		Fragments   render.Fragments `json:"fragments"`
	}
	decode(t, rec, &got)
	if etag != `"`+got.ContentHash+`"` {
		t.Errorf("expected ETag to quote content hash, got %q and %q", etag, got.ContentHash)
	}
	if got.Fragments.Preview == "" || got.Fragments.Print == "" || got.Fragments.Export == "" {
		t.Error("expected all three fragments")
	}

	rec = doJSON(t, s, "/api/render", body, "If-None-Match", etag)
	if rec.Code != http.StatusNotModified {
		t.Errorf("expected 304, got %d", rec.Code)
	}

	body["surface"] = "print"
	rec = doJSON(t, s, "/api/render", body)
	got.Fragments = render.Fragments{}
	decode(t, rec, &got)
	if got.Fragments.Print == "" || got.Fragments.Preview != "" || got.Fragments.Export != "" {
		t.Errorf("expected only print fragment, got %+v", got.Fragments)
	}

	body["surface"] = "pdf"
	rec = doJSON(t, s, "/api/render", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown surface, got %d", rec.Code)
	}
}

func TestRender_AssessmentChoices(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{
		"text":    "1. Ibu kota Indonesia adalah\nA. Jakarta\nB. Bandung",
		"format":  "Pilihan Ganda",
		"surface": "preview",
	}
	rec := doJSON(t, s, "/api/render", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `type=\"radio\"`) {
		t.Errorf("expected radio inputs in preview, got %s", rec.Body.String())
	}
}

func TestExportDOCX(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, "/api/export/docx", map[string]any{"title": "RPP IPA", "text": lesson, "sessions": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != docxContentType {
		t.Errorf("expected docx content type, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="RPP_IPA.docx"` {
		t.Errorf("unexpected content disposition %q", cd)
	}
	data := rec.Body.Bytes()
	if _, err := docx.Parse(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Errorf("expected a readable docx: %v", err)
	}
}

func TestImport(t *testing.T) {
	s := newTestServer(t)
	rec := doUpload(t, s, "/api/import", "rpp.txt", "1. Salam\n\n\n2. Doa\n", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	}
	decode(t, rec, &got)
	if got.Title != "rpp" {
		t.Errorf("expected title %q, got %q", "rpp", got.Title)
	}
	if got.Text != "1. Salam\n\n2. Doa" {
		t.Errorf("expected collapsed text, got %q", got.Text)
	}

	rec = doUpload(t, s, "/api/import", "tool.exe", "MZ", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported type, got %d", rec.Code)
	}
}

func TestJobs_SubmitPollResult(t *testing.T) {
	s := newTestServer(t)
	rec := doUpload(t, s, "/api/jobs", "rpp.md", "# RPP Biologi\n\n"+lesson, map[string]string{"sessions": "2"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var submitted struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	decode(t, rec, &submitted)
	if submitted.PollURL != "/api/jobs/"+submitted.JobID {
		t.Errorf("unexpected poll url %q", submitted.PollURL)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		var snap pipeline.JobSnapshot
		decode(t, doGet(s, submitted.PollURL), &snap)
		if snap.Status == pipeline.StatusCompleted {
			break
		}
		if snap.Status == pipeline.StatusFailed {
			t.Fatalf("job failed: %v", snap.Progress.Errors)
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not complete, status %q", snap.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	rec = doGet(s, submitted.PollURL+"/result?surface=export")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Title     string           `json:"title"`
		Sessions  []any            `json:"sessions"`
		Fragments render.Fragments `json:"fragments"`
	}
	decode(t, rec, &res)
	if res.Title != "RPP Biologi" {
		t.Errorf("expected title %q, got %q", "RPP Biologi", res.Title)
	}
	if len(res.Sessions) != 2 {
		t.Errorf("expected 2 sessions, got %d", len(res.Sessions))
	}
	if res.Fragments.Export == "" || res.Fragments.Preview != "" {
		t.Errorf("expected only export fragment, got %+v", res.Fragments)
	}
}

func TestJobs_BadSessionsAndNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := doUpload(t, s, "/api/jobs", "rpp.txt", lesson, map[string]string{"sessions": "dua"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}

	if rec := doGet(s, "/api/jobs/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec := doGet(s, "/api/jobs/missing/result"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestRenderStats(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s, "/api/render", map[string]any{"text": lesson, "sessions": 2})

	rec := doGet(s, "/api/stats/render")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got struct {
		Operations map[string]struct {
			Count int `json:"count"`
		} `json:"operations"`
	}
	decode(t, rec, &got)
	if got.Operations["render"].Count != 1 {
		t.Errorf("expected one render sample, got %+v", got.Operations)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"rpp.docx", "rpp.docx"},
		{"../../etc/passwd.txt", "passwd.txt"},
		{`C:\Users\guru\rpp.pdf`, "rpp.pdf"},
		{"", "unnamed"},
		{"a..b.md", "a_b.md"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestDocxFilename(t *testing.T) {
	if got := docxFilename(""); got != "lesson.docx" {
		t.Errorf("expected lesson.docx, got %q", got)
	}
	if got := docxFilename(`Modul "Ajar" / 1`); got != "Modul_Ajar__1.docx" {
		t.Errorf("expected Modul_Ajar__1.docx, got %q", got)
	}
}
