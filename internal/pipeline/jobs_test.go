package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/lessonfmt/internal/doctree"
	"github.com/dgallion1/lessonfmt/internal/render"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("rpp.txt", "", []byte("1. Salam"))
	if job.Status != StatusQueued {
		t.Fatalf("expected new job to be queued, got %q", job.Status)
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusImporting, "importing"},
		{StatusParsing, "parsing"},
		{StatusRendering, "rendering"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddErrorAndSnapshot(t *testing.T) {
	job := NewJob("rpp.txt", "RPP", nil)
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}

	job.AddError("import: boom")
	job.SetStatus(StatusFailed, "importing")
	snap = job.Snapshot()
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "import: boom" {
		t.Errorf("expected one recorded error, got %v", snap.Progress.Errors)
	}
	if snap.Status != StatusFailed {
		t.Errorf("expected status failed, got %q", snap.Status)
	}

	// Snapshot errors must not alias the job's slice.
	snap.Progress.Errors[0] = "changed"
	if job.Snapshot().Progress.Errors[0] != "import: boom" {
		t.Error("expected snapshot to copy errors")
	}
}

func TestJob_SetResultCounts(t *testing.T) {
	doc := render.Document{
		Title: "RPP",
		Sessions: []doctree.Session{
			{Number: 1, Nodes: []doctree.Node{
				&doctree.Step{Ordinal: 1, Text: "Salam"},
				&doctree.Step{Ordinal: 2, Text: "Doa"},
				&doctree.Table{TableKind: doctree.TableGeneric, Rows: [][]string{{"a", "b"}}},
			}},
			{Number: 2, Nodes: []doctree.Node{
				&doctree.SectionHeader{Label: "PENUTUP"},
				&doctree.Step{Ordinal: 1, Text: "Refleksi"},
			}},
		},
	}
	job := NewJob("rpp.md", "", nil)
	job.SetResult(newResult(doc, render.Render(doc)))

	snap := job.Snapshot()
	if snap.Progress.Sessions != 2 {
		t.Errorf("expected 2 sessions, got %d", snap.Progress.Sessions)
	}
	if snap.Progress.Steps != 3 {
		t.Errorf("expected 3 steps, got %d", snap.Progress.Steps)
	}
	if snap.Progress.Tables != 1 {
		t.Errorf("expected 1 table, got %d", snap.Progress.Tables)
	}
	if snap.Title != "RPP" {
		t.Errorf("expected title from document, got %q", snap.Title)
	}
	if snap.ContentHash == "" || job.Result() == nil {
		t.Error("expected result and content hash to be recorded")
	}
}

func TestJobStore_Cleanup(t *testing.T) {
	store := NewJobStore(time.Minute)

	fresh := NewJob("a.txt", "", nil)
	stale := NewJob("b.txt", "", nil)
	stale.UpdatedAt = time.Now().Add(-time.Hour)

	store.Put(fresh)
	store.Put(stale)
	store.Cleanup()

	if store.Len() != 1 {
		t.Fatalf("expected 1 job after cleanup, got %d", store.Len())
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Get(stale.ID) != nil {
		t.Error("expected stale job to be evicted")
	}
}

func TestGenerateULID(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for range 1000 {
		id := generateULID()
		if len(id) != 26 {
			t.Fatalf("expected 26 characters, got %d (%q)", len(id), id)
		}
		if strings.Trim(id, crockford) != "" {
			t.Fatalf("expected only Crockford base32 characters, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		if id <= prev {
			t.Fatalf("expected ids to increase, got %q after %q", id, prev)
		}
		seen[id] = true
		prev = id
	}
}
