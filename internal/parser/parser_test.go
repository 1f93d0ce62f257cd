package parser

import (
	"testing"

	"github.com/dgallion1/lessonfmt/internal/doctree"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var equateEmpty = cmpopts.EquateEmpty()

func TestParseBlocks_HeaderStepsAndTags(t *testing.T) {
	got := ParseBlocks("A. MEMAHAMI\n1. Do X [Bermakna]\n2. Do Y")
	want := []doctree.Node{
		&doctree.SectionHeader{Label: "A. MEMAHAMI"},
		&doctree.Step{Ordinal: 1, Text: "Do X", Tags: []doctree.Tag{doctree.TagBermakna}},
		&doctree.Step{Ordinal: 2, Text: "Do Y"},
	}
	if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlocks_ContinuationMerge(t *testing.T) {
	got := ParseBlocks("1. Do X\nstill X\n2. Do Y")
	want := []doctree.Node{
		&doctree.Step{Ordinal: 1, Text: "Do X still X"},
		&doctree.Step{Ordinal: 2, Text: "Do Y"},
	}
	if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlocks_NoStructureFallback(t *testing.T) {
	in := "  Siswa mengamati lingkungan sekitar sekolah.\nLalu menuliskan hasil pengamatan.  "
	got := ParseBlocks(in)
	want := []doctree.Node{
		&doctree.Paragraph{Text: "Siswa mengamati lingkungan sekitar sekolah.\nLalu menuliskan hasil pengamatan."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlocks_EmptyInput(t *testing.T) {
	if got := ParseBlocks("   \n  "); len(got) != 0 {
		t.Errorf("expected no nodes for blank input, got %d", len(got))
	}
}

func TestParseBlocks_NumberingNotResetByHeaders(t *testing.T) {
	got := ParseBlocks("A. MEMAHAMI\n1. Membaca\nB. MENGAPLIKASI\n1. Mencoba\n2. Menyajikan")
	var ordinals []int
	for _, s := range doctree.Steps(got) {
		ordinals = append(ordinals, s.Ordinal)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, ordinals); diff != "" {
		t.Errorf("ordinals mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlocks_PreambleBecomesOwnStep(t *testing.T) {
	got := ParseBlocks("Siswa berdoa bersama.\n1. Guru menyapa siswa.")
	want := []doctree.Node{
		&doctree.Step{Ordinal: 1, Text: "Siswa berdoa bersama."},
		&doctree.Step{Ordinal: 2, Text: "Guru menyapa siswa."},
	}
	if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlocks_IntroAfterHeaderIsParagraph(t *testing.T) {
	got := ParseBlocks("B. MENGAPLIKASI\nKegiatan berkelompok.\n1. Bentuk kelompok")
	want := []doctree.Node{
		&doctree.SectionHeader{Label: "B. MENGAPLIKASI"},
		&doctree.Paragraph{Text: "Kegiatan berkelompok."},
		&doctree.Step{Ordinal: 1, Text: "Bentuk kelompok"},
	}
	if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlocks_DecoratedHeaderAndOrdinal(t *testing.T) {
	got := ParseBlocks("**C. MEREFLEKSIKAN:**\n**1.** Siswa menulis jurnal. Berkesadaran.")
	want := []doctree.Node{
		&doctree.SectionHeader{Label: "C. MEREFLEKSIKAN"},
		&doctree.Step{Ordinal: 1, Text: "Siswa menulis jurnal.", Tags: []doctree.Tag{doctree.TagBerkesadaran}},
	}
	if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlocks_MixedCaseLetterLineIsNotHeader(t *testing.T) {
	got := ParseBlocks("1. Pilih jawaban\nA. Jakarta")
	want := []doctree.Node{
		&doctree.Step{Ordinal: 1, Text: "Pilih jawaban A. Jakarta"},
	}
	if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_StateThreadsOrdinal(t *testing.T) {
	p := New(DefaultOptions())
	nodes, st := p.Parse("1. a\n2. b", State{Ordinal: 3})
	steps := doctree.Steps(nodes)
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].Ordinal != 4 || steps[1].Ordinal != 5 {
		t.Errorf("expected ordinals 4,5, got %d,%d", steps[0].Ordinal, steps[1].Ordinal)
	}
	if st.Ordinal != 5 {
		t.Errorf("expected returned state 5, got %d", st.Ordinal)
	}

	_, st2 := p.Parse("just prose", st)
	if st2.Ordinal != 5 {
		t.Errorf("expected fallback to leave state at 5, got %d", st2.Ordinal)
	}
}

func TestParse_HeadersDisabled(t *testing.T) {
	p := New(Options{Headers: false, Tags: true})
	nodes, _ := p.Parse("1. Singkatan dari asam deoksiribonukleat adalah\nA. DNA\nB. RNA", State{})
	want := []doctree.Node{
		&doctree.Step{Ordinal: 1, Text: "Singkatan dari asam deoksiribonukleat adalah A. DNA B. RNA"},
	}
	if diff := cmp.Diff(want, nodes, equateEmpty); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlocks_TableClosesStep(t *testing.T) {
	in := "1. Isi tabel berikut:\n| Nama | Hasil |\n|---|---|\n| Ani | 8 |\nCatatan guru.\n2. Presentasi"
	got := ParseBlocks(in)
	want := []doctree.Node{
		&doctree.Step{Ordinal: 1, Text: "Isi tabel berikut:"},
		&doctree.Table{TableKind: doctree.TableGeneric, Rows: [][]string{{"Nama", "Hasil"}, {"Ani", "8"}}},
		&doctree.Paragraph{Text: "Catatan guru."},
		&doctree.Step{Ordinal: 2, Text: "Presentasi"},
	}
	if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlocks_HTMLParagraphs(t *testing.T) {
	got := ParseBlocks("<p>1. Buka buku &amp; baca</p><p>2. Diskusikan</p>")
	want := []doctree.Node{
		&doctree.Step{Ordinal: 1, Text: "Buka buku & baca"},
		&doctree.Step{Ordinal: 2, Text: "Diskusikan"},
	}
	if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlocks_TablesOnlyKeepsProseAsParagraph(t *testing.T) {
	got := ParseBlocks("Perhatikan tabel.\n| A | B |\n| 1 | 2 |")
	want := []doctree.Node{
		&doctree.Paragraph{Text: "Perhatikan tabel."},
		&doctree.Table{TableKind: doctree.TableGeneric, Rows: [][]string{{"A", "B"}, {"1", "2"}}},
	}
	if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestHeaderLabel(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"A. MEMAHAMI", "A. MEMAHAMI"},
		{"B.  MENGAPLIKASI  KONSEP", "B. MENGAPLIKASI KONSEP"},
		{"### C. REFLEKSI:", "C. REFLEKSI"},
		{"D. MEMAHAMI", ""},
		{"A. Memahami", ""},
		{"A. AB", ""},
		{"A. 123 ABC", ""},
	}
	for _, tt := range tests {
		if got := headerLabel(tt.line); got != tt.want {
			t.Errorf("headerLabel(%q): expected %q, got %q", tt.line, tt.want, got)
		}
	}
}
