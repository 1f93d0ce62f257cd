package parser

import (
	"testing"

	"github.com/dgallion1/lessonfmt/internal/doctree"
	"github.com/google/go-cmp/cmp"
)

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantText string
		wantTags []doctree.Tag
	}{
		{
			name:     "bracket at end",
			in:       "Do X [Bermakna]",
			wantText: "Do X",
			wantTags: []doctree.Tag{doctree.TagBermakna},
		},
		{
			name:     "bracket mid sentence, case-insensitive",
			in:       "Siswa [menggembirakan] bernyanyi bersama.",
			wantText: "Siswa bernyanyi bersama.",
			wantTags: []doctree.Tag{doctree.TagMenggembirakan},
		},
		{
			name:     "bracket list",
			in:       "Diskusi kelompok [Bermakna, Menggembirakan]",
			wantText: "Diskusi kelompok",
			wantTags: []doctree.Tag{doctree.TagBermakna, doctree.TagMenggembirakan},
		},
		{
			name:     "unknown bracket stays literal",
			in:       "Tonton video [Kreatif] lalu catat.",
			wantText: "Tonton video [Kreatif] lalu catat.",
		},
		{
			name:     "mixed known and unknown bracket stays literal",
			in:       "Tonton video [Bermakna, Kreatif]",
			wantText: "Tonton video [Bermakna, Kreatif]",
		},
		{
			name:     "bare trailing after sentence",
			in:       "Siswa menarik napas dalam. Berkesadaran.",
			wantText: "Siswa menarik napas dalam.",
			wantTags: []doctree.Tag{doctree.TagBerkesadaran},
		},
		{
			name:     "two bare trailing tokens keep order",
			in:       "Bermain peran. Bermakna. Menggembirakan.",
			wantText: "Bermain peran.",
			wantTags: []doctree.Tag{doctree.TagBermakna, doctree.TagMenggembirakan},
		},
		{
			name:     "parenthesized trailing token",
			in:       "Refleksi singkat (Berkesadaran)",
			wantText: "Refleksi singkat",
			wantTags: []doctree.Tag{doctree.TagBerkesadaran},
		},
		{
			name:     "word inside sentence is not a tag",
			in:       "Wujudkan pembelajaran bermakna.",
			wantText: "Wujudkan pembelajaran bermakna.",
		},
		{
			name:     "option text after a letter label is not a tag",
			in:       "Prinsipnya adalah A. Berkesadaran B. Bermakna",
			wantText: "Prinsipnya adalah A. Berkesadaran B. Bermakna",
		},
		{
			name:     "duplicates collapse",
			in:       "Main game [Menggembirakan]. Menggembirakan.",
			wantText: "Main game.",
			wantTags: []doctree.Tag{doctree.TagMenggembirakan},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotText, gotTags := ExtractTags(tt.in)
			if gotText != tt.wantText {
				t.Errorf("expected text %q, got %q", tt.wantText, gotText)
			}
			if diff := cmp.Diff(tt.wantTags, gotTags, equateEmpty); diff != "" {
				t.Errorf("tags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractTags_Idempotent(t *testing.T) {
	inputs := []string{
		"Do X [Bermakna]",
		"Siswa  menarik napas. Berkesadaran.",
		"Tonton video [Kreatif] lalu catat.",
		"Main game [Menggembirakan]. Menggembirakan.",
		"Tanpa tag sama sekali",
	}
	for _, in := range inputs {
		once, _ := ExtractTags(in)
		twice, tags := ExtractTags(once)
		if twice != once {
			t.Errorf("input %q: re-extraction changed %q to %q", in, once, twice)
		}
		if len(tags) != 0 {
			t.Errorf("input %q: re-extraction found tags %v", in, tags)
		}
	}
}
