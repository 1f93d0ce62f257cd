package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/dgallion1/lessonfmt/internal/doctree"
	"gopkg.in/yaml.v3"
)

// Badge is the colour pair of one tag badge. Colours are hex without '#'.
type Badge struct {
	Background string `yaml:"background"`
	Color      string `yaml:"color"`
}

// Theme holds the styling shared by every surface.
type Theme struct {
	FontFamily string           `yaml:"font_family"`
	FontSizePt int              `yaml:"font_size_pt"`
	Accent     string           `yaml:"accent"`
	Badges     map[string]Badge `yaml:"badges"` // keyed by tag slug
}

// DefaultTheme returns the built-in styling.
func DefaultTheme() Theme {
	return Theme{
		FontFamily: "Times New Roman",
		FontSizePt: 12,
		Accent:     "1F4E79",
		Badges: map[string]Badge{
			doctree.TagBerkesadaran.Slug():   {Background: "DBEAFE", Color: "1E40AF"},
			doctree.TagBermakna.Slug():       {Background: "DCFCE7", Color: "166534"},
			doctree.TagMenggembirakan.Slug(): {Background: "FEF3C7", Color: "92400E"},
		},
	}
}

// LoadTheme reads a YAML theme file and lays it over DefaultTheme. Missing
// fields keep their defaults.
func LoadTheme(path string) (Theme, error) {
	th := DefaultTheme()
	data, err := os.ReadFile(path)
	if err != nil {
		return th, fmt.Errorf("read theme: %w", err)
	}
	var file Theme
	if err := yaml.Unmarshal(data, &file); err != nil {
		return th, fmt.Errorf("parse theme %s: %w", path, err)
	}

	if file.FontFamily != "" {
		th.FontFamily = file.FontFamily
	}
	if file.FontSizePt > 0 {
		th.FontSizePt = file.FontSizePt
	}
	if file.Accent != "" {
		th.Accent = strings.TrimPrefix(file.Accent, "#")
	}
	for slug, b := range file.Badges {
		cur := th.Badges[strings.ToLower(slug)]
		if b.Background != "" {
			cur.Background = strings.TrimPrefix(b.Background, "#")
		}
		if b.Color != "" {
			cur.Color = strings.TrimPrefix(b.Color, "#")
		}
		th.Badges[strings.ToLower(slug)] = cur
	}
	return th, nil
}

// Badge returns the colours for tag, falling back to grey.
func (th Theme) Badge(tag doctree.Tag) Badge {
	if b, ok := th.Badges[tag.Slug()]; ok {
		return b
	}
	return Badge{Background: "E5E7EB", Color: "374151"}
}
