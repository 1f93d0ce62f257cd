package doctree

import "strings"

// Tag is a classification label attached to a step.
type Tag string

const (
	TagBerkesadaran   Tag = "Berkesadaran"
	TagBermakna       Tag = "Bermakna"
	TagMenggembirakan Tag = "Menggembirakan"
)

// Tags is the closed display vocabulary, in display order.
var Tags = []Tag{TagBerkesadaran, TagBermakna, TagMenggembirakan}

// ParseTag matches s case-insensitively against the vocabulary.
func ParseTag(s string) (Tag, bool) {
	s = strings.TrimSpace(s)
	for _, t := range Tags {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

// Slug is the lowercase form used in CSS class names.
func (t Tag) Slug() string {
	return strings.ToLower(string(t))
}
