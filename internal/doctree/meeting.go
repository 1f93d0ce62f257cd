package doctree

import (
	"strconv"
	"strings"
)

// MeetingSet holds one text fragment per declared session. Slot i holds the
// text of session i+1; its length always equals the declared session count.
type MeetingSet []string

// Join reassembles the set into one marker-carrying text. Empty slots are
// skipped. A single-slot set is returned without a marker.
func (m MeetingSet) Join() string {
	if len(m) == 1 {
		return m[0]
	}
	var parts []string
	for i, text := range m {
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, "Pertemuan "+strconv.Itoa(i+1)+":\n"+text)
	}
	return strings.Join(parts, "\n\n")
}
