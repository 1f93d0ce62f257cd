// Package segment splits multi-session lesson text into per-meeting fragments.
package segment

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/lessonfmt/internal/doctree"
)

// ErrInvalidSessionCount is returned when the declared session count is not
// positive.
var ErrInvalidSessionCount = errors.New("session count must be positive")

// markerPattern matches "Pertemuan <n>" with an optional colon. Markdown
// heading or bold decoration around the marker is consumed with it.
var markerPattern = regexp.MustCompile(`(?i)(?:#{1,6}[ \t]*)?(?:\*\*[ \t]*)?\bpertemuan[ \t]+(?:ke[- ]?)?(\d+)[ \t]*:?(?:[ \t]*\*\*)?[ \t]*:?`)

// Split places the text following each "Pertemuan k" marker into slot k-1 of
// a MeetingSet of length sessionCount.
//
// Without markers the whole trimmed text goes to slot 0. Markers outside
// 1..sessionCount are discarded together with their segment; a repeated
// marker overwrites the earlier segment. Text before the first marker is
// prefixed to slot 0.
func Split(text string, sessionCount int) (doctree.MeetingSet, error) {
	if sessionCount <= 0 {
		return nil, fmt.Errorf("split meetings: %w (got %d)", ErrInvalidSessionCount, sessionCount)
	}

	set := make(doctree.MeetingSet, sessionCount)
	matches := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		set[0] = strings.TrimSpace(text)
		return set, nil
	}

	for i, m := range matches {
		k, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || k < 1 || k > sessionCount {
			continue
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		set[k-1] = strings.TrimSpace(text[m[1]:end])
	}

	if preamble := strings.TrimSpace(text[:matches[0][0]]); preamble != "" {
		if set[0] == "" {
			set[0] = preamble
		} else {
			set[0] = preamble + "\n" + set[0]
		}
	}

	return set, nil
}

// Count returns the number of distinct in-range session markers in text.
func Count(text string) int {
	seen := make(map[int]bool)
	for _, m := range markerPattern.FindAllStringSubmatch(text, -1) {
		if k, err := strconv.Atoi(m[1]); err == nil && k > 0 {
			seen[k] = true
		}
	}
	return len(seen)
}

// MaxSessions bounds the session numbers Highest will report.
const MaxSessions = 64

// Highest returns the largest session number marked in text, ignoring
// numbers above MaxSessions. It is 0 when text has no markers.
func Highest(text string) int {
	hi := 0
	for _, m := range markerPattern.FindAllStringSubmatch(text, -1) {
		if k, err := strconv.Atoi(m[1]); err == nil && k <= MaxSessions && k > hi {
			hi = k
		}
	}
	return hi
}
