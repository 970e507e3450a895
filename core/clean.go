package core

import (
	"regexp"
	"strings"
)

// DefaultPreamble matches the first line of a report body: a markdown heading,
// a bold trend title, or a horizontal rule.
const DefaultPreamble = `^(#{1,6}\s|\*\*[^*]|-{3,}\s*$|\*{3,}\s*$|_{3,}\s*$)`

// DefaultPreambleRE is the compiled form of DefaultPreamble.
var DefaultPreambleRE = regexp.MustCompile(DefaultPreamble)

// StripPreamble drops model chatter ("I'll search for...") that precedes the
// report body. Lines are scanned in order and everything before the first line
// matching trigger is removed. Text without a matching line is returned
// unchanged, as is everything when trigger is nil.
func StripPreamble(s string, trigger *regexp.Regexp) string {
	if trigger == nil {
		return s
	}

	offset := 0
	for offset < len(s) {
		end := strings.IndexByte(s[offset:], '\n')
		line := s[offset:]
		if end >= 0 {
			line = s[offset : offset+end]
		}
		if trigger.MatchString(strings.TrimRight(line, "\r")) {
			return s[offset:]
		}
		if end < 0 {
			break
		}
		offset += end + 1
	}
	return s
}
