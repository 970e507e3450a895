package relay

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Sentinel payloads. Text payloads never equal either of them because
// EncodeText escapes a leading '['.
const (
	DoneToken  = "[DONE]"
	ErrorToken = "[ERROR]"
)

const recordPrefix = "data: "

// MaxFragmentBytes caps the text carried by one record. Longer fragments are
// written as several records, split on rune boundaries.
const MaxFragmentBytes = 16 << 10

// maxEventBytes is the read buffer Read allows per record. Escaping at most
// doubles a fragment, so every record Pipe writes fits.
const maxEventBytes = 4 * MaxFragmentBytes

var encoder = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)

// EncodeText escapes a text fragment so that it fits on a single record line
// and cannot be mistaken for a sentinel.
func EncodeText(s string) string {
	s = encoder.Replace(s)
	if strings.HasPrefix(s, "[") {
		s = `\` + s
	}
	return s
}

// DecodeText reverses EncodeText. Unknown escapes are kept verbatim.
func DecodeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case '\\':
			sb.WriteByte('\\')
		case '[':
			sb.WriteByte('[')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// writeRecord writes one "data: <payload>\n\n" record.
func writeRecord(w io.Writer, payload string) error {
	_, err := io.WriteString(w, recordPrefix+payload+"\n\n")
	return err
}

// splitText cuts s into pieces of at most n bytes. Runes are kept whole unless
// n is smaller than a rune.
func splitText(s string, n int) []string {
	if len(s) <= n {
		return []string{s}
	}
	var parts []string
	for len(s) > n {
		cut := n
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			cut = n
		}
		parts = append(parts, s[:cut])
		s = s[cut:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
