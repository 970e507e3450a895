package html

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
)

// renderBody converts the report body to HTML. Markdown output is wrapped in a
// content div; plain output is escaped into a pre-wrapped block.
func renderBody(md goldmark.Markdown, body string, markdown bool) (template.HTML, error) {
	if !markdown {
		escaped := template.HTMLEscapeString(body)
		return template.HTML(`<div class="content plain">` + escaped + `</div>`), nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("goldmark convert: %w", err)
	}
	return template.HTML(`<div class="content">` + buf.String() + `</div>`), nil
}
