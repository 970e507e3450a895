package terminal

import (
	"strings"

	"github.com/sonnes/cheftrends/core"
)

// describeTool turns a tool call into a short verb and the detail worth
// showing next to it, e.g. ("Searched", "brunch dessert trends").
func describeTool(b core.ContentBlock) (verb, detail string) {
	name := strings.ToLower(b.Name)
	input, _ := b.Input.(map[string]any)

	switch name {
	case "web_search":
		return "Searched", inputString(input, "query")
	case "web_fetch":
		return "Read", inputString(input, "url")
	case "code_execution":
		return "Ran code", ""
	case "":
		name = "tool"
	}
	for _, key := range []string{"query", "url", "path"} {
		if v := inputString(input, key); v != "" {
			return name, v
		}
	}
	return name, ""
}

func inputString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}
