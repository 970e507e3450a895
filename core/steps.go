package core

// SplitContent classifies the report's blocks into steps (research work) and
// response (final output).
//
// Steps include thinking blocks, tool blocks, and text blocks that appear before
// or between tool calls. Response is the trailing run of text blocks after the
// last non-text block.
func (r *Report) SplitContent() (steps []ContentBlock, response []ContentBlock) {
	if len(r.Blocks) == 0 {
		return nil, nil
	}

	lastNonText := -1
	for i, b := range r.Blocks {
		if b.Type != BlockText {
			lastNonText = i
		}
	}

	// No research steps: everything is response.
	if lastNonText == -1 {
		return nil, r.Blocks
	}

	return r.Blocks[:lastNonText+1], r.Blocks[lastNonText+1:]
}

// SearchQueries returns the web search queries the model issued, in order.
func (r *Report) SearchQueries() []string {
	var queries []string
	for _, b := range r.Blocks {
		if b.Type != BlockServerToolUse || b.Name != "web_search" {
			continue
		}
		m, ok := b.Input.(map[string]any)
		if !ok {
			continue
		}
		if q := stringVal(m, "query"); q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}

func stringVal(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
