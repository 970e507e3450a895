package provider

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/cheftrends/prompt"
)

func TestFakePromptHistoryIsBounded(t *testing.T) {
	f := &Fake{Response: &Response{}}
	for i := range maxFakePrompts + 10 {
		_, err := f.Complete(context.Background(), prompt.Prompt{Focus: fmt.Sprintf("focus %d", i)})
		require.NoError(t, err)
	}

	prompts := f.Prompts()
	require.Len(t, prompts, maxFakePrompts)
	assert.Equal(t, "focus 10", prompts[0].Focus, "oldest prompts are dropped")
	assert.Equal(t, fmt.Sprintf("focus %d", maxFakePrompts+9), prompts[len(prompts)-1].Focus)
}

func TestFakeStream(t *testing.T) {
	f := &Fake{Events: []Event{{Kind: EventText, Text: "Trend A"}}, Err: assert.AnError}

	var texts []string
	var gotErr error
	for ev, err := range f.Stream(context.Background(), prompt.Prompt{Focus: "brunch"}) {
		if err != nil {
			gotErr = err
			break
		}
		texts = append(texts, ev.Text)
	}
	assert.Equal(t, []string{"Trend A"}, texts)
	assert.ErrorIs(t, gotErr, assert.AnError)
	require.Len(t, f.Prompts(), 1)
	assert.Equal(t, "brunch", f.Prompts()[0].Focus)
}
