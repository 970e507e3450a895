package provider

import (
	"context"
	"iter"
	"sync"

	"github.com/sonnes/cheftrends/prompt"
)

// Fake is a scripted Provider used by tests and dry runs. Stream yields Events
// in order and then Err, if set. Complete returns Response or Err.
type Fake struct {
	Events   []Event
	Err      error
	Response *Response

	// Block, when non-nil, makes Stream wait on it after the scripted events
	// until it is closed or the context ends.
	Block chan struct{}

	mu      sync.Mutex
	prompts []prompt.Prompt
}

// maxFakePrompts bounds the prompt history of a long-lived Fake, such as the
// one behind serve --dry-run.
const maxFakePrompts = 32

// Prompts returns the most recent prompts passed to Stream and Complete, oldest
// first. At most 32 are kept.
func (f *Fake) Prompts() []prompt.Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]prompt.Prompt(nil), f.prompts...)
}

func (f *Fake) record(p prompt.Prompt) {
	f.mu.Lock()
	if len(f.prompts) == maxFakePrompts {
		f.prompts = append(f.prompts[:0], f.prompts[1:]...)
	}
	f.prompts = append(f.prompts, p)
	f.mu.Unlock()
}

// Stream implements Provider.
func (f *Fake) Stream(ctx context.Context, p prompt.Prompt) iter.Seq2[Event, error] {
	f.record(p)
	return func(yield func(Event, error) bool) {
		for _, ev := range f.Events {
			if err := ctx.Err(); err != nil {
				yield(Event{}, err)
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
		if f.Block != nil {
			select {
			case <-f.Block:
			case <-ctx.Done():
				yield(Event{}, ctx.Err())
				return
			}
		}
		if f.Err != nil {
			yield(Event{}, f.Err)
		}
	}
}

// Complete implements Provider.
func (f *Fake) Complete(ctx context.Context, p prompt.Prompt) (*Response, error) {
	f.record(p)
	if f.Err != nil {
		return nil, f.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Response == nil {
		return nil, ErrEmptyResponse
	}
	return f.Response, nil
}
