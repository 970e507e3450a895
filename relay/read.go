package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tmaxmax/go-sse"

	"github.com/sonnes/cheftrends/core"
)

var (
	// ErrStream is returned when the stream ends with ErrorToken.
	ErrStream = errors.New("stream reported an error")
	// ErrTruncated is returned when the stream ends without a terminal record.
	ErrTruncated = errors.New("stream ended without a terminal record")
)

// Read consumes a record stream from r, calling onText (when non-nil) with each
// decoded fragment as it arrives, and returns the accumulated text. Records may
// arrive split at arbitrary byte boundaries; a record may hold up to four
// times MaxFragmentBytes. Read returns nil after DoneToken,
// ErrStream after ErrorToken and ErrTruncated at end of input without either.
func Read(r io.Reader, onText func(string)) (string, error) {
	var sb strings.Builder
	for ev, err := range sse.Read(r, &sse.ReadConfig{MaxEventSize: maxEventBytes}) {
		if err != nil {
			return sb.String(), fmt.Errorf("read stream: %w", err)
		}
		switch ev.Data {
		case DoneToken:
			return sb.String(), nil
		case ErrorToken:
			return sb.String(), ErrStream
		}
		text := DecodeText(ev.Data)
		sb.WriteString(text)
		if onText != nil {
			onText(text)
		}
	}
	return sb.String(), ErrTruncated
}

// Collect drains a delta channel from Relay.Start the same way Read drains a
// record stream: text is accumulated and passed to onText, DeltaDone returns
// nil, DeltaError returns the upstream error wrapped in ErrUpstream.
func Collect(ctx context.Context, deltas <-chan core.Delta, onText func(string)) (string, error) {
	var sb strings.Builder
	for {
		select {
		case d, ok := <-deltas:
			if !ok {
				if err := ctx.Err(); err != nil {
					return sb.String(), fmt.Errorf("%w: %w", ErrUpstream, err)
				}
				return sb.String(), ErrTruncated
			}
			switch d.Kind {
			case core.DeltaText:
				sb.WriteString(d.Text)
				if onText != nil {
					onText(d.Text)
				}
			case core.DeltaDone:
				return sb.String(), nil
			case core.DeltaError:
				return sb.String(), fmt.Errorf("%w: %w", ErrUpstream, d.Err)
			}
		case <-ctx.Done():
			return sb.String(), fmt.Errorf("%w: %w", ErrUpstream, ctx.Err())
		}
	}
}
