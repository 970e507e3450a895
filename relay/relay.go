// Package relay streams a report from a provider to a client as
// server-sent-event records.
//
// Every record has the form "data: <payload>\n\n". Text payloads are escaped
// with EncodeText; a stream always ends with exactly one DoneToken or
// ErrorToken record.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sonnes/cheftrends/core"
	"github.com/sonnes/cheftrends/prompt"
	"github.com/sonnes/cheftrends/provider"
)

// Defaults applied by New.
const (
	DefaultTimeout = provider.DefaultTimeout
	DefaultBuffer  = 16
)

// ErrUpstream wraps failures of the upstream stream returned by Pipe.
var ErrUpstream = errors.New("upstream stream failed")

// errNoTerminal is reported when the producer exits without a terminal delta.
var errNoTerminal = errors.New("delta channel closed without terminal")

// Config controls a Relay.
type Config struct {
	// Timeout bounds one relayed stream. Expiry ends the stream with ErrorToken.
	Timeout time.Duration
	// Buffer is the capacity of the channel between the upstream consumer and
	// the response writer. A full channel blocks the upstream consumer.
	Buffer int
}

// Relay forwards the visible text of a provider stream.
type Relay struct {
	provider provider.Provider
	cfg      Config
	logger   *log.Logger
}

// New creates a Relay. A nil logger uses log.Default().
func New(p provider.Provider, cfg Config, logger *log.Logger) *Relay {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultBuffer
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Relay{provider: p, cfg: cfg, logger: logger}
}

// Start consumes the provider stream in a new goroutine and returns the
// channel of deltas. Only non-empty text events are forwarded, in arrival
// order. Unless ctx ends first, the last delta is a single DeltaDone or
// DeltaError. The channel is closed when the goroutine exits.
func (r *Relay) Start(ctx context.Context, p prompt.Prompt) <-chan core.Delta {
	out := make(chan core.Delta, r.cfg.Buffer)

	go func() {
		defer close(out)

		send := func(d core.Delta) bool {
			select {
			case out <- d:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for ev, err := range r.provider.Stream(ctx, p) {
			if err != nil {
				send(core.Delta{Kind: core.DeltaError, Err: err})
				return
			}
			if ev.Kind != provider.EventText || ev.Text == "" {
				continue
			}
			if !send(core.Delta{Kind: core.DeltaText, Text: ev.Text}) {
				return
			}
		}

		// A provider may stop iterating quietly once ctx is done.
		if err := ctx.Err(); err != nil {
			send(core.Delta{Kind: core.DeltaError, Err: err})
			return
		}
		send(core.Delta{Kind: core.DeltaDone})
	}()

	return out
}

// Pipe relays one report to w, flushing after every record when w has a Flush
// method. It returns nil after writing DoneToken. Upstream failures, timeouts
// and cancellation are logged, reported to w only as ErrorToken, and returned
// wrapped in ErrUpstream.
func (r *Relay) Pipe(ctx context.Context, w io.Writer, p prompt.Prompt) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	return r.write(ctx, w, r.Start(ctx, p))
}

func (r *Relay) write(ctx context.Context, w io.Writer, deltas <-chan core.Delta) error {
	fragments := 0
	for {
		select {
		case d, ok := <-deltas:
			if !ok {
				err := ctx.Err()
				if err == nil {
					err = errNoTerminal
				}
				return r.fail(w, fragments, err)
			}
			switch d.Kind {
			case core.DeltaText:
				for _, part := range splitText(d.Text, MaxFragmentBytes) {
					if err := record(w, EncodeText(part)); err != nil {
						return r.fail(w, fragments, fmt.Errorf("write fragment: %w", err))
					}
				}
				fragments++
			case core.DeltaDone:
				r.logger.Debug("stream complete", "fragments", fragments)
				return record(w, DoneToken)
			case core.DeltaError:
				return r.fail(w, fragments, d.Err)
			}
		case <-ctx.Done():
			return r.fail(w, fragments, ctx.Err())
		}
	}
}

// fail logs err and writes the error sentinel. The detail never reaches w.
func (r *Relay) fail(w io.Writer, fragments int, err error) error {
	if errors.Is(err, context.Canceled) {
		r.logger.Info("stream canceled", "fragments", fragments)
	} else {
		r.logger.Error("stream failed", "fragments", fragments, "err", err)
	}
	if werr := record(w, ErrorToken); werr != nil {
		r.logger.Debug("write error sentinel", "err", werr)
	}
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}

// record writes one record and flushes it.
func record(w io.Writer, payload string) error {
	if err := writeRecord(w, payload); err != nil {
		return err
	}
	switch f := w.(type) {
	case interface{ Flush() error }:
		return f.Flush()
	case interface{ Flush() }:
		f.Flush()
	}
	return nil
}
