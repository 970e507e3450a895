package core

// DeltaKind enumerates the items a relay emits.
type DeltaKind int

const (
	DeltaText DeltaKind = iota
	DeltaDone
	DeltaError
)

func (k DeltaKind) String() string {
	switch k {
	case DeltaText:
		return "text"
	case DeltaDone:
		return "done"
	case DeltaError:
		return "error"
	default:
		return "unknown"
	}
}

// Delta is one item of a streamed report: a text fragment or a terminal marker.
// Err is only set on error deltas and is meant for server-side logging.
type Delta struct {
	Kind DeltaKind
	Text string
	Err  error
}
