package store

// WriteKind classifies a raw mutation performed by the setter.
type WriteKind string

const (
	WriteSet    WriteKind = "set"
	WriteAdd    WriteKind = "add"
	WriteRemove WriteKind = "remove"
)

// SignalKind classifies which tracker a write notified.
type SignalKind string

const (
	// SignalValue is a per-property value signal.
	SignalValue SignalKind = "value"
	// SignalKeys is the per-container enumeration signal.
	SignalKeys SignalKind = "keys"
	// SignalHas is a per-property existence signal.
	SignalHas SignalKind = "has"
)

// Observer receives store events. Implementations must be cheap; they run
// synchronously inside the setter.
type Observer interface {
	NodeCreated(s *Store)
	Wrote(s *Store, kind WriteKind)
	Notified(s *Store, kind SignalKind)
	Failed(s *Store, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) NodeCreated(*Store)          {}
func (NopObserver) Wrote(*Store, WriteKind)     {}
func (NopObserver) Notified(*Store, SignalKind) {}
func (NopObserver) Failed(*Store, error)        {}
