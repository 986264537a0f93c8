package bus

import (
	"log/slog"

	"github.com/joshuapare/spukit/internal/logger"
)

// Trace logs every transaction of an underlying Bus at Debug level.
type Trace struct {
	b   Bus
	log *slog.Logger
}

// NewTrace wraps b. A nil logger uses logger.L.
func NewTrace(b Bus, l *slog.Logger) *Trace {
	return &Trace{b: b, log: logger.Or(l).With("component", "bus")}
}

// Write implements Bus.
func (t *Trace) Write(ws []Write) error {
	err := t.b.Write(ws)
	for _, w := range ws {
		t.log.Debug("write", "addr", w.Addr, "data", w.Data)
	}
	if err != nil {
		t.log.Debug("write failed", "words", len(ws), "error", err)
	}
	return err
}

// Read implements Bus.
func (t *Trace) Read(addrs []uint32, dst []uint32) error {
	err := t.b.Read(addrs, dst)
	if err != nil {
		t.log.Debug("read failed", "words", len(addrs), "error", err)
		return err
	}
	for i, a := range addrs {
		t.log.Debug("read", "addr", a, "data", dst[i])
	}
	return nil
}

// State implements Bus.
func (t *Trace) State() (uint32, error) {
	s, err := t.b.State()
	if err != nil {
		t.log.Debug("state failed", "error", err)
	}
	return s, err
}
