// Package surface holds the state machines behind the two chat surfaces:
// the workflow surface that turns a prompt into graph blocks, and the
// message surface that turns a message into embeddings.
package surface

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/ziadkadry99/promptflow/internal/pipeline"
)

// State is the visibility of a surface.
type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
)

// Surface names.
const (
	NameWorkflow = "workflow"
	NameMessage  = "message"
)

var (
	// ErrBusy is returned by Submit and SetInput while a request is in flight.
	ErrBusy = errors.New("surface: request in flight")
	// ErrClosed is returned by Submit when the surface is not open.
	ErrClosed = errors.New("surface: not open")
)

// Snapshot is the render state of a surface.
type Snapshot struct {
	Surface     string `json:"surface"`
	State       State  `json:"state"`
	Input       string `json:"input"`
	Busy        bool   `json:"busy"`
	Error       string `json:"error,omitempty"`
	Placeholder string `json:"placeholder"`
}

// Surface is the behaviour shared by both chat surfaces.
type Surface interface {
	Launch()
	Dismiss()
	SetInput(s string) error
	Submit(ctx context.Context) error
	Snapshot() Snapshot
	OnChange(fn func(Snapshot))
}

// base implements the closed/open state machine and the in-flight guard.
// The concrete surfaces supply the request itself.
type base struct {
	name            string
	idlePlaceholder string
	busyPlaceholder string
	clearOnFailure  bool
	logger          *slog.Logger

	mu       sync.Mutex
	state    State
	input    string
	busy     bool
	err      string
	listener func(Snapshot)
}

func (b *base) setup(name, idle, busy string, clearOnFailure bool, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	b.name = name
	b.idlePlaceholder = idle
	b.busyPlaceholder = busy
	b.clearOnFailure = clearOnFailure
	b.logger = logger.With("component", "surface", "surface", name)
	b.state = StateClosed
}

// Launch opens the surface.
func (b *base) Launch() {
	b.mu.Lock()
	b.state = StateOpen
	b.mu.Unlock()
	b.notify()
}

// Dismiss closes the surface. An in-flight request is not cancelled.
func (b *base) Dismiss() {
	b.mu.Lock()
	b.state = StateClosed
	b.err = ""
	b.mu.Unlock()
	b.notify()
}

// SetInput replaces the pending input text. The input is locked while a
// request is in flight and ErrBusy is returned.
func (b *base) SetInput(s string) error {
	b.mu.Lock()
	if b.busy {
		b.mu.Unlock()
		return ErrBusy
	}
	b.input = s
	b.mu.Unlock()
	b.notify()
	return nil
}

// OnChange registers fn to receive a snapshot after every state change.
// fn runs without the surface lock held and replaces any earlier listener.
func (b *base) OnChange(fn func(Snapshot)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listener = fn
}

func (b *base) notify() {
	b.mu.Lock()
	fn := b.listener
	snap := b.snapshotLocked()
	b.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

// Snapshot returns the current render state.
func (b *base) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *base) snapshotLocked() Snapshot {
	placeholder := b.idlePlaceholder
	if b.busy {
		placeholder = b.busyPlaceholder
	}
	return Snapshot{
		Surface:     b.name,
		State:       b.state,
		Input:       b.input,
		Busy:        b.busy,
		Error:       b.err,
		Placeholder: placeholder,
	}
}

// submit runs do with the current input. Blank input is a no-op.
func (b *base) submit(ctx context.Context, do func(ctx context.Context, input string) error) error {
	b.mu.Lock()
	switch {
	case b.state != StateOpen:
		b.mu.Unlock()
		return ErrClosed
	case b.busy:
		b.mu.Unlock()
		return ErrBusy
	case strings.TrimSpace(b.input) == "":
		b.mu.Unlock()
		return nil
	}
	input := b.input
	b.busy = true
	b.err = ""
	b.mu.Unlock()
	b.notify()

	err := do(ctx, input)

	b.mu.Lock()
	b.busy = false
	if err != nil {
		b.logger.Error("submit failed", "error", err)
		b.err = pipeline.UserMessage(err)
		if b.clearOnFailure {
			b.input = ""
		}
	} else {
		b.input = ""
		b.state = StateClosed
	}
	b.mu.Unlock()
	b.notify()
	return err
}
