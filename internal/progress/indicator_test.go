package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer the spinner writes from another goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func TestNewIndicatorCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewIndicator(&bytes.Buffer{}).(*CIIndicator); !ok {
		t.Error("expected CIIndicator when CI is set")
	}
}

func TestNewIndicatorTerminal(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	if _, ok := NewIndicator(&bytes.Buffer{}).(*TerminalIndicator); !ok {
		t.Error("expected TerminalIndicator outside CI")
	}
}

func TestCIIndicator(t *testing.T) {
	var buf bytes.Buffer
	ind := &CIIndicator{w: &buf}
	ind.Start("Creating workflow...")
	ind.Stop()

	out := buf.String()
	if !strings.Contains(out, "Creating workflow...") {
		t.Errorf("missing start message: %q", out)
	}
	if !strings.Contains(out, "done in") {
		t.Errorf("missing completion line: %q", out)
	}
}

func TestTerminalIndicatorStartStop(t *testing.T) {
	var buf syncBuffer
	ind := &TerminalIndicator{w: &buf}
	ind.Start("Generating embeddings...")
	time.Sleep(150 * time.Millisecond)
	ind.Stop()

	// Stop is idempotent.
	ind.Stop()
	if buf.Len() == 0 {
		t.Error("expected spinner output")
	}
}
