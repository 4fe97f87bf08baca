package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Indicator shows that a request is in flight.
type Indicator interface {
	Start(message string)
	Stop()
}

// NewIndicator returns a TerminalIndicator for interactive use, or a
// CIIndicator if the CI environment variable is set. Output goes to w.
func NewIndicator(w io.Writer) Indicator {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIIndicator{w: w}
	}
	return &TerminalIndicator{w: w}
}

// TerminalIndicator animates a spinner until stopped.
type TerminalIndicator struct {
	w    io.Writer
	bar  *progressbar.ProgressBar
	done chan struct{}
	wg   sync.WaitGroup
}

func (t *TerminalIndicator) Start(message string) {
	t.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(t.w),
		progressbar.OptionSetDescription(message),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
	t.done = make(chan struct{})
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-t.done:
				return
			case <-ticker.C:
				_ = t.bar.Add(1)
			}
		}
	}()
}

func (t *TerminalIndicator) Stop() {
	if t.bar == nil {
		return
	}
	close(t.done)
	t.wg.Wait()
	_ = t.bar.Finish()
	t.bar = nil
}

// CIIndicator prints start and end lines suitable for CI logs.
type CIIndicator struct {
	w       io.Writer
	message string
	start   time.Time
}

func (c *CIIndicator) Start(message string) {
	c.message = message
	c.start = time.Now()
	fmt.Fprintln(c.w, message)
}

func (c *CIIndicator) Stop() {
	fmt.Fprintf(c.w, "done in %s\n", time.Since(c.start).Round(time.Millisecond))
}
