package surface

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ziadkadry99/promptflow/internal/tools"
)

// Embedder turns a message into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (*tools.EmbeddingsOutput, error)
}

// Message is the chat surface that embeds the typed message.
// The input is cleared whether or not the request succeeds.
type Message struct {
	base
	embedder Embedder

	lastMu sync.Mutex
	last   *tools.EmbeddingsOutput
}

// NewMessage creates a closed message surface.
func NewMessage(embedder Embedder, logger *slog.Logger) *Message {
	m := &Message{embedder: embedder}
	m.setup(NameMessage, "Type your message...", "Generating embeddings...", true, logger)
	return m
}

// Submit embeds the current message.
func (m *Message) Submit(ctx context.Context) error {
	return m.submit(ctx, func(ctx context.Context, input string) error {
		out, err := m.embedder.Embed(ctx, input)
		if err != nil {
			return err
		}
		m.lastMu.Lock()
		m.last = out
		m.lastMu.Unlock()
		return nil
	})
}

// LastResult returns the most recent embeddings, or nil.
func (m *Message) LastResult() *tools.EmbeddingsOutput {
	m.lastMu.Lock()
	defer m.lastMu.Unlock()
	return m.last
}
