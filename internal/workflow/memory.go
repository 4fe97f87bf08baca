package workflow

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	txMu    sync.Mutex
	blocks  map[string]Block
	order   []string
	edges   []Edge
	entry   string
	version uint64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blocks: make(map[string]Block)}
}

// NewMemoryStoreWithStart returns a store seeded with an entry block named
// "Start" at the given position.
func NewMemoryStoreWithStart(id string, pos Position) (*MemoryStore, error) {
	s := NewMemoryStore()
	if err := s.AddEntryBlock(context.Background(), id, StartBlockType, StartBlockName, pos); err != nil {
		return nil, err
	}
	return s, nil
}

// AddBlock registers a block.
func (s *MemoryStore) AddBlock(_ context.Context, id, blockType, name string, pos Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addBlockLocked(id, blockType, name, pos)
}

// AddEntryBlock registers a block and designates it as the workflow entry point.
func (s *MemoryStore) AddEntryBlock(_ context.Context, id, blockType, name string, pos Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.addBlockLocked(id, blockType, name, pos); err != nil {
		return err
	}
	s.entry = id
	return nil
}

func (s *MemoryStore) addBlockLocked(id, blockType, name string, pos Position) error {
	if id == "" {
		return ErrInvalidID
	}
	if _, ok := s.blocks[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBlock, id)
	}
	s.blocks[id] = Block{ID: id, Type: blockType, Name: name, Position: pos}
	s.order = append(s.order, id)
	s.version++
	return nil
}

// AddEdge registers an edge. Both endpoints must already exist.
func (s *MemoryStore) AddEdge(_ context.Context, e Edge) error {
	if e.ID == "" {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blocks[e.Source]; !ok {
		return fmt.Errorf("%w: source %s", ErrUnknownBlock, e.Source)
	}
	if _, ok := s.blocks[e.Target]; !ok {
		return fmt.Errorf("%w: target %s", ErrUnknownBlock, e.Target)
	}
	s.edges = append(s.edges, e)
	s.version++
	return nil
}

// Blocks returns a copy of the registered blocks keyed by ID.
func (s *MemoryStore) Blocks() map[string]Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Block, len(s.blocks))
	for id, b := range s.blocks {
		out[id] = b
	}
	return out
}

// EntryPoint returns the designated entry block ID, or "".
func (s *MemoryStore) EntryPoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entry
}

// Graph returns a snapshot of the workflow.
func (s *MemoryStore) Graph() Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g := Graph{
		EntryPoint: s.entry,
		Blocks:     make([]Block, 0, len(s.order)),
		Edges:      make([]Edge, len(s.edges)),
	}
	for _, id := range s.order {
		g.Blocks = append(g.Blocks, s.blocks[id])
	}
	copy(g.Edges, s.edges)
	return g
}

// Atomically runs fn against a staged copy of the store and publishes the
// copy only if fn succeeds. Batches are serialized with each other; a direct
// write that lands while a batch is staged makes the batch fail with
// ErrConflict.
func (s *MemoryStore) Atomically(ctx context.Context, fn func(tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	staged := s.cloneLocked()
	base := s.version
	s.mu.RUnlock()

	if err := fn(staged); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != base {
		return ErrConflict
	}
	s.blocks = staged.blocks
	s.order = staged.order
	s.edges = staged.edges
	s.entry = staged.entry
	s.version = staged.version
	return nil
}

func (s *MemoryStore) cloneLocked() *MemoryStore {
	c := &MemoryStore{
		blocks:  make(map[string]Block, len(s.blocks)),
		order:   append([]string(nil), s.order...),
		edges:   append([]Edge(nil), s.edges...),
		entry:   s.entry,
		version: s.version,
	}
	for id, b := range s.blocks {
		c.blocks[id] = b
	}
	return c
}
