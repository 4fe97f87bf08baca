// Package workflow holds the workflow graph model and the stores generated
// graphs are written into.
package workflow

import (
	"context"
	"errors"
)

// StartBlockName is the display name of the entry block every workflow is
// assumed to contain.
const StartBlockName = "Start"

// StartBlockType is the block type of the entry block.
const StartBlockType = "starter"

var (
	// ErrDuplicateBlock is returned when a block ID is registered twice.
	ErrDuplicateBlock = errors.New("workflow: block already exists")
	// ErrUnknownBlock is returned when an edge references an unregistered block.
	ErrUnknownBlock = errors.New("workflow: unknown block")
	// ErrInvalidID is returned for empty identifiers.
	ErrInvalidID = errors.New("workflow: empty identifier")
	// ErrConflict is returned when an atomic batch raced with another write.
	ErrConflict = errors.New("workflow: concurrent modification")
)

// Store is the mutable workflow the graph builder writes into. Writes are
// synchronous and immediately visible through Blocks.
type Store interface {
	AddBlock(ctx context.Context, id, blockType, name string, pos Position) error
	AddEdge(ctx context.Context, e Edge) error
	// Blocks returns a read-only view keyed by block ID.
	Blocks() map[string]Block
}

// EntryPointer is implemented by stores that track an explicit entry block.
type EntryPointer interface {
	EntryPoint() string
}

// Transactor is implemented by stores that can apply a batch of writes
// atomically. If fn returns an error none of its writes are kept.
type Transactor interface {
	Atomically(ctx context.Context, fn func(tx Store) error) error
}
