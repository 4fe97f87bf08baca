package builder

import "github.com/ziadkadry99/promptflow/internal/workflow"

// Layout places generated blocks left-to-right in a single row.
type Layout struct {
	StartX  float64
	StartY  float64
	Spacing float64
}

// DefaultLayout returns the canvas layout used when none is configured.
func DefaultLayout() Layout {
	return Layout{StartX: 800, StartY: 300, Spacing: 500}
}

// Position returns the canvas position of the i-th generated block.
func (l Layout) Position(i int) workflow.Position {
	return workflow.Position{
		X: l.StartX + l.Spacing*float64(i),
		Y: l.StartY,
	}
}
