package workflow

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Block is a node in a workflow graph representing one integration step.
type Block struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Name     string   `json:"name"`
	Position Position `json:"position"`
}

// Edge is a directed connection between two blocks indicating execution order.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`
	Type         string `json:"type"`
	Animated     bool   `json:"animated"`
}

// Graph is a point-in-time copy of a workflow. Blocks are in registration order.
type Graph struct {
	EntryPoint string  `json:"entryPoint,omitempty"`
	Blocks     []Block `json:"blocks"`
	Edges      []Edge  `json:"edges"`
}

// ResponseBlock is one block as described by the model. ID and Position are
// legacy fields that are accepted but never used for construction.
type ResponseBlock struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Position *Position `json:"position,omitempty"`
}

// ResponseEdge is an edge as described by the model, connecting blocks by name.
type ResponseEdge struct {
	ID           string `json:"id,omitempty"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Response is the JSON envelope the model is asked to produce.
type Response struct {
	Blocks []ResponseBlock `json:"blocks,omitempty"`
	Edges  []ResponseEdge  `json:"edges,omitempty"`
}
