package valueobjects

// Canvas layout constants for synthesized node positions.
// A fixed vertical stack keeps generated graphs readable without overlap.
const (
	DefaultColumnX  = 250.0
	DefaultOriginY  = 50.0
	VerticalSpacing = 180.0
)

// Position is the 2D canvas coordinate of a node. Layout only; it carries no
// workflow semantics.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition creates a position from explicit coordinates
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// StackedPosition computes the default position for the node at the given
// 0-based index: a single column, top to bottom.
func StackedPosition(index int) Position {
	return Position{
		X: DefaultColumnX,
		Y: DefaultOriginY + float64(index)*VerticalSpacing,
	}
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// IsZero reports whether the position is the zero value
func (p Position) IsZero() bool {
	return p.X == 0 && p.Y == 0
}
