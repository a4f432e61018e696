package occlusion

// State is the observed occlusion state of the ball.
type State int

const (
	// Undetermined means a method could not reach a conclusion.
	Undetermined State = iota
	// Shielded means the ball is behind barrier material.
	Shielded
	// Exposed means the ball is in the open.
	Exposed
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case Shielded:
		return "shielded"
	case Exposed:
		return "exposed"
	default:
		return "undetermined"
	}
}

// ClassificationResult holds both method outcomes and the fused state.
type ClassificationResult struct {
	Math  State // geometric proximity method
	Pixel State // rasterised ring-sampling method
	Final State // Math when conclusive, otherwise Pixel
}

// fuse applies the precedence rule between the two methods.
func fuse(math, pixel State) State {
	if math != Undetermined {
		return math
	}
	return pixel
}
