package component

import (
	"errors"

	"github.com/jakecoffman/cp"
)

var (
	ErrUnknownKind   = errors.New("component: unknown actor kind")
	ErrInvalidTiming = errors.New("component: invalid timing")
	ErrInvalidRule   = errors.New("component: invalid proximity rule")
)

// Vec is a world-space point or extent in Chipmunk's vector type, so hit
// boxes can go straight into a cp.Space. Y grows downward.
type Vec = cp.Vector

// Mover is the tracked player sample used for proximity and jump checks.
type Mover struct {
	X         float64
	Y         float64
	VelocityY float64
}
