package choreo

import "log"

// Option configures a Runner.
type Option func(*Runner)

// WithRenderSink sets the collaborator that receives per-tick visual state.
func WithRenderSink(s RenderSink) Option {
	return func(r *Runner) { r.render = s }
}

// WithCollisionSource sets the collaborator that reports player overlaps.
func WithCollisionSource(s CollisionSource) Option {
	return func(r *Runner) { r.collisions = s }
}

// WithMoverSource sets the collaborator polled for the player sample.
func WithMoverSource(s MoverSource) Option {
	return func(r *Runner) { r.mover = s }
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}
