// Package choreo is the hazard choreography engine: a frame-stepped state
// machine layer for retractable spikes and blades, vibrating hazards and
// drop-away platforms.
//
// A Runner owns the actors of one scene. The host calls Tick once per frame;
// collaborators read VisualState/IsLethal (or receive them through a
// RenderSink) and report player overlaps through HandleCollision, which
// reveals the fatal hazard and fires its death callback.
//
//	r := choreo.NewRunner(choreo.WithRenderSink(sink))
//	a, _ := r.CreateActor(component.KindRetractable, choreo.ActorConfig{...})
//	b, _ := r.CreateActor(component.KindRetractable, choreo.ActorConfig{...})
//	_ = r.Link(a, b, 0.15)
//	_ = r.StartAnimation(a, 0)
//	for { r.Tick(dt) }
package choreo
