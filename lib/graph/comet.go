// Package graph draws the edges of the transfers graph with an animated comet travelling from source to target.
//
// The animation state lives in a side-table keyed by edge id, so the graph data shared with the layout is never
// mutated by drawing.
package graph

import (
	"sync"
)

// DefaultStep is the progress added by every frame.
const DefaultStep = 0.01

// Node is a graph node. Placed is false until the layout gave it pixel coordinates.
type Node struct {
	ID     string
	X, Y   float64
	Placed bool
}

// Endpoint references a node. It is unresolved while Node is nil and only the id is known.
type Endpoint struct {
	ID   string
	Node *Node
}

// Resolved reports whether the endpoint refers to a node with coordinates.
func (e Endpoint) Resolved() bool {
	return e.Node != nil && e.Node.Placed
}

// Edge joins two endpoints.
type Edge struct {
	ID     string
	Source Endpoint
	Target Endpoint
	Color  string
}

// Point is a pixel position.
type Point struct {
	X, Y float64
}

// Stop is a colour stop of a gradient, Offset in [0,1].
type Stop struct {
	Offset float64
	Color  string
}

// Canvas is the drawing surface.
type Canvas interface {
	Line(from, to Point, color string, width float64)
	Gradient(from, to Point, stops []Stop, width float64)
}

// Widths of the static line and the comet.
const (
	LineWidth  = 1
	CometWidth = 2
	// CometLength is the fraction of the edge covered by the comet tail.
	CometLength = 0.1
)

// Comets keeps the frame count of every edge with a comet in flight.
type Comets struct {
	mu     sync.Mutex
	step   float64
	frames map[string]int
}

// NewComets returns an empty side-table advancing by step per frame (DefaultStep when step is not positive).
func NewComets(step float64) *Comets {
	if step <= 0 {
		step = DefaultStep
	}

	return &Comets{step: step, frames: make(map[string]int)}
}

// Trigger starts a traversal of edge id from its source. A traversal in flight is restarted.
func (c *Comets) Trigger(id string) {
	c.mu.Lock()
	c.frames[id] = 0
	c.mu.Unlock()
}

// Progress returns the position of the comet of edge id in [0,1) and whether one is in flight.
func (c *Comets) Progress(id string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.frames[id]
	if !ok {
		return 0, false
	}

	return float64(n) * c.step, true
}

// Active returns the number of comets in flight.
func (c *Comets) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.frames)
}

// Draw renders one frame of e: nothing when an endpoint is unresolved, otherwise the static line and, while a comet
// is in flight, its gradient segment at the current progress. The progress then advances by one step and the comet
// is cleared once it reaches the target.
func (c *Comets) Draw(canvas Canvas, e Edge) {
	if !e.Source.Resolved() || !e.Target.Resolved() {
		return
	}

	from := Point{e.Source.Node.X, e.Source.Node.Y}
	to := Point{e.Target.Node.X, e.Target.Node.Y}

	canvas.Line(from, to, e.Color, LineWidth)

	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.frames[e.ID]
	if !ok {
		return
	}

	p := float64(n) * c.step
	tail := p - CometLength
	if tail < 0 {
		tail = 0
	}

	canvas.Gradient(lerp(from, to, tail), lerp(from, to, p), []Stop{
		{Offset: 0, Color: "transparent"},
		{Offset: 1, Color: e.Color},
	}, CometWidth)

	n++
	if float64(n)*c.step >= 1 {
		delete(c.frames, e.ID)

		return
	}

	c.frames[e.ID] = n
}

func lerp(a, b Point, t float64) Point {
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}
