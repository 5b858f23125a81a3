// Package render holds the 2D render pass guard, the Renderer facade client
// code draws through and the immediate-mode Context behind it.
package render

import (
	"sync"

	"github.com/sengine/sengine/internal/assert"
)

// Camera2D positions the 2D pass. Zoom 0 is treated as 1.
type Camera2D struct {
	X, Y float32
	Zoom float32
}

// Camera3D is accepted by BeginRender3D. The 3D pass draws nothing yet.
type Camera3D struct {
	Position [3]float32
	Target   [3]float32
}

// Renderer routes 2D pass calls through a Pass2D guard. Ordering violations
// are programmer errors and abort through package assert.
type Renderer struct {
	pass Pass2D
	ctx  *Context
}

// NewRenderer returns a Renderer drawing into ctx. ctx may be nil, in which
// case only pass ordering is enforced.
func NewRenderer(ctx *Context) *Renderer {
	return &Renderer{ctx: ctx}
}

// Context returns the render context, or nil.
func (r *Renderer) Context() *Context { return r.ctx }

// SetContext replaces the render context.
func (r *Renderer) SetContext(ctx *Context) { r.ctx = ctx }

// Pass exposes the guard for inspection.
func (r *Renderer) Pass() *Pass2D { return &r.pass }

func (r *Renderer) BeginRender2D(cam Camera2D) { r.begin2D(2, cam) }

func (r *Renderer) Draw2D() { r.draw2D(2) }

func (r *Renderer) EndRender2D() {
	r.pass.End()
}

func (r *Renderer) BeginRender3D(Camera3D) {}

func (r *Renderer) EndRender3D() {}

// begin2D and draw2D report failures skip frames up, at the client call.
func (r *Renderer) begin2D(skip int, cam Camera2D) {
	err := r.pass.Begin()
	assert.ThatDepth(skip, err == nil, "pass.Begin() == nil", errString(err))
	if err == nil && r.ctx != nil {
		r.ctx.ApplyCamera(cam)
	}
}

func (r *Renderer) draw2D(skip int) {
	err := r.pass.Draw()
	assert.ThatDepth(skip, err == nil, "pass.Draw() == nil", errString(err))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

var (
	defaultMu       sync.Mutex
	defaultRenderer = NewRenderer(nil)
)

// Default returns the process-wide Renderer used by the package-level
// functions.
func Default() *Renderer {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultRenderer
}

// SetDefault replaces the process-wide Renderer.
func SetDefault(r *Renderer) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRenderer = r
}

func BeginRender2D(cam Camera2D) { Default().begin2D(2, cam) }

func Draw2D() { Default().draw2D(2) }

func EndRender2D() { Default().EndRender2D() }

func BeginRender3D(cam Camera3D) { Default().BeginRender3D(cam) }

func EndRender3D() { Default().EndRender3D() }
