package render

import (
	"errors"
	"image"
	"unsafe"

	glpkg "github.com/sengine/sengine/internal/gl"
)

// Colour is a straight-alpha RGBA colour with components in [0, 1].
type Colour struct {
	R, G, B, A float32
}

// Context draws into the framebuffer of the current GL context with the
// fixed-function pipeline. Immediate-mode drawing needs a legacy context; on
// a core profile DrawQuad and ApplyCamera do nothing.
type Context struct {
	gl        glpkg.OpenGL
	immediate bool

	width, height int
	clearColour   Colour
}

// NewContext wraps gl. immediate selects whether fixed-function calls may be
// issued.
func NewContext(gl glpkg.OpenGL, immediate bool) *Context {
	c := &Context{
		gl:          gl,
		immediate:   immediate,
		clearColour: Colour{0, 0, 0, 1},
	}
	gl.Enable(glpkg.Blend)
	gl.BlendFunc(glpkg.SrcAlpha, glpkg.OneMinusSrcAlpha)
	return c
}

// Immediate reports whether fixed-function drawing is available.
func (c *Context) Immediate() bool { return c.immediate }

// Info returns the vendor, renderer and version strings of the context.
func (c *Context) Info() (vendor, renderer, version string) {
	return c.gl.GetString(glpkg.Vendor), c.gl.GetString(glpkg.Renderer), c.gl.GetString(glpkg.Version)
}

// SetViewportSize maps the viewport onto a width x height framebuffer with
// the origin at the top left.
func (c *Context) SetViewportSize(width, height int) {
	c.width, c.height = width, height
	c.gl.Viewport(0, 0, int32(width), int32(height))
	if !c.immediate {
		return
	}
	c.gl.MatrixMode(glpkg.Projection)
	c.gl.LoadIdentity()
	c.gl.Ortho(0, float64(width), float64(height), 0, -1, 1)
	c.gl.MatrixMode(glpkg.ModelView)
	c.gl.LoadIdentity()
}

func (c *Context) ViewportSize() (int, int) { return c.width, c.height }

func (c *Context) SetClearColor(col Colour) { c.clearColour = col }

// Clear clears the colour and depth buffers.
func (c *Context) Clear() {
	col := c.clearColour
	c.gl.ClearColor(col.R, col.G, col.B, col.A)
	c.gl.Clear(glpkg.ColorBufferBit | glpkg.DepthBufferBit)
}

// ApplyCamera resets the model-view matrix to look through cam.
func (c *Context) ApplyCamera(cam Camera2D) {
	if !c.immediate {
		return
	}
	zoom := cam.Zoom
	if zoom == 0 {
		zoom = 1
	}
	c.gl.MatrixMode(glpkg.ModelView)
	c.gl.LoadIdentity()
	c.gl.Scalef(zoom, zoom, 1)
	c.gl.Translatef(-cam.X, -cam.Y, 0)
}

// DrawQuad draws a square of side scale centred on x, y.
func (c *Context) DrawQuad(x, y, scale float32, col Colour) {
	if !c.immediate {
		return
	}
	c.gl.PushMatrix()
	c.gl.Translatef(x, y, 0)
	c.gl.Scalef(scale, scale, 1)
	c.gl.Color4f(col.R, col.G, col.B, col.A)
	c.gl.Begin(glpkg.Quads)
	c.gl.Vertex2f(-0.5, -0.5)
	c.gl.Vertex2f(0.5, -0.5)
	c.gl.Vertex2f(0.5, 0.5)
	c.gl.Vertex2f(-0.5, 0.5)
	c.gl.End()
	c.gl.PopMatrix()
}

// Screenshot reads back the viewport as a top-down RGBA image.
func (c *Context) Screenshot() (image.Image, error) {
	bw, bh := c.width, c.height
	if bw <= 0 || bh <= 0 {
		return nil, errors.New("render: screenshot of an empty viewport")
	}
	rgba := image.NewRGBA(image.Rect(0, 0, bw, bh))
	c.gl.PixelStorei(glpkg.PackAlignment, 1)
	c.gl.ReadPixels(0, 0, int32(bw), int32(bh), glpkg.RGBA, glpkg.UnsignedByte, unsafe.Pointer(&rgba.Pix[0]))

	// GL rows run bottom-up.
	flipped := image.NewRGBA(image.Rect(0, 0, bw, bh))
	for y := 0; y < bh; y++ {
		srcStart := y * rgba.Stride
		srcEnd := srcStart + rgba.Stride
		dstStart := (bh - 1 - y) * flipped.Stride
		dstEnd := dstStart + flipped.Stride
		copy(flipped.Pix[dstStart:dstEnd], rgba.Pix[srcStart:srcEnd])
	}

	return flipped, nil
}
