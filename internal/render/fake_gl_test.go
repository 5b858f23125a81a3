package render

import (
	"fmt"
	"unsafe"
)

// recordingGL is a gl.OpenGL that records calls by name.
type recordingGL struct {
	calls []string
	// fill is written into every ReadPixels destination, row by row.
	fill func(row int) byte
}

func (g *recordingGL) record(format string, args ...any) {
	g.calls = append(g.calls, fmt.Sprintf(format, args...))
}

func (g *recordingGL) ClearColor(r, gr, b, a float32) { g.record("ClearColor(%g,%g,%g,%g)", r, gr, b, a) }
func (g *recordingGL) Clear(mask uint32)              { g.record("Clear(%#x)", mask) }
func (g *recordingGL) Viewport(x, y, w, h int32)      { g.record("Viewport(%d,%d,%d,%d)", x, y, w, h) }
func (g *recordingGL) Enable(c uint32)                { g.record("Enable(%#x)", c) }
func (g *recordingGL) BlendFunc(s, d uint32)          { g.record("BlendFunc(%#x,%#x)", s, d) }
func (g *recordingGL) MatrixMode(m uint32)            { g.record("MatrixMode(%#x)", m) }
func (g *recordingGL) LoadIdentity()                  { g.record("LoadIdentity") }
func (g *recordingGL) Ortho(l, r, b, t, n, f float64) {
	g.record("Ortho(%g,%g,%g,%g,%g,%g)", l, r, b, t, n, f)
}
func (g *recordingGL) PushMatrix()                { g.record("PushMatrix") }
func (g *recordingGL) PopMatrix()                 { g.record("PopMatrix") }
func (g *recordingGL) Translatef(x, y, z float32) { g.record("Translatef(%g,%g,%g)", x, y, z) }
func (g *recordingGL) Scalef(x, y, z float32)     { g.record("Scalef(%g,%g,%g)", x, y, z) }
func (g *recordingGL) Begin(m uint32)             { g.record("Begin(%#x)", m) }
func (g *recordingGL) End()                       { g.record("End") }
func (g *recordingGL) Color4f(r, gr, b, a float32) {
	g.record("Color4f(%g,%g,%g,%g)", r, gr, b, a)
}
func (g *recordingGL) Vertex2f(x, y float32)         { g.record("Vertex2f(%g,%g)", x, y) }
func (g *recordingGL) PixelStorei(p uint32, v int32) { g.record("PixelStorei(%#x,%d)", p, v) }
func (g *recordingGL) ReadPixels(x, y, w, h int32, format, xtype uint32, pixels unsafe.Pointer) {
	g.record("ReadPixels(%d,%d,%d,%d)", x, y, w, h)
	if g.fill == nil {
		return
	}
	buf := unsafe.Slice((*byte)(pixels), int(w)*int(h)*4)
	for row := 0; row < int(h); row++ {
		for i := 0; i < int(w)*4; i++ {
			buf[row*int(w)*4+i] = g.fill(row)
		}
	}
}
func (g *recordingGL) GetString(name uint32) string {
	return fmt.Sprintf("string-%#x", name)
}

func (g *recordingGL) reset() { g.calls = nil }
