//go:build !windows

package gl

import (
	"unsafe"

	"github.com/ebitengine/purego"
)

// openGL calls the resolved entry points through purego, which works for the
// GLX, NSOpenGL and GLFW loaders alike.
type openGL struct {
	clearColor   func(float32, float32, float32, float32)
	clear        func(uint32)
	viewport     func(int32, int32, int32, int32)
	enable       func(uint32)
	blendFunc    func(uint32, uint32)
	matrixMode   func(uint32)
	loadIdentity func()
	ortho        func(float64, float64, float64, float64, float64, float64)
	pushMatrix   func()
	popMatrix    func()
	translatef   func(float32, float32, float32)
	scalef       func(float32, float32, float32)
	begin        func(uint32)
	end          func()
	color4f      func(float32, float32, float32, float32)
	vertex2f     func(float32, float32)
	pixelStorei  func(uint32, int32)
	readPixels   func(int32, int32, int32, int32, uint32, uint32, unsafe.Pointer)
	getString    func(uint32) *byte
}

func (gl *openGL) ClearColor(r, g, b, a float32) {
	gl.clearColor(r, g, b, a)
}

func (gl *openGL) Clear(mask uint32) {
	gl.clear(mask)
}

func (gl *openGL) Viewport(x, y, width, height int32) {
	gl.viewport(x, y, width, height)
}

func (gl *openGL) Enable(cap uint32) {
	gl.enable(cap)
}

func (gl *openGL) BlendFunc(sfactor, dfactor uint32) {
	gl.blendFunc(sfactor, dfactor)
}

func (gl *openGL) MatrixMode(mode uint32) {
	gl.matrixMode(mode)
}

func (gl *openGL) LoadIdentity() {
	gl.loadIdentity()
}

func (gl *openGL) Ortho(left, right, bottom, top, zNear, zFar float64) {
	gl.ortho(left, right, bottom, top, zNear, zFar)
}

func (gl *openGL) PushMatrix() {
	gl.pushMatrix()
}

func (gl *openGL) PopMatrix() {
	gl.popMatrix()
}

func (gl *openGL) Translatef(x, y, z float32) {
	gl.translatef(x, y, z)
}

func (gl *openGL) Scalef(x, y, z float32) {
	gl.scalef(x, y, z)
}

func (gl *openGL) Begin(mode uint32) {
	gl.begin(mode)
}

func (gl *openGL) End() {
	gl.end()
}

func (gl *openGL) Color4f(r, g, b, a float32) {
	gl.color4f(r, g, b, a)
}

func (gl *openGL) Vertex2f(x, y float32) {
	gl.vertex2f(x, y)
}

func (gl *openGL) PixelStorei(pname uint32, param int32) {
	gl.pixelStorei(pname, param)
}

func (gl *openGL) ReadPixels(x, y, width, height int32, format, xtype uint32, pixels unsafe.Pointer) {
	gl.readPixels(x, y, width, height, format, xtype, pixels)
}

func (gl *openGL) GetString(name uint32) string {
	return gostring(gl.getString(name))
}

// Load binds every entry point through getProcAddress. The context that
// getProcAddress belongs to must be current.
func Load(getProcAddress func(string) uintptr) (OpenGL, error) {
	addrs, err := resolve(getProcAddress)
	if err != nil {
		return nil, err
	}
	register := func(dst interface{}, name string) {
		purego.RegisterFunc(dst, addrs[name])
	}

	gl := &openGL{}
	register(&gl.clearColor, "glClearColor")
	register(&gl.clear, "glClear")
	register(&gl.viewport, "glViewport")
	register(&gl.enable, "glEnable")
	register(&gl.blendFunc, "glBlendFunc")
	register(&gl.matrixMode, "glMatrixMode")
	register(&gl.loadIdentity, "glLoadIdentity")
	register(&gl.ortho, "glOrtho")
	register(&gl.pushMatrix, "glPushMatrix")
	register(&gl.popMatrix, "glPopMatrix")
	register(&gl.translatef, "glTranslatef")
	register(&gl.scalef, "glScalef")
	register(&gl.begin, "glBegin")
	register(&gl.end, "glEnd")
	register(&gl.color4f, "glColor4f")
	register(&gl.vertex2f, "glVertex2f")
	register(&gl.pixelStorei, "glPixelStorei")
	register(&gl.readPixels, "glReadPixels")
	register(&gl.getString, "glGetString")
	return gl, nil
}
