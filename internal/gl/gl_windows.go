//go:build windows

package gl

import (
	"math"
	"syscall"
	"unsafe"
)

// openGL holds raw entry point addresses. wglGetProcAddress hands out plain
// function pointers, so calls go through syscall.SyscallN rather than
// LazyProc.
type openGL struct {
	clearColor   uintptr
	clear        uintptr
	viewport     uintptr
	enable       uintptr
	blendFunc    uintptr
	matrixMode   uintptr
	loadIdentity uintptr
	ortho        uintptr
	pushMatrix   uintptr
	popMatrix    uintptr
	translatef   uintptr
	scalef       uintptr
	begin        uintptr
	end          uintptr
	color4f      uintptr
	vertex2f     uintptr
	pixelStorei  uintptr
	readPixels   uintptr
	getString    uintptr
}

func (gl *openGL) ClearColor(r, g, b, a float32) {
	syscall.SyscallN(gl.clearColor, f32(r), f32(g), f32(b), f32(a))
}

func (gl *openGL) Clear(mask uint32) {
	syscall.SyscallN(gl.clear, uintptr(mask))
}

func (gl *openGL) Viewport(x, y, width, height int32) {
	syscall.SyscallN(gl.viewport, uintptr(x), uintptr(y), uintptr(width), uintptr(height))
}

func (gl *openGL) Enable(cap uint32) {
	syscall.SyscallN(gl.enable, uintptr(cap))
}

func (gl *openGL) BlendFunc(sfactor, dfactor uint32) {
	syscall.SyscallN(gl.blendFunc, uintptr(sfactor), uintptr(dfactor))
}

func (gl *openGL) MatrixMode(mode uint32) {
	syscall.SyscallN(gl.matrixMode, uintptr(mode))
}

func (gl *openGL) LoadIdentity() {
	syscall.SyscallN(gl.loadIdentity)
}

func (gl *openGL) Ortho(left, right, bottom, top, zNear, zFar float64) {
	syscall.SyscallN(gl.ortho, f64(left), f64(right), f64(bottom), f64(top), f64(zNear), f64(zFar))
}

func (gl *openGL) PushMatrix() {
	syscall.SyscallN(gl.pushMatrix)
}

func (gl *openGL) PopMatrix() {
	syscall.SyscallN(gl.popMatrix)
}

func (gl *openGL) Translatef(x, y, z float32) {
	syscall.SyscallN(gl.translatef, f32(x), f32(y), f32(z))
}

func (gl *openGL) Scalef(x, y, z float32) {
	syscall.SyscallN(gl.scalef, f32(x), f32(y), f32(z))
}

func (gl *openGL) Begin(mode uint32) {
	syscall.SyscallN(gl.begin, uintptr(mode))
}

func (gl *openGL) End() {
	syscall.SyscallN(gl.end)
}

func (gl *openGL) Color4f(r, g, b, a float32) {
	syscall.SyscallN(gl.color4f, f32(r), f32(g), f32(b), f32(a))
}

func (gl *openGL) Vertex2f(x, y float32) {
	syscall.SyscallN(gl.vertex2f, f32(x), f32(y))
}

func (gl *openGL) PixelStorei(pname uint32, param int32) {
	syscall.SyscallN(gl.pixelStorei, uintptr(pname), uintptr(param))
}

func (gl *openGL) ReadPixels(x, y, width, height int32, format, xtype uint32, pixels unsafe.Pointer) {
	syscall.SyscallN(gl.readPixels, uintptr(x), uintptr(y), uintptr(width), uintptr(height), uintptr(format), uintptr(xtype), uintptr(pixels))
}

func (gl *openGL) GetString(name uint32) string {
	ptr, _, _ := syscall.SyscallN(gl.getString, uintptr(name))
	return gostring((*byte)(unsafe.Pointer(ptr)))
}

// Load binds every entry point through getProcAddress. The context that
// getProcAddress belongs to must be current.
func Load(getProcAddress func(string) uintptr) (OpenGL, error) {
	addrs, err := resolve(getProcAddress)
	if err != nil {
		return nil, err
	}
	gl := &openGL{
		clearColor:   addrs["glClearColor"],
		clear:        addrs["glClear"],
		viewport:     addrs["glViewport"],
		enable:       addrs["glEnable"],
		blendFunc:    addrs["glBlendFunc"],
		matrixMode:   addrs["glMatrixMode"],
		loadIdentity: addrs["glLoadIdentity"],
		ortho:        addrs["glOrtho"],
		pushMatrix:   addrs["glPushMatrix"],
		popMatrix:    addrs["glPopMatrix"],
		translatef:   addrs["glTranslatef"],
		scalef:       addrs["glScalef"],
		begin:        addrs["glBegin"],
		end:          addrs["glEnd"],
		color4f:      addrs["glColor4f"],
		vertex2f:     addrs["glVertex2f"],
		pixelStorei:  addrs["glPixelStorei"],
		readPixels:   addrs["glReadPixels"],
		getString:    addrs["glGetString"],
	}
	return gl, nil
}

// Float arguments are passed as their bit patterns.
func f32(v float32) uintptr {
	return uintptr(math.Float32bits(v))
}

func f64(v float64) uintptr {
	return uintptr(math.Float64bits(v))
}
