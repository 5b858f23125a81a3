// Package gl binds the OpenGL entry points the renderer uses. Addresses are
// resolved through the GetProcAddress of the window that owns the current
// context, so the same loader serves every native window variant.
package gl

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"
)

// ErrMissingProc is returned by Load when an entry point cannot be resolved.
var ErrMissingProc = errors.New("gl: missing entry point")

const (
	// ColorBufferBit is a mask used with Clear to clear the color buffer.
	ColorBufferBit = 0x00004000
	// DepthBufferBit is a mask used with Clear to clear the depth buffer.
	DepthBufferBit = 0x00000100

	// PackAlignment specifies the alignment of rows read back by ReadPixels.
	PackAlignment = 0x0D05

	// RGBA is a pixel format representing red/green/blue/alpha.
	RGBA = 0x1908

	// UnsignedByte is a pixel data type indicating 8-bit unsigned values.
	UnsignedByte = 0x1401

	// Quads is a legacy primitive type for drawing quadrilaterals.
	Quads = 0x0007

	// Projection selects the projection matrix stack for MatrixMode.
	Projection = 0x1701
	// ModelView selects the model-view matrix stack for MatrixMode.
	ModelView = 0x1700

	// Blending capabilities and factors.
	Blend            = 0x0BE2
	SrcAlpha         = 0x0302
	OneMinusSrcAlpha = 0x0303

	// GetString parameters.
	//
	// Vendor returns the company responsible for the GL implementation.
	Vendor = 0x1F00
	// Renderer names the device the context renders on.
	Renderer = 0x1F01
	// Version returns the GL version string of the current context.
	Version = 0x1F02
)

// OpenGL describes the subset of OpenGL entry points used by the renderer.
//
// All methods operate on the GL context current on the calling thread.
type OpenGL interface {
	// ClearColor sets the clear color used by Clear when clearing the color buffer.
	ClearColor(r, g, b, a float32)

	// Clear clears buffers to preset values (e.g., ColorBufferBit).
	Clear(mask uint32)

	// Viewport sets the affine transformation of x and y from normalized device
	// coordinates to window coordinates.
	Viewport(x, y, width, height int32)

	// Enable enables a server-side GL capability (e.g., Blend).
	Enable(cap uint32)

	// BlendFunc specifies the pixel arithmetic for blending (e.g., SrcAlpha and OneMinusSrcAlpha).
	BlendFunc(sfactor, dfactor uint32)

	// MatrixMode sets which matrix stack is the target for subsequent matrix operations
	// (e.g., Projection or ModelView).
	MatrixMode(mode uint32)

	// LoadIdentity replaces the current matrix with the identity matrix.
	LoadIdentity()

	// Ortho multiplies the current matrix by an orthographic projection matrix.
	Ortho(left, right, bottom, top, zNear, zFar float64)

	PushMatrix()
	PopMatrix()
	Translatef(x, y, z float32)
	Scalef(x, y, z float32)

	// Begin begins specifying vertices for a primitive or a group of like primitives.
	//
	// This is part of OpenGL's legacy immediate mode API and needs a
	// compatibility context.
	Begin(mode uint32)

	// End marks the end of vertex specification started by Begin.
	End()

	Color4f(r, g, b, a float32)
	Vertex2f(x, y float32)

	// PixelStorei sets pixel storage modes (e.g., PackAlignment).
	PixelStorei(pname uint32, param int32)

	// ReadPixels reads a block of pixels from the framebuffer into client memory.
	ReadPixels(
		x int32,
		y int32,
		width int32,
		height int32,
		format uint32,
		xtype uint32,
		pixels unsafe.Pointer,
	)

	// GetString returns a string describing a GL property for the current context.
	//
	// Common names are Vendor and Version. It returns the empty string when
	// the name is not recognized.
	GetString(name uint32) string
}

// entryPoints lists the GL functions Load resolves, in binding order.
var entryPoints = []string{
	"glClearColor",
	"glClear",
	"glViewport",
	"glEnable",
	"glBlendFunc",
	"glMatrixMode",
	"glLoadIdentity",
	"glOrtho",
	"glPushMatrix",
	"glPopMatrix",
	"glTranslatef",
	"glScalef",
	"glBegin",
	"glEnd",
	"glColor4f",
	"glVertex2f",
	"glPixelStorei",
	"glReadPixels",
	"glGetString",
}

// resolve looks up every entry point and reports all missing names at once.
func resolve(getProcAddress func(string) uintptr) (map[string]uintptr, error) {
	addrs := make(map[string]uintptr, len(entryPoints))
	var missing []string
	for _, name := range entryPoints {
		addr := getProcAddress(name)
		if addr == 0 {
			missing = append(missing, name)
			continue
		}
		addrs[name] = addr
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingProc, strings.Join(missing, ", "))
	}
	return addrs, nil
}

func gostring(ptr *byte) string {
	if ptr == nil {
		return ""
	}
	var bytes []byte
	for p := ptr; *p != 0; p = (*byte)(unsafe.Add(unsafe.Pointer(p), 1)) {
		bytes = append(bytes, *p)
	}
	return string(bytes)
}
