//go:build linux && !glfw

package window

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
)

const (
	glxXRenderable   = 0x8012
	glxDrawableType  = 0x8010
	glxWindowBit     = 0x0001
	glxRenderType    = 0x8011
	glxRGBABit       = 0x0001
	glxRGBAType      = 0x8014
	glxXVisualType   = 0x22
	glxTrueColor     = 0x8002
	glxDoubleBuffer  = 5
	glxRedSize       = 8
	glxGreenSize     = 9
	glxBlueSize      = 10
	glxAlphaSize     = 11
	glxDepthSize     = 12
	glxStencilSize   = 13
	glxNone          = 0
	glxContextMajor  = 0x2091
	glxContextMinor  = 0x2092
	glxContextFlags  = 0x2094
	glxContextMask   = 0x9126
	glxCoreProfile   = 0x0001
	glxForwardCompat = 0x0002

	inputOutput = 1

	keyPressMask        = 1 << 0
	keyReleaseMask      = 1 << 1
	buttonPressMask     = 1 << 2
	buttonReleaseMask   = 1 << 3
	pointerMotionMask   = 1 << 6
	exposureMask        = 1 << 15
	structureNotifyMask = 1 << 17

	keyPress        = 2
	keyRelease      = 3
	buttonPress     = 4
	buttonRelease   = 5
	motionNotify    = 6
	destroyNotify   = 17
	configureNotify = 22
	clientMessage   = 33

	button1 = 1
	button2 = 2
	button3 = 3
)

// X keysyms.
const (
	xkBackSpace = 0xff08
	xkTab       = 0xff09
	xkReturn    = 0xff0d
	xkEscape    = 0xff1b
	xkLeft      = 0xff51
	xkUp        = 0xff52
	xkRight     = 0xff53
	xkDown      = 0xff54
	xkF1        = 0xffbe
	xkShiftL    = 0xffe1
	xkShiftR    = 0xffe2
	xkControlL  = 0xffe3
	xkControlR  = 0xffe4
	xkAltL      = 0xffe9
	xkAltR      = 0xffea
	xkSpace     = 0x0020
)

type xVisualInfo struct {
	Visual       uintptr
	VisualID     uint
	Screen       int32
	Depth        int32
	Class        int32
	RedMask      uint64
	GreenMask    uint64
	BlueMask     uint64
	ColormapSize int32
	BitsPerRGB   int32
}

type xSetWindowAttributes struct {
	BackgroundPixmap uintptr
	BackgroundPixel  uint64
	BorderPixmap     uint64
	BorderPixel      uint64
	BitGravity       int32
	WinGravity       int32
	BackingStore     int32
	BackingPlanes    uint64
	BackingPixel     uint64
	SaveUnder        int32
	EventMask        int64
	DoNotPropagate   int64
	OverrideRedirect int32
	Colormap         uintptr
	Cursor           uintptr
}

// XKeyEvent, XButtonEvent and XMotionEvent share this layout up to Detail.
type xInputEvent struct {
	Type       int32
	Serial     uint64
	SendEvent  int32
	Display    uintptr
	Window     uintptr
	Root       uintptr
	Subwindow  uintptr
	Time       uint64
	X, Y       int32
	XRoot      int32
	YRoot      int32
	State      uint32
	Detail     uint32
	SameScreen int32
}

type xConfigureEvent struct {
	Type             int32
	Serial           uint64
	SendEvent        int32
	Display          uintptr
	Event            uintptr
	Window           uintptr
	X, Y             int32
	Width, Height    int32
	BorderWidth      int32
	Above            uintptr
	OverrideRedirect int32
}

type xErrorEvent struct {
	Type        int32
	Display     uintptr
	ResourceID  uintptr
	Serial      uint64
	ErrorCode   uint8
	RequestCode uint8
	MinorCode   uint8
}

type xClientMessage struct {
	Type        int32
	Serial      uint64
	SendEvent   int32
	Display     uintptr
	Window      uintptr
	MessageType uintptr
	Format      int32
	Data        [5]uint64
}

var (
	x11lib uintptr
	gllib  uintptr

	xOpenDisplay      func(*byte) uintptr
	xDefaultScreen    func(uintptr) int32
	xRootWindow       func(uintptr, int32) uintptr
	xCreateColormap   func(uintptr, uintptr, uintptr, int32) uintptr
	xFreeColormap     func(uintptr, uintptr) int32
	xCreateWindow     func(uintptr, uintptr, int32, int32, uint32, uint32, uint32, int32, uint32, uintptr, uint64, unsafe.Pointer) uintptr
	xMapWindow        func(uintptr, uintptr) int32
	xStoreName        func(uintptr, uintptr, *byte) int32
	xInternAtom       func(uintptr, *byte, int32) uintptr
	xSetWMProtocols   func(uintptr, uintptr, *uintptr, int32) int32
	xSelectInput      func(uintptr, uintptr, int64)
	xPending          func(uintptr) int32
	xNextEvent        func(uintptr, unsafe.Pointer)
	xDestroyWindow    func(uintptr, uintptr) int32
	xCloseDisplay     func(uintptr) int32
	xFree             func(uintptr) int32
	xLookupKeysym     func(unsafe.Pointer, int32) uint64
	xLookupString     func(unsafe.Pointer, *byte, int32, *uint64, uintptr) int32
	xQueryKeymap      func(uintptr, *[32]byte) int32
	xKeysymToKeycode  func(uintptr, uint64) uint8
	xSync             func(uintptr, int32) int32
	xSetErrorHandler  func(uintptr) uintptr
	glxChooseFBConfig func(uintptr, int32, *int32, *int32) uintptr

	glxGetVisualFromFBConfig func(uintptr, uintptr) uintptr
	glxCreateNewContext      func(uintptr, uintptr, int32, uintptr, int32) uintptr
	glxMakeCurrent           func(uintptr, uintptr, uintptr) int32
	glxSwapBuffers           func(uintptr, uintptr)
	glxDestroyContext        func(uintptr, uintptr)
	glxGetProcAddress        func(*byte) uintptr
)

var x11Keys = newKeyTable(append(append(
	alphaNumericBindings('a', '0'),
	functionKeyBindings(xkF1)...),
	keyBinding{xkEscape, KeyEscape},
	keyBinding{xkReturn, KeyEnter},
	keyBinding{xkSpace, KeySpace},
	keyBinding{xkBackSpace, KeyBackspace},
	keyBinding{xkTab, KeyTab},
	keyBinding{xkShiftL, KeyShift},
	keyBinding{xkShiftR, KeyShift},
	keyBinding{xkControlL, KeyCtrl},
	keyBinding{xkControlR, KeyCtrl},
	keyBinding{xkAltL, KeyAlt},
	keyBinding{xkAltR, KeyAlt},
	keyBinding{xkLeft, KeyLeft},
	keyBinding{xkRight, KeyRight},
	keyBinding{xkUp, KeyUp},
	keyBinding{xkDown, KeyDown},
))

var loadLibs = sync.OnceValue(func() error {
	var err error
	x11lib, err = purego.Dlopen("libX11.so.6", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
	if err != nil {
		return err
	}
	gllib, err = purego.Dlopen("libGL.so.1", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
	if err != nil {
		return err
	}
	registerX11()
	registerGLX()
	return nil
})

// Xlib's default error handler exits the process. Context creation runs with
// the trap installed so a rejected request comes back as an error instead.
var xErrors struct {
	sync.Mutex
	handler  uintptr
	previous uintptr
	// ErrorCode, RequestCode and MinorCode of the first error since the trap
	// was installed, packed low to high.
	first atomic.Uint32
}

func trapXError(_ uintptr, ev uintptr) uintptr {
	recordXError((*xErrorEvent)(unsafe.Pointer(ev)))
	return 0
}

func recordXError(ev *xErrorEvent) {
	code := uint32(ev.ErrorCode) | uint32(ev.RequestCode)<<8 | uint32(ev.MinorCode)<<16
	xErrors.first.CompareAndSwap(0, code)
}

// takeXError returns the recorded error, if any, and clears it.
func takeXError() error {
	code := xErrors.first.Swap(0)
	if code == 0 {
		return nil
	}
	return fmt.Errorf("X error %d on request %d.%d", uint8(code), uint8(code>>8), uint8(code>>16))
}

func grabXErrors() {
	xErrors.Lock()
	xErrors.first.Store(0)
	xErrors.previous = xSetErrorHandler(xErrors.handler)
}

// releaseXErrors flushes the request queue so pending errors reach the trap,
// then restores the previous handler.
func releaseXErrors(dpy uintptr) error {
	defer xErrors.Unlock()
	xSync(dpy, 0)
	xSetErrorHandler(xErrors.previous)
	return takeXError()
}

// One display connection is shared by every window of the process and closed
// with the last one.
var display struct {
	sync.Mutex
	refs int
	dpy  uintptr
}

func acquireDisplay() (uintptr, error) {
	display.Lock()
	defer display.Unlock()

	if display.refs > 0 {
		display.refs++
		return display.dpy, nil
	}
	if err := loadLibs(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrClassRegistration, err)
	}
	dpy := xOpenDisplay(nil)
	if dpy == 0 {
		return 0, fmt.Errorf("%w: XOpenDisplay failed", ErrClassRegistration)
	}
	display.dpy = dpy
	display.refs = 1
	return dpy, nil
}

func releaseDisplay() {
	display.Lock()
	defer display.Unlock()

	if display.refs == 0 {
		return
	}
	display.refs--
	if display.refs == 0 {
		xCloseDisplay(display.dpy)
		display.dpy = 0
	}
}

type x11Window struct {
	lifecycle

	owner    *Window
	display  uintptr
	window   uintptr
	colormap uintptr
	fbconfig uintptr
	ctx      uintptr
	wmDelete uintptr
}

func newPlatformWindow(owner *Window) (NativeWindow, error) {
	runtime.LockOSThread()

	dpy, err := acquireDisplay()
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	w := &x11Window{owner: owner, display: dpy}
	if err := w.createWindow(owner.desc); err != nil {
		releaseDisplay()
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("%w: %w", ErrWindowCreation, err)
	}
	w.state = StateWindowCreated
	return w, nil
}

// createWindow picks the framebuffer configuration up front because X11
// fixes the visual of a window at creation.
func (w *x11Window) createWindow(desc Description) error {
	screen := xDefaultScreen(w.display)
	root := xRootWindow(w.display, screen)

	attrs := []int32{
		glxXRenderable, 1,
		glxDrawableType, glxWindowBit,
		glxRenderType, glxRGBABit,
		glxXVisualType, glxTrueColor,
		glxRedSize, 8,
		glxGreenSize, 8,
		glxBlueSize, 8,
		glxAlphaSize, 8,
		glxDepthSize, 24,
		glxStencilSize, 8,
		glxDoubleBuffer, 1,
		glxNone,
	}
	var count int32
	configs := glxChooseFBConfig(w.display, screen, &attrs[0], &count)
	if configs == 0 || count == 0 {
		return errors.New("glXChooseFBConfig found no matching configuration")
	}
	w.fbconfig = *(*uintptr)(unsafe.Pointer(configs))
	xFree(configs)

	vi := glxGetVisualFromFBConfig(w.display, w.fbconfig)
	if vi == 0 {
		return errors.New("glXGetVisualFromFBConfig failed")
	}
	defer xFree(vi)
	visual := (*xVisualInfo)(unsafe.Pointer(vi))

	w.colormap = xCreateColormap(w.display, root, visual.Visual, 0)

	var swa xSetWindowAttributes
	swa.Colormap = w.colormap
	swa.EventMask = exposureMask | structureNotifyMask | keyPressMask | keyReleaseMask |
		buttonPressMask | buttonReleaseMask | pointerMotionMask

	const (
		cwBorderPixel = 1 << 3
		cwEventMask   = 1 << 11
		cwColormap    = 1 << 13
	)

	w.window = xCreateWindow(
		w.display, root,
		0, 0,
		uint32(desc.Width), uint32(desc.Height),
		0,
		visual.Depth,
		inputOutput,
		visual.Visual,
		cwBorderPixel|cwColormap|cwEventMask,
		unsafe.Pointer(&swa),
	)
	if w.window == 0 {
		xFreeColormap(w.display, w.colormap)
		return errors.New("XCreateWindow failed")
	}
	xSelectInput(w.display, w.window, swa.EventMask)

	xStoreName(w.display, w.window, cString(desc.Title))

	w.wmDelete = xInternAtom(w.display, cString("WM_DELETE_WINDOW"), 0)
	xSetWMProtocols(w.display, w.window, &w.wmDelete, 1)

	xMapWindow(w.display, w.window)
	return nil
}

func (w *x11Window) CreateContext(opts ContextOptions) error {
	if w.state != StateWindowCreated {
		return fmt.Errorf("%w: create context in state %s", ErrInvalidState, w.state)
	}

	var (
		ctx uintptr
		err error
	)
	if opts.Legacy {
		grabXErrors()
		ctx = glxCreateNewContext(w.display, w.fbconfig, glxRGBAType, 0, 1)
		if err = releaseXErrors(w.display); err != nil {
			if ctx != 0 {
				glxDestroyContext(w.display, ctx)
			}
			err = fmt.Errorf("glXCreateNewContext failed: %w", err)
		} else if ctx == 0 {
			err = errors.New("glXCreateNewContext failed")
		}
	} else {
		ctx, err = w.createCoreContext(opts)
	}
	if err != nil {
		return fmt.Errorf("%w: %s context: %w", ErrContextCreation, opts, err)
	}

	if glxMakeCurrent(w.display, w.window, ctx) == 0 {
		glxDestroyContext(w.display, ctx)
		return fmt.Errorf("%w: glXMakeCurrent failed", ErrContextCreation)
	}

	w.ctx = ctx
	w.state = StateContextCreated
	return nil
}

// createCoreContext makes a temporary context current, which is required
// before glXCreateContextAttribsARB can be resolved, and creates the
// requested core profile through it.
func (w *x11Window) createCoreContext(opts ContextOptions) (uintptr, error) {
	temp := glxCreateNewContext(w.display, w.fbconfig, glxRGBAType, 0, 1)
	if temp == 0 {
		return 0, errors.New("glXCreateNewContext failed")
	}
	defer glxDestroyContext(w.display, temp)
	if glxMakeCurrent(w.display, w.window, temp) == 0 {
		return 0, errors.New("glXMakeCurrent failed")
	}
	defer glxMakeCurrent(w.display, 0, 0)

	addr := w.GetProcAddress("glXCreateContextAttribsARB")
	if addr == 0 {
		return 0, errors.New("glXCreateContextAttribsARB unavailable")
	}
	var createAttribs func(uintptr, uintptr, uintptr, int32, *int32) uintptr
	purego.RegisterFunc(&createAttribs, addr)

	attribs := []int32{
		glxContextMajor, int32(opts.Major),
		glxContextMinor, int32(opts.Minor),
		glxContextMask, glxCoreProfile,
		glxContextFlags, glxForwardCompat,
		glxNone,
	}
	grabXErrors()
	ctx := createAttribs(w.display, w.fbconfig, 0, 1, &attribs[0])
	if err := releaseXErrors(w.display); err != nil {
		if ctx != 0 {
			glxDestroyContext(w.display, ctx)
		}
		return 0, fmt.Errorf("glXCreateContextAttribsARB rejected the request: %w", err)
	}
	if ctx == 0 {
		return 0, errors.New("glXCreateContextAttribsARB rejected the request")
	}
	return ctx, nil
}

func (w *x11Window) Destroy() {
	if !w.beginDestroy() {
		return
	}
	if w.ctx != 0 {
		glxMakeCurrent(w.display, 0, 0)
		glxDestroyContext(w.display, w.ctx)
		w.ctx = 0
	}
	if w.window != 0 {
		xDestroyWindow(w.display, w.window)
		w.window = 0
	}
	if w.colormap != 0 {
		xFreeColormap(w.display, w.colormap)
		w.colormap = 0
	}
	w.display = 0
	releaseDisplay()
	runtime.UnlockOSThread()
}

func (w *x11Window) PollEvents() {
	if !w.live() {
		return
	}
	w.markPolled()

	for xPending(w.display) > 0 {
		var raw [192]byte
		xNextEvent(w.display, unsafe.Pointer(&raw[0]))
		if ev, ok := w.translate(unsafe.Pointer(&raw[0])); ok {
			w.owner.dispatch(ev)
		}
	}
}

func (w *x11Window) translate(raw unsafe.Pointer) (Event, bool) {
	switch *(*int32)(raw) {
	case keyPress, keyRelease:
		ke := (*xInputEvent)(raw)
		pressed := ke.Type == keyPress
		w.owner.dispatch(KeyEvent(x11Keys.key(int(xLookupKeysym(raw, 0))), pressed))
		if pressed {
			var buf [8]byte
			var sym uint64
			if n := xLookupString(raw, &buf[0], int32(len(buf)), &sym, 0); n == 1 {
				w.owner.dispatch(CharacterEvent(rune(buf[0])))
			}
		}
	case buttonPress, buttonRelease:
		be := (*xInputEvent)(raw)
		button := x11Button(be.Detail)
		if button == MouseButtonUnknown {
			return Event{}, false
		}
		return MouseButtonEvent(button, be.Type == buttonPress), true
	case motionNotify:
		me := (*xInputEvent)(raw)
		return MouseMoveEvent(int(me.X), int(me.Y)), true
	case configureNotify:
		ce := (*xConfigureEvent)(raw)
		desc := w.owner.desc
		if int(ce.Width) == desc.Width && int(ce.Height) == desc.Height {
			return Event{}, false
		}
		return ResizeEvent(int(ce.Width), int(ce.Height)), true
	case clientMessage:
		cm := (*xClientMessage)(raw)
		if cm.Format == 32 && cm.Data[0] == uint64(w.wmDelete) {
			return CloseEvent(), true
		}
	case destroyNotify:
		return DestroyEvent(), true
	}
	return Event{}, false
}

func x11Button(b uint32) MouseButton {
	switch b {
	case button1:
		return MouseButtonLeft
	case button2:
		return MouseButtonMiddle
	case button3:
		return MouseButtonRight
	}
	return MouseButtonUnknown
}

func (w *x11Window) RefreshScreen() {
	if w.display != 0 && w.window != 0 {
		glxSwapBuffers(w.display, w.window)
	}
}

func (w *x11Window) ConvertNativeKeyCode(code int) KeyCode { return x11Keys.key(code) }

func (w *x11Window) NativeKeyCode(key KeyCode) int { return x11Keys.native(key) }

func (w *x11Window) IsKeyDown(key KeyCode) bool {
	sym := x11Keys.native(key)
	if sym < 0 || w.display == 0 {
		return false
	}
	kc := xKeysymToKeycode(w.display, uint64(sym))
	if kc == 0 {
		return false
	}
	var keys [32]byte
	xQueryKeymap(w.display, &keys)
	return keys[kc/8]&(1<<(kc%8)) != 0
}

func (w *x11Window) GetProcAddress(name string) uintptr {
	if glxGetProcAddress == nil {
		return 0
	}
	return glxGetProcAddress(cString(name))
}

func registerX11() {
	purego.RegisterLibFunc(&xOpenDisplay, x11lib, "XOpenDisplay")
	purego.RegisterLibFunc(&xDefaultScreen, x11lib, "XDefaultScreen")
	purego.RegisterLibFunc(&xRootWindow, x11lib, "XRootWindow")
	purego.RegisterLibFunc(&xCreateColormap, x11lib, "XCreateColormap")
	purego.RegisterLibFunc(&xFreeColormap, x11lib, "XFreeColormap")
	purego.RegisterLibFunc(&xCreateWindow, x11lib, "XCreateWindow")
	purego.RegisterLibFunc(&xMapWindow, x11lib, "XMapWindow")
	purego.RegisterLibFunc(&xStoreName, x11lib, "XStoreName")
	purego.RegisterLibFunc(&xInternAtom, x11lib, "XInternAtom")
	purego.RegisterLibFunc(&xSetWMProtocols, x11lib, "XSetWMProtocols")
	purego.RegisterLibFunc(&xSelectInput, x11lib, "XSelectInput")
	purego.RegisterLibFunc(&xPending, x11lib, "XPending")
	purego.RegisterLibFunc(&xNextEvent, x11lib, "XNextEvent")
	purego.RegisterLibFunc(&xDestroyWindow, x11lib, "XDestroyWindow")
	purego.RegisterLibFunc(&xCloseDisplay, x11lib, "XCloseDisplay")
	purego.RegisterLibFunc(&xFree, x11lib, "XFree")
	purego.RegisterLibFunc(&xLookupKeysym, x11lib, "XLookupKeysym")
	purego.RegisterLibFunc(&xLookupString, x11lib, "XLookupString")
	purego.RegisterLibFunc(&xQueryKeymap, x11lib, "XQueryKeymap")
	purego.RegisterLibFunc(&xKeysymToKeycode, x11lib, "XKeysymToKeycode")
	purego.RegisterLibFunc(&xSync, x11lib, "XSync")
	purego.RegisterLibFunc(&xSetErrorHandler, x11lib, "XSetErrorHandler")
	xErrors.handler = purego.NewCallback(trapXError)
}

func registerGLX() {
	purego.RegisterLibFunc(&glxChooseFBConfig, gllib, "glXChooseFBConfig")
	purego.RegisterLibFunc(&glxGetVisualFromFBConfig, gllib, "glXGetVisualFromFBConfig")
	purego.RegisterLibFunc(&glxCreateNewContext, gllib, "glXCreateNewContext")
	purego.RegisterLibFunc(&glxMakeCurrent, gllib, "glXMakeCurrent")
	purego.RegisterLibFunc(&glxSwapBuffers, gllib, "glXSwapBuffers")
	purego.RegisterLibFunc(&glxDestroyContext, gllib, "glXDestroyContext")
	// Older libGL builds only export the ARB spelling.
	if _, err := purego.Dlsym(gllib, "glXGetProcAddress"); err == nil {
		purego.RegisterLibFunc(&glxGetProcAddress, gllib, "glXGetProcAddress")
	} else {
		purego.RegisterLibFunc(&glxGetProcAddress, gllib, "glXGetProcAddressARB")
	}
}

func cString(s string) *byte {
	b := append([]byte(s), 0)
	return &b[0]
}
